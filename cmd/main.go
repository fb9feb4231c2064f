package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/sitepanel/backend/docs"
	"github.com/sitepanel/backend/internal/auth"
	"github.com/sitepanel/backend/internal/config"
	"github.com/sitepanel/backend/internal/handlers"
	"github.com/sitepanel/backend/internal/logger"
	"github.com/sitepanel/backend/internal/media"
	"github.com/sitepanel/backend/internal/metrics"
	"github.com/sitepanel/backend/internal/middlewares"
	"github.com/sitepanel/backend/internal/ordering"
	"github.com/sitepanel/backend/internal/repositories"
	"github.com/sitepanel/backend/internal/services"
	"github.com/sitepanel/backend/internal/storage"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// maxUploadFiles bounds the body of a multi-photo upload
const maxUploadFiles = 20

// @title Sitepanel Admin API
// @version 1.0
// @description Admin API for page sections, galleries and ordered collections

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Admin access token: Bearer {token}
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting Sitepanel admin service")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize metrics
	collector, err := metrics.NewCollector("", nil)
	if err != nil {
		logger.Logger.Fatal("Failed to register metrics", zap.Error(err))
	}

	// Initialize storage and media pipeline
	fileStorage := storage.NewLocalStorage(cfg.Media.BasePath)
	pipeline := media.NewPipeline(
		media.ConfigFromPolicy(cfg.Media.Policy, cfg.Media.BaseURL),
		fileStorage,
		logger.Logger,
		media.WithObserver(collector),
	)
	mediaOpts := services.MediaOptions{
		MaxUploadBytes:   cfg.Media.MaxUploadBytes,
		UnreadablePolicy: cfg.Media.UnreadablePolicy,
	}

	// Initialize repositories
	pageContentRepo := repositories.NewPageContentRepository(db)
	photoRepo := repositories.NewPhotoRepository(db)
	rankRepo := repositories.NewRankRepository(db)

	// Initialize re-ranker
	reranker := ordering.NewReranker(rankRepo, cfg.Reorder.ScopeCheck, logger.Logger)
	reranker.SetObserver(collector)

	// Initialize services
	pageContentService := services.NewPageContentService(pageContentRepo, pipeline, mediaOpts, logger.Logger)
	photoService := services.NewPhotoService(photoRepo, pipeline, mediaOpts, logger.Logger)
	orderService := services.NewOrderService(reranker)

	// Initialize handlers
	pageContentHandler := handlers.NewPageContentHandler(pageContentService, orderService, logger.Logger)
	photoHandler := handlers.NewPhotoHandler(photoService, logger.Logger)
	orderHandler := handlers.NewOrderHandler(orderService, logger.Logger)
	uploadsHandler := handlers.NewUploadsHandler(fileStorage, logger.Logger)
	healthHandler := handlers.NewHealthHandler(db, logger.Logger)

	// Initialize admin guard
	tokenValidator := auth.NewTokenValidator(cfg.JWT.Secret)
	adminMw := auth.RoleMiddleware(tokenValidator, cfg.JWT.AdminRole)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(middlewares.LoggerMiddleware(logger.Logger))
	r.Use(middlewares.RecoveryMiddleware(logger.Logger))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middlewares.RequestSizeLimitMiddleware(cfg.Media.MaxUploadBytes * maxUploadFiles))

	// Health, metrics and swagger documentation
	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", collector.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Public image store
	uploadsHandler.RegisterRoutes(r)

	// Admin API
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(adminMw)
		pageContentHandler.RegisterRoutes(r)
		photoHandler.RegisterRoutes(r)
		orderHandler.RegisterRoutes(r)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second, // Longer timeout for multi-photo uploads
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "sitepanel_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Get the working directory or use migrations folder relative to the binary
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
