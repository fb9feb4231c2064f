package handlers

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FileStore opens files of the public image store
type FileStore interface {
	Open(name, directory string) (*os.File, error)
}

// UploadsHandler serves the public image store
type UploadsHandler struct {
	BaseHandler
	store FileStore
}

// NewUploadsHandler creates a new uploads handler
func NewUploadsHandler(store FileStore, logger *zap.Logger) *UploadsHandler {
	return &UploadsHandler{
		store:       store,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers the public file route
func (h *UploadsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/uploads/{directory}/{filename}", h.ServeFile)
}

// ServeFile handles GET /uploads/{directory}/{filename}
// @Summary Download stored image
// @Description Serve an original, large or thumbnail artifact. Range requests are supported.
// @Tags uploads
// @Produce application/octet-stream
// @Param directory path string true "Store directory"
// @Param filename path string true "File name"
// @Success 200 "File content"
// @Success 206 "Partial file content"
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /uploads/{directory}/{filename} [get]
func (h *UploadsHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	directory := chi.URLParam(r, "directory")
	filename := chi.URLParam(r, "filename")

	// staged files and anything outside the store stay hidden
	if directory == "" || filename == "" || strings.Contains(directory, ".") || strings.HasPrefix(filename, ".") {
		h.RespondError(w, http.StatusNotFound, "file not found")
		return
	}

	file, err := h.store.Open(filename, directory)
	if err != nil {
		if os.IsNotExist(err) {
			h.RespondError(w, http.StatusNotFound, "file not found")
			return
		}
		h.Logger.Error("failed to open file", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to open file")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		h.Logger.Error("failed to get file info", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to get file info")
		return
	}
	if info.IsDir() {
		h.RespondError(w, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeContent(w, r, filename, info.ModTime(), file)
}
