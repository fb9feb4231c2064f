// Package media turns an uploaded image into the original, large and thumbnail
// artifacts of the public image store.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/sitepanel/backend/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrUnreadableImage is returned when the upload cannot be decoded as an image.
	// No artifact is written in that case; the caller decides whether to proceed without media.
	ErrUnreadableImage = errors.New("unreadable image")
	// ErrStorageWrite is returned when any artifact could not be written or published.
	// Every artifact of the upload is removed before it is returned.
	ErrStorageWrite = errors.New("storage write failed")
	// ErrUnsupportedExtension is returned for extensions the pipeline cannot encode
	ErrUnsupportedExtension = errors.New("unsupported image extension")
	// ErrImageTooLarge is returned when the declared dimensions of the upload exceed
	// the configured pixel limit. The image is not decoded and no artifact is written.
	ErrImageTooLarge = errors.New("image dimensions too large")
)

// Storage is the public file store the pipeline writes to.
// Created files stay invisible until promoted.
type Storage interface {
	Create(name, directory string) (io.WriteCloser, error)
	Promote(name, directory string) error
	Discard(name, directory string) error
	Delete(name, directory string) error
	Exists(name, directory string) (bool, error)
}

// Observer receives the outcome of every ingestion
type Observer interface {
	ObserveIngest(result string, duration time.Duration, bytes int64)
}

const maxTokenAttempts = 3

// Ingestion results reported to the Observer
const (
	ResultSuccess     = "success"
	ResultUnreadable  = "unreadable"
	ResultUnsupported = "unsupported"
	ResultTooLarge    = "too_large"
	ResultFailed      = "failed"
)

// Upload is an uploaded binary with its declared extension.
// The extension is trusted for naming only.
type Upload struct {
	Reader    io.Reader
	Extension string
}

// Asset is the artifact set produced by one ingestion
type Asset struct {
	Token        string
	Extension    string
	Filename     string // canonical name, the large variant
	OriginalName string
	ThumbName    string
	Bytes        int64 // total size of the three artifacts
}

// Pipeline ingests uploaded images into the public image store
type Pipeline struct {
	cfg      Config
	storage  Storage
	logger   *zap.Logger
	observer Observer
	newToken func() string
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithObserver reports every ingestion to o
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// WithTokenGenerator replaces the random base-name generator
func WithTokenGenerator(gen func() string) Option {
	return func(p *Pipeline) {
		p.newToken = gen
	}
}

// NewPipeline creates a new ingestion pipeline
func NewPipeline(cfg Config, store Storage, logger *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		storage:  store,
		logger:   logger,
		newToken: storage.GenerateToken,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest decodes the upload, writes the original, large and thumb artifacts and
// returns the asset. Either all three artifacts become public or none does.
func (p *Pipeline) Ingest(ctx context.Context, up Upload) (*Asset, error) {
	start := time.Now()
	asset, err := p.ingest(ctx, up)

	if p.observer != nil {
		var size int64
		if asset != nil {
			size = asset.Bytes
		}
		p.observer.ObserveIngest(resultOf(err), time.Since(start), size)
	}
	return asset, err
}

func (p *Pipeline) ingest(ctx context.Context, up Upload) (*Asset, error) {
	ext := storage.NormalizeExtension(up.Extension)
	if !SupportedExtension(ext) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, up.Extension)
	}

	data, err := io.ReadAll(up.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	if err := p.checkDimensions(data); err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}

	token, err := p.freeToken(ext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	asset := &Asset{
		Token:        token,
		Extension:    ext,
		Filename:     token + "." + ext,
		OriginalName: token + p.cfg.OriginalSuffix + "." + ext,
		ThumbName:    token + p.cfg.ThumbSuffix + "." + ext,
	}

	// Both variants are scaled from the decoded source; src is only read.
	var large, thumb bytes.Buffer
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.render(gctx, &large, src, p.cfg.Large, ext)
	})
	g.Go(func() error {
		return p.render(gctx, &thumb, src, p.cfg.Thumb, ext)
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to render variants: %w", err)
	}

	artifacts := []struct {
		name string
		data []byte
	}{
		{asset.OriginalName, data},
		{asset.Filename, large.Bytes()},
		{asset.ThumbName, thumb.Bytes()},
	}

	staged := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		n, err := p.stage(a.name, a.data)
		if err != nil {
			p.rollback(staged, nil)
			p.logger.Error("failed to stage media artifact", zap.Error(err), zap.String("name", a.name))
			return nil, fmt.Errorf("%w: %v", ErrStorageWrite, err)
		}
		staged = append(staged, a.name)
		asset.Bytes += n
	}

	promoted := make([]string, 0, len(staged))
	for _, name := range staged {
		if err := p.storage.Promote(name, p.cfg.Directory); err != nil {
			p.rollback(staged, promoted)
			p.logger.Error("failed to publish media artifact", zap.Error(err), zap.String("name", name))
			return nil, fmt.Errorf("%w: %v", ErrStorageWrite, err)
		}
		promoted = append(promoted, name)
	}

	return asset, nil
}

// checkDimensions reads the image header and rejects images above the pixel limit
func (p *Pipeline) checkDimensions(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	if p.cfg.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > p.cfg.MaxPixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, p.cfg.MaxPixels)
	}
	return nil
}

// freeToken returns a token whose canonical name is not taken yet
func (p *Pipeline) freeToken(ext string) (string, error) {
	for i := 0; i < maxTokenAttempts; i++ {
		token := p.newToken()
		taken, err := p.storage.Exists(token+"."+ext, p.cfg.Directory)
		if err != nil {
			return "", err
		}
		if !taken {
			return token, nil
		}
	}
	return "", errors.New("no free file name")
}

// render scales src into box and encodes it into w
func (p *Pipeline) render(ctx context.Context, w io.Writer, src image.Image, box Box, ext string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b := src.Bounds()
	width, height := Fit(b.Dx(), b.Dy(), box)
	return Encode(w, Scale(src, width, height), ext, p.cfg.JPEGQuality)
}

// stage writes data to a staged file and returns the number of bytes written
func (p *Pipeline) stage(name string, data []byte) (int64, error) {
	wc, err := p.storage.Create(name, p.cfg.Directory)
	if err != nil {
		return 0, err
	}

	sw := storage.NewSizeWriter()
	if _, err := io.Copy(io.MultiWriter(wc, sw), bytes.NewReader(data)); err != nil {
		wc.Close()
		// the half-written file must not survive
		p.storage.Discard(name, p.cfg.Directory)
		return 0, err
	}
	if err := wc.Close(); err != nil {
		p.storage.Discard(name, p.cfg.Directory)
		return 0, err
	}
	return sw.Size(), nil
}

// rollback removes every promoted and staged artifact of a failed ingestion
func (p *Pipeline) rollback(staged, promoted []string) {
	isPromoted := make(map[string]bool, len(promoted))
	for _, name := range promoted {
		isPromoted[name] = true
		if err := p.storage.Delete(name, p.cfg.Directory); err != nil {
			p.logger.Warn("failed to remove published artifact", zap.Error(err), zap.String("name", name))
		}
	}
	for _, name := range staged {
		if isPromoted[name] {
			continue
		}
		if err := p.storage.Discard(name, p.cfg.Directory); err != nil {
			p.logger.Warn("failed to discard staged artifact", zap.Error(err), zap.String("name", name))
		}
	}
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, ErrUnreadableImage):
		return ResultUnreadable
	case errors.Is(err, ErrUnsupportedExtension):
		return ResultUnsupported
	case errors.Is(err, ErrImageTooLarge):
		return ResultTooLarge
	default:
		return ResultFailed
	}
}
