package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sitepanel/backend/internal/config"
	"github.com/sitepanel/backend/internal/media"
	"github.com/sitepanel/backend/internal/models"
	"github.com/sitepanel/backend/internal/storage"
)

// MediaPipeline is the interface that wraps the image store operations used by the services
type MediaPipeline interface {
	// Method Ingest stores the original, large and thumbnail artifacts of an uploaded image.
	//
	// media.ErrUnreadableImage is returned when the upload is not an image, media.ErrImageTooLarge
	// when its dimensions exceed the pixel limit, media.ErrStorageWrite when the artifacts could
	// not be stored; no artifact survives any of them.
	Ingest(ctx context.Context, up media.Upload) (*media.Asset, error)
	// Method Remove deletes the artifact set of a canonical filename.
	Remove(filename string) error
	// Method URLs returns the public URLs of the artifacts of a canonical filename.
	URLs(filename string) media.Variants
}

// MediaOptions configures how services treat uploaded media
type MediaOptions struct {
	MaxUploadBytes   int64
	UnreadablePolicy string
}

// MediaFile is an uploaded file as received by a handler
type MediaFile struct {
	Reader   io.Reader
	Filename string
	Size     int64
}

// extension returns the normalized extension of the client file name
func (f *MediaFile) extension() string {
	return storage.NormalizeExtension(filepath.Ext(f.Filename))
}

// name returns the client file name without directory and extension
func (f *MediaFile) name() string {
	base := filepath.Base(strings.ReplaceAll(f.Filename, "\\", "/"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// validateMediaFile checks the extension and size of an uploaded file
func validateMediaFile(v validationErrors, field string, f *MediaFile, maxBytes int64) {
	if !media.SupportedExtension(f.extension()) {
		v.add(field, "must be a file of type: jpg, jpeg, png, gif, bmp")
		return
	}
	if maxBytes > 0 && f.Size > maxBytes {
		v.add(field, fmt.Sprintf("may not be greater than %d kilobytes", maxBytes/1024))
	}
}

// validateLength checks the length of a text field in characters
func validateLength(v validationErrors, field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("may not be greater than %d characters", max))
	}
}

// rejectsUnreadable reports whether an unreadable image fails the request
func (o MediaOptions) rejectsUnreadable() bool {
	return o.UnreadablePolicy == config.UnreadablePolicyReject
}

func mediaURLs(p MediaPipeline, filename string) models.MediaURLs {
	v := p.URLs(filename)
	return models.MediaURLs{Original: v.Original, Large: v.Large, Thumb: v.Thumb}
}
