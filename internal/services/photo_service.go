package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sitepanel/backend/internal/media"
	"github.com/sitepanel/backend/internal/models"
	"go.uber.org/zap"
)

const (
	maxResourceTypeLength = 64
	maxPhotoNameLength    = 191
)

// PhotoRepository is the interface that wraps methods for photos table data access
type PhotoRepository interface {
	// Method ListByResource retrieve the gallery of a resource sorted by list order.
	ListByResource(ctx context.Context, resourceType string, resourceID int64) ([]models.Photo, error)
	// Method GetByID retrieve a photo by its ID.
	//
	// A "photo not found" error is returned when the photo does not exist.
	GetByID(ctx context.Context, id int64) (*models.Photo, error)
	// Method NextListOrder returns the list order that appends a photo to the gallery.
	NextListOrder(ctx context.Context, resourceType string, resourceID int64) (int, error)
	// Method Create inserts a photo and sets its ID.
	Create(ctx context.Context, photo *models.Photo) error
	// Method UpdateName renames a photo.
	UpdateName(ctx context.Context, id int64, name string) error
	// Method SetCover makes the photo the only cover of its gallery.
	SetCover(ctx context.Context, photo *models.Photo) error
	// Method Delete deletes a photo.
	Delete(ctx context.Context, id int64) error
}

type photoService struct {
	repo     PhotoRepository
	pipeline MediaPipeline
	opts     MediaOptions
	logger   *zap.Logger
}

// NewPhotoService creates a new photo service
func NewPhotoService(repo PhotoRepository, pipeline MediaPipeline, opts MediaOptions, logger *zap.Logger) *photoService {
	return &photoService{
		repo:     repo,
		pipeline: pipeline,
		opts:     opts,
		logger:   logger,
	}
}

// List retrieves the gallery of a resource
func (s *photoService) List(ctx context.Context, resourceType string, resourceID int64) ([]models.PhotoResponse, error) {
	if err := validateResource(resourceType, resourceID); err != nil {
		return nil, err
	}

	photos, err := s.repo.ListByResource(ctx, resourceType, resourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get photos: %w", err)
	}

	result := make([]models.PhotoResponse, 0, len(photos))
	for _, photo := range photos {
		result = append(result, s.toResponse(photo))
	}
	return result, nil
}

// Upload stores every file through the media pipeline and appends the photos to the gallery.
// Under the skip policy unreadable files are left out and listed in the response; under the
// reject policy one unreadable file fails the request and nothing is stored. An oversized image
// or a failed write also leaves nothing stored.
func (s *photoService) Upload(ctx context.Context, resourceType string, resourceID int64, files []*MediaFile) (*models.UploadPhotosResponse, error) {
	v := validationErrors{}
	if err := validateResource(resourceType, resourceID); err != nil {
		var ve *ValidationError
		errors.As(err, &ve)
		for field, message := range ve.Fields {
			v.add(field, message)
		}
	}
	if len(files) == 0 {
		v.add("photos", "at least one file is required")
	}
	for i, file := range files {
		validateMediaFile(v, fmt.Sprintf("photos.%d", i), file, s.opts.MaxUploadBytes)
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	response := &models.UploadPhotosResponse{Photos: []models.PhotoResponse{}, Skipped: []string{}}
	stored := make([]*media.Asset, 0, len(files))
	names := make([]string, 0, len(files))
	for _, file := range files {
		asset, err := s.pipeline.Ingest(ctx, media.Upload{Reader: file.Reader, Extension: file.extension()})
		if errors.Is(err, media.ErrImageTooLarge) {
			s.discard(stored)
			return nil, &ValidationError{Fields: map[string]string{"photos": file.Filename + " has too large dimensions"}}
		}
		if errors.Is(err, media.ErrUnreadableImage) {
			if s.opts.rejectsUnreadable() {
				s.discard(stored)
				return nil, &ValidationError{Fields: map[string]string{"photos": file.Filename + " is not an image"}}
			}
			s.logger.Warn("unreadable photo skipped", zap.String("filename", file.Filename))
			response.Skipped = append(response.Skipped, file.Filename)
			continue
		}
		if err != nil {
			s.discard(stored)
			return nil, fmt.Errorf("failed to store photo: %w", err)
		}
		stored = append(stored, asset)
		names = append(names, file.name())
	}

	created := make([]*models.Photo, 0, len(stored))
	for i, asset := range stored {
		order, err := s.repo.NextListOrder(ctx, resourceType, resourceID)
		if err != nil {
			s.revert(ctx, created, stored[i:])
			return nil, fmt.Errorf("failed to create photo: %w", err)
		}

		photo := &models.Photo{
			ResourceType: resourceType,
			ResourceID:   resourceID,
			Name:         names[i],
			Filename:     asset.Filename,
			ListOrder:    order,
		}
		if err := s.repo.Create(ctx, photo); err != nil {
			s.revert(ctx, created, stored[i:])
			return nil, fmt.Errorf("failed to create photo: %w", err)
		}
		created = append(created, photo)
		response.Photos = append(response.Photos, s.toResponse(*photo))
	}

	s.logger.Info("photos uploaded",
		zap.String("resource_type", resourceType),
		zap.Int64("resource_id", resourceID),
		zap.Int("stored", len(response.Photos)),
		zap.Int("skipped", len(response.Skipped)),
	)
	return response, nil
}

// UpdateName renames a photo
func (s *photoService) UpdateName(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	v := validationErrors{}
	if name == "" {
		v.add("name", "is required")
	}
	validateLength(v, "name", name, maxPhotoNameLength)
	if err := v.err(); err != nil {
		return err
	}

	if err := s.repo.UpdateName(ctx, id, name); err != nil {
		return fmt.Errorf("failed to update photo name: %w", err)
	}
	return nil
}

// SetCover makes the photo the cover of its gallery
func (s *photoService) SetCover(ctx context.Context, id int64) error {
	photo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SetCover(ctx, photo); err != nil {
		return fmt.Errorf("failed to set photo cover: %w", err)
	}
	return nil
}

// Delete deletes a photo and its artifact set
func (s *photoService) Delete(ctx context.Context, id int64) error {
	photo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	if err := s.pipeline.Remove(photo.Filename); err != nil {
		s.logger.Warn("failed to remove photo files", zap.Error(err), zap.String("filename", photo.Filename))
	}
	return nil
}

// revert deletes the rows created by a failed upload together with their files and
// removes the files that never got a row. A row that cannot be deleted keeps its files.
func (s *photoService) revert(ctx context.Context, created []*models.Photo, unsaved []*media.Asset) {
	for _, photo := range created {
		if err := s.repo.Delete(ctx, photo.ID); err != nil {
			s.logger.Error("failed to revert uploaded photo", zap.Error(err), zap.Int64("id", photo.ID))
			continue
		}
		if err := s.pipeline.Remove(photo.Filename); err != nil {
			s.logger.Warn("failed to remove photo files", zap.Error(err), zap.String("filename", photo.Filename))
		}
	}
	s.discard(unsaved)
}

func (s *photoService) discard(assets []*media.Asset) {
	for _, asset := range assets {
		if err := s.pipeline.Remove(asset.Filename); err != nil {
			s.logger.Warn("failed to remove photo files", zap.Error(err), zap.String("filename", asset.Filename))
		}
	}
}

func (s *photoService) toResponse(photo models.Photo) models.PhotoResponse {
	return models.PhotoResponse{Photo: photo, URLs: mediaURLs(s.pipeline, photo.Filename)}
}

func validateResource(resourceType string, resourceID int64) error {
	v := validationErrors{}
	if strings.TrimSpace(resourceType) == "" {
		v.add("resource_type", "is required")
	}
	validateLength(v, "resource_type", resourceType, maxResourceTypeLength)
	if resourceID <= 0 {
		v.add("resource_id", "must be a positive integer")
	}
	return v.err()
}
