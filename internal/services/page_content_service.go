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
	maxHeadingLength = 191
	maxContentLength = 65535
)

// PageContentRepository is the interface that wraps methods for page_contents table data access
type PageContentRepository interface {
	// Method PageExists reports whether a page with the given ID exists.
	PageExists(ctx context.Context, pageID int64) (bool, error)
	// Method ListByPage retrieve all sections of a page sorted by list order.
	//
	// If some error will occur during data retrieve, the error will be returned together with "nil" value.
	ListByPage(ctx context.Context, pageID int64) ([]models.PageContent, error)
	// Method GetByID retrieve a section by its ID.
	//
	// A "page content not found" error is returned when the section does not exist.
	GetByID(ctx context.Context, id int64) (*models.PageContent, error)
	// Method NextListOrder returns the list order that appends a section to the page.
	NextListOrder(ctx context.Context, pageID int64) (int, error)
	// Method Create inserts a section and sets its ID.
	Create(ctx context.Context, content *models.PageContent) error
	// Method Update writes heading, content and media of a section.
	Update(ctx context.Context, content *models.PageContent) error
	// Method ClearMedia removes the media reference of a section.
	ClearMedia(ctx context.Context, id int64) error
	// Method Delete deletes a section.
	Delete(ctx context.Context, id int64) error
}

type pageContentService struct {
	repo     PageContentRepository
	pipeline MediaPipeline
	opts     MediaOptions
	logger   *zap.Logger
}

// NewPageContentService creates a new page content service
func NewPageContentService(repo PageContentRepository, pipeline MediaPipeline, opts MediaOptions, logger *zap.Logger) *pageContentService {
	return &pageContentService{
		repo:     repo,
		pipeline: pipeline,
		opts:     opts,
		logger:   logger,
	}
}

// List retrieves the sections of a page
func (s *pageContentService) List(ctx context.Context, pageID int64) ([]models.PageContentResponse, error) {
	if err := s.ensurePage(ctx, pageID); err != nil {
		return nil, err
	}

	contents, err := s.repo.ListByPage(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get page contents: %w", err)
	}

	result := make([]models.PageContentResponse, 0, len(contents))
	for _, content := range contents {
		result = append(result, s.toResponse(content))
	}
	return result, nil
}

// Get retrieves one section of a page
func (s *pageContentService) Get(ctx context.Context, pageID, id int64) (*models.PageContentResponse, error) {
	content, err := s.load(ctx, pageID, id)
	if err != nil {
		return nil, err
	}

	response := s.toResponse(*content)
	return &response, nil
}

// Create validates the request, stores the optional media file and appends a new section to the page
func (s *pageContentService) Create(ctx context.Context, pageID int64, req *models.PageContentRequest, file *MediaFile) (*models.PageContentResponse, error) {
	if err := s.validate(req, file); err != nil {
		return nil, err
	}
	if err := s.ensurePage(ctx, pageID); err != nil {
		return nil, err
	}

	asset, err := s.ingest(ctx, file)
	if err != nil {
		return nil, err
	}

	content := &models.PageContent{
		PageID:  pageID,
		Heading: strings.TrimSpace(req.Heading),
		Content: req.Content,
	}
	if asset != nil {
		content.Media = &asset.Filename
	}

	content.ListOrder, err = s.repo.NextListOrder(ctx, pageID)
	if err == nil {
		err = s.repo.Create(ctx, content)
	}
	if err != nil {
		s.discard(asset)
		return nil, fmt.Errorf("failed to create page content: %w", err)
	}

	s.logger.Info("page content created", zap.Int64("page_id", pageID), zap.Int64("id", content.ID))
	return s.Get(ctx, pageID, content.ID)
}

// Update validates the request and rewrites a section. A new media file replaces the
// reference; the files of the previous reference are kept.
func (s *pageContentService) Update(ctx context.Context, pageID, id int64, req *models.PageContentRequest, file *MediaFile) (*models.PageContentResponse, error) {
	if err := s.validate(req, file); err != nil {
		return nil, err
	}

	content, err := s.load(ctx, pageID, id)
	if err != nil {
		return nil, err
	}

	asset, err := s.ingest(ctx, file)
	if err != nil {
		return nil, err
	}

	content.Heading = strings.TrimSpace(req.Heading)
	content.Content = req.Content
	if asset != nil {
		content.Media = &asset.Filename
	}

	if err := s.repo.Update(ctx, content); err != nil {
		s.discard(asset)
		return nil, fmt.Errorf("failed to update page content: %w", err)
	}

	return s.Get(ctx, pageID, id)
}

// Delete deletes a section. With purge, the artifact set of its media is removed as well.
func (s *pageContentService) Delete(ctx context.Context, pageID, id int64, purge bool) error {
	content, err := s.load(ctx, pageID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete page content: %w", err)
	}

	if purge && content.Media != nil {
		s.purge(*content.Media)
	}
	return nil
}

// RemoveMedia clears the media reference of a section. Files are kept unless purge is set.
// Removing the media of a section without media succeeds.
func (s *pageContentService) RemoveMedia(ctx context.Context, pageID, id int64, purge bool) error {
	content, err := s.load(ctx, pageID, id)
	if err != nil {
		return err
	}
	if content.Media == nil {
		return nil
	}

	if err := s.repo.ClearMedia(ctx, id); err != nil {
		return fmt.Errorf("failed to remove page content media: %w", err)
	}

	if purge {
		s.purge(*content.Media)
	}
	return nil
}

func (s *pageContentService) validate(req *models.PageContentRequest, file *MediaFile) error {
	v := validationErrors{}
	validateLength(v, "heading", strings.TrimSpace(req.Heading), maxHeadingLength)
	validateLength(v, "content", req.Content, maxContentLength)
	if file != nil {
		validateMediaFile(v, "media", file, s.opts.MaxUploadBytes)
	}
	return v.err()
}

// ingest stores an optional media file. An unreadable image yields no asset under the
// skip policy and a validation error under the reject policy.
func (s *pageContentService) ingest(ctx context.Context, file *MediaFile) (*media.Asset, error) {
	if file == nil {
		return nil, nil
	}

	asset, err := s.pipeline.Ingest(ctx, media.Upload{Reader: file.Reader, Extension: file.extension()})
	if errors.Is(err, media.ErrImageTooLarge) {
		return nil, &ValidationError{Fields: map[string]string{"media": "image dimensions are too large"}}
	}
	if errors.Is(err, media.ErrUnreadableImage) {
		if s.opts.rejectsUnreadable() {
			return nil, &ValidationError{Fields: map[string]string{"media": "must be an image"}}
		}
		s.logger.Warn("unreadable media skipped", zap.String("filename", file.Filename))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store media: %w", err)
	}
	return asset, nil
}

// load retrieves a section and checks that it belongs to the page
func (s *pageContentService) load(ctx context.Context, pageID, id int64) (*models.PageContent, error) {
	content, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if content.PageID != pageID {
		return nil, fmt.Errorf("page content not found")
	}
	return content, nil
}

func (s *pageContentService) ensurePage(ctx context.Context, pageID int64) error {
	exists, err := s.repo.PageExists(ctx, pageID)
	if err != nil {
		return fmt.Errorf("failed to check page: %w", err)
	}
	if !exists {
		return fmt.Errorf("page not found")
	}
	return nil
}

// discard removes the artifacts of an asset whose record could not be written
func (s *pageContentService) discard(asset *media.Asset) {
	if asset != nil {
		s.purge(asset.Filename)
	}
}

func (s *pageContentService) purge(filename string) {
	if err := s.pipeline.Remove(filename); err != nil {
		s.logger.Warn("failed to remove media files", zap.Error(err), zap.String("filename", filename))
	}
}

func (s *pageContentService) toResponse(content models.PageContent) models.PageContentResponse {
	response := models.PageContentResponse{PageContent: content}
	if content.Media != nil {
		urls := mediaURLs(s.pipeline, *content.Media)
		response.MediaURLs = &urls
	}
	return response
}
