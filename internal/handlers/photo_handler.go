package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sitepanel/backend/internal/models"
	"github.com/sitepanel/backend/internal/services"
	"go.uber.org/zap"
)

// PhotoService is the interface that wraps methods for gallery business logic.
type PhotoService interface {
	// Method List retrieve the gallery of a resource sorted by list order.
	List(ctx context.Context, resourceType string, resourceID int64) ([]models.PhotoResponse, error)
	// Method Upload stores every file through the media pipeline and appends it to the gallery.
	//
	// Unreadable files are listed in the response or fail the request, depending on the configured policy.
	// A *services.ValidationError is returned for invalid input.
	Upload(ctx context.Context, resourceType string, resourceID int64, files []*services.MediaFile) (*models.UploadPhotosResponse, error)
	// Method UpdateName renames a photo.
	UpdateName(ctx context.Context, id int64, name string) error
	// Method SetCover makes the photo the only cover of its gallery.
	//
	// A "photo not found" error is returned when the photo does not exist.
	SetCover(ctx context.Context, id int64) error
	// Method Delete deletes a photo together with its files.
	Delete(ctx context.Context, id int64) error
}

// PhotoHandler handles HTTP requests for photo galleries
type PhotoHandler struct {
	BaseHandler
	service PhotoService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(svc PhotoService, logger *zap.Logger) *PhotoHandler {
	return &PhotoHandler{
		service:     svc,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all photo routes
// Note: This assumes the router is already scoped to /api/v1/admin
func (h *PhotoHandler) RegisterRoutes(r chi.Router) {
	r.Route("/photos", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/upload", h.Upload)
		r.Patch("/{id}/name", h.UpdateName)
		r.Post("/{id}/cover", h.SetCover)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles GET /api/v1/admin/photos
// @Summary List gallery photos
// @Tags photos
// @Produce json
// @Param resource_type query string true "Owner type"
// @Param resource_id query int true "Owner ID"
// @Success 200 {array} models.PhotoResponse
// @Failure 422 {object} handlers.ValidationResponse
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/admin/photos [get]
func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	resourceType, resourceID := resourceParams(r.URL.Query().Get("resource_type"), r.URL.Query().Get("resource_id"))

	photos, err := h.service.List(r.Context(), resourceType, resourceID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get photos")
		return
	}

	h.RespondJSON(w, http.StatusOK, photos)
}

// Upload handles POST /api/v1/admin/photos/upload
// @Summary Upload gallery photos
// @Description Store every image as original, large and thumbnail and append it to the gallery
// @Tags photos
// @Accept multipart/form-data
// @Produce json
// @Param resource_type formData string true "Owner type"
// @Param resource_id formData int true "Owner ID"
// @Param photos[] formData file true "Images"
// @Success 201 {object} models.UploadPhotosResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} handlers.ValidationResponse
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/admin/photos/upload [post]
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		h.Logger.Info("failed to parse photo upload", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "failed to parse request")
		return
	}

	resourceType, resourceID := resourceParams(r.FormValue("resource_type"), r.FormValue("resource_id"))

	headers := r.MultipartForm.File["photos[]"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["photos"]
	}

	files := make([]*services.MediaFile, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			h.Logger.Error("failed to open uploaded photo", zap.Error(err))
			h.RespondError(w, http.StatusBadRequest, "failed to read photo")
			return
		}
		defer file.Close()
		files = append(files, &services.MediaFile{Reader: file, Filename: header.Filename, Size: header.Size})
	}

	result, err := h.service.Upload(r.Context(), resourceType, resourceID, files)
	if err != nil {
		h.RespondServiceError(w, err, "failed to upload photos")
		return
	}

	h.RespondJSON(w, http.StatusCreated, result)
}

// UpdateName handles PATCH /api/v1/admin/photos/{id}/name
// @Summary Rename photo
// @Tags photos
// @Accept json
// @Produce json
// @Param id path int true "Photo ID"
// @Param request body models.UpdatePhotoNameRequest true "New name"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} handlers.ValidationResponse
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/admin/photos/{id}/name [patch]
func (h *PhotoHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid photo id")
		return
	}

	var req models.UpdatePhotoNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.UpdateName(r.Context(), id, req.Name); err != nil {
		h.RespondServiceError(w, err, "failed to update photo name")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetCover handles POST /api/v1/admin/photos/{id}/cover
// @Summary Make photo the gallery cover
// @Tags photos
// @Param id path int true "Photo ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/admin/photos/{id}/cover [post]
func (h *PhotoHandler) SetCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid photo id")
		return
	}

	if err := h.service.SetCover(r.Context(), id); err != nil {
		h.RespondServiceError(w, err, "failed to set photo cover")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/v1/admin/photos/{id}
// @Summary Delete photo
// @Tags photos
// @Param id path int true "Photo ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/admin/photos/{id} [delete]
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid photo id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.RespondServiceError(w, err, "failed to delete photo")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// resourceParams parses the gallery owner; an invalid id becomes 0 and fails service validation
func resourceParams(resourceType, rawID string) (string, int64) {
	resourceID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		resourceID = 0
	}
	return resourceType, resourceID
}
