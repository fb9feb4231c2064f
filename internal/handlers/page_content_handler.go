package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sitepanel/backend/internal/models"
	"github.com/sitepanel/backend/internal/ordering"
	"github.com/sitepanel/backend/internal/services"
	"go.uber.org/zap"
)

// PageContentService is the interface that wraps methods for page section business logic.
type PageContentService interface {
	// Method List retrieve the sections of a page sorted by list order.
	//
	// A "page not found" error is returned when the page does not exist.
	List(ctx context.Context, pageID int64) ([]models.PageContentResponse, error)
	// Method Get retrieve one section of a page.
	//
	// A "page content not found" error is returned when the section does not exist or belongs to another page.
	Get(ctx context.Context, pageID, id int64) (*models.PageContentResponse, error)
	// Method Create appends a section to the page.
	//
	// "file" is optional; when set it is stored through the media pipeline before the section is inserted.
	// A *services.ValidationError is returned for invalid input.
	Create(ctx context.Context, pageID int64, req *models.PageContentRequest, file *services.MediaFile) (*models.PageContentResponse, error)
	// Method Update rewrites heading and content of a section and replaces its media when "file" is set.
	//
	// Please reference Create method for more information about parameters and error values.
	Update(ctx context.Context, pageID, id int64, req *models.PageContentRequest, file *services.MediaFile) (*models.PageContentResponse, error)
	// Method Delete deletes a section. With "purge" its media files are removed too.
	Delete(ctx context.Context, pageID, id int64, purge bool) error
	// Method RemoveMedia clears the media reference of a section. With "purge" the files are removed too.
	RemoveMedia(ctx context.Context, pageID, id int64, purge bool) error
}

// PageContentHandler handles HTTP requests for page sections
type PageContentHandler struct {
	BaseHandler
	service PageContentService
	orders  OrderService
}

// NewPageContentHandler creates a new page section handler
func NewPageContentHandler(svc PageContentService, orders OrderService, logger *zap.Logger) *PageContentHandler {
	return &PageContentHandler{
		service:     svc,
		orders:      orders,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all page section routes
// Note: This assumes the router is already scoped to /api/v1/admin
func (h *PageContentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/pages/{pageID}/sections", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Post("/order", h.Reorder)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Delete("/{id}/media", h.RemoveMedia)
	})
}

// List handles GET /api/v1/admin/pages/{pageID}/sections
// @Summary List page sections
// @Description Get all sections of a page sorted by list order
// @Tags page-sections
// @Produce json
// @Param pageID path int true "Page ID"
// @Success 200 {array} models.PageContentResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/admin/pages/{pageID}/sections [get]
func (h *PageContentHandler) List(w http.ResponseWriter, r *http.Request) {
	pageID, ok := pathID(r, "pageID")
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid page id")
		return
	}

	contents, err := h.service.List(r.Context(), pageID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get page sections")
		return
	}

	h.RespondJSON(w, http.StatusOK, contents)
}

// Get handles GET /api/v1/admin/pages/{pageID}/sections/{id}
// @Summary Get page section
// @Description Get one section of a page
// @Tags page-sections
// @Produce json
// @Param pageID path int true "Page ID"
// @Param id path int true "Section ID"
// @Success 200 {object} models.PageContentResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/admin/pages/{pageID}/sections/{id} [get]
func (h *PageContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	pageID, id, ok := h.sectionIDs(w, r)
	if !ok {
		return
	}

	content, err := h.service.Get(r.Context(), pageID, id)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get page section")
		return
	}

	h.RespondJSON(w, http.StatusOK, content)
}

// Create handles POST /api/v1/admin/pages/{pageID}/sections
// @Summary Create page section
// @Description Append a section to a page. An optional image is stored as original, large and thumbnail.
// @Tags page-sections
// @Accept multipart/form-data
// @Produce json
// @Param pageID path int true "Page ID"
// @Param heading formData string false "Heading"
// @Param content formData string false "Content"
// @Param media formData file false "Image"
// @Success 201 {object} models.PageContentResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} handlers.ValidationResponse
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/admin/pages/{pageID}/sections [post]
func (h *PageContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	pageID, ok := pathID(r, "pageID")
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid page id")
		return
	}

	req, file, closeFile, ok := h.readSection(w, r)
	if !ok {
		return
	}
	defer closeFile()

	content, err := h.service.Create(r.Context(), pageID, req, file)
	if err != nil {
		h.RespondServiceError(w, err, "failed to create page section")
		return
	}

	h.RespondJSON(w, http.StatusCreated, content)
}

// Update handles PUT /api/v1/admin/pages/{pageID}/sections/{id}
// @Summary Update page section
// @Description Update heading and content of a section. A new image replaces the current media reference.
// @Tags page-sections
// @Accept multipart/form-data
// @Produce json
// @Param pageID path int true "Page ID"
// @Param id path int true "Section ID"
// @Param heading formData string false "Heading"
// @Param content formData string false "Content"
// @Param media formData file false "Image"
// @Success 200 {object} models.PageContentResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} handlers.ValidationResponse
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/admin/pages/{pageID}/sections/{id} [put]
func (h *PageContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	pageID, id, ok := h.sectionIDs(w, r)
	if !ok {
		return
	}

	req, file, closeFile, ok := h.readSection(w, r)
	if !ok {
		return
	}
	defer closeFile()

	content, err := h.service.Update(r.Context(), pageID, id, req, file)
	if err != nil {
		h.RespondServiceError(w, err, "failed to update page section")
		return
	}

	h.RespondJSON(w, http.StatusOK, content)
}

// Delete handles DELETE /api/v1/admin/pages/{pageID}/sections/{id}
// @Summary Delete page section
// @Description Delete a section. Media files are kept unless purge is set.
// @Tags page-sections
// @Param pageID path int true "Page ID"
// @Param id path int true "Section ID"
// @Param purge query bool false "Remove media files"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/admin/pages/{pageID}/sections/{id} [delete]
func (h *PageContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	pageID, id, ok := h.sectionIDs(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), pageID, id, queryBool(r, "purge")); err != nil {
		h.RespondServiceError(w, err, "failed to delete page section")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveMedia handles DELETE /api/v1/admin/pages/{pageID}/sections/{id}/media
// @Summary Remove section media
// @Description Clear the media reference of a section. Files are kept unless purge is set.
// @Tags page-sections
// @Param pageID path int true "Page ID"
// @Param id path int true "Section ID"
// @Param purge query bool false "Remove media files"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/admin/pages/{pageID}/sections/{id}/media [delete]
func (h *PageContentHandler) RemoveMedia(w http.ResponseWriter, r *http.Request) {
	pageID, id, ok := h.sectionIDs(w, r)
	if !ok {
		return
	}

	if err := h.service.RemoveMedia(r.Context(), pageID, id, queryBool(r, "purge")); err != nil {
		h.RespondServiceError(w, err, "failed to remove section media")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reorder handles POST /api/v1/admin/pages/{pageID}/sections/order
// @Summary Reorder page sections
// @Description Give every listed section the rank of its position. Unknown ids are skipped.
// @Tags page-sections
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param pageID path int true "Page ID"
// @Param list formData string true "JSON list such as [{\"id\":5},{\"id\":2}]"
// @Success 200 {object} models.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/admin/pages/{pageID}/sections/order [post]
func (h *PageContentHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	pageID, ok := pathID(r, "pageID")
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid page id")
		return
	}

	reorder(&h.BaseHandler, h.orders, w, r, ordering.PageSections, ordering.Scope{"page_id": pageID})
}

func (h *PageContentHandler) sectionIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	pageID, ok := pathID(r, "pageID")
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid page id")
		return 0, 0, false
	}
	id, ok := pathID(r, "id")
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid section id")
		return 0, 0, false
	}
	return pageID, id, true
}

// readSection reads heading, content and the optional media file of a section form.
// The returned func closes the uploaded file.
func (h *PageContentHandler) readSection(w http.ResponseWriter, r *http.Request) (*models.PageContentRequest, *services.MediaFile, func(), bool) {
	if err := parseForm(r); err != nil {
		h.Logger.Info("failed to parse section form", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "failed to parse request")
		return nil, nil, nil, false
	}

	req := &models.PageContentRequest{
		Heading: r.FormValue("heading"),
		Content: r.FormValue("content"),
	}

	file, header, err := formFile(r, "media")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "failed to read media file")
		return nil, nil, nil, false
	}
	if file == nil {
		return req, nil, func() {}, true
	}

	return req, &services.MediaFile{Reader: file, Filename: header.Filename, Size: header.Size}, func() { file.Close() }, true
}

// parseForm parses a multipart or url-encoded body
func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxMemory)
	}
	return r.ParseForm()
}

// formFile returns the uploaded file of a form field, or nil when the field is absent
func formFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return file, header, nil
}
