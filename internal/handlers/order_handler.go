package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sitepanel/backend/internal/auth"
	"github.com/sitepanel/backend/internal/models"
	"github.com/sitepanel/backend/internal/ordering"
	"go.uber.org/zap"
)

// OrderService is the interface that wraps the reorder of ranked collections.
type OrderService interface {
	// Method Reorder decodes "list" (for example [{"id":5},{"id":2}]) and gives every listed item
	// the rank of its position inside "target".
	//
	// ordering.ErrMalformedPayload is returned, before anything is written, when "list" cannot be decoded.
	Reorder(ctx context.Context, target ordering.Target, scope ordering.Scope, list []byte) (*ordering.Result, error)
}

// OrderHandler handles reorder requests of the ranked collections without a handler of their own
type OrderHandler struct {
	BaseHandler
	service OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(svc OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service:     svc,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all reorder routes
// Note: This assumes the router is already scoped to /api/v1/admin
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/banners/order", h.Banners)
	r.Post("/pages/order", h.Pages)
	r.Post("/pages/order/{type}", h.Pages)
	r.Post("/navigations/order", h.Navigations)
	r.Post("/photos/order", h.Photos)
	r.Post("/videos/order", h.Videos)
}

// Banners handles POST /api/v1/admin/banners/order
// @Summary Reorder banners
// @Tags order
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param list formData string true "JSON list such as [{\"id\":5},{\"id\":2}]"
// @Success 200 {object} models.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/admin/banners/order [post]
func (h *OrderHandler) Banners(w http.ResponseWriter, r *http.Request) {
	reorder(&h.BaseHandler, h.service, w, r, ordering.Banners, nil)
}

// Pages handles POST /api/v1/admin/pages/order and /api/v1/admin/pages/order/{type}
// @Summary Reorder pages
// @Description Reorder pages, optionally restricted to one page type
// @Tags order
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param type path string false "Page type"
// @Param list formData string true "JSON list such as [{\"id\":5},{\"id\":2}]"
// @Success 200 {object} models.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/admin/pages/order/{type} [post]
func (h *OrderHandler) Pages(w http.ResponseWriter, r *http.Request) {
	scope := ordering.Scope{}
	if pageType := chi.URLParam(r, "type"); pageType != "" {
		scope["type"] = pageType
	}
	reorder(&h.BaseHandler, h.service, w, r, ordering.Pages, scope)
}

// Navigations handles POST /api/v1/admin/navigations/order
// @Summary Reorder navigation items
// @Tags order
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param parent_id query int false "Parent navigation ID"
// @Param list formData string true "JSON list such as [{\"id\":5},{\"id\":2}]"
// @Success 200 {object} models.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/admin/navigations/order [post]
func (h *OrderHandler) Navigations(w http.ResponseWriter, r *http.Request) {
	scope := ordering.Scope{}
	if raw := r.URL.Query().Get("parent_id"); raw != "" {
		parentID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parentID < 0 {
			h.RespondError(w, http.StatusBadRequest, "invalid parent_id parameter")
			return
		}
		scope["parent_id"] = parentID
	}
	reorder(&h.BaseHandler, h.service, w, r, ordering.Navigations, scope)
}

// Photos handles POST /api/v1/admin/photos/order
// @Summary Reorder photos of a gallery
// @Tags order
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param resource_type query string false "Owner type"
// @Param resource_id query int false "Owner ID"
// @Param list formData string true "JSON list such as [{\"id\":5},{\"id\":2}]"
// @Success 200 {object} models.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/admin/photos/order [post]
func (h *OrderHandler) Photos(w http.ResponseWriter, r *http.Request) {
	scope, err := resourceScope(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	reorder(&h.BaseHandler, h.service, w, r, ordering.Photos, scope)
}

// Videos handles POST /api/v1/admin/videos/order
// @Summary Reorder videos of a gallery
// @Tags order
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param resource_type query string false "Owner type"
// @Param resource_id query int false "Owner ID"
// @Param list formData string true "JSON list such as [{\"id\":5},{\"id\":2}]"
// @Success 200 {object} models.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/admin/videos/order [post]
func (h *OrderHandler) Videos(w http.ResponseWriter, r *http.Request) {
	scope, err := resourceScope(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	reorder(&h.BaseHandler, h.service, w, r, ordering.Videos, scope)
}

// reorder reads the submitted list and applies it to target
func reorder(h *BaseHandler, svc OrderService, w http.ResponseWriter, r *http.Request, target ordering.Target, scope ordering.Scope) {
	list, err := readOrderList(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := svc.Reorder(r.Context(), target, scope, list)
	if err != nil {
		if errors.Is(err, ordering.ErrMalformedPayload) {
			h.RespondError(w, http.StatusBadRequest, "invalid list")
			return
		}
		h.Logger.Error("failed to reorder items", zap.Error(err), zap.String("target", target.Name))
		h.RespondError(w, http.StatusInternalServerError, "failed to reorder items")
		return
	}

	userID, _ := auth.GetUserID(r.Context())
	h.Logger.Info("items reordered",
		zap.String("target", target.Name),
		zap.Int("user_id", userID),
		zap.Int("ranked", len(result.Ranked)),
		zap.Int64s("skipped", result.Skipped),
	)
	h.RespondJSON(w, http.StatusOK, models.OrderResponse{Result: models.OrderResultSuccess})
}

// readOrderList returns the raw "list" value of a form or JSON body.
// In a JSON body the list may be an array or a string holding one.
func readOrderList(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body")
		}
		var req struct {
			List json.RawMessage `json:"list"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, fmt.Errorf("invalid request body")
		}
		var s string
		if json.Unmarshal(req.List, &s) == nil {
			return []byte(s), nil
		}
		return req.List, nil
	}

	if err := parseForm(r); err != nil {
		return nil, fmt.Errorf("failed to parse request")
	}
	return []byte(r.FormValue("list")), nil
}

// resourceScope reads the resource_type and resource_id query parameters of a gallery
func resourceScope(r *http.Request) (ordering.Scope, error) {
	scope := ordering.Scope{}
	q := r.URL.Query()
	if resourceType := q.Get("resource_type"); resourceType != "" {
		scope["resource_type"] = resourceType
	}
	if raw := q.Get("resource_id"); raw != "" {
		resourceID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || resourceID <= 0 {
			return nil, fmt.Errorf("invalid resource_id parameter")
		}
		scope["resource_id"] = resourceID
	}
	return scope, nil
}
