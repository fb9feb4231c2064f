package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sitepanel/backend/internal/services"
	"go.uber.org/zap"
)

// maxMemory is the part of a multipart body kept in memory; the rest spills to temporary files
const maxMemory = 32 << 20

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// ValidationResponse is the body of a 422 response
type ValidationResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// RespondServiceError maps a service error to a response.
// Validation errors become 422, "not found" errors 404 and everything else 500 with fallback as message.
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, err error, fallback string) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		h.RespondJSON(w, http.StatusUnprocessableEntity, ValidationResponse{Error: "validation failed", Fields: ve.Fields})
		return
	}
	if strings.Contains(err.Error(), "not found") {
		h.RespondError(w, http.StatusNotFound, notFoundMessage(err))
		return
	}
	h.Logger.Error(fallback, zap.Error(err))
	h.RespondError(w, http.StatusInternalServerError, fallback)
}

// notFoundMessage returns the innermost "... not found" part of a wrapped error
func notFoundMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	return msg
}

// pathID parses a positive integer URL parameter
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryBool reports whether a query flag is set to a true value
func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
