package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"graphedit/internal/codec"
	"graphedit/internal/domain"
	"graphedit/internal/repository"
	"graphedit/internal/service"
)

// EditorHandler handles editor API requests
type EditorHandler struct {
	svc      *service.EditorService
	logger   *zap.Logger
	validate *validator.Validate
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(svc *service.EditorService, logger *zap.Logger) *EditorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EditorHandler{
		svc:      svc,
		logger:   logger,
		validate: validator.New(),
	}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// statusFor maps an error to its HTTP status code
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrLoopNotFound),
		errors.Is(err, domain.ErrNotBound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPortBound),
		errors.Is(err, domain.ErrSelfLoop),
		errors.Is(err, domain.ErrCrossLoop),
		errors.Is(err, domain.ErrNameTaken),
		errors.Is(err, domain.ErrLoopCycle),
		errors.Is(err, domain.ErrNotUndoable),
		errors.Is(err, domain.ErrNotRedoable),
		errors.Is(err, domain.ErrDraftActive),
		errors.Is(err, domain.ErrNotDrafting):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrMalformedData),
		errors.Is(err, codec.ErrUnsupportedFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with the status it maps to
func (h *EditorHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		h.logger.Debug(msg, zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	h.writeError(w, msg, err.Error(), status)
}

// decode reads a JSON body into req and validates it
func (h *EditorHandler) decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, "Validation error", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// nodeParam returns the unescaped {nodeID} path parameter
func nodeParam(r *http.Request) (string, error) {
	id, err := url.PathUnescape(chi.URLParam(r, "nodeID"))
	if err != nil {
		return "", fmt.Errorf("%w: node ID: %w", domain.ErrInvalidName, err)
	}
	if id == "" {
		return "", fmt.Errorf("%w: node ID is required", domain.ErrInvalidName)
	}
	return id, nil
}

// writeState responds with the editor state after a change
func (h *EditorHandler) writeState(w http.ResponseWriter, statusCode int) {
	h.writeJSON(w, h.svc.State(), statusCode)
}

func (h *EditorHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON", zap.Error(err))
	}
}

func (h *EditorHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		h.logger.Error("failed to encode error response", zap.Error(err))
	}
}
