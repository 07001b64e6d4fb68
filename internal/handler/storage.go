package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"graphedit/internal/codec"
)

// SaveRequest stores the current graph under a name
type SaveRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

// formatParam returns the ?format= query parameter, defaulting to json
func formatParam(r *http.Request) string {
	if f := r.URL.Query().Get("format"); f != "" {
		return f
	}
	return "json"
}

// Export downloads the current graph description
func (h *EditorHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := formatParam(r)
	var buf bytes.Buffer
	res, err := h.svc.Export(format, &buf)
	if err != nil {
		h.fail(w, r, "Failed to export graph", err)
		return
	}

	w.Header().Set("Content-Type", codec.ContentType(res.Format))
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=graph.%s", res.Format))
	}
	if len(res.Rejected) > 0 {
		w.Header().Set("X-Graph-Rejected", fmt.Sprint(len(res.Rejected)))
	}
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// Import replaces the graph with the description in the request body
func (h *EditorHandler) Import(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Import(formatParam(r), r.Body); err != nil {
		h.fail(w, r, "Failed to import graph", err)
		return
	}
	h.writeState(w, http.StatusOK)
}

// ListSaved returns every saved graph
func (h *EditorHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	saved, err := h.svc.ListSaved(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list saved graphs", err)
		return
	}
	h.writeJSON(w, saved, http.StatusOK)
}

// Save stores the current graph
func (h *EditorHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if !h.decode(w, r, &req) {
		return
	}
	rec, res, err := h.svc.Save(r.Context(), req.Name, req.Description)
	if err != nil {
		h.fail(w, r, "Failed to save graph", err)
		return
	}
	h.writeJSON(w, map[string]any{"saved": rec, "rejected": res.Rejected}, http.StatusCreated)
}

// LoadSaved replaces the graph with a saved one, by ID or name
func (h *EditorHandler) LoadSaved(w http.ResponseWriter, r *http.Request) {
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, "Invalid saved graph ID", err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := h.svc.Load(r.Context(), id); err != nil {
		h.fail(w, r, "Failed to load graph", err)
		return
	}
	h.writeState(w, http.StatusOK)
}

// DeleteSaved removes a saved graph
func (h *EditorHandler) DeleteSaved(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSaved(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "Failed to delete saved graph", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTemplates returns the starter graphs
func (h *EditorHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Templates().All(), http.StatusOK)
}

// ApplyTemplate replaces the graph with a starter graph
func (h *EditorHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ApplyTemplate(chi.URLParam(r, "name")); err != nil {
		h.fail(w, r, "Failed to apply template", err)
		return
	}
	h.writeState(w, http.StatusOK)
}

// ListAgents returns the agent catalog
func (h *EditorHandler) ListAgents(w http.ResponseWriter, r *http.Request) {
	cat := h.svc.Catalog()
	h.writeJSON(w, map[string]any{
		"default":    cat.Default(),
		"categories": cat.Categories(),
		"agents":     cat.All(),
	}, http.StatusOK)
}
