package handler

import "net/http"

// DraftBeginRequest starts dragging an edge out of an output port
type DraftBeginRequest struct {
	Source EndpointRequest `json:"source"`
}

// GetDraft returns the drafting session state
func (h *EditorHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.DraftState(), http.StatusOK)
}

// BeginDraft starts an edge draft
func (h *EditorHandler) BeginDraft(w http.ResponseWriter, r *http.Request) {
	var req DraftBeginRequest
	if !h.decode(w, r, &req) {
		return
	}
	st, err := h.svc.BeginDraft(req.Source.endpoint())
	if err != nil {
		h.fail(w, r, "Failed to begin draft", err)
		return
	}
	h.writeJSON(w, st, http.StatusCreated)
}

// UpdateDraft moves the loose end of the drafted edge
func (h *EditorHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if !h.decode(w, r, &req) {
		return
	}
	st, err := h.svc.UpdateDraft(req.position())
	if err != nil {
		h.fail(w, r, "Failed to update draft", err)
		return
	}
	h.writeJSON(w, st, http.StatusOK)
}

// EndDraft drops the drafted edge
func (h *EditorHandler) EndDraft(w http.ResponseWriter, r *http.Request) {
	added, err := h.svc.EndDraft()
	if err != nil {
		h.fail(w, r, "Failed to connect", err)
		return
	}
	h.writeJSON(w, map[string]any{"added": added, "graph": h.svc.State()}, http.StatusOK)
}

// CancelDraft abandons the drafted edge
func (h *EditorHandler) CancelDraft(w http.ResponseWriter, r *http.Request) {
	h.svc.CancelDraft()
	w.WriteHeader(http.StatusNoContent)
}
