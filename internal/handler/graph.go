package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"graphedit/internal/domain"
)

// PositionRequest is a canvas point
type PositionRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

func (p PositionRequest) position() domain.Position {
	return domain.NewPosition(*p.X, *p.Y)
}

// CreateNodeRequest adds a node. Static nodes take Value; other nodes run
// Agent, or the catalog's default agent when it is empty.
type CreateNodeRequest struct {
	Static   bool            `json:"static"`
	Agent    string          `json:"agent,omitempty" validate:"excluded_with=Static"`
	Value    any             `json:"value,omitempty"`
	Position PositionRequest `json:"position"`
}

// RenameRequest renames a node
type RenameRequest struct {
	Name string `json:"name" validate:"required"`
}

// ValueRequest replaces a static node's value
type ValueRequest struct {
	Value any `json:"value"`
}

// ParamsRequest replaces a node's params
type ParamsRequest struct {
	Params map[string]any `json:"params"`
}

// ResultRequest marks a node as part of the result
type ResultRequest struct {
	IsResult bool `json:"isResult"`
}

// MoveToLoopRequest moves a node to another loop scope. An empty LoopID
// moves it to the root.
type MoveToLoopRequest struct {
	LoopID string `json:"loopId"`
}

// LoopRequest sets a loop setting. Clear removes it.
type LoopRequest struct {
	While any  `json:"while,omitempty"`
	Count int  `json:"count,omitempty" validate:"min=0"`
	Clear bool `json:"clear,omitempty"`
}

// EndpointRequest names one port
type EndpointRequest struct {
	NodeID string `json:"nodeId" validate:"required"`
	Port   string `json:"port"`
}

func (e EndpointRequest) endpoint() domain.Endpoint {
	return domain.NewEndpoint(e.NodeID, e.Port)
}

// EdgeRequest connects an output to an input port
type EdgeRequest struct {
	Source EndpointRequest `json:"source"`
	Target EndpointRequest `json:"target"`
}

// LiteralRequest binds a literal value to an input port
type LiteralRequest struct {
	Target EndpointRequest `json:"target"`
	Value  any             `json:"value"`
}

// GetGraph returns the editable graph with undo/redo flags
func (h *EditorHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	h.writeState(w, http.StatusOK)
}

// CreateNode adds a node
func (h *EditorHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if !h.decode(w, r, &req) {
		return
	}

	pos := req.Position.position()
	var id string
	switch {
	case req.Static:
		id = h.svc.Store().AddStaticNode(req.Value, pos)
	case req.Agent != "":
		id = h.svc.Store().AddAgentNode(req.Agent, pos)
	default:
		id = h.svc.Store().AddNode(pos)
	}

	node, _ := h.svc.Store().Node(id)
	h.writeJSON(w, node, http.StatusCreated)
}

// GetNode returns a single node
func (h *EditorHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	id, err := nodeParam(r)
	if err != nil {
		h.fail(w, r, "Invalid node ID", err)
		return
	}
	node, ok := h.svc.Store().Node(id)
	if !ok {
		h.fail(w, r, "Not found", domain.ErrNodeNotFound)
		return
	}
	h.writeJSON(w, node, http.StatusOK)
}

// DeleteNode removes a node with its edges and nested nodes
func (h *EditorHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	h.editNode(w, r, "Failed to delete node", func(id string) error {
		return h.svc.Store().RemoveNode(id)
	})
}

// MoveNode updates a node's position during a drag. The move is recorded
// in history by CommitPositions.
func (h *EditorHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.editNode(w, r, "Failed to move node", func(id string) error {
		return h.svc.Store().UpdateNodePosition(id, req.position())
	})
}

// CommitPositions records pending node moves as one history entry
func (h *EditorHandler) CommitPositions(w http.ResponseWriter, r *http.Request) {
	committed := h.svc.Store().SaveNodePositionData()
	h.writeJSON(w, map[string]bool{"committed": committed}, http.StatusOK)
}

// RenameNode changes the key a node is emitted under
func (h *EditorHandler) RenameNode(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.editNode(w, r, "Failed to rename node", func(id string) error {
		return h.svc.Store().RenameNode(id, req.Name)
	})
}

// UpdateValue replaces a static node's value
func (h *EditorHandler) UpdateValue(w http.ResponseWriter, r *http.Request) {
	var req ValueRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.editNode(w, r, "Failed to update value", func(id string) error {
		return h.svc.Store().UpdateStaticValue(id, req.Value)
	})
}

// UpdateParams replaces a node's params
func (h *EditorHandler) UpdateParams(w http.ResponseWriter, r *http.Request) {
	var req ParamsRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.editNode(w, r, "Failed to update params", func(id string) error {
		return h.svc.Store().UpdateParams(id, req.Params)
	})
}

// SetResult marks or unmarks a node as a result
func (h *EditorHandler) SetResult(w http.ResponseWriter, r *http.Request) {
	var req ResultRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.editNode(w, r, "Failed to update node", func(id string) error {
		return h.svc.Store().SetResult(id, req.IsResult)
	})
}

// MoveToLoop moves a node into another loop scope
func (h *EditorHandler) MoveToLoop(w http.ResponseWriter, r *http.Request) {
	var req MoveToLoopRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.editNode(w, r, "Failed to move node", func(id string) error {
		return h.svc.Store().MoveToLoop(id, req.LoopID)
	})
}

// SetNodeLoop sets the loop setting of the graph nested in a node
func (h *EditorHandler) SetNodeLoop(w http.ResponseWriter, r *http.Request) {
	var req LoopRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.editNode(w, r, "Failed to set loop", func(id string) error {
		return h.svc.Store().SetLoop(id, req.spec())
	})
}

// SetRootLoop sets the loop setting of the root graph
func (h *EditorHandler) SetRootLoop(w http.ResponseWriter, r *http.Request) {
	var req LoopRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.Store().SetLoop("", req.spec()); err != nil {
		h.fail(w, r, "Failed to set loop", err)
		return
	}
	h.writeState(w, http.StatusOK)
}

func (req LoopRequest) spec() *domain.LoopSpec {
	if req.Clear {
		return nil
	}
	return &domain.LoopSpec{While: req.While, Count: req.Count}
}

// editNode runs one store edit against the {nodeID} node and responds
// with the new state
func (h *EditorHandler) editNode(w http.ResponseWriter, r *http.Request, msg string, edit func(id string) error) {
	id, err := nodeParam(r)
	if err != nil {
		h.fail(w, r, "Invalid node ID", err)
		return
	}
	if err := edit(id); err != nil {
		h.fail(w, r, msg, err)
		return
	}
	h.writeState(w, http.StatusOK)
}

// ListEdges returns all edges
func (h *EditorHandler) ListEdges(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Store().Edges(), http.StatusOK)
}

// CreateEdge connects two ports
func (h *EditorHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req EdgeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.Store().AddEdge(req.Source.endpoint(), req.Target.endpoint()); err != nil {
		h.fail(w, r, "Failed to create edge", err)
		return
	}
	h.writeState(w, http.StatusCreated)
}

// DeleteEdge removes the edge at the {index} position of the edge list
func (h *EditorHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.writeError(w, "Invalid edge index", err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.svc.Store().RemoveEdgeAt(i); err != nil {
		h.fail(w, r, "Failed to delete edge", err)
		return
	}
	h.writeState(w, http.StatusOK)
}

// SetLiteral binds a literal value to an input port
func (h *EditorHandler) SetLiteral(w http.ResponseWriter, r *http.Request) {
	var req LiteralRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.Store().SetLiteral(req.Target.endpoint(), req.Value); err != nil {
		h.fail(w, r, "Failed to set input", err)
		return
	}
	h.writeState(w, http.StatusOK)
}

// Unbind removes whatever edge or literal is bound to an input port
func (h *EditorHandler) Unbind(w http.ResponseWriter, r *http.Request) {
	var req EndpointRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.Store().RemoveEdge(req.endpoint()); err != nil {
		h.fail(w, r, "Failed to unbind input", err)
		return
	}
	h.writeState(w, http.StatusOK)
}

// Undo steps back one history entry
func (h *EditorHandler) Undo(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Store().Undo(); err != nil {
		h.fail(w, r, "Cannot undo", err)
		return
	}
	h.writeState(w, http.StatusOK)
}

// Redo steps forward one history entry
func (h *EditorHandler) Redo(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Store().Redo(); err != nil {
		h.fail(w, r, "Cannot redo", err)
		return
	}
	h.writeState(w, http.StatusOK)
}

// Reset clears the graph as an undoable edit
func (h *EditorHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.svc.CancelDraft()
	h.svc.Store().Reset()
	h.writeState(w, http.StatusOK)
}
