// Package draft tracks an edge while it is being dragged out of a node's
// output port, and decides which input port the edge would snap to.
//
// A session is idle until Begin, drafting until End or Cancel. Only End
// touches the graph, and only when the pointer is over a connectable
// port; the session is idle again afterwards whatever the outcome.
package draft

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"graphedit/internal/domain"
)

// DefaultSnapDistance is the snapping radius used when none is configured
const DefaultSnapDistance = 40.0

// Graph is the part of the edit store a session reads and writes
type Graph interface {
	Nodes() []domain.Node
	Bound(target domain.Endpoint) bool
	AddEdge(source, target domain.Endpoint) error
}

// Candidate is the input port nearest the pointer
type Candidate struct {
	Target   domain.Endpoint `json:"target"`
	Distance float64         `json:"distance"`
}

// State is a read-only view of a session
type State struct {
	Active      bool            `json:"active"`
	Source      domain.Endpoint `json:"source"`
	Pointer     domain.Position `json:"pointer"`
	Nearest     *Candidate      `json:"nearest,omitempty"`
	Connectable bool            `json:"connectable"`
}

// Session is one edge-drafting interaction
type Session struct {
	mu     sync.Mutex
	graph  Graph
	snap   float64
	logger *zap.Logger
	state  State
}

// New creates an idle session over graph. A non-positive snap distance
// selects DefaultSnapDistance.
func New(graph Graph, snap float64, logger *zap.Logger) *Session {
	if snap <= 0 {
		snap = DefaultSnapDistance
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{graph: graph, snap: snap, logger: logger}
}

// Begin starts drafting from source
func (s *Session) Begin(source domain.Endpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Active {
		return domain.ErrDraftActive
	}
	src, ok := findNode(s.graph.Nodes(), source.NodeID)
	if !ok {
		return fmt.Errorf("begin draft from %s: %w", source, domain.ErrNodeNotFound)
	}
	s.state = State{
		Active:  true,
		Source:  source,
		Pointer: src.OutputAnchor(source.Port),
	}
	return nil
}

// Update moves the pointer and recomputes the snapping candidate
func (s *Session) Update(pointer domain.Position) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Active {
		return State{}, domain.ErrNotDrafting
	}
	s.state.Pointer = pointer
	s.state.Nearest = Nearest(s.graph.Nodes(), pointer, s.snap)
	s.state.Connectable = s.state.Nearest != nil &&
		s.state.Nearest.Target.NodeID != s.state.Source.NodeID &&
		!s.graph.Bound(s.state.Nearest.Target)
	return s.state, nil
}

// End finishes the draft. When the pointer is over a connectable port the
// edge is added and the store's outcome returned; otherwise nothing
// changes. The session is idle afterwards either way.
func (s *Session) End() (added bool, err error) {
	s.mu.Lock()
	if !s.state.Active {
		s.mu.Unlock()
		return false, domain.ErrNotDrafting
	}
	st := s.state
	s.state = State{}
	s.mu.Unlock()

	if !st.Connectable {
		return false, nil
	}
	// The store notifies its listeners before AddEdge returns, so the
	// session lock must not be held here.
	if err := s.graph.AddEdge(st.Source, st.Nearest.Target); err != nil {
		s.logger.Debug("drafted edge rejected", zap.Stringer("source", st.Source), zap.Stringer("target", st.Nearest.Target), zap.Error(err))
		return false, err
	}
	return true, nil
}

// Cancel abandons the draft without touching the graph
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
}

// State returns the current session state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.Nearest != nil {
		c := *st.Nearest
		st.Nearest = &c
	}
	return st
}

// Nearest returns the input port closest to pointer within radius, or nil.
// Ties go to the earlier node, then the earlier port.
func Nearest(nodes []domain.Node, pointer domain.Position, radius float64) *Candidate {
	var best *Candidate
	for i := range nodes {
		n := &nodes[i]
		for _, port := range n.Inputs {
			d := n.InputAnchor(port).Distance(pointer)
			if d > radius {
				continue
			}
			if best == nil || d < best.Distance {
				best = &Candidate{Target: domain.NewEndpoint(n.ID, port), Distance: d}
			}
		}
	}
	return best
}

func findNode(nodes []domain.Node, id string) (*domain.Node, bool) {
	for i := range nodes {
		if nodes[i].ID == id {
			return &nodes[i], true
		}
	}
	return nil, false
}
