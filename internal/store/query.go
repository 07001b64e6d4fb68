package store

import (
	"graphedit/internal/converter"
	"graphedit/internal/domain"
)

// State returns a copy of the current graph
func (s *Store) State() domain.GUIData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.current)
}

// Nodes returns a copy of the node list in insertion order
func (s *Store) Nodes() []domain.Node {
	return s.State().Nodes
}

// Edges returns a copy of the edge list
func (s *Store) Edges() []domain.Edge {
	return s.State().Edges
}

// Loops returns a copy of the loop settings
func (s *Store) Loops() domain.Loops {
	return s.State().Loops
}

// Node returns a copy of one node
func (s *Store) Node(id string) (domain.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.current.Node(id)
	if !ok {
		return domain.Node{}, false
	}
	return copyValue(*n), true
}

// Bound reports whether target has an edge or literal bound
func (s *Store) Bound(target domain.Endpoint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.IsBound(target)
}

// Snapshot is the current graph together with its history flags, read
// under one lock
type Snapshot struct {
	Graph    domain.GUIData
	Undoable bool
	Redoable bool
}

// Snapshot returns a copy of the current graph and its undo/redo flags
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Graph:    clone(s.current),
		Undoable: s.cursor > 0,
		Redoable: s.cursor < len(s.history)-1,
	}
}

// ToGraphData converts the current graph into a graph description. The
// ID counter, raised past any node_<n> key the description will carry, is
// written to the metadata so that reloading the description never
// reissues an ID.
func (s *Store) ToGraphData() (*domain.GraphData, converter.Report) {
	s.mu.Lock()
	state := clone(s.current)
	next := watermarkOf(&state, s.nextID)
	s.mu.Unlock()

	g, report := converter.ToGraphData(state)
	if g.Metadata == nil {
		g.Metadata = &domain.Metadata{}
	}
	g.Metadata.NextID = next
	return g, report
}
