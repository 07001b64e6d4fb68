package store

import (
	"fmt"

	"graphedit/internal/domain"
)

// SetLoop sets the loop setting of the root graph (empty loopID) or of the
// nested graph held by node loopID, creating that group if needed. A nil
// spec clears the setting.
func (s *Store) SetLoop(loopID string, spec *domain.LoopSpec) error {
	return s.mutate(ChangeLoopUpdated, loopID, func(g *domain.GUIData) error {
		if spec != nil {
			c := *spec
			spec = &c
		}
		if loopID == "" {
			g.Loops.Root = spec
			return nil
		}
		if !g.HasNode(loopID) {
			return fmt.Errorf("set loop of %q: %w", loopID, domain.ErrNodeNotFound)
		}
		if grp, ok := g.Group(loopID); ok {
			grp.Spec = spec
			return nil
		}
		g.Loops.Groups = append(g.Loops.Groups, domain.LoopGroup{ID: loopID, Spec: spec})
		return nil
	})
}

// MoveToLoop moves a node into the loop group loopID, or to the root when
// loopID is empty. Edges that would cross scopes afterwards are dropped.
func (s *Store) MoveToLoop(id, loopID string) error {
	return s.mutate(ChangeLoopUpdated, id, func(g *domain.GUIData) error {
		n, ok := g.Node(id)
		if !ok {
			return fmt.Errorf("move %q: %w", id, domain.ErrNodeNotFound)
		}
		if loopID != "" {
			if _, ok := g.Group(loopID); !ok {
				return fmt.Errorf("move %q into %q: %w", id, loopID, domain.ErrLoopNotFound)
			}
			if loopID == id || g.IsAncestor(id, loopID) {
				return fmt.Errorf("move %q into %q: %w", id, loopID, domain.ErrLoopCycle)
			}
		}
		if n.LoopID == loopID {
			return errNoChange
		}
		if nameTaken(g, loopID, n.Key(), id) {
			return fmt.Errorf("move %q into %q: %w", id, loopID, domain.ErrNameTaken)
		}
		n.LoopID = loopID

		edges := g.Edges[:0]
		for _, e := range g.Edges {
			if e.Touches(id) && g.ScopeOf(e.Source.NodeID) != g.ScopeOf(e.Target.NodeID) {
				continue
			}
			edges = append(edges, e)
		}
		g.Edges = edges
		return nil
	})
}
