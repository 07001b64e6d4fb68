package store

import (
	"fmt"

	"graphedit/internal/domain"
)

// AddEdge connects source to target. Nothing changes when an endpoint is
// missing, the edge would join a port to itself, the target port is
// already bound, or the endpoints live in different loop scopes. A target
// port the node does not list yet is appended to its inputs.
func (s *Store) AddEdge(source, target domain.Endpoint) error {
	return s.mutate(ChangeEdgeAdded, target.NodeID, func(g *domain.GUIData) error {
		if err := checkEdge(g, source, target); err != nil {
			return err
		}
		src, _ := g.Node(source.NodeID)
		dst, _ := g.Node(target.NodeID)
		src.EnsureOutput(source.Port)
		dst.EnsureInput(target.Port)
		g.Edges = append(g.Edges, domain.NewEdge(source, target))
		return nil
	})
}

func checkEdge(g *domain.GUIData, source, target domain.Endpoint) error {
	edge := domain.NewEdge(source, target)
	src, ok := g.Node(source.NodeID)
	if !ok {
		return fmt.Errorf("add edge %s: source: %w", edge, domain.ErrNodeNotFound)
	}
	dst, ok := g.Node(target.NodeID)
	if !ok {
		return fmt.Errorf("add edge %s: target: %w", edge, domain.ErrNodeNotFound)
	}
	if target.Port == "" {
		return fmt.Errorf("add edge %s: empty target port: %w", edge, domain.ErrInvalidName)
	}
	if source == target {
		return fmt.Errorf("add edge %s: %w", edge, domain.ErrSelfLoop)
	}
	if g.IsBound(target) {
		return fmt.Errorf("add edge %s: %w", edge, domain.ErrPortBound)
	}
	if src.LoopID != dst.LoopID {
		return fmt.Errorf("add edge %s: %w", edge, domain.ErrCrossLoop)
	}
	return nil
}

// RemoveEdge clears whatever is bound to target, edge or literal. The port
// stays on the node.
func (s *Store) RemoveEdge(target domain.Endpoint) error {
	return s.mutate(ChangeEdgeRemoved, target.NodeID, func(g *domain.GUIData) error {
		if i := g.EdgeInto(target); i >= 0 {
			g.Edges = append(g.Edges[:i], g.Edges[i+1:]...)
			return nil
		}
		if n, ok := g.Node(target.NodeID); ok && n.Literals.Delete(target.Port) {
			return nil
		}
		return fmt.Errorf("remove binding of %s: %w", target, domain.ErrNotBound)
	})
}

// RemoveEdgeAt removes the edge at index i of the edge list
func (s *Store) RemoveEdgeAt(i int) error {
	return s.mutate(ChangeEdgeRemoved, "", func(g *domain.GUIData) error {
		if i < 0 || i >= len(g.Edges) {
			return fmt.Errorf("remove edge %d: %w", i, domain.ErrNotBound)
		}
		g.Edges = append(g.Edges[:i], g.Edges[i+1:]...)
		return nil
	})
}

// SetLiteral binds a literal value to an input port, replacing any earlier
// literal. A port already bound by an edge is left alone.
func (s *Store) SetLiteral(target domain.Endpoint, value any) error {
	return s.mutate(ChangeNodeUpdated, target.NodeID, func(g *domain.GUIData) error {
		n, ok := g.Node(target.NodeID)
		if !ok {
			return fmt.Errorf("set literal on %s: %w", target, domain.ErrNodeNotFound)
		}
		if target.Port == "" {
			return fmt.Errorf("set literal on %s: empty port: %w", target, domain.ErrInvalidName)
		}
		if g.EdgeInto(target) >= 0 {
			return fmt.Errorf("set literal on %s: %w", target, domain.ErrPortBound)
		}
		n.EnsureInput(target.Port)
		n.Literals.Set(target.Port, copyValue(value))
		return nil
	})
}
