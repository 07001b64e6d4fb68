package store

import (
	"fmt"

	"go.uber.org/zap"

	"graphedit/internal/domain"
)

// AddNode adds a node running the catalog's default agent and returns its ID
func (s *Store) AddNode(pos domain.Position) string {
	return s.AddAgentNode(s.catalog.Default(), pos)
}

// AddAgentNode adds a node running agent. Its ports and initial params
// come from the agent's catalog profile when there is one.
func (s *Store) AddAgentNode(agent string, pos domain.Position) string {
	id := s.insert(func(id string) domain.Node {
		n := domain.NewComputedNode(id, agent, pos)
		s.applyProfile(&n)
		if p, ok := s.catalog.Lookup(agent); ok && len(p.Params) > 0 {
			n.Params = copyValue(p.Params)
		}
		return n
	})
	s.logger.Debug("node added", zap.String("id", id), zap.String("agent", agent))
	return id
}

// AddStaticNode adds a value node and returns its ID
func (s *Store) AddStaticNode(value any, pos domain.Position) string {
	return s.insert(func(id string) domain.Node {
		return domain.NewStaticNode(id, copyValue(value), pos)
	})
}

func (s *Store) insert(build func(id string) domain.Node) string {
	s.mu.Lock()
	id := s.allocID(&s.current)
	s.current.Nodes = append(s.current.Nodes, build(id))
	s.push()
	change, listeners := s.changeLocked(ChangeNodeAdded, id)
	s.mu.Unlock()

	notify(listeners, change)
	return id
}

// allocID returns the next unused node_<n> ID. The counter only moves
// forward, so an ID is never handed out twice even after its node is gone.
func (s *Store) allocID(g *domain.GUIData) string {
	for {
		id := fmt.Sprintf("%s%d", idPrefix, s.nextID)
		s.nextID++
		if !g.HasNode(id) && !nameTaken(g, "", id, "") {
			return id
		}
	}
}

// applyProfile adds the agent's catalog ports to n
func (s *Store) applyProfile(n *domain.Node) {
	if n.IsStatic() {
		return
	}
	p, ok := s.catalog.Lookup(n.Agent)
	if !ok {
		return
	}
	for _, port := range p.Inputs {
		n.EnsureInput(port)
	}
	for _, port := range p.Outputs {
		n.EnsureOutput(port)
	}
}

// RemoveNode deletes a node and every edge touching it. Removing the
// nesting node of a loop group also removes the group and its members.
func (s *Store) RemoveNode(id string) error {
	return s.mutate(ChangeNodeRemoved, id, func(g *domain.GUIData) error {
		if !g.HasNode(id) {
			return fmt.Errorf("remove %q: %w", id, domain.ErrNodeNotFound)
		}

		gone := map[string]bool{id: true}
		for _, n := range g.Nodes {
			if g.IsAncestor(id, n.ID) {
				gone[n.ID] = true
			}
		}

		nodes := g.Nodes[:0]
		for _, n := range g.Nodes {
			if !gone[n.ID] {
				nodes = append(nodes, n)
			}
		}
		g.Nodes = nodes

		edges := g.Edges[:0]
		for _, e := range g.Edges {
			if !gone[e.Source.NodeID] && !gone[e.Target.NodeID] {
				edges = append(edges, e)
			}
		}
		g.Edges = edges

		groups := g.Loops.Groups[:0]
		for _, grp := range g.Loops.Groups {
			if !gone[grp.ID] {
				groups = append(groups, grp)
			}
		}
		g.Loops.Groups = groups
		return nil
	})
}

// UpdateNodePosition moves a node without recording history. Call
// SaveNodePositionData when the drag ends.
func (s *Store) UpdateNodePosition(id string, pos domain.Position) error {
	s.mu.Lock()
	n, ok := s.current.Node(id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("move %q: %w", id, domain.ErrNodeNotFound)
	}
	if n.Position == pos {
		s.mu.Unlock()
		return nil
	}
	n.Position = pos
	s.dirty = true
	change, listeners := s.changeLocked(ChangeNodeMoved, id)
	s.mu.Unlock()

	notify(listeners, change)
	return nil
}

// SaveNodePositionData commits pending position changes as one snapshot.
// It reports whether a snapshot was pushed.
func (s *Store) SaveNodePositionData() bool {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return false
	}
	s.push()
	change, listeners := s.changeLocked(ChangePositionsSaved, "")
	s.mu.Unlock()

	notify(listeners, change)
	return true
}

// RenameNode changes the key a node is emitted under. Its ID is unchanged.
func (s *Store) RenameNode(id, name string) error {
	return s.mutate(ChangeNodeUpdated, id, func(g *domain.GUIData) error {
		n, ok := g.Node(id)
		if !ok {
			return fmt.Errorf("rename %q: %w", id, domain.ErrNodeNotFound)
		}
		if !domain.ValidKey(name) {
			return fmt.Errorf("rename %q to %q: %w", id, name, domain.ErrInvalidName)
		}
		if n.Key() == name {
			return errNoChange
		}
		if nameTaken(g, n.LoopID, name, id) {
			return fmt.Errorf("rename %q to %q: %w", id, name, domain.ErrNameTaken)
		}
		n.Name = name
		return nil
	})
}

// UpdateStaticValue replaces a node's value
func (s *Store) UpdateStaticValue(id string, value any) error {
	return s.mutate(ChangeNodeUpdated, id, func(g *domain.GUIData) error {
		n, ok := g.Node(id)
		if !ok {
			return fmt.Errorf("update value of %q: %w", id, domain.ErrNodeNotFound)
		}
		n.Value = copyValue(value)
		return nil
	})
}

// UpdateParams replaces a node's params
func (s *Store) UpdateParams(id string, params map[string]any) error {
	return s.mutate(ChangeNodeUpdated, id, func(g *domain.GUIData) error {
		n, ok := g.Node(id)
		if !ok {
			return fmt.Errorf("update params of %q: %w", id, domain.ErrNodeNotFound)
		}
		n.Params = copyValue(params)
		return nil
	})
}

// SetResult marks whether a node's output is part of the graph result
func (s *Store) SetResult(id string, isResult bool) error {
	return s.mutate(ChangeNodeUpdated, id, func(g *domain.GUIData) error {
		n, ok := g.Node(id)
		if !ok {
			return fmt.Errorf("update %q: %w", id, domain.ErrNodeNotFound)
		}
		if n.IsResult == isResult {
			return errNoChange
		}
		n.IsResult = isResult
		return nil
	})
}

// nameTaken reports whether a node other than exceptID uses name in scope
func nameTaken(g *domain.GUIData, scope, name, exceptID string) bool {
	for _, n := range g.InScope(scope) {
		if n.ID != exceptID && n.Key() == name {
			return true
		}
	}
	return false
}
