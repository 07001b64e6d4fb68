package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"graphedit/internal/converter"
	"graphedit/internal/domain"
)

// idPrefix marks IDs allocated by the store
const idPrefix = "node_"

// LoadData replaces the graph with a graph description. A watermark in the
// description's metadata moves the ID counter forward before validation,
// so descriptions written by this editor always reload.
func (s *Store) LoadData(g *domain.GraphData) error {
	return s.loadData(g, false)
}

// ReplaceData clears the graph and loads g in one step. The cleared graph
// and the loaded graph are separate snapshots, so one Undo returns to the
// empty graph. A rejected description leaves the graph and its history,
// redo tail included, untouched.
func (s *Store) ReplaceData(g *domain.GraphData) error {
	return s.loadData(g, true)
}

func (s *Store) loadData(g *domain.GraphData, reset bool) error {
	gui, err := converter.ToGUI(g)
	if err != nil {
		s.logger.Warn("rejected graph description", zap.Error(err))
		return err
	}
	watermark := 0
	if g.Metadata != nil {
		watermark = g.Metadata.NextID
	}
	return s.initData(gui, watermark, reset)
}

// InitData replaces the graph wholesale and pushes exactly one snapshot.
// Invalid data leaves the store untouched and returns ErrMalformedData
// listing every problem found.
func (s *Store) InitData(data domain.GUIData) error {
	return s.initData(data, 0, false)
}

func (s *Store) initData(data domain.GUIData, watermark int, reset bool) error {
	s.mu.Lock()
	counter := max(s.nextID, watermark)
	if err := validate(&data, counter); err != nil {
		s.mu.Unlock()
		s.logger.Warn("rejected graph data", zap.Error(err))
		return err
	}

	data = clone(data)
	if data.Nodes == nil {
		data.Nodes = []domain.Node{}
	}
	if data.Edges == nil {
		data.Edges = []domain.Edge{}
	}
	for i := range data.Nodes {
		s.applyProfile(&data.Nodes[i])
	}
	data.SyncMembers()

	if reset {
		s.current = emptyGraph()
		s.push()
	}
	s.nextID = counter
	s.current = data
	s.push()
	change, listeners := s.changeLocked(ChangeLoaded, "")
	s.mu.Unlock()

	s.logger.Debug("graph loaded", zap.Int("nodes", len(data.Nodes)), zap.Int("edges", len(data.Edges)), zap.Bool("reset", reset))
	notify(listeners, change)
	return nil
}

// validate checks the structural invariants of bulk data. IDs in the
// store's own node_<n> namespace at or past counter would collide with
// future allocations and are rejected.
func validate(g *domain.GUIData, counter int) error {
	var errs *multierror.Error
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		switch {
		case n.ID == "":
			errs = multierror.Append(errs, errors.New("node with empty id"))
			continue
		case ids[n.ID]:
			errs = multierror.Append(errs, fmt.Errorf("node %q: duplicate id", n.ID))
			continue
		}
		ids[n.ID] = true
		if k, ok := reservedIndex(n.ID); ok && k >= counter {
			errs = multierror.Append(errs, fmt.Errorf("node %q: id collides with allocated ids", n.ID))
		}
		if !domain.ValidKey(n.Key()) {
			errs = multierror.Append(errs, fmt.Errorf("node %q: invalid name %q", n.ID, n.Key()))
		}
	}

	groups := make(map[string]bool, len(g.Loops.Groups))
	for _, grp := range g.Loops.Groups {
		switch {
		case !ids[grp.ID]:
			errs = multierror.Append(errs, fmt.Errorf("loop group %q: no such node", grp.ID))
		case groups[grp.ID]:
			errs = multierror.Append(errs, fmt.Errorf("loop group %q: duplicate", grp.ID))
		}
		groups[grp.ID] = true
	}

	names := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.LoopID != "" && !groups[n.LoopID] {
			errs = multierror.Append(errs, fmt.Errorf("node %q: loop group %q not found", n.ID, n.LoopID))
		}
		if n.LoopID == n.ID || g.IsAncestor(n.ID, n.ID) {
			errs = multierror.Append(errs, fmt.Errorf("node %q: nested inside itself", n.ID))
		}
		scoped := n.LoopID + "\x00" + n.Key()
		if names[scoped] {
			errs = multierror.Append(errs, fmt.Errorf("node %q: name %q already used in scope", n.ID, n.Key()))
		}
		names[scoped] = true
	}

	bound := make(map[domain.Endpoint]bool, len(g.Edges))
	for _, e := range g.Edges {
		src, srcOK := g.Node(e.Source.NodeID)
		dst, dstOK := g.Node(e.Target.NodeID)
		switch {
		case !srcOK || !dstOK:
			errs = multierror.Append(errs, fmt.Errorf("edge %s: missing endpoint", e))
		case e.Target.Port == "":
			errs = multierror.Append(errs, fmt.Errorf("edge %s: empty target port", e))
		case src.LoopID != dst.LoopID:
			errs = multierror.Append(errs, fmt.Errorf("edge %s: endpoints in different loop scopes", e))
		case bound[e.Target]:
			errs = multierror.Append(errs, fmt.Errorf("edge %s: port already bound", e))
		default:
			if _, ok := dst.Literals.Get(e.Target.Port); ok {
				errs = multierror.Append(errs, fmt.Errorf("edge %s: port already bound to a literal", e))
			}
		}
		bound[e.Target] = true
	}

	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMalformedData, err)
	}
	return nil
}

// watermarkOf returns the lowest counter value that cannot collide with
// any node once g is written out and read back. Reloaded nodes take their
// key path as ID, so root-level keys count as well as IDs.
func watermarkOf(g *domain.GUIData, next int) int {
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if k, ok := reservedIndex(n.ID); ok && k >= next {
			next = k + 1
		}
		if n.LoopID != "" {
			continue
		}
		if k, ok := reservedIndex(n.Key()); ok && k >= next {
			next = k + 1
		}
	}
	return next
}

// reservedIndex returns n for IDs of the form node_<n>
func reservedIndex(id string) (int, bool) {
	digits, ok := strings.CutPrefix(id, idPrefix)
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 || strconv.Itoa(n) != digits {
		return 0, false
	}
	return n, true
}
