package converter

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"graphedit/internal/domain"
)

// Rejection is one node or edge that ToGraphData left out of the
// description. Edge is set for edge rejections, NodeID for node rejections.
type Rejection struct {
	Edge   *domain.Edge
	NodeID string
	Reason string
}

func (r Rejection) Error() string {
	if r.Edge != nil {
		return fmt.Sprintf("edge %s: %s", r.Edge, r.Reason)
	}
	return fmt.Sprintf("node %s: %s", r.NodeID, r.Reason)
}

// Report lists everything ToGraphData could not emit
type Report struct {
	Rejected []Rejection
}

// OK reports whether nothing was rejected
func (r Report) OK() bool {
	return len(r.Rejected) == 0
}

// Err aggregates the rejections, or returns nil
func (r Report) Err() error {
	var errs *multierror.Error
	for _, rej := range r.Rejected {
		errs = multierror.Append(errs, rej)
	}
	return errs.ErrorOrNil()
}

func (r *Report) rejectNode(id, reason string) {
	r.Rejected = append(r.Rejected, Rejection{NodeID: id, Reason: reason})
}

func (r *Report) rejectEdge(e domain.Edge, reason string) {
	r.Rejected = append(r.Rejected, Rejection{Edge: &e, Reason: reason})
}

// ToGraphData converts the editable form back into a graph description.
// Nodes keep their list order within each scope, and inputs are emitted
// in port order. Nodes and edges that cannot be represented are left out
// and listed in the Report.
func ToGraphData(gui domain.GUIData) (*domain.GraphData, Report) {
	b := &graphBuilder{
		gui:      &gui,
		emitted:  make(map[string]bool),
		paths:    make(map[string]string),
		bindings: make(map[string]domain.Ordered[any]),
		groups:   make(map[string]*domain.LoopGroup),
	}
	for i := range gui.Loops.Groups {
		grp := &gui.Loops.Groups[i]
		b.groups[grp.ID] = grp
	}

	b.collect("", "")
	for _, n := range gui.Nodes {
		if !b.emitted[n.ID] {
			b.report.rejectNode(n.ID, "not reachable from the root scope")
		}
	}
	b.bindEdges()

	out := b.build("")
	out.Version = gui.Version
	out.Concurrency = gui.Concurrency
	if gui.Loops.Root != nil {
		spec := *gui.Loops.Root
		out.Loop = &spec
	}
	if len(b.paths) > 0 {
		out.Metadata = &domain.Metadata{Positions: make(map[string]domain.Position, len(b.paths))}
		for id, path := range b.paths {
			n, _ := gui.Node(id)
			out.Metadata.Positions[path] = n.Position
		}
	}
	return out, b.report
}

type graphBuilder struct {
	gui      *domain.GUIData
	groups   map[string]*domain.LoopGroup
	emitted  map[string]bool
	paths    map[string]string
	bindings map[string]domain.Ordered[any]
	report   Report
}

// collect marks the nodes of scope that can be emitted and records their
// key paths, descending into nested groups
func (b *graphBuilder) collect(scope, prefix string) {
	keys := make(map[string]bool)
	for _, n := range b.gui.InScope(scope) {
		key := n.Key()
		switch {
		case b.emitted[n.ID]:
			continue
		case !domain.ValidKey(key):
			b.report.rejectNode(n.ID, fmt.Sprintf("invalid name %q", key))
			b.emitted[n.ID] = true
			continue
		case keys[key]:
			b.report.rejectNode(n.ID, fmt.Sprintf("name %q already used in scope", key))
			b.emitted[n.ID] = true
			continue
		}
		keys[key] = true
		b.emitted[n.ID] = true
		path := domain.JoinPath(prefix, key)
		b.paths[n.ID] = path

		if _, ok := b.groups[n.ID]; ok {
			b.collect(n.ID, path)
		}
	}
}

// bindEdges validates every edge and records the accepted ones as input
// references on their target node
func (b *graphBuilder) bindEdges() {
	for _, e := range b.gui.Edges {
		src, srcOK := b.gui.Node(e.Source.NodeID)
		dst, dstOK := b.gui.Node(e.Target.NodeID)
		_, srcEmitted := b.paths[e.Source.NodeID]
		_, dstEmitted := b.paths[e.Target.NodeID]
		switch {
		case !srcOK || !dstOK:
			b.report.rejectEdge(e, "missing endpoint")
			continue
		case !srcEmitted || !dstEmitted:
			b.report.rejectEdge(e, "endpoint not emitted")
			continue
		case src.LoopID != dst.LoopID:
			b.report.rejectEdge(e, "endpoints in different loop scopes")
			continue
		}

		bound := b.bindings[dst.ID]
		if _, ok := bound.Get(e.Target.Port); ok {
			b.report.rejectEdge(e, "port already bound")
			continue
		}
		if _, ok := dst.Literals.Get(e.Target.Port); ok {
			b.report.rejectEdge(e, "port already bound to a literal")
			continue
		}
		bound = append(bound, domain.Entry[any]{Key: e.Target.Port, Value: domain.FormatRef(src.Key(), e.Source.Port)})
		b.bindings[dst.ID] = bound
	}
}

func (b *graphBuilder) build(scope string) *domain.GraphData {
	g := &domain.GraphData{}
	for _, n := range b.gui.InScope(scope) {
		if _, ok := b.paths[n.ID]; !ok {
			continue
		}
		nd := domain.NodeData{
			Agent:    n.Agent,
			Params:   n.Params,
			Value:    n.Value,
			Update:   n.Update,
			IsResult: n.IsResult,
			Inputs:   b.inputs(n),
		}
		if grp, ok := b.groups[n.ID]; ok {
			nested := b.build(n.ID)
			nested.Version = grp.Version
			nested.Concurrency = grp.Concurrency
			if grp.Spec != nil {
				spec := *grp.Spec
				nested.Loop = &spec
			}
			nd.Graph = nested
		}
		g.Nodes = append(g.Nodes, domain.Entry[domain.NodeData]{Key: n.Key(), Value: nd})
	}
	return g
}

// inputs emits bound ports in port order, then any bound port the node
// does not list
func (b *graphBuilder) inputs(n *domain.Node) domain.Ordered[any] {
	edges := b.bindings[n.ID]
	var out domain.Ordered[any]
	done := make(map[string]bool)

	emit := func(port string) {
		if done[port] {
			return
		}
		if v, ok := edges.Get(port); ok {
			out = append(out, domain.Entry[any]{Key: port, Value: v})
			done[port] = true
		} else if v, ok := n.Literals.Get(port); ok {
			out = append(out, domain.Entry[any]{Key: port, Value: v})
			done[port] = true
		}
	}

	for _, port := range n.Inputs {
		emit(port)
	}
	for _, e := range edges {
		emit(e.Key)
	}
	for _, l := range n.Literals {
		emit(l.Key)
	}
	return out
}
