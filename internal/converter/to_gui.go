package converter

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"graphedit/internal/domain"
)

// ToGUI converts a graph description into its editable form. Positions
// come from the description's metadata when present, otherwise from the
// default grid. Invalid keys and duplicate node IDs are reported together
// as a single ErrMalformedData error.
func ToGUI(g *domain.GraphData) (domain.GUIData, error) {
	if g == nil {
		return domain.GUIData{}, fmt.Errorf("%w: no graph description", domain.ErrMalformedData)
	}

	b := &guiBuilder{
		seen: make(map[string]bool),
		out: domain.GUIData{
			Version:     g.Version,
			Concurrency: g.Concurrency,
			Nodes:       []domain.Node{},
			Edges:       []domain.Edge{},
		},
	}
	if g.Metadata != nil {
		b.positions = g.Metadata.Positions
	}
	if g.Loop != nil {
		spec := *g.Loop
		b.out.Loops.Root = &spec
	}

	b.walk(g, "")
	if err := b.errs.ErrorOrNil(); err != nil {
		return domain.GUIData{}, fmt.Errorf("%w: %w", domain.ErrMalformedData, err)
	}

	b.attachOutputs()
	b.out.SyncMembers()
	return b.out, nil
}

type guiBuilder struct {
	out       domain.GUIData
	positions map[string]domain.Position
	seen      map[string]bool
	errs      *multierror.Error
}

// walk appends the nodes of g, nested under parentID, then their edges
func (b *guiBuilder) walk(g *domain.GraphData, parentID string) {
	siblings := make(map[string]bool, len(g.Nodes))
	for _, e := range g.Nodes {
		siblings[e.Key] = true
	}

	for _, e := range g.Nodes {
		id := domain.JoinPath(parentID, e.Key)
		if !domain.ValidKey(e.Key) {
			b.errs = multierror.Append(b.errs, fmt.Errorf("node %q: invalid key", id))
			continue
		}
		if b.seen[id] {
			b.errs = multierror.Append(b.errs, fmt.Errorf("node %q: duplicate id", id))
			continue
		}
		b.seen[id] = true

		b.out.Nodes = append(b.out.Nodes, b.node(id, parentID, e.Key, e.Value))
		b.bindInputs(id, parentID, e.Value.Inputs, siblings)

		if e.Value.Graph != nil {
			nested := e.Value.Graph
			grp := domain.LoopGroup{
				ID:          id,
				Version:     nested.Version,
				Concurrency: nested.Concurrency,
			}
			if nested.Loop != nil {
				spec := *nested.Loop
				grp.Spec = &spec
			}
			b.out.Loops.Groups = append(b.out.Loops.Groups, grp)
			b.walk(nested, id)
		}
	}
}

func (b *guiBuilder) node(id, loopID, key string, nd domain.NodeData) domain.Node {
	pos, ok := b.positions[id]
	if !ok {
		pos = domain.DefaultPosition(len(b.out.Nodes))
	}

	var n domain.Node
	if nd.Agent == "" {
		n = domain.NewStaticNode(id, nd.Value, pos)
	} else {
		n = domain.NewComputedNode(id, nd.Agent, pos)
		n.Value = nd.Value
	}
	n.Name = key
	n.LoopID = loopID
	n.Params = nd.Params
	n.Update = nd.Update
	n.IsResult = nd.IsResult
	return n
}

// bindInputs records the input ports of id and turns sibling references
// into edges
func (b *guiBuilder) bindInputs(id, parentID string, inputs domain.Ordered[any], siblings map[string]bool) {
	n := &b.out.Nodes[len(b.out.Nodes)-1]
	for _, in := range inputs {
		n.Inputs = append(n.Inputs, in.Key)

		if s, ok := in.Value.(string); ok {
			if key, port, ok := domain.ParseRef(s); ok && siblings[key] {
				src := domain.NewEndpoint(domain.JoinPath(parentID, key), port)
				b.out.Edges = append(b.out.Edges, domain.NewEdge(src, domain.NewEndpoint(id, in.Key)))
				continue
			}
		}
		n.Literals = append(n.Literals, domain.Entry[any]{Key: in.Key, Value: in.Value})
	}
}

// attachOutputs adds every referenced source port to its node's outputs
func (b *guiBuilder) attachOutputs() {
	for _, e := range b.out.Edges {
		if n, ok := b.out.Node(e.Source.NodeID); ok {
			n.EnsureOutput(e.Source.Port)
		}
	}
}

