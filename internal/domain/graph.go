package domain

// LoopSpec is the loop setting of a graph: repeat while While resolves
// truthy, or Count times.
type LoopSpec struct {
	While any `json:"while,omitempty" yaml:"while,omitempty"`
	Count int `json:"count,omitempty" yaml:"count,omitempty"`
}

// LoopGroup records the nodes that were nested under the nesting node ID
type LoopGroup struct {
	ID          string    `json:"id"`
	Spec        *LoopSpec `json:"spec,omitempty"`
	Version     float64   `json:"version,omitempty"`
	Concurrency int       `json:"concurrency,omitempty"`
	Members     []string  `json:"members"`
}

// Loops holds the root loop setting and every nested group
type Loops struct {
	Root   *LoopSpec   `json:"root,omitempty"`
	Groups []LoopGroup `json:"groups,omitempty"`
}

// GUIData is the editable, position-bearing form of a graph. It is the
// unit captured by every history snapshot.
type GUIData struct {
	Version     float64 `json:"version,omitempty"`
	Concurrency int     `json:"concurrency,omitempty"`
	Nodes       []Node  `json:"nodes"`
	Edges       []Edge  `json:"edges"`
	Loops       Loops   `json:"loops"`
}

// NodeIndex returns the index of the node with the given ID, or -1
func (g *GUIData) NodeIndex(id string) int {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Node returns a pointer to the node with the given ID
func (g *GUIData) Node(id string) (*Node, bool) {
	i := g.NodeIndex(id)
	if i < 0 {
		return nil, false
	}
	return &g.Nodes[i], true
}

// HasNode reports whether a node with the given ID exists
func (g *GUIData) HasNode(id string) bool {
	return g.NodeIndex(id) >= 0
}

// Group returns a pointer to the loop group with the given ID
func (g *GUIData) Group(id string) (*LoopGroup, bool) {
	for i := range g.Loops.Groups {
		if g.Loops.Groups[i].ID == id {
			return &g.Loops.Groups[i], true
		}
	}
	return nil, false
}

// EdgeInto returns the index of the edge bound to target, or -1
func (g *GUIData) EdgeInto(target Endpoint) int {
	for i, e := range g.Edges {
		if e.Target == target {
			return i
		}
	}
	return -1
}

// IsBound reports whether target already has an edge or a literal bound
func (g *GUIData) IsBound(target Endpoint) bool {
	if g.EdgeInto(target) >= 0 {
		return true
	}
	n, ok := g.Node(target.NodeID)
	if !ok {
		return false
	}
	_, ok = n.Literals.Get(target.Port)
	return ok
}

// ScopeOf returns the loop group a node lives in; empty means root
func (g *GUIData) ScopeOf(id string) string {
	n, ok := g.Node(id)
	if !ok {
		return ""
	}
	return n.LoopID
}

// InScope returns the nodes whose LoopID equals loopID, in list order
func (g *GUIData) InScope(loopID string) []*Node {
	var out []*Node
	for i := range g.Nodes {
		if g.Nodes[i].LoopID == loopID {
			out = append(out, &g.Nodes[i])
		}
	}
	return out
}

// IsAncestor reports whether ancestorID encloses id through loop nesting
func (g *GUIData) IsAncestor(ancestorID, id string) bool {
	seen := make(map[string]bool)
	for cur := g.ScopeOf(id); cur != ""; cur = g.ScopeOf(cur) {
		if cur == ancestorID {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
	}
	return false
}

// SyncMembers rebuilds every group's member list from the nodes' LoopID
// fields, keeping node-list order.
func (g *GUIData) SyncMembers() {
	for i := range g.Loops.Groups {
		grp := &g.Loops.Groups[i]
		members := make([]string, 0, len(grp.Members))
		for _, n := range g.Nodes {
			if n.LoopID == grp.ID {
				members = append(members, n.ID)
			}
		}
		grp.Members = members
	}
}

// Empty reports whether the graph has no nodes, edges or loop settings
func (g *GUIData) Empty() bool {
	return len(g.Nodes) == 0 && len(g.Edges) == 0 && g.Loops.Root == nil && len(g.Loops.Groups) == 0
}
