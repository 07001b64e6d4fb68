package domain

import "fmt"

// Edge binds the output of one node to an input port of another. Edges
// have no identity of their own; their index in GUIData.Edges is used when
// rendering.
type Edge struct {
	Source Endpoint `json:"source"`
	Target Endpoint `json:"target"`
}

// NewEdge creates a new edge
func NewEdge(source, target Endpoint) Edge {
	return Edge{Source: source, Target: target}
}

// Touches reports whether either endpoint belongs to nodeID
func (e Edge) Touches(nodeID string) bool {
	return e.Source.NodeID == nodeID || e.Target.NodeID == nodeID
}

// String renders the edge as source -> target
func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s", e.Source, e.Target)
}
