package domain

import "slices"

// NodeType distinguishes nodes that run an agent from nodes that hold a value
type NodeType string

const (
	NodeTypeComputed NodeType = "computed" // Runs Agent over its inputs
	NodeTypeStatic   NodeType = "static"   // Holds Value, optionally refreshed by Update
)

// Node is one vertex of the editable graph
type Node struct {
	ID       string         `json:"nodeId"`
	Name     string         `json:"name"`
	Type     NodeType       `json:"type"`
	Agent    string         `json:"agent,omitempty"`
	Params   map[string]any `json:"params,omitempty"`
	Value    any            `json:"value,omitempty"`
	Update   string         `json:"update,omitempty"`
	IsResult bool           `json:"isResult,omitempty"`

	// Inputs and Outputs are the port names drawn on the node, in order.
	Inputs  []string `json:"inputs,omitempty"`
	Outputs []string `json:"outputs,omitempty"`

	// Literals holds input bindings whose value is not a node reference.
	Literals Ordered[any] `json:"literals,omitempty"`

	Position Position `json:"position"`
	LoopID   string   `json:"loopId,omitempty"`
}

// NewComputedNode creates an agent node
func NewComputedNode(id, agent string, pos Position) Node {
	return Node{
		ID:       id,
		Name:     id,
		Type:     NodeTypeComputed,
		Agent:    agent,
		Position: pos,
	}
}

// NewStaticNode creates a value node
func NewStaticNode(id string, value any, pos Position) Node {
	return Node{
		ID:       id,
		Name:     id,
		Type:     NodeTypeStatic,
		Value:    value,
		Position: pos,
	}
}

// Key returns the key the node is emitted under in a graph description
func (n *Node) Key() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// IsStatic reports whether the node holds a value instead of running an agent
func (n *Node) IsStatic() bool {
	return n.Type == NodeTypeStatic
}

// HasInput reports whether port is one of the node's input ports
func (n *Node) HasInput(port string) bool {
	return slices.Contains(n.Inputs, port)
}

// HasOutput reports whether port is one of the node's output ports
func (n *Node) HasOutput(port string) bool {
	return slices.Contains(n.Outputs, port)
}

// EnsureInput appends port to the input ports if it is missing
func (n *Node) EnsureInput(port string) {
	if port != "" && !n.HasInput(port) {
		n.Inputs = append(n.Inputs, port)
	}
}

// EnsureOutput appends port to the output ports if it is missing
func (n *Node) EnsureOutput(port string) {
	if port != "" && !n.HasOutput(port) {
		n.Outputs = append(n.Outputs, port)
	}
}
