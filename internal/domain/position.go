package domain

import (
	"fmt"
	"math"
)

// Position is a point on the editing canvas
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NewPosition creates a new position
func NewPosition(x, y float64) Position {
	return Position{X: x, Y: y}
}

// Distance returns the Euclidean distance between two positions
func (p Position) Distance(q Position) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Add returns the position translated by (dx, dy)
func (p Position) Add(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Endpoint names one port on one node. An empty Port on a source endpoint
// refers to the node's whole result.
type Endpoint struct {
	NodeID string `json:"nodeId" yaml:"nodeId"`
	Port   string `json:"port,omitempty" yaml:"port,omitempty"`
}

// NewEndpoint creates a new endpoint
func NewEndpoint(nodeID, port string) Endpoint {
	return Endpoint{NodeID: nodeID, Port: port}
}

// String renders the endpoint as node.port
func (e Endpoint) String() string {
	if e.Port == "" {
		return e.NodeID
	}
	return fmt.Sprintf("%s.%s", e.NodeID, e.Port)
}
