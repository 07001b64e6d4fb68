package domain

import "slices"

// Node box geometry, in canvas units. Output ports are listed first on the
// right edge, input ports follow on the left edge, one row per port.
const (
	NodeWidth     = 192.0
	HeaderHeight  = 32.0
	PortRowHeight = 24.0
)

// Default grid used for nodes that arrive without a position
const (
	GridColumns  = 4
	GridOriginX  = 40.0
	GridOriginY  = 40.0
	GridSpacingX = 240.0
	GridSpacingY = 200.0
)

// DefaultPosition returns the grid slot for the i-th node of a graph
func DefaultPosition(i int) Position {
	return Position{
		X: GridOriginX + float64(i%GridColumns)*GridSpacingX,
		Y: GridOriginY + float64(i/GridColumns)*GridSpacingY,
	}
}

// Height returns the rendered height of the node box
func (n *Node) Height() float64 {
	return HeaderHeight + float64(len(n.Outputs)+len(n.Inputs))*PortRowHeight
}

// InputAnchor returns where the named input port is drawn. Unknown ports
// anchor to the middle of the header's left edge.
func (n *Node) InputAnchor(port string) Position {
	i := slices.Index(n.Inputs, port)
	if i < 0 {
		return n.Position.Add(0, HeaderHeight/2)
	}
	return n.Position.Add(0, HeaderHeight+(float64(len(n.Outputs)+i)+0.5)*PortRowHeight)
}

// OutputAnchor returns where the named output port is drawn. The whole
// result (empty port) and unknown ports anchor to the header's right edge.
func (n *Node) OutputAnchor(port string) Position {
	i := slices.Index(n.Outputs, port)
	if port == "" || i < 0 {
		return n.Position.Add(NodeWidth, HeaderHeight/2)
	}
	return n.Position.Add(NodeWidth, HeaderHeight+(float64(i)+0.5)*PortRowHeight)
}
