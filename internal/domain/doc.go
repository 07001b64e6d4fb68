// Package domain defines the core types of the graphedit editing engine.
//
// The package holds two representations of the same computation graph and
// the value types they share.
//
// # Graph Description
//
// GraphData is the portable, position-free form consumed by an execution
// engine: an ordered mapping of node key to NodeData (agent, inputs,
// params, static value), optionally nesting a whole GraphData under a node
// to express a loop or sub-graph. Input values of the form ":key" or
// ":key.port" reference the output of a sibling node. Declared node and
// input order is preserved through every codec by the Ordered type.
//
// # GUI Representation
//
// GUIData is the editable form: a flat, ordered list of Node values with
// screen positions, a list of Edge values connecting an output Endpoint to
// an input Endpoint, and the Loops that record which nodes were nested
// under which nesting node.
//
// # Identity
//
// A Node's ID never changes once the node exists. Its Name is the key it
// is emitted under in a GraphData and may be renamed freely; edges hold
// IDs, so renames never touch them.
//
// # Geometry
//
// Position, port anchors and the default grid layout live here so that the
// drafting session and the converter agree on where a port is drawn.
//
// # Design Principles
//
// - Plain value types, no I/O
// - Expected failures are sentinel errors, never panics
// - Deterministic ordering everywhere
package domain
