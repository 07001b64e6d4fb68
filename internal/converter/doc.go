// Package converter translates between the portable graph description
// (domain.GraphData) and the editable GUI representation (domain.GUIData).
//
// Both directions are pure: they never mutate their input and return the
// same output for the same input.
//
// # Flattening
//
// Nested graphs are flattened depth-first directly after their nesting
// node. A nested node's ID is its slash-joined key path ("outer/inner"),
// and the nesting node's ID names the loop group holding its members.
//
// # Inputs
//
// An input value of the form ":key" or ":key.port" whose key names a
// sibling in the same graph becomes an Edge. Every other input value is
// kept verbatim as a literal, so that no description data is lost.
package converter
