// Package handler implements the HTTP API of the graph editor.
//
// # Handlers
//
// EditorHandler serves one EditorService: the editable graph and its
// history, edge drafting, import/export, saved graphs, templates and the
// agent catalog. Router wires it under /api together with the /events
// SSE stream.
//
// Node IDs of nested nodes contain slashes; clients escape them (%2F)
// when they appear in a path.
//
// # Response Format
//
// Success responses return JSON, usually the editor state after the
// change. Error responses return JSON with {error, details}. Status codes
// follow the error: 404 for unknown nodes, ports, saves or templates, 409
// for edits that conflict with the graph or the history, 400 for malformed
// or invalid input.
package handler
