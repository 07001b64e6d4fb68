// Package service coordinates the edit store with everything around it.
//
// EditorService owns one editable graph: the edit history store, the
// edge-drafting session over it, and the collaborators used to seed and
// persist it (agent catalog, template library, saved-graph repository and
// the description codecs). HTTP handlers and the CLI go through it.
//
// # Event System
//
// Every store change, draft update and save is published on an EventBus.
// The HTTP layer forwards events to connected clients via Server-Sent
// Events (SSE). A slow subscriber misses events rather than blocking the
// editor.
package service
