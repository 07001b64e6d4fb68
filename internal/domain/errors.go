package domain

import "errors"

// Invalid references
var (
	ErrNodeNotFound = errors.New("node not found")
	ErrLoopNotFound = errors.New("loop group not found")
	ErrNotBound     = errors.New("port has no binding")
)

// Conflicting or invalid edits
var (
	ErrPortBound   = errors.New("port already bound")
	ErrSelfLoop    = errors.New("edge would connect a port to itself")
	ErrCrossLoop   = errors.New("edge endpoints are in different loop scopes")
	ErrInvalidName = errors.New("invalid name")
	ErrNameTaken   = errors.New("node name already used in scope")
	ErrLoopCycle   = errors.New("node cannot be nested inside itself")
)

// ErrMalformedData marks external data that failed to parse or validate
var ErrMalformedData = errors.New("malformed graph data")

// History boundaries
var (
	ErrNotUndoable = errors.New("nothing to undo")
	ErrNotRedoable = errors.New("nothing to redo")
)

// Drafting session state errors
var (
	ErrDraftActive = errors.New("an edge draft is already in progress")
	ErrNotDrafting = errors.New("no edge draft in progress")
)
