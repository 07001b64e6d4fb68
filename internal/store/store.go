// Package store holds the editable graph and its undo/redo history.
//
// Every mutating operation runs under one mutex, so callers on different
// goroutines are applied strictly in call order. A successful mutation
// pushes exactly one snapshot; a failed one leaves state and history
// untouched. Node drags are the exception: UpdateNodePosition changes
// layout without a snapshot, and SaveNodePositionData commits all pending
// moves as a single entry.
//
// Listeners registered with Subscribe are called after the mutex is
// released, in registration order.
package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/mitchellh/copystructure"
	"go.uber.org/zap"

	"graphedit/internal/catalog"
	"graphedit/internal/domain"
)

// DefaultHistoryLimit is the number of snapshots kept when none is configured
const DefaultHistoryLimit = 100

// errNoChange lets a mutation succeed without pushing a snapshot
var errNoChange = errors.New("no change")

// Catalog supplies agent port profiles and the agent of plain new nodes
type Catalog interface {
	Default() string
	Lookup(agent string) (catalog.Profile, bool)
}

// ChangeKind identifies what a mutation did
type ChangeKind string

const (
	ChangeNodeAdded      ChangeKind = "node_added"
	ChangeNodeRemoved    ChangeKind = "node_removed"
	ChangeNodeUpdated    ChangeKind = "node_updated"
	ChangeNodeMoved      ChangeKind = "node_moved"
	ChangePositionsSaved ChangeKind = "positions_saved"
	ChangeEdgeAdded      ChangeKind = "edge_added"
	ChangeEdgeRemoved    ChangeKind = "edge_removed"
	ChangeLoopUpdated    ChangeKind = "loop_updated"
	ChangeUndo           ChangeKind = "undo"
	ChangeRedo           ChangeKind = "redo"
	ChangeReset          ChangeKind = "reset"
	ChangeLoaded         ChangeKind = "loaded"
)

// Change is delivered to listeners after every state change
type Change struct {
	Kind     ChangeKind `json:"kind"`
	NodeID   string     `json:"nodeId,omitempty"`
	Undoable bool       `json:"undoable"`
	Redoable bool       `json:"redoable"`
}

// Listener receives changes
type Listener func(Change)

// Store is the editable graph plus its bounded linear history
type Store struct {
	mu      sync.Mutex
	current domain.GUIData
	history []domain.GUIData
	cursor  int
	limit   int
	nextID  int
	dirty   bool

	catalog Catalog
	logger  *zap.Logger

	listeners    map[int]Listener
	nextListener int
}

// Option configures a Store
type Option func(*Store)

// WithHistoryLimit bounds the number of snapshots kept. Values below one
// are ignored.
func WithHistoryLimit(n int) Option {
	return func(s *Store) {
		if n >= 1 {
			s.limit = n
		}
	}
}

// WithCatalog sets the agent catalog used for new and loaded nodes
func WithCatalog(c Catalog) Option {
	return func(s *Store) {
		s.catalog = c
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates an empty store whose history holds the empty graph
func New(opts ...Option) *Store {
	s := &Store{
		current:   emptyGraph(),
		limit:     DefaultHistoryLimit,
		nextID:    1,
		catalog:   catalog.New(nil),
		logger:    zap.NewNop(),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.history = []domain.GUIData{clone(s.current)}
	return s
}

func emptyGraph() domain.GUIData {
	return domain.GUIData{
		Nodes: []domain.Node{},
		Edges: []domain.Edge{},
	}
}

// clone deep-copies a graph so snapshots never share maps or slices with
// live state
func clone(g domain.GUIData) domain.GUIData {
	return copystructure.Must(copystructure.Copy(g)).(domain.GUIData)
}

// copyValue deep-copies caller supplied values before they enter the graph
func copyValue[T any](v T) T {
	c, err := copystructure.Copy(v)
	if err != nil {
		return v
	}
	if t, ok := c.(T); ok {
		return t
	}
	return v
}

// Subscribe registers fn for every change and returns a function that
// removes it
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// mutate applies fn to a working copy of the graph. On success the copy
// becomes the current state and one snapshot is pushed.
func (s *Store) mutate(kind ChangeKind, nodeID string, fn func(g *domain.GUIData) error) error {
	s.mu.Lock()
	work := clone(s.current)
	if err := fn(&work); err != nil {
		s.mu.Unlock()
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	work.SyncMembers()
	s.current = work
	s.push()
	change, listeners := s.changeLocked(kind, nodeID)
	s.mu.Unlock()

	notify(listeners, change)
	return nil
}

// push records the current state as the newest snapshot, dropping the redo
// tail and, past the limit, the oldest snapshot
func (s *Store) push() {
	s.history = append(s.history[:s.cursor+1], clone(s.current))
	if over := len(s.history) - s.limit; over > 0 {
		s.history = append([]domain.GUIData(nil), s.history[over:]...)
	}
	s.cursor = len(s.history) - 1
	s.dirty = false
}

func (s *Store) changeLocked(kind ChangeKind, nodeID string) (Change, []Listener) {
	change := Change{
		Kind:     kind,
		NodeID:   nodeID,
		Undoable: s.cursor > 0,
		Redoable: s.cursor < len(s.history)-1,
	}
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]Listener, len(ids))
	for i, id := range ids {
		listeners[i] = s.listeners[id]
	}
	return change, listeners
}

func notify(listeners []Listener, change Change) {
	for _, fn := range listeners {
		fn(change)
	}
}

// Undo restores the previous snapshot
func (s *Store) Undo() error {
	s.mu.Lock()
	if s.cursor == 0 {
		s.mu.Unlock()
		return domain.ErrNotUndoable
	}
	s.cursor--
	s.current = clone(s.history[s.cursor])
	s.dirty = false
	change, listeners := s.changeLocked(ChangeUndo, "")
	s.mu.Unlock()

	s.logger.Debug("undo", zap.Bool("undoable", change.Undoable))
	notify(listeners, change)
	return nil
}

// Redo reapplies the snapshot after the cursor
func (s *Store) Redo() error {
	s.mu.Lock()
	if s.cursor >= len(s.history)-1 {
		s.mu.Unlock()
		return domain.ErrNotRedoable
	}
	s.cursor++
	s.current = clone(s.history[s.cursor])
	s.dirty = false
	change, listeners := s.changeLocked(ChangeRedo, "")
	s.mu.Unlock()

	s.logger.Debug("redo", zap.Bool("redoable", change.Redoable))
	notify(listeners, change)
	return nil
}

// Undoable reports whether Undo would succeed
func (s *Store) Undoable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor > 0
}

// Redoable reports whether Redo would succeed
func (s *Store) Redoable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor < len(s.history)-1
}

// HistoryLen returns the number of snapshots held
func (s *Store) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// Reset clears the graph. The cleared state is a new snapshot, so Reset
// can be undone. The ID counter is not rewound.
func (s *Store) Reset() {
	_ = s.mutate(ChangeReset, "", func(g *domain.GUIData) error {
		*g = emptyGraph()
		return nil
	})
}
