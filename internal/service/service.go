package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"graphedit/internal/catalog"
	"graphedit/internal/codec"
	"graphedit/internal/converter"
	"graphedit/internal/domain"
	"graphedit/internal/draft"
	"graphedit/internal/repository"
	"graphedit/internal/store"
	"graphedit/internal/templates"
)

// ErrTemplateNotFound is returned for an unknown template name
var ErrTemplateNotFound = errors.New("template not found")

// EditorState is the editable graph together with its history flags
type EditorState struct {
	domain.GUIData
	Undoable bool `json:"undoable"`
	Redoable bool `json:"redoable"`
}

// ExportResult describes what an export left out
type ExportResult struct {
	Format   string   `json:"format"`
	Rejected []string `json:"rejected,omitempty"`
}

func newExportResult(format string, report converter.Report) ExportResult {
	res := ExportResult{Format: format}
	for _, r := range report.Rejected {
		res.Rejected = append(res.Rejected, r.Error())
	}
	return res
}

// EditorService provides the operations of one graph editor
type EditorService struct {
	store     *store.Store
	draft     *draft.Session
	catalog   *catalog.Catalog
	templates *templates.Library
	repo      repository.Repository
	eventBus  *EventBus
	logger    *zap.Logger
	stop      func()
}

// Options configures an EditorService
type Options struct {
	HistoryLimit int
	SnapDistance float64
	Catalog      *catalog.Catalog
	Templates    *templates.Library
	Repository   repository.Repository
	EventBus     *EventBus
	Logger       *zap.Logger
}

// NewEditorService creates an editor with an empty graph. Store changes
// are published on the event bus until Close.
func NewEditorService(opts Options) (*EditorService, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cat := opts.Catalog
	if cat == nil {
		var err error
		if cat, err = catalog.Builtin(); err != nil {
			return nil, fmt.Errorf("failed to load agent catalog: %w", err)
		}
	}
	lib := opts.Templates
	if lib == nil {
		var err error
		if lib, err = templates.Load(); err != nil {
			return nil, fmt.Errorf("failed to load templates: %w", err)
		}
	}
	bus := opts.EventBus
	if bus == nil {
		bus = NewEventBus()
	}

	st := store.New(
		store.WithHistoryLimit(opts.HistoryLimit),
		store.WithCatalog(cat),
		store.WithLogger(logger.Named("store")),
	)
	s := &EditorService{
		store:     st,
		draft:     draft.New(st, opts.SnapDistance, logger.Named("draft")),
		catalog:   cat,
		templates: lib,
		repo:      opts.Repository,
		eventBus:  bus,
		logger:    logger,
	}
	s.stop = st.Subscribe(func(c store.Change) {
		bus.Publish(Event{Type: EventGraphChanged, Payload: c})
	})
	return s, nil
}

// Close stops publishing store changes
func (s *EditorService) Close() {
	s.stop()
}

// Store returns the edit store for direct graph editing
func (s *EditorService) Store() *store.Store {
	return s.store
}

// Catalog returns the agent catalog
func (s *EditorService) Catalog() *catalog.Catalog {
	return s.catalog
}

// Templates returns the template library
func (s *EditorService) Templates() *templates.Library {
	return s.templates
}

// EventBus returns the bus events are published on
func (s *EditorService) EventBus() *EventBus {
	return s.eventBus
}

// State returns the current graph with undo/redo flags
func (s *EditorService) State() EditorState {
	snap := s.store.Snapshot()
	return EditorState{
		GUIData:  snap.Graph,
		Undoable: snap.Undoable,
		Redoable: snap.Redoable,
	}
}

// Description returns the current graph as a description
func (s *EditorService) Description() (*domain.GraphData, converter.Report) {
	return s.store.ToGraphData()
}

// ============================================================================
// Edge drafting
// ============================================================================

// BeginDraft starts dragging an edge out of source
func (s *EditorService) BeginDraft(source domain.Endpoint) (draft.State, error) {
	if err := s.draft.Begin(source); err != nil {
		return draft.State{}, err
	}
	st := s.draft.State()
	s.eventBus.Publish(Event{Type: EventDraftUpdated, Payload: st})
	return st, nil
}

// UpdateDraft moves the drafted edge's loose end
func (s *EditorService) UpdateDraft(pointer domain.Position) (draft.State, error) {
	st, err := s.draft.Update(pointer)
	if err != nil {
		return draft.State{}, err
	}
	s.eventBus.Publish(Event{Type: EventDraftUpdated, Payload: st})
	return st, nil
}

// EndDraft drops the drafted edge, connecting it when it is over a free port
func (s *EditorService) EndDraft() (bool, error) {
	added, err := s.draft.End()
	s.eventBus.Publish(Event{Type: EventDraftUpdated, Payload: draft.State{}})
	return added, err
}

// CancelDraft abandons the drafted edge
func (s *EditorService) CancelDraft() {
	s.draft.Cancel()
	s.eventBus.Publish(Event{Type: EventDraftUpdated, Payload: draft.State{}})
}

// DraftState returns the drafting session state
func (s *EditorService) DraftState() draft.State {
	return s.draft.State()
}

// ============================================================================
// Templates, import and export
// ============================================================================

// ApplyTemplate replaces the graph with a starter graph. The reset and the
// load are separate history entries.
func (s *EditorService) ApplyTemplate(name string) error {
	tmpl, ok := s.templates.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return s.replace(tmpl.Graph, Event{Type: EventTemplateApplied, Payload: map[string]string{"name": name}})
}

// replace clears the graph and loads g. A rejected g changes nothing.
func (s *EditorService) replace(g *domain.GraphData, done Event) error {
	s.draft.Cancel()
	if err := s.store.ReplaceData(g); err != nil {
		return err
	}
	s.eventBus.Publish(done)
	return nil
}

// Import parses a description in format and loads it as one history entry
func (s *EditorService) Import(format string, r io.Reader) error {
	c, err := codec.ForFormat(format)
	if err != nil {
		return err
	}
	g, err := c.Parse(r)
	if err != nil {
		return err
	}
	s.draft.Cancel()
	return s.store.LoadData(g)
}

// ImportFile loads the description at path, picking the format from its
// extension
func (s *EditorService) ImportFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	c, err := codec.ForPath(path)
	if err != nil {
		return err
	}
	if err := s.Import(c.Format(), f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	s.eventBus.Publish(Event{Type: EventGraphReloaded, Payload: map[string]string{"path": path}})
	return nil
}

// Export writes the current description in format. Nodes and edges that
// cannot be represented are listed in the result.
func (s *EditorService) Export(format string, w io.Writer) (ExportResult, error) {
	c, err := codec.ForFormat(format)
	if err != nil {
		return ExportResult{}, err
	}
	g, report := s.store.ToGraphData()
	if !report.OK() {
		s.logger.Warn("export left out unrepresentable parts", zap.Error(report.Err()))
	}

	// Buffer so that a failed export writes nothing
	var buf bytes.Buffer
	if err := c.Export(g, &buf); err != nil {
		return ExportResult{}, err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return ExportResult{}, err
	}
	return newExportResult(c.Format(), report), nil
}

// ============================================================================
// Saved graphs
// ============================================================================

func (s *EditorService) repository() (repository.Repository, error) {
	if s.repo == nil {
		return nil, errors.New("no saved-graph storage configured")
	}
	return s.repo, nil
}

// Save stores the current description under name. Saving under an
// existing name replaces that record.
func (s *EditorService) Save(ctx context.Context, name, description string) (*domain.SavedGraph, ExportResult, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, ExportResult{}, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, ExportResult{}, fmt.Errorf("%w: save name is empty", domain.ErrInvalidName)
	}

	g, report := s.store.ToGraphData()
	rec := domain.NewSavedGraph(name, g)
	rec.Description = description
	if err := repo.SaveGraph(ctx, rec); err != nil {
		return nil, ExportResult{}, err
	}

	s.logger.Info("graph saved", zap.String("id", rec.ID), zap.String("name", rec.Name), zap.Int("rejected", len(report.Rejected)))
	s.eventBus.Publish(Event{Type: EventGraphSaved, Payload: map[string]string{"id": rec.ID, "name": rec.Name}})
	return rec, newExportResult("json", report), nil
}

// Load replaces the graph with a saved description, looked up by ID and
// then by name
func (s *EditorService) Load(ctx context.Context, idOrName string) (*domain.SavedGraph, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	rec, err := repo.GetGraph(ctx, idOrName)
	if errors.Is(err, repository.ErrNotFound) {
		rec, err = repo.GetGraphByName(ctx, idOrName)
	}
	if err != nil {
		return nil, err
	}
	if rec.Metadata.Data == nil {
		return nil, fmt.Errorf("%w: saved graph %q has no data", domain.ErrMalformedData, rec.Name)
	}

	s.draft.Cancel()
	if err := s.store.LoadData(rec.Metadata.Data); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListSaved returns every saved graph
func (s *EditorService) ListSaved(ctx context.Context) ([]domain.SavedGraph, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	return repo.ListGraphs(ctx)
}

// DeleteSaved removes a saved graph
func (s *EditorService) DeleteSaved(ctx context.Context, id string) error {
	repo, err := s.repository()
	if err != nil {
		return err
	}
	if err := repo.DeleteGraph(ctx, id); err != nil {
		return err
	}
	s.eventBus.Publish(Event{Type: EventGraphDeleted, Payload: map[string]string{"id": id}})
	return nil
}
