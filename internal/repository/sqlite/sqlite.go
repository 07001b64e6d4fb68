package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"graphedit/internal/domain"
	"graphedit/internal/repository"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

var _ repository.Repository = (*Repository)(nil)

// New opens (creating if needed) the database at dbPath. ":memory:" gives
// a private in-memory database.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS saved_graphs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		data JSON,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_saved_graphs_updated ON saved_graphs(updated_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Close closes the database
func (r *Repository) Close() error {
	return r.db.Close()
}

// GetGraph loads a saved graph by ID
func (r *Repository) GetGraph(ctx context.Context, id string) (*domain.SavedGraph, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+graphColumns+` FROM saved_graphs WHERE id = ?`, id)
	g, err := scanGraph(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("graph %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get graph: %w", err)
	}
	return g, nil
}

// GetGraphByName loads a saved graph by name
func (r *Repository) GetGraphByName(ctx context.Context, name string) (*domain.SavedGraph, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+graphColumns+` FROM saved_graphs WHERE name = ?`, name)
	g, err := scanGraph(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("graph %q: %w", name, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get graph: %w", err)
	}
	return g, nil
}

// ListGraphs returns every saved graph, most recently updated first
func (r *Repository) ListGraphs(ctx context.Context) ([]domain.SavedGraph, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+graphColumns+` FROM saved_graphs ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query graphs: %w", err)
	}
	defer rows.Close()

	var graphs []domain.SavedGraph
	for rows.Next() {
		g, err := scanGraph(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan graph: %w", err)
		}
		graphs = append(graphs, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating graphs: %w", err)
	}
	return graphs, nil
}

// SaveGraph inserts g, or replaces the record already saved under its
// name. ID and timestamps are filled in on g.
func (r *Repository) SaveGraph(ctx context.Context, g *domain.SavedGraph) error {
	name := strings.TrimSpace(g.Name)
	if name == "" {
		return fmt.Errorf("saved graph needs a name")
	}
	data, err := marshalToNull(g.Metadata.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	now := time.Now().UTC()
	id := g.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO saved_graphs (id, name, description, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, id, name, stringToNull(g.Description), data, now, now)
	if err != nil {
		return fmt.Errorf("failed to save graph: %w", err)
	}

	saved, err := r.GetGraphByName(ctx, name)
	if err != nil {
		return err
	}
	g.ID = saved.ID
	g.Name = saved.Name
	g.CreatedAt = saved.CreatedAt
	g.UpdatedAt = saved.UpdatedAt
	return nil
}

// DeleteGraph removes a saved graph
func (r *Repository) DeleteGraph(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM saved_graphs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete graph: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete graph: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("graph %s: %w", id, repository.ErrNotFound)
	}
	return nil
}
