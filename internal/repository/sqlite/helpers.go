package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"graphedit/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField safely unmarshals JSON from nullable string into target
func unmarshalJSONField(ns sql.NullString, target interface{}) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalToNull marshals v to a nullable JSON string. Nil values are
// stored as NULL.
func marshalToNull(v interface{}) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	if g, ok := v.(*domain.GraphData); ok && g == nil {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Saved Graph Row Scanner
// ============================================================================
//
// Column order must match between graphColumns, scanArgs() and every
// SELECT using graphColumns. New columns are appended to all three.

const graphColumns = `id, name, description, data, created_at, updated_at`

// graphRow holds all columns from a saved_graphs query for scanning
type graphRow struct {
	ID          string
	Name        string
	Description sql.NullString
	DataJSON    sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// scanArgs returns pointers to all fields for sql.Scan()
func (r *graphRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,
		&r.Name,
		&r.Description,
		&r.DataJSON,
		&r.CreatedAt,
		&r.UpdatedAt,
	}
}

// toDomain converts the row into a saved graph record
func (r *graphRow) toDomain() (*domain.SavedGraph, error) {
	g := &domain.SavedGraph{
		ID:          r.ID,
		Name:        r.Name,
		Description: nullToString(r.Description),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.DataJSON.Valid {
		var data domain.GraphData
		if err := unmarshalJSONField(r.DataJSON, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal graph %s: %w", r.ID, err)
		}
		g.Metadata.Data = &data
	}
	return g, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanGraph(s scanner) (*domain.SavedGraph, error) {
	var row graphRow
	if err := s.Scan(row.scanArgs()...); err != nil {
		return nil, err
	}
	return row.toDomain()
}
