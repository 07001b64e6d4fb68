package domain

import "time"

// SavedGraph is a graph description stored under a name. The description
// lives under Metadata.Data so that stored records can carry other editor
// metadata next to it later.
type SavedGraph struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Metadata    SavedMetadata `json:"metadata"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// SavedMetadata wraps the stored description
type SavedMetadata struct {
	Data *GraphData `json:"data"`
}

// NewSavedGraph creates a record for g
func NewSavedGraph(name string, g *GraphData) *SavedGraph {
	return &SavedGraph{Name: name, Metadata: SavedMetadata{Data: g}}
}
