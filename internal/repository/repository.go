package repository

import (
	"context"
	"errors"

	"graphedit/internal/domain"
)

// ErrNotFound is returned when no saved graph matches
var ErrNotFound = errors.New("saved graph not found")

// Repository defines the interface for saved graph access
type Repository interface {
	// Read operations
	GetGraph(ctx context.Context, id string) (*domain.SavedGraph, error)
	GetGraphByName(ctx context.Context, name string) (*domain.SavedGraph, error)
	ListGraphs(ctx context.Context) ([]domain.SavedGraph, error)

	// Write operations
	SaveGraph(ctx context.Context, g *domain.SavedGraph) error
	DeleteGraph(ctx context.Context, id string) error

	// Close releases resources
	Close() error
}
