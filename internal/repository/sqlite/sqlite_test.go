package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphedit/internal/domain"
	"graphedit/internal/repository"
)

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	require.NoError(t, err, "failed to create test repository")
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

func sampleGraph() *domain.GraphData {
	g := domain.NewGraphData()
	g.Nodes = domain.Ordered[domain.NodeData]{
		{Key: "question", Value: domain.NodeData{Value: "What is a graph?"}},
		{Key: "llm", Value: domain.NodeData{
			Agent:    "openAIAgent",
			Inputs:   domain.Ordered[any]{{Key: "prompt", Value: ":question"}},
			IsResult: true,
		}},
	}
	g.Metadata = &domain.Metadata{
		Positions: map[string]domain.Position{"question": {X: 40, Y: 40}, "llm": {X: 280, Y: 40}},
		NextID:    3,
	}
	return g
}

func TestSaveGraph_AssignsIDAndTimestamps(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := domain.NewSavedGraph("chat", sampleGraph())
	rec.Description = "simple chat"
	require.NoError(t, repo.SaveGraph(ctx, rec))

	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)

	got, err := repo.GetGraph(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "chat", got.Name)
	assert.Equal(t, "simple chat", got.Description)
	require.NotNil(t, got.Metadata.Data)
	assert.Equal(t, []string{"question", "llm"}, got.Metadata.Data.Nodes.Keys())
	llm, ok := got.Metadata.Data.Nodes.Get("llm")
	require.True(t, ok)
	assert.Equal(t, "openAIAgent", llm.Agent)
	assert.True(t, llm.IsResult)
	assert.Equal(t, 3, got.Metadata.Data.Metadata.NextID)
}

func TestSaveGraph_SameNameReplacesData(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := domain.NewSavedGraph("chat", sampleGraph())
	require.NoError(t, repo.SaveGraph(ctx, first))

	time.Sleep(5 * time.Millisecond)
	second := domain.NewSavedGraph("chat", domain.NewGraphData())
	require.NoError(t, repo.SaveGraph(ctx, second))

	assert.Equal(t, first.ID, second.ID, "saving under an existing name keeps the ID")
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	all, err := repo.ListGraphs(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Empty(t, all[0].Metadata.Data.Nodes)
}

func TestSaveGraph_RequiresName(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.SaveGraph(context.Background(), domain.NewSavedGraph("  ", sampleGraph()))
	assert.Error(t, err)
}

func TestGetGraphByName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := domain.NewSavedGraph("map", sampleGraph())
	require.NoError(t, repo.SaveGraph(ctx, rec))

	got, err := repo.GetGraphByName(ctx, "map")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	_, err = repo.GetGraphByName(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListGraphs_MostRecentFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, repo.SaveGraph(ctx, domain.NewSavedGraph(name, sampleGraph())))
		time.Sleep(5 * time.Millisecond)
	}

	all, err := repo.ListGraphs(ctx)
	require.NoError(t, err)
	names := make([]string, len(all))
	for i, g := range all {
		names[i] = g.Name
	}
	assert.Equal(t, []string{"c", "b", "a"}, names)
}

func TestListGraphs_Empty(t *testing.T) {
	repo := newTestRepo(t)
	all, err := repo.ListGraphs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDeleteGraph(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := domain.NewSavedGraph("chat", sampleGraph())
	require.NoError(t, repo.SaveGraph(ctx, rec))
	require.NoError(t, repo.DeleteGraph(ctx, rec.ID))

	_, err := repo.GetGraph(ctx, rec.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteGraph(ctx, rec.ID), repository.ErrNotFound)
}

func TestSaveGraph_NilDataStoredAsNull(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := domain.NewSavedGraph("empty", nil)
	require.NoError(t, repo.SaveGraph(ctx, rec))

	got, err := repo.GetGraph(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Metadata.Data)
}

func TestNew_FileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphs.db")
	ctx := context.Background()

	repo, err := New(path)
	require.NoError(t, err)
	rec := domain.NewSavedGraph("chat", sampleGraph())
	require.NoError(t, repo.SaveGraph(ctx, rec))
	require.NoError(t, repo.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetGraphByName(ctx, "chat")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
}
