package export

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ecocap/internal/taxonomy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "out", "edges.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleEdges() []taxonomy.Edge {
	return []taxonomy.Edge{
		{Label: "政务", ID: 1, Level: 0},
		{Label: "教育", ID: 2, Level: 0},
		{Label: "党建", ID: 101, Parent: taxonomy.IdentifierFor(0, 1), Level: 1},
		{Label: "孤儿", ID: 102, Parent: taxonomy.PlaceholderID(), Level: 1},
	}
}

func TestReplaceEdges_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	require.NoError(t, s.ReplaceEdges(ctx, Run{ID: "run-1", Workbook: "a.xlsx"}, sampleEdges()))

	edges, err := s.Edges(ctx)
	require.NoError(t, err)
	require.Len(t, edges, 4)
	assert.Equal(t, "政务", edges[0].Field)
	assert.False(t, edges[0].ParentID.Valid)
	assert.Equal(t, "1", edges[2].ParentID.String)
	assert.Equal(t, taxonomy.Placeholder, edges[3].ParentID.String)
	assert.Equal(t, 3, edges[3].Position)
}

func TestReplaceEdges_ReplacesPreviousRun(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	first := time.Date(2025, 8, 29, 13, 45, 0, 0, time.UTC)
	require.NoError(t, s.ReplaceEdges(ctx, Run{ID: "run-1", Workbook: "a.xlsx", CreatedAt: first}, sampleEdges()))
	require.NoError(t, s.ReplaceEdges(ctx, Run{ID: "run-2", Workbook: "a.xlsx", CreatedAt: first.Add(time.Hour)},
		sampleEdges()[:1]))

	edges, err := s.Edges(ctx)
	require.NoError(t, err)
	assert.Len(t, edges, 1)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, 4, runs[0].EdgeCount)
	assert.Equal(t, 1, runs[1].EdgeCount)
	assert.True(t, first.Equal(runs[0].CreatedAt))
}

func TestReplaceEdges_DuplicateRunRollsBack(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	require.NoError(t, s.ReplaceEdges(ctx, Run{ID: "run-1", Workbook: "a.xlsx"}, sampleEdges()))
	err := s.ReplaceEdges(ctx, Run{ID: "run-1", Workbook: "a.xlsx"}, sampleEdges()[:1])
	require.Error(t, err)

	edges, err := s.Edges(ctx)
	require.NoError(t, err)
	assert.Len(t, edges, 4)
}

func TestOpen_ReopensExistingDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "edges.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.ReplaceEdges(ctx, Run{ID: "run-1", Workbook: "a.xlsx"}, sampleEdges()))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	edges, err := s.Edges(ctx)
	require.NoError(t, err)
	assert.Len(t, edges, 4)
}
