package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kernelrag/internal/domain"
)

func TestSearch_OrdersByCosineSimilarity(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Ensure(context.Background(), 2, "Cosine"))
	require.NoError(t, store.Upsert(context.Background(), []domain.Point{
		{ID: "a", Vector: []float64{1, 0}, Payload: map[string]any{"text": "A"}},
		{ID: "b", Vector: []float64{0, 1}, Payload: map[string]any{"text": "B"}},
	}))

	results, err := store.Search(context.Background(), []float64{0.9, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "A", results[0].Chunk.Text)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearch_LimitBounds(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Ensure(context.Background(), 2, "Cosine"))
	require.NoError(t, store.Upsert(context.Background(), []domain.Point{
		{ID: "a", Vector: []float64{1, 0}},
		{ID: "b", Vector: []float64{0, 1}},
	}))

	results, err := store.Search(context.Background(), []float64{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = store.Search(context.Background(), []float64{1, 0}, 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestUpsert_RejectsDimensionMismatch(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Ensure(context.Background(), 3, "Cosine"))
	err := store.Upsert(context.Background(), []domain.Point{
		{ID: "a", Vector: []float64{1, 2}},
	})
	require.Error(t, err)
}

func TestSearch_EmptyStore(t *testing.T) {
	store := NewStore()
	results, err := store.Search(context.Background(), []float64{1, 0}, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}
