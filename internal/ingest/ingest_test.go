package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kernelrag/internal/domain"
)

type fakeExecutor struct {
	responses map[string]any
	errs      map[string]error
}

func (f *fakeExecutor) Execute(ctx context.Context, workflowID string, payload map[string]any) (any, error) {
	url, _ := payload["url"].(string)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	return f.responses[url], nil
}

type recordingStore struct {
	ensured   bool
	dim       int
	distance  string
	batches   [][]domain.Point
	upsertErr error
}

func (r *recordingStore) Ensure(ctx context.Context, dimension int, distance string) error {
	r.ensured = true
	r.dim = dimension
	r.distance = distance
	return nil
}

func (r *recordingStore) Upsert(ctx context.Context, points []domain.Point) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.batches = append(r.batches, points)
	return nil
}

func (r *recordingStore) Search(ctx context.Context, vector []float64, limit int) ([]domain.SearchResult, error) {
	return nil, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_StoresOneBatchPerSource(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]any{
		"https://example.org/a": map[string]any{
			"vectors":   []any{[]any{0.1, 0.2}, []any{0.3, 0.4}},
			"documents": []any{"chunk one", "chunk two"},
		},
	}}
	store := &recordingStore{}
	p := New(exec, "ingest-flow", store, 2, "Cosine", discard())

	stored, err := p.Run(context.Background(), []string{"https://example.org/a"})
	require.NoError(t, err)
	assert.Equal(t, 1, stored)
	assert.True(t, store.ensured)
	assert.Equal(t, 2, store.dim)
	assert.Equal(t, "Cosine", store.distance)

	require.Len(t, store.batches, 1)
	batch := store.batches[0]
	require.Len(t, batch, 2)
	for i, pt := range batch {
		_, err := uuid.Parse(pt.ID)
		assert.NoError(t, err, "point id must be a fresh uuid")
		assert.Equal(t, "https://example.org/a", pt.Payload["source"])
		assert.Equal(t, i, pt.Payload["chunk_index"])
	}
	assert.Equal(t, "chunk one", batch[0].Payload["text"])
	assert.Equal(t, []float64{0.3, 0.4}, batch[1].Vector)
}

func TestRun_MismatchedLengthsSkipsSourceAndContinues(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]any{
		"bad": map[string]any{
			"vectors":   []any{[]any{0.1}},
			"documents": []any{"one", "two"},
		},
		"good": map[string]any{
			"vectors":   []any{[]any{0.5}},
			"documents": []any{"fine"},
		},
	}}
	store := &recordingStore{}
	p := New(exec, "ingest-flow", store, 1, "Cosine", discard())

	stored, err := p.Run(context.Background(), []string{"bad", "good"})
	require.NoError(t, err)
	assert.Equal(t, 1, stored)
	require.Len(t, store.batches, 1)
	assert.Equal(t, "fine", store.batches[0][0].Payload["text"])
}

func TestRun_WorkflowErrorDoesNotAbortBatch(t *testing.T) {
	exec := &fakeExecutor{
		responses: map[string]any{
			"good": map[string]any{
				"vectors":   []any{[]any{0.5}},
				"documents": []any{"fine"},
			},
		},
		errs: map[string]error{"broken": errors.New("remote failure")},
	}
	store := &recordingStore{}
	p := New(exec, "ingest-flow", store, 1, "Cosine", discard())

	stored, err := p.Run(context.Background(), []string{"broken", "good"})
	require.NoError(t, err)
	assert.Equal(t, 1, stored)
}

func TestRun_UnwrapsBodyAndStringResults(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]any{
		"wrapped": map[string]any{
			"body": map[string]any{
				"vectors":   []any{[]any{0.1}},
				"documents": []any{"wrapped chunk"},
			},
		},
		"stringly": `{"vectors":[[0.2]],"text":["string chunk"],"source_url":"https://origin.example"}`,
	}}
	store := &recordingStore{}
	p := New(exec, "ingest-flow", store, 1, "Cosine", discard())

	stored, err := p.Run(context.Background(), []string{"wrapped", "stringly"})
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
	require.Len(t, store.batches, 2)
	assert.Equal(t, "wrapped chunk", store.batches[0][0].Payload["text"])
	assert.Equal(t, "string chunk", store.batches[1][0].Payload["text"])
	assert.Equal(t, "https://origin.example", store.batches[1][0].Payload["source"])
}

func TestRun_EmptyResponseSkipsSource(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]any{
		"empty": map[string]any{"vectors": []any{}, "documents": []any{}},
	}}
	store := &recordingStore{}
	p := New(exec, "ingest-flow", store, 1, "Cosine", discard())

	stored, err := p.Run(context.Background(), []string{"empty"})
	require.NoError(t, err)
	assert.Zero(t, stored)
	assert.Empty(t, store.batches)
}
