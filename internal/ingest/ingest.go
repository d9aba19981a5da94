package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"kernelrag/internal/domain"
)

// WorkflowExecutor is the subset of the workflow client the ingester needs.
type WorkflowExecutor interface {
	Execute(ctx context.Context, workflowID string, payload map[string]any) (any, error)
}

// Pipeline runs the one-shot ingestion batch: for each document source, the
// remote workflow scrapes, chunks and vectorizes the document; the resulting
// (vector, text) pairs are upserted into the vector store as fresh points.
type Pipeline struct {
	client     WorkflowExecutor
	workflowID string
	store      domain.VectorStore
	dimension  int
	distance   string
	log        *slog.Logger
}

func New(client WorkflowExecutor, workflowID string, store domain.VectorStore, dimension int, distance string, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		client:     client,
		workflowID: workflowID,
		store:      store,
		dimension:  dimension,
		distance:   distance,
		log:        log,
	}
}

// Run processes all sources sequentially and returns the number that were
// stored. A failing source is logged and skipped; it never aborts the batch.
// Only a failure to prepare the collection itself is fatal.
func (p *Pipeline) Run(ctx context.Context, sources []string) (int, error) {
	if err := p.store.Ensure(ctx, p.dimension, p.distance); err != nil {
		return 0, fmt.Errorf("ensure collection: %w", err)
	}
	stored := 0
	for _, source := range sources {
		n, err := p.ingestSource(ctx, source)
		if err != nil {
			p.log.Error("source skipped", "source", source, "error", err)
			continue
		}
		p.log.Info("source stored", "source", source, "chunks", n)
		stored++
	}
	return stored, nil
}

func (p *Pipeline) ingestSource(ctx context.Context, source string) (int, error) {
	result, err := p.client.Execute(ctx, p.workflowID, map[string]any{"url": source})
	if err != nil {
		return 0, fmt.Errorf("ingest workflow: %w", err)
	}
	payload, err := unwrap(result)
	if err != nil {
		return 0, err
	}

	vectors, err := extractVectors(payload["vectors"])
	if err != nil {
		return 0, err
	}
	documents := extractStrings(payload["documents"])
	if documents == nil {
		documents = extractStrings(payload["text"])
	}
	if len(vectors) == 0 || len(documents) == 0 {
		return 0, fmt.Errorf("workflow returned no vectors or documents")
	}
	if len(vectors) != len(documents) {
		return 0, fmt.Errorf("vectors and documents length mismatch: %d vs %d", len(vectors), len(documents))
	}

	origin := source
	if s, ok := payload["source_url"].(string); ok && s != "" {
		origin = s
	}
	points := make([]domain.Point, len(vectors))
	for i := range vectors {
		points[i] = domain.Point{
			ID:     uuid.NewString(),
			Vector: vectors[i],
			Payload: map[string]any{
				"text":        documents[i],
				"source":      origin,
				"chunk_index": i,
			},
		}
	}
	if err := p.store.Upsert(ctx, points); err != nil {
		return 0, fmt.Errorf("upsert: %w", err)
	}
	return len(points), nil
}

// unwrap normalizes the workflow result to the mapping that carries the
// parallel arrays: one decode pass for strings, then one unwrap of a "body"
// wrapper if present.
func unwrap(result any) (map[string]any, error) {
	if s, ok := result.(string); ok {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil, fmt.Errorf("result is not valid JSON: %w", err)
		}
		result = decoded
	}
	m, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected result shape %T", result)
	}
	if body, ok := m["body"].(map[string]any); ok {
		return body, nil
	}
	return m, nil
}

func extractVectors(v any) ([][]float64, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, nil
	}
	out := make([][]float64, 0, len(list))
	for i, item := range list {
		inner, ok := item.([]any)
		if !ok {
			return nil, fmt.Errorf("vector %d is not a list", i)
		}
		vec := make([]float64, 0, len(inner))
		for _, n := range inner {
			f, ok := n.(float64)
			if !ok {
				return nil, fmt.Errorf("vector %d contains a non-numeric value", i)
			}
			vec = append(vec, f)
		}
		out = append(out, vec)
	}
	return out, nil
}

func extractStrings(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil
		}
		out = append(out, s)
	}
	return out
}
