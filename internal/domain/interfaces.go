package domain

import "context"

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Answerer produces an answer to a question grounded on retrieved context.
type Answerer interface {
	Answer(ctx context.Context, question, docContext string) (string, error)
}

// Point is a single upsertable vector store record.
type Point struct {
	ID      string
	Vector  []float64
	Payload map[string]any
}

// VectorStore persists vectors and supports nearest-neighbor search.
type VectorStore interface {
	// Ensure creates the collection if it does not exist yet.
	// Safe to call on every run.
	Ensure(ctx context.Context, dimension int, distance string) error
	Upsert(ctx context.Context, points []Point) error
	Search(ctx context.Context, vector []float64, limit int) ([]SearchResult, error)
}
