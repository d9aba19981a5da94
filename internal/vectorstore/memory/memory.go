package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"kernelrag/internal/domain"
)

// Store is an in-process vector store using brute-force cosine similarity.
// It exists for local development and tests; production uses Qdrant.
type Store struct {
	mu        sync.RWMutex
	dimension int
	points    []domain.Point
}

func NewStore() *Store { return &Store{} }

func (s *Store) Ensure(ctx context.Context, dimension int, distance string) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		s.dimension = dimension
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, points []domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range points {
		if s.dimension > 0 && len(p.Vector) != s.dimension {
			return fmt.Errorf("point %s: vector length %d does not match collection dimension %d",
				p.ID, len(p.Vector), s.dimension)
		}
	}
	s.points = append(s.points, points...)
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float64, limit int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = domain.DefaultTopK
	}
	results := make([]domain.SearchResult, 0, len(s.points))
	for _, p := range s.points {
		results = append(results, domain.SearchResult{
			Chunk: chunkFromPayload(p),
			Score: cosine(p.Vector, vector),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

func chunkFromPayload(p domain.Point) domain.Chunk {
	chunk := domain.Chunk{ID: p.ID}
	if v, ok := p.Payload["text"].(string); ok {
		chunk.Text = v
	}
	if v, ok := p.Payload["source"].(string); ok {
		chunk.Source = v
	}
	switch v := p.Payload["chunk_index"].(type) {
	case int:
		chunk.ChunkIndex = v
	case float64:
		chunk.ChunkIndex = int(v)
	}
	return chunk
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
