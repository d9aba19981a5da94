package workflow

import (
	"context"
	"fmt"
)

// Embedder turns text into a vector through the hosted embedding workflow.
type Embedder struct {
	client     *Client
	workflowID string
}

func NewEmbedder(client *Client, workflowID string) *Embedder {
	return &Embedder{client: client, workflowID: workflowID}
}

// Embed runs the embedding workflow once and extracts the vector from its
// response. No retries; the caller decides whether to resubmit.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	result, err := e.client.Execute(ctx, e.workflowID, map[string]any{"text": text})
	if err != nil {
		return nil, fmt.Errorf("embed workflow: %w", err)
	}
	vec := FindVector(result)
	if vec == nil {
		return nil, ErrVectorNotFound
	}
	return vec, nil
}
