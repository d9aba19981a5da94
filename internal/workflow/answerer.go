package workflow

import (
	"context"
	"fmt"
)

// Answerer produces answers through the hosted chat workflow.
type Answerer struct {
	client     *Client
	workflowID string
}

func NewAnswerer(client *Client, workflowID string) *Answerer {
	return &Answerer{client: client, workflowID: workflowID}
}

// Answer sends the question together with the retrieved context and extracts
// a plain-text answer. Normalization never fails; a degraded rendering of an
// unexpected response shape is preferred over an error.
func (a *Answerer) Answer(ctx context.Context, question, docContext string) (string, error) {
	result, err := a.client.Execute(ctx, a.workflowID, map[string]any{
		"question": question,
		"context":  docContext,
	})
	if err != nil {
		return "", fmt.Errorf("chat workflow: %w", err)
	}
	return FindAnswer(result), nil
}
