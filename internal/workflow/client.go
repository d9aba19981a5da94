package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// executeQuery is the single GraphQL operation the hosted service exposes:
// a workflow invocation by id with an arbitrary JSON payload.
const executeQuery = `query ExecuteWorkflow($workflowId: String!, $payload: JSON!) {
  executeWorkflow(workflowId: $workflowId, payload: $payload) {
    status
    result
  }
}`

// Client issues workflow execution requests against the hosted GraphQL API.
type Client struct {
	endpoint  string
	apiKey    string
	projectID string
	client    *http.Client
}

// Config configures the workflow client.
type Config struct {
	Endpoint  string
	APIKey    string
	ProjectID string
	Timeout   time.Duration
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint:  cfg.Endpoint,
		apiKey:    cfg.APIKey,
		projectID: cfg.ProjectID,
		client:    &http.Client{Timeout: timeout},
	}
}

// Execute runs the workflow identified by workflowID with the given payload
// and returns the decoded result value. The result may be a string, a map,
// or a list depending on how the workflow was authored; callers normalize it.
func (c *Client) Execute(ctx context.Context, workflowID string, payload map[string]any) (any, error) {
	body := map[string]any{
		"query": executeQuery,
		"variables": map[string]any{
			"workflowId": workflowID,
			"payload":    payload,
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("x-project-id", c.projectID)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var decoded struct {
		Data struct {
			ExecuteWorkflow *struct {
				Status string          `json:"status"`
				Result json.RawMessage `json:"result"`
			} `json:"executeWorkflow"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &MalformedResponseError{Reason: "response body is not valid JSON"}
	}
	if len(decoded.Errors) > 0 {
		return nil, &RemoteExecutionError{Message: decoded.Errors[0].Message}
	}
	if decoded.Data.ExecuteWorkflow == nil || len(decoded.Data.ExecuteWorkflow.Result) == 0 {
		return nil, &MalformedResponseError{Reason: "missing executeWorkflow result"}
	}

	var result any
	if err := json.Unmarshal(decoded.Data.ExecuteWorkflow.Result, &result); err != nil {
		return nil, &MalformedResponseError{Reason: "result field is not valid JSON"}
	}
	return result, nil
}
