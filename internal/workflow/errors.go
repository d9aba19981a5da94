package workflow

import (
	"errors"
	"fmt"
)

// ErrVectorNotFound is reported by the embedding step when the workflow
// responded but no numeric vector could be located in the payload.
var ErrVectorNotFound = errors.New("no vector found in workflow response")

// ConnectionError is a transport-level failure: the endpoint could not be
// reached at all (DNS, refused connection, timeout).
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("workflow endpoint unreachable: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TransportError is a non-success HTTP status from the workflow endpoint.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("workflow request failed: status %d: %s", e.StatusCode, e.Body)
}

// RemoteExecutionError is a service-level error reported in the GraphQL
// errors list. Message carries the first reported message.
type RemoteExecutionError struct {
	Message string
}

func (e *RemoteExecutionError) Error() string {
	return "workflow execution failed: " + e.Message
}

// MalformedResponseError means the response decoded but did not carry the
// expected executeWorkflow result field.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed workflow response: " + e.Reason
}
