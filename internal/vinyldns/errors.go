package vinyldns

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("resource not found")

// RemoteCallError is a non-success status from a provisioning or query call.
type RemoteCallError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

// BatchRequestError is a rejected batch submission, for example a change
// targeting a zone the owner group does not control.
type BatchRequestError struct {
	StatusCode int
	Body       string
}

func (e *BatchRequestError) Error() string {
	return fmt.Sprintf("batch change rejected with status %d: %s", e.StatusCode, e.Body)
}
