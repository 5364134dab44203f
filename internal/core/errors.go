package core

import (
	"fmt"

	"github.com/auto-dns/vinyldns-batch-sample/internal/session"
	"github.com/auto-dns/vinyldns-batch-sample/internal/vinyldns"
)

// PhaseError records which phase of a run failed.
type PhaseError struct {
	Phase session.Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase %s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// BatchFailedError is returned when a submitted batch reaches a terminal
// status other than Complete.
type BatchFailedError struct {
	ID     string
	Status vinyldns.BatchStatus
	Detail string
}

func (e *BatchFailedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("batch change %s finished with status %s", e.ID, e.Status)
	}
	return fmt.Sprintf("batch change %s finished with status %s: %s", e.ID, e.Status, e.Detail)
}
