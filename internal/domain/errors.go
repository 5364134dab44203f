package domain

import "fmt"

// InvalidRecordInputError is returned when a record item cannot be built
// from the supplied name or value.
type InvalidRecordInputError struct {
	Field  string
	Value  string
	Reason string
}

func NewInvalidRecordInputError(field, value, reason string) *InvalidRecordInputError {
	return &InvalidRecordInputError{Field: field, Value: value, Reason: reason}
}

func (e *InvalidRecordInputError) Error() string {
	return fmt.Sprintf("invalid record input: %s %q: %s", e.Field, e.Value, e.Reason)
}
