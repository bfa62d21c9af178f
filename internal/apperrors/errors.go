package apperrors

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// StateTransitionError is returned when an operation is not allowed from the
// invoice's current status. Both the attempted action and the status it was
// attempted from are reported to the caller.
type StateTransitionError struct {
	Current   string
	Attempted string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("operation %q not allowed from status %q", e.Attempted, e.Current)
}

// RetentionError is returned when a deletion is refused because the statutory
// retention period has not elapsed. Until carries the computed deadline.
type RetentionError struct {
	Until time.Time
}

func (e *RetentionError) Error() string {
	return fmt.Sprintf("retention period active until %s, deletion refused", e.Until.Format("2006-01-02"))
}

// IntegrityError signals a content hash mismatch on a stored file. This is a
// hard fault: the stored bytes no longer match the digest recorded at
// ingestion time.
type IntegrityError struct {
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("file hash mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// ConnectorError wraps a failure from a payment/accounting connector after
// the single credential-refresh retry has been exhausted.
type ConnectorError struct {
	Provider string
	Err      error
}

func (e *ConnectorError) Error() string {
	return fmt.Sprintf("%s connector call failed: %v", e.Provider, e.Err)
}

func (e *ConnectorError) Unwrap() error {
	return e.Err
}
