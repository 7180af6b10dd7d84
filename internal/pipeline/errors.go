package pipeline

import (
	"errors"
	"fmt"
)

// ErrSessionExpired marks an upstream authorization failure: either the
// caller's session or the delegated office token is no longer valid.
// Unlike every other failure it aborts the whole remaining batch, so the
// orchestrator tests for it with errors.Is.
var ErrSessionExpired = errors.New("session expired")

// ValidationError covers bad input: missing fields, an oversized upload,
// a malformed document package. Not retryable, scoped to one recipient.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// UpstreamError covers staging or conversion failures other than
// authorization. Scoped to one recipient; the batch continues.
type UpstreamError struct {
	Stage string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// PersistenceError covers durable storage or metadata failures after a
// successful conversion. The converted bytes are discarded, not retried.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
