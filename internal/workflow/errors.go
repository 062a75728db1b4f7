package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkflowNotFound is returned by Registry.Lookup for an unknown id.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrAlreadyRegistered is returned when a definition id is registered twice.
	ErrAlreadyRegistered = errors.New("workflow already registered")

	// ErrNoActiveSession is returned when input arrives for a user with no
	// session in the store.
	ErrNoActiveSession = errors.New("no active session")

	// ErrReferenceNotFound means a selected entity vanished between the
	// selection step and completion.
	ErrReferenceNotFound = errors.New("reference not found")

	// ErrPersistence means the completion handler's primary write did not
	// durably succeed. The session stays on its final step so the actor can
	// retry without re-entering prior steps.
	ErrPersistence = errors.New("persistence failure")

	// ErrPartialWrite means the primary record was written but a derived
	// aggregate update failed afterwards. Retrying the whole completion would
	// double-write, so this is surfaced explicitly instead.
	ErrPartialWrite = errors.New("partial write")
)

// ReferenceError identifies which form field referenced the missing entity so
// the runner can rewind the session to that step instead of aborting the
// whole workflow.
type ReferenceError struct {
	Field string
	Code  string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("reference not found: %s %q", e.Field, e.Code)
}

func (e *ReferenceError) Unwrap() error { return ErrReferenceNotFound }
