package domain

import "time"

// SessionEvent is one audit row in the trail a workflow session leaves
// behind: starts, accepted steps, reprompts, completions, cancellations,
// notification deliveries and their failures.
type SessionEvent struct {
	ID         int64     // BIGSERIAL
	UserID     int64     // BIGINT
	WorkflowID string    // TEXT
	StepIndex  int       // INT
	Type       string    // TEXT
	Text       string    // TEXT
	DateTime   time.Time // TIMESTAMP
}
