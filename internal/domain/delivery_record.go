package domain

import "time"

const (
	DeliverySent   = "SENT"
	DeliveryFailed = "FAILED"
)

// DeliveryRecord is one best-effort notification delivery attempt. Failures
// are recorded here for observability, never escalated to the actor.
type DeliveryRecord struct {
	ID          int64     // BIGSERIAL
	RecipientID int64     // BIGINT (users.id)
	Event       string    // TEXT
	Message     string    // TEXT
	Status      string    // TEXT
	Error       string    // TEXT
	DateTime    time.Time // TIMESTAMP
}
