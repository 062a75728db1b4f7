package domain

import (
	"database/sql"
	"time"
)

const (
	CashEntryPending  = "PENDING"
	CashEntryApproved = "APPROVED"
	CashEntryRejected = "REJECTED"
)

// CashEntry is an operator-submitted collection figure awaiting manager
// reconciliation. Reconciled flips exactly once, by the approver.
type CashEntry struct {
	ID           int64          `json:"id"`
	Reference    string         `json:"reference"`
	MachineID    int64          `json:"machineId"`
	OperatorID   int64          `json:"operatorId"`
	Amount       float64        `json:"amount"`
	PhotoRef     sql.NullString `json:"photoRef"`
	Note         sql.NullString `json:"note"`
	Status       string         `json:"status"`
	Reconciled   bool           `json:"reconciled"`
	ReconciledBy sql.NullInt64  `json:"reconciledBy"`
	ReconciledAt sql.NullTime   `json:"reconciledAt"`
	RejectReason sql.NullString `json:"rejectReason"`
	CollectedAt  time.Time      `json:"collectedAt"`
}
