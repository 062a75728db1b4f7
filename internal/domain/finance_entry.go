package domain

import (
	"database/sql"
	"time"
)

const (
	FinanceIncome  = "INCOME"
	FinanceExpense = "EXPENSE"
)

// FinanceEntry is a retroactive ledger line entered by a manager.
type FinanceEntry struct {
	ID         int64          `json:"id"`
	Reference  string         `json:"reference"`
	Kind       string         `json:"kind"`
	Amount     float64        `json:"amount"`
	Category   string         `json:"category"`
	Note       sql.NullString `json:"note"`
	EnteredBy  int64          `json:"enteredBy"`
	OccurredOn string         `json:"occurredOn"`
	EnteredAt  time.Time      `json:"enteredAt"`
}
