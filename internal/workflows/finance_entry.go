package workflows

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/internal/workflow"
	"github.com/vendhub/vendhub/pkg/vendhub/core"
)

const WorkflowFinanceEntry = "FINANCE_ENTRY"

// FinanceEntry is the manager scene for booking a ledger line after the
// fact: an expense or income that happened outside the machines.
type FinanceEntry struct {
	entries FinanceEntrySink
	clock   core.Clock
}

func NewFinanceEntry(entries FinanceEntrySink, clock core.Clock) *FinanceEntry {
	return &FinanceEntry{entries: entries, clock: clock}
}

func (c *FinanceEntry) Definition() *workflow.Definition {
	return &workflow.Definition{
		ID:    WorkflowFinanceEntry,
		Title: "Finance ledger entry",
		Steps: []workflow.Step{
			{
				Prompt:   "Income or expense?",
				Kind:     workflow.KindChoice,
				Field:    "kind",
				Validate: workflow.Choice("income", "expense"),
			},
			{
				Prompt:   "Enter the amount.",
				Kind:     workflow.KindNumber,
				Field:    "amount",
				Validate: workflow.Number(false),
			},
			{
				Prompt:   "Enter the category.",
				Kind:     workflow.KindText,
				Field:    "category",
				Validate: workflow.Text(100),
			},
			{
				Prompt:   "When did it happen? (YYYY-MM-DD)",
				Kind:     workflow.KindText,
				Field:    "date",
				Validate: workflow.Date(),
			},
			{
				Prompt:   "Add a note, or skip.",
				Kind:     workflow.KindText,
				Field:    "note",
				Optional: true,
				Validate: workflow.Text(500),
			},
		},
		Complete: c.Complete,
	}
}

func (c *FinanceEntry) Complete(ctx context.Context, form map[string]string, actorID int64) (string, error) {
	amount, err := strconv.ParseFloat(form["amount"], 64)
	if err != nil {
		return "", fmt.Errorf("form amount %q not numeric: %w", form["amount"], err)
	}

	entry := &domain.FinanceEntry{
		Reference:  uuid.NewString(),
		Kind:       strings.ToUpper(form["kind"]),
		Amount:     amount,
		Category:   form["category"],
		EnteredBy:  actorID,
		OccurredOn: form["date"],
		EnteredAt:  c.clock.Now(),
	}
	if note := form["note"]; note != "" {
		entry.Note = sql.NullString{String: note, Valid: true}
	}
	if _, err := c.entries.Save(entry); err != nil {
		return "", fmt.Errorf("%w: save finance entry: %v", workflow.ErrPersistence, err)
	}

	return fmt.Sprintf("Ledger entry %s booked: %s %.2f (%s) on %s.",
		entry.Reference, strings.ToLower(entry.Kind), amount, entry.Category, entry.OccurredOn), nil
}
