package workflows

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/internal/workflow"
	"github.com/vendhub/vendhub/pkg/vendhub/core"
)

const WorkflowCashCollection = "CASH_COLLECTION"

// CashCollection is the operator scene for reporting collected cash from one
// machine. The entry lands unreconciled; managers approve or reject it later.
type CashCollection struct {
	machines MachineDirectory
	entries  CashEntrySink
	clock    core.Clock
}

func NewCashCollection(machines MachineDirectory, entries CashEntrySink, clock core.Clock) *CashCollection {
	return &CashCollection{machines: machines, entries: entries, clock: clock}
}

func (c *CashCollection) Definition() *workflow.Definition {
	return &workflow.Definition{
		ID:         WorkflowCashCollection,
		Title:      "Cash collection",
		NotifyRole: domain.RoleManager,
		Steps: []workflow.Step{
			{
				Prompt:   "Which machine did you collect from? Enter the machine code.",
				Kind:     workflow.KindText,
				Field:    "machine",
				Validate: workflow.Reference("machine", c.machines.ExistsByCode),
			},
			{
				Prompt: "Enter the collected amount.",
				Kind:   workflow.KindNumber,
				Field:  "amount",
				// cash amounts are strictly positive
				Validate: workflow.Number(false),
			},
			{
				Prompt:   "Attach a photo of the cash bag, or skip.",
				Kind:     workflow.KindPhoto,
				Field:    "photo",
				Optional: true,
				Validate: workflow.Photo(),
			},
			{
				Prompt:   "Add a note, or skip.",
				Kind:     workflow.KindText,
				Field:    "note",
				Optional: true,
				Validate: workflow.Text(500),
			},
			{
				Prompt:   "Send 'confirm' to submit the entry.",
				Kind:     workflow.KindChoice,
				Field:    "confirm",
				Validate: workflow.Choice("confirm"),
			},
		},
		Complete: c.Complete,
	}
}

func (c *CashCollection) Complete(ctx context.Context, form map[string]string, actorID int64) (string, error) {
	machine, err := c.machines.FindByCode(form["machine"])
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", &workflow.ReferenceError{Field: "machine", Code: form["machine"]}
		}
		return "", fmt.Errorf("%w: find machine: %v", workflow.ErrPersistence, err)
	}

	amount, err := strconv.ParseFloat(form["amount"], 64)
	if err != nil {
		return "", fmt.Errorf("form amount %q not numeric: %w", form["amount"], err)
	}

	entry := &domain.CashEntry{
		Reference:   uuid.NewString(),
		MachineID:   machine.ID,
		OperatorID:  actorID,
		Amount:      amount,
		Status:      domain.CashEntryPending,
		Reconciled:  false,
		CollectedAt: c.clock.Now(),
	}
	if photo := form["photo"]; photo != "" {
		entry.PhotoRef = sql.NullString{String: photo, Valid: true}
	}
	if note := form["note"]; note != "" {
		entry.Note = sql.NullString{String: note, Valid: true}
	}

	if _, err := c.entries.Save(entry); err != nil {
		return "", fmt.Errorf("%w: save cash entry: %v", workflow.ErrPersistence, err)
	}

	return fmt.Sprintf("Cash entry %s recorded: %.2f from machine %s, awaiting reconciliation.",
		entry.Reference, amount, machine.Code), nil
}
