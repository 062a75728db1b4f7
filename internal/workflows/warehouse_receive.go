package workflows

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/internal/workflow"
	"github.com/vendhub/vendhub/pkg/vendhub/core"
)

const WorkflowWarehouseReceive = "WAREHOUSE_RECEIVE"

// WarehouseReceive is the scene for booking a supplier delivery into stock.
type WarehouseReceive struct {
	items    IngredientStore
	receipts GoodsReceiptSink
	clock    core.Clock
}

func NewWarehouseReceive(items IngredientStore, receipts GoodsReceiptSink, clock core.Clock) *WarehouseReceive {
	return &WarehouseReceive{items: items, receipts: receipts, clock: clock}
}

func (c *WarehouseReceive) Definition() *workflow.Definition {
	return &workflow.Definition{
		ID:         WorkflowWarehouseReceive,
		Title:      "Warehouse receiving",
		NotifyRole: domain.RoleManager,
		Steps: []workflow.Step{
			{
				Prompt:   "Enter the ingredient code being received.",
				Kind:     workflow.KindText,
				Field:    "item",
				Validate: workflow.Reference("item", c.items.ExistsByCode),
			},
			{
				Prompt: "Enter the received weight.",
				Kind:   workflow.KindNumber,
				Field:  "weight",
				// receiving zero makes no sense
				Validate: workflow.Number(false),
			},
			{
				Prompt:   "Add the supplier note, or skip.",
				Kind:     workflow.KindText,
				Field:    "note",
				Optional: true,
				Validate: workflow.Text(500),
			},
			{
				Prompt:   "Attach a photo of the delivery, or skip.",
				Kind:     workflow.KindPhoto,
				Field:    "photo",
				Optional: true,
				Validate: workflow.Photo(),
			},
		},
		Complete: c.Complete,
	}
}

func (c *WarehouseReceive) Complete(ctx context.Context, form map[string]string, actorID int64) (string, error) {
	ing, err := resolveIngredient(c.items, "item", form["item"])
	if err != nil {
		return "", err
	}

	weight, err := strconv.ParseFloat(form["weight"], 64)
	if err != nil {
		return "", fmt.Errorf("form weight %q not numeric: %w", form["weight"], err)
	}

	receipt := &domain.GoodsReceipt{
		Reference:    uuid.NewString(),
		IngredientID: ing.ID,
		Weight:       weight,
		ReceivedBy:   actorID,
		ReceivedAt:   c.clock.Now(),
	}
	if note := form["note"]; note != "" {
		receipt.SupplierNote = sql.NullString{String: note, Valid: true}
	}
	if photo := form["photo"]; photo != "" {
		receipt.PhotoRef = sql.NullString{String: photo, Valid: true}
	}
	if _, err := c.receipts.Save(receipt); err != nil {
		return "", fmt.Errorf("%w: save goods receipt: %v", workflow.ErrPersistence, err)
	}

	if err := adjustStockWithRetry(c.items, "item", form["item"], weight); err != nil {
		return "", fmt.Errorf("%w: receipt %s saved, stock not adjusted: %v",
			workflow.ErrPartialWrite, receipt.Reference, err)
	}

	return fmt.Sprintf("Receipt %s booked: %.0f of %s into stock.",
		receipt.Reference, weight, ing.Code), nil
}
