package workflows

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/internal/workflow"
	"github.com/vendhub/vendhub/pkg/vendhub/core"
)

const WorkflowInventoryCount = "INVENTORY_COUNT"

// InventoryCount is the scene for counting what is physically on the shelf.
// The discrepancy against the system weight is recorded and the stock figure
// is corrected to the counted value.
type InventoryCount struct {
	items  IngredientStore
	counts InventoryCountSink
	clock  core.Clock
}

func NewInventoryCount(items IngredientStore, counts InventoryCountSink, clock core.Clock) *InventoryCount {
	return &InventoryCount{items: items, counts: counts, clock: clock}
}

func (c *InventoryCount) Definition() *workflow.Definition {
	return &workflow.Definition{
		ID:         WorkflowInventoryCount,
		Title:      "Inventory count",
		NotifyRole: domain.RoleManager,
		Steps: []workflow.Step{
			{
				Prompt:   "What are you counting? (ingredient or water)",
				Kind:     workflow.KindChoice,
				Field:    "type",
				Validate: workflow.Choice("ingredient", "water"),
			},
			{
				Prompt:   "Enter the item code.",
				Kind:     workflow.KindText,
				Field:    "item",
				Validate: workflow.Reference("item", c.items.ExistsByCode),
			},
			{
				Prompt: "Enter the actual weight on the scale.",
				Kind:   workflow.KindNumber,
				Field:  "actual",
				// an empty hopper is a legitimate count
				Validate: workflow.Number(true),
			},
		},
		Complete: c.Complete,
	}
}

func (c *InventoryCount) Complete(ctx context.Context, form map[string]string, actorID int64) (string, error) {
	ing, err := resolveIngredient(c.items, "item", form["item"])
	if err != nil {
		return "", err
	}

	actual, err := strconv.ParseFloat(form["actual"], 64)
	if err != nil {
		return "", fmt.Errorf("form actual %q not numeric: %w", form["actual"], err)
	}

	count := &domain.InventoryCount{
		Reference:    uuid.NewString(),
		CountType:    strings.ToUpper(form["type"]),
		IngredientID: ing.ID,
		SystemWeight: ing.StockWeight,
		ActualWeight: actual,
		Discrepancy:  actual - ing.StockWeight,
		CountedBy:    actorID,
		CountedAt:    c.clock.Now(),
	}
	if _, err := c.counts.Save(count); err != nil {
		return "", fmt.Errorf("%w: save inventory count: %v", workflow.ErrPersistence, err)
	}

	if err := setStockWithRetry(c.items, "item", form["item"], actual); err != nil {
		return "", fmt.Errorf("%w: count %s saved, stock not corrected: %v",
			workflow.ErrPartialWrite, count.Reference, err)
	}

	return fmt.Sprintf("Count %s recorded for %s: actual %s, discrepancy %+.0f.",
		count.Reference, ing.Code, form["actual"], count.Discrepancy), nil
}
