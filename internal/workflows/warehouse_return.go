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

const WorkflowWarehouseReturn = "WAREHOUSE_RETURN"

// WarehouseReturn is the scene for weighing a hopper coming back from an
// operator run. The returned weight goes back onto the ingredient's stock.
type WarehouseReturn struct {
	bags    BagDirectory
	items   IngredientStore
	hoppers ReturnedHopperSink
	clock   core.Clock
}

func NewWarehouseReturn(bags BagDirectory, items IngredientStore, hoppers ReturnedHopperSink, clock core.Clock) *WarehouseReturn {
	return &WarehouseReturn{bags: bags, items: items, hoppers: hoppers, clock: clock}
}

func (c *WarehouseReturn) Definition() *workflow.Definition {
	return &workflow.Definition{
		ID:         WorkflowWarehouseReturn,
		Title:      "Warehouse return",
		NotifyRole: domain.RoleWarehouse,
		Steps: []workflow.Step{
			{
				Prompt:   "Enter the bag code.",
				Kind:     workflow.KindText,
				Field:    "bag",
				Validate: workflow.Reference("bag", c.bags.ExistsByCode),
			},
			{
				Prompt:   "Enter the hopper's ingredient code.",
				Kind:     workflow.KindText,
				Field:    "item",
				Validate: workflow.Reference("item", c.items.ExistsByCode),
			},
			{
				Prompt: "Put the hopper on the scale and enter the weight.",
				Kind:   workflow.KindNumber,
				Field:  "weight",
				// fully emptied hoppers come back at zero
				Validate: workflow.Number(true),
			},
			{
				Prompt:   "Attach a photo of the hopper, or skip.",
				Kind:     workflow.KindPhoto,
				Field:    "photo",
				Optional: true,
				Validate: workflow.Photo(),
			},
			{
				Prompt:   "Send 'confirm' to register the return.",
				Kind:     workflow.KindChoice,
				Field:    "confirm",
				Validate: workflow.Choice("confirm"),
			},
		},
		Complete: c.Complete,
	}
}

func (c *WarehouseReturn) Complete(ctx context.Context, form map[string]string, actorID int64) (string, error) {
	bag, err := c.bags.FindByCode(form["bag"])
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", &workflow.ReferenceError{Field: "bag", Code: form["bag"]}
		}
		return "", fmt.Errorf("%w: find bag: %v", workflow.ErrPersistence, err)
	}

	ing, err := resolveIngredient(c.items, "item", form["item"])
	if err != nil {
		return "", err
	}

	items, err := c.bags.FindItems(bag.ID)
	if err != nil {
		return "", fmt.Errorf("%w: load bag items: %v", workflow.ErrPersistence, err)
	}
	var issued float64
	found := false
	for _, it := range items {
		if it.IngredientID == ing.ID {
			issued = it.IssuedWeight
			found = true
			break
		}
	}
	if !found {
		return "", &workflow.ReferenceError{Field: "item", Code: form["item"]}
	}

	weight, err := strconv.ParseFloat(form["weight"], 64)
	if err != nil {
		return "", fmt.Errorf("form weight %q not numeric: %w", form["weight"], err)
	}

	ret := &domain.ReturnedHopper{
		Reference:      uuid.NewString(),
		BagID:          bag.ID,
		IngredientID:   ing.ID,
		IssuedWeight:   issued,
		ReturnedWeight: weight,
		ReturnedBy:     actorID,
		ReturnedAt:     c.clock.Now(),
	}
	if photo := form["photo"]; photo != "" {
		ret.PhotoRef = sql.NullString{String: photo, Valid: true}
	}
	if _, err := c.hoppers.Save(ret); err != nil {
		return "", fmt.Errorf("%w: save returned hopper: %v", workflow.ErrPersistence, err)
	}

	if err := adjustStockWithRetry(c.items, "item", form["item"], weight); err != nil {
		return "", fmt.Errorf("%w: return %s saved, stock not adjusted: %v",
			workflow.ErrPartialWrite, ret.Reference, err)
	}

	return fmt.Sprintf("Return %s registered: %s back at %.0f of %.0f issued (used %.0f).",
		ret.Reference, ing.Code, weight, issued, issued-weight), nil
}
