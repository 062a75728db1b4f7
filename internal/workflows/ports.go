package workflows

import (
	"github.com/vendhub/vendhub/internal/domain"
)

// Persistence ports the completion handlers depend on. The repositories
// satisfy these; tests inject func-field fakes.

type MachineDirectory interface {
	FindByCode(code string) (*domain.Machine, error)
	ExistsByCode(code string) (bool, error)
}

type IngredientStore interface {
	FindByCode(code string) (*domain.Ingredient, error)
	ExistsByCode(code string) (bool, error)
	// SetStockWeight and AdjustStockWeight succeed only when the row still
	// carries the expected version; false means a concurrent writer got
	// there first.
	SetStockWeight(id int64, weight float64, expectedVersion int64) (bool, error)
	AdjustStockWeight(id int64, delta float64, expectedVersion int64) (bool, error)
}

type BagDirectory interface {
	FindByCode(code string) (*domain.Bag, error)
	ExistsByCode(code string) (bool, error)
	FindItems(bagID int64) ([]domain.BagItem, error)
}

type CashEntrySink interface {
	Save(e *domain.CashEntry) (int64, error)
}

type InventoryCountSink interface {
	Save(c *domain.InventoryCount) (int64, error)
}

type ReturnedHopperSink interface {
	Save(h *domain.ReturnedHopper) (int64, error)
}

type GoodsReceiptSink interface {
	Save(g *domain.GoodsReceipt) (int64, error)
}

type FinanceEntrySink interface {
	Save(f *domain.FinanceEntry) (int64, error)
}
