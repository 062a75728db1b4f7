package workflows

import (
	"database/sql"
	"time"

	"github.com/vendhub/vendhub/internal/domain"
)

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time                         { return c.now }
func (c fakeClock) After(d time.Duration) <-chan time.Time { return time.After(0) }
func (c fakeClock) Sleep(d time.Duration)                  {}

var testClock = fakeClock{now: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}

type fakeMachines struct {
	byCode map[string]*domain.Machine
}

func (f *fakeMachines) FindByCode(code string) (*domain.Machine, error) {
	m, ok := f.byCode[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return m, nil
}

func (f *fakeMachines) ExistsByCode(code string) (bool, error) {
	_, ok := f.byCode[code]
	return ok, nil
}

// fakeIngredients mimics the version-guarded stock writes of the real
// repository. contested simulates lost CAS races before a write lands.
type fakeIngredients struct {
	byCode      map[string]*domain.Ingredient
	contested   int
	setCalls    int
	adjustCalls int
	writeErr    error
}

func (f *fakeIngredients) FindByCode(code string) (*domain.Ingredient, error) {
	i, ok := f.byCode[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *i
	return &cp, nil
}

func (f *fakeIngredients) ExistsByCode(code string) (bool, error) {
	_, ok := f.byCode[code]
	return ok, nil
}

func (f *fakeIngredients) find(id int64) *domain.Ingredient {
	for _, i := range f.byCode {
		if i.ID == id {
			return i
		}
	}
	return nil
}

func (f *fakeIngredients) SetStockWeight(id int64, weight float64, expectedVersion int64) (bool, error) {
	f.setCalls++
	if f.writeErr != nil {
		return false, f.writeErr
	}
	i := f.find(id)
	if i == nil || i.Version != expectedVersion {
		return false, nil
	}
	if f.contested > 0 {
		f.contested--
		i.Version++ // someone else won the race
		return false, nil
	}
	i.StockWeight = weight
	i.Version++
	return true, nil
}

func (f *fakeIngredients) AdjustStockWeight(id int64, delta float64, expectedVersion int64) (bool, error) {
	f.adjustCalls++
	if f.writeErr != nil {
		return false, f.writeErr
	}
	i := f.find(id)
	if i == nil || i.Version != expectedVersion {
		return false, nil
	}
	if f.contested > 0 {
		f.contested--
		i.Version++
		return false, nil
	}
	i.StockWeight += delta
	i.Version++
	return true, nil
}

type fakeBags struct {
	byCode map[string]*domain.Bag
	items  map[int64][]domain.BagItem
}

func (f *fakeBags) FindByCode(code string) (*domain.Bag, error) {
	b, ok := f.byCode[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return b, nil
}

func (f *fakeBags) ExistsByCode(code string) (bool, error) {
	_, ok := f.byCode[code]
	return ok, nil
}

func (f *fakeBags) FindItems(bagID int64) ([]domain.BagItem, error) {
	return f.items[bagID], nil
}

type fakeCashEntries struct {
	saved []*domain.CashEntry
	err   error
}

func (f *fakeCashEntries) Save(e *domain.CashEntry) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	e.ID = int64(len(f.saved) + 1)
	f.saved = append(f.saved, e)
	return e.ID, nil
}

type fakeInventoryCounts struct {
	saved []*domain.InventoryCount
	err   error
}

func (f *fakeInventoryCounts) Save(c *domain.InventoryCount) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	c.ID = int64(len(f.saved) + 1)
	f.saved = append(f.saved, c)
	return c.ID, nil
}

type fakeReturnedHoppers struct {
	saved []*domain.ReturnedHopper
	err   error
}

func (f *fakeReturnedHoppers) Save(h *domain.ReturnedHopper) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	h.ID = int64(len(f.saved) + 1)
	f.saved = append(f.saved, h)
	return h.ID, nil
}

type fakeGoodsReceipts struct {
	saved []*domain.GoodsReceipt
	err   error
}

func (f *fakeGoodsReceipts) Save(g *domain.GoodsReceipt) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	g.ID = int64(len(f.saved) + 1)
	f.saved = append(f.saved, g)
	return g.ID, nil
}

type fakeFinanceEntries struct {
	saved []*domain.FinanceEntry
	err   error
}

func (f *fakeFinanceEntries) Save(e *domain.FinanceEntry) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	e.ID = int64(len(f.saved) + 1)
	f.saved = append(f.saved, e)
	return e.ID, nil
}
