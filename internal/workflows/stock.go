package workflows

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/vendhub/vendhub/internal/config"
	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/internal/workflow"
)

// Stock writes use optimistic concurrency: read the row, write conditioned on
// its version, re-read and retry on conflict, bounded by
// VHM_STOCK_CAS_MAX_RETRIES. Two operators touching the same ingredient at
// once therefore serialize instead of losing one of the updates.

func resolveIngredient(items IngredientStore, field, code string) (*domain.Ingredient, error) {
	ing, err := items.FindByCode(code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &workflow.ReferenceError{Field: field, Code: code}
		}
		return nil, fmt.Errorf("%w: find ingredient %s: %v", workflow.ErrPersistence, code, err)
	}
	return ing, nil
}

func setStockWithRetry(items IngredientStore, field, code string, weight float64) error {
	attempts := config.GetSystemSettingInteger(config.STOCK_CAS_MAX_RETRIES) + 1
	for i := 0; i < attempts; i++ {
		ing, err := resolveIngredient(items, field, code)
		if err != nil {
			return err
		}
		ok, err := items.SetStockWeight(ing.ID, weight, ing.Version)
		if err != nil {
			return fmt.Errorf("%w: set stock %s: %v", workflow.ErrPersistence, code, err)
		}
		if ok {
			return nil
		}
	}
	return fmt.Errorf("stock update for %s lost %d version races", code, attempts)
}

func adjustStockWithRetry(items IngredientStore, field, code string, delta float64) error {
	attempts := config.GetSystemSettingInteger(config.STOCK_CAS_MAX_RETRIES) + 1
	for i := 0; i < attempts; i++ {
		ing, err := resolveIngredient(items, field, code)
		if err != nil {
			return err
		}
		ok, err := items.AdjustStockWeight(ing.ID, delta, ing.Version)
		if err != nil {
			return fmt.Errorf("%w: adjust stock %s: %v", workflow.ErrPersistence, code, err)
		}
		if ok {
			return nil
		}
	}
	return fmt.Errorf("stock update for %s lost %d version races", code, attempts)
}
