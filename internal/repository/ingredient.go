package repository

import (
	"database/sql"
	"log/slog"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/pkg/vendhub/core"
)

// IngredientRepository provides persistence methods for the ingredients
// table. Stock writes are guarded by a version column: the UPDATE only lands
// when the caller read the version it conditions on, which is how concurrent
// returns/receipts against the same ingredient are serialized.
type IngredientRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewIngredientRepository(db *sql.DB, clock core.Clock) *IngredientRepository {
	return &IngredientRepository{db: db, clock: clock}
}

const ingredientColumns = ` id, code, name, unit, stock_weight, version, created `

func (r *IngredientRepository) Save(i *domain.Ingredient) (int64, error) {
	if i.Created.IsZero() {
		i.Created = r.clock.Now().UTC()
	}
	base := `
		INSERT INTO ingredients (code, name, unit, stock_weight, version, created)
		VALUES (` + placeholder(1) + `, ` + placeholder(2) + `, ` + placeholder(3) + `, ` + placeholder(4) + `, ` + placeholder(5) + `, ` + placeholder(6) + `)`
	vals := []interface{}{i.Code, i.Name, i.Unit, i.StockWeight, i.Version, formatDateInDatabase(i.Created)}

	var err error
	if supportsReturning() {
		err = r.db.QueryRow(base+" RETURNING id", vals...).Scan(&i.ID)
	} else {
		res, e := r.db.Exec(base, vals...)
		if e != nil {
			err = e
		} else {
			i.ID, err = res.LastInsertId()
		}
	}
	return i.ID, err
}

func (r *IngredientRepository) scanOne(row *sql.Row) (*domain.Ingredient, error) {
	var i domain.Ingredient
	err := row.Scan(&i.ID, &i.Code, &i.Name, &i.Unit, &i.StockWeight, &i.Version, &i.Created)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *IngredientRepository) FindByID(id int64) (*domain.Ingredient, error) {
	query := `SELECT` + ingredientColumns + `FROM ingredients WHERE id = ` + placeholder(1)
	return r.scanOne(r.db.QueryRow(query, id))
}

func (r *IngredientRepository) FindByCode(code string) (*domain.Ingredient, error) {
	query := `SELECT` + ingredientColumns + `FROM ingredients WHERE code = ` + placeholder(1)
	return r.scanOne(r.db.QueryRow(query, code))
}

func (r *IngredientRepository) ExistsByCode(code string) (bool, error) {
	query := `SELECT COUNT(1) FROM ingredients WHERE code = ` + placeholder(1)
	var count int
	if err := r.db.QueryRow(query, code).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *IngredientRepository) FindAll() ([]*domain.Ingredient, error) {
	query := `SELECT` + ingredientColumns + `FROM ingredients ORDER BY code`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.Ingredient
	for rows.Next() {
		var i domain.Ingredient
		if err := rows.Scan(&i.ID, &i.Code, &i.Name, &i.Unit, &i.StockWeight, &i.Version, &i.Created); err != nil {
			return nil, err
		}
		items = append(items, &i)
	}
	return items, rows.Err()
}

// SetStockWeight replaces the stock figure if the row still carries the
// expected version. Returns false on a version race.
func (r *IngredientRepository) SetStockWeight(id int64, weight float64, expectedVersion int64) (bool, error) {
	query := `
		UPDATE ingredients SET stock_weight = ` + placeholder(1) + `, version = version + 1
		WHERE id = ` + placeholder(2) + ` AND version = ` + placeholder(3)
	res, err := r.db.Exec(query, weight, id, expectedVersion)
	if err != nil {
		slog.Error("Failed to set stock weight", "ingredient_id", id, "error", err)
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// AdjustStockWeight adds delta to the stock figure if the row still carries
// the expected version. Returns false on a version race.
func (r *IngredientRepository) AdjustStockWeight(id int64, delta float64, expectedVersion int64) (bool, error) {
	query := `
		UPDATE ingredients SET stock_weight = stock_weight + ` + placeholder(1) + `, version = version + 1
		WHERE id = ` + placeholder(2) + ` AND version = ` + placeholder(3)
	res, err := r.db.Exec(query, delta, id, expectedVersion)
	if err != nil {
		slog.Error("Failed to adjust stock weight", "ingredient_id", id, "error", err)
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
