package repository

import (
	"database/sql"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/pkg/vendhub/core"
)

type InventoryCountRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewInventoryCountRepository(db *sql.DB, clock core.Clock) *InventoryCountRepository {
	return &InventoryCountRepository{db: db, clock: clock}
}

const inventoryCountColumns = ` id, reference, count_type, ingredient_id, system_weight,
		actual_weight, discrepancy, counted_by, counted_at `

func (r *InventoryCountRepository) Save(c *domain.InventoryCount) (int64, error) {
	if c.CountedAt.IsZero() {
		c.CountedAt = r.clock.Now().UTC()
	}
	base := `
		INSERT INTO inventory_counts (
			reference, count_type, ingredient_id, system_weight,
			actual_weight, discrepancy, counted_by, counted_at
		) VALUES (` + placeholder(1) + `, ` + placeholder(2) + `, ` + placeholder(3) + `, ` + placeholder(4) + `, ` + placeholder(5) + `, ` + placeholder(6) + `, ` + placeholder(7) + `, ` + placeholder(8) + `)`
	vals := []interface{}{
		c.Reference, c.CountType, c.IngredientID, c.SystemWeight,
		c.ActualWeight, c.Discrepancy, c.CountedBy, formatDateInDatabase(c.CountedAt),
	}

	var err error
	if supportsReturning() {
		err = r.db.QueryRow(base+" RETURNING id", vals...).Scan(&c.ID)
	} else {
		res, e := r.db.Exec(base, vals...)
		if e != nil {
			err = e
		} else {
			c.ID, err = res.LastInsertId()
		}
	}
	return c.ID, err
}

func (r *InventoryCountRepository) FindByID(id int64) (*domain.InventoryCount, error) {
	query := `SELECT` + inventoryCountColumns + `FROM inventory_counts WHERE id = ` + placeholder(1)
	var c domain.InventoryCount
	err := r.db.QueryRow(query, id).Scan(
		&c.ID, &c.Reference, &c.CountType, &c.IngredientID, &c.SystemWeight,
		&c.ActualWeight, &c.Discrepancy, &c.CountedBy, &c.CountedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *InventoryCountRepository) FindByIngredientID(ingredientID int64, limit int) ([]*domain.InventoryCount, error) {
	query := `SELECT` + inventoryCountColumns + `FROM inventory_counts
		WHERE ingredient_id = ` + placeholder(1) + ` ORDER BY counted_at DESC LIMIT ` + placeholder(2)
	rows, err := r.db.Query(query, ingredientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []*domain.InventoryCount
	for rows.Next() {
		var c domain.InventoryCount
		if err := rows.Scan(
			&c.ID, &c.Reference, &c.CountType, &c.IngredientID, &c.SystemWeight,
			&c.ActualWeight, &c.Discrepancy, &c.CountedBy, &c.CountedAt,
		); err != nil {
			return nil, err
		}
		counts = append(counts, &c)
	}
	return counts, rows.Err()
}
