package repository

import (
	"database/sql"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/pkg/vendhub/core"
)

type GoodsReceiptRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewGoodsReceiptRepository(db *sql.DB, clock core.Clock) *GoodsReceiptRepository {
	return &GoodsReceiptRepository{db: db, clock: clock}
}

const goodsReceiptColumns = ` id, reference, ingredient_id, weight, supplier_note, photo_ref, received_by, received_at `

func (r *GoodsReceiptRepository) Save(g *domain.GoodsReceipt) (int64, error) {
	if g.ReceivedAt.IsZero() {
		g.ReceivedAt = r.clock.Now().UTC()
	}
	base := `
		INSERT INTO goods_receipts (
			reference, ingredient_id, weight, supplier_note, photo_ref, received_by, received_at
		) VALUES (` + placeholder(1) + `, ` + placeholder(2) + `, ` + placeholder(3) + `, ` + placeholder(4) + `, ` + placeholder(5) + `, ` + placeholder(6) + `, ` + placeholder(7) + `)`
	vals := []interface{}{
		g.Reference, g.IngredientID, g.Weight, g.SupplierNote, g.PhotoRef,
		g.ReceivedBy, formatDateInDatabase(g.ReceivedAt),
	}

	var err error
	if supportsReturning() {
		err = r.db.QueryRow(base+" RETURNING id", vals...).Scan(&g.ID)
	} else {
		res, e := r.db.Exec(base, vals...)
		if e != nil {
			err = e
		} else {
			g.ID, err = res.LastInsertId()
		}
	}
	return g.ID, err
}

func (r *GoodsReceiptRepository) FindByID(id int64) (*domain.GoodsReceipt, error) {
	query := `SELECT` + goodsReceiptColumns + `FROM goods_receipts WHERE id = ` + placeholder(1)
	var g domain.GoodsReceipt
	err := r.db.QueryRow(query, id).Scan(
		&g.ID, &g.Reference, &g.IngredientID, &g.Weight, &g.SupplierNote,
		&g.PhotoRef, &g.ReceivedBy, &g.ReceivedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}
