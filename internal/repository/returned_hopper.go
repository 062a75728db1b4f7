package repository

import (
	"database/sql"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/pkg/vendhub/core"
)

type ReturnedHopperRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewReturnedHopperRepository(db *sql.DB, clock core.Clock) *ReturnedHopperRepository {
	return &ReturnedHopperRepository{db: db, clock: clock}
}

const returnedHopperColumns = ` id, reference, bag_id, ingredient_id, issued_weight,
		returned_weight, photo_ref, returned_by, returned_at `

func (r *ReturnedHopperRepository) Save(h *domain.ReturnedHopper) (int64, error) {
	if h.ReturnedAt.IsZero() {
		h.ReturnedAt = r.clock.Now().UTC()
	}
	base := `
		INSERT INTO returned_hoppers (
			reference, bag_id, ingredient_id, issued_weight,
			returned_weight, photo_ref, returned_by, returned_at
		) VALUES (` + placeholder(1) + `, ` + placeholder(2) + `, ` + placeholder(3) + `, ` + placeholder(4) + `, ` + placeholder(5) + `, ` + placeholder(6) + `, ` + placeholder(7) + `, ` + placeholder(8) + `)`
	vals := []interface{}{
		h.Reference, h.BagID, h.IngredientID, h.IssuedWeight,
		h.ReturnedWeight, h.PhotoRef, h.ReturnedBy, formatDateInDatabase(h.ReturnedAt),
	}

	var err error
	if supportsReturning() {
		err = r.db.QueryRow(base+" RETURNING id", vals...).Scan(&h.ID)
	} else {
		res, e := r.db.Exec(base, vals...)
		if e != nil {
			err = e
		} else {
			h.ID, err = res.LastInsertId()
		}
	}
	return h.ID, err
}

func (r *ReturnedHopperRepository) FindByID(id int64) (*domain.ReturnedHopper, error) {
	query := `SELECT` + returnedHopperColumns + `FROM returned_hoppers WHERE id = ` + placeholder(1)
	var h domain.ReturnedHopper
	err := r.db.QueryRow(query, id).Scan(
		&h.ID, &h.Reference, &h.BagID, &h.IngredientID, &h.IssuedWeight,
		&h.ReturnedWeight, &h.PhotoRef, &h.ReturnedBy, &h.ReturnedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *ReturnedHopperRepository) FindAllByBagID(bagID int64) ([]*domain.ReturnedHopper, error) {
	query := `SELECT` + returnedHopperColumns + `FROM returned_hoppers
		WHERE bag_id = ` + placeholder(1) + ` ORDER BY returned_at ASC`
	rows, err := r.db.Query(query, bagID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hoppers []*domain.ReturnedHopper
	for rows.Next() {
		var h domain.ReturnedHopper
		if err := rows.Scan(
			&h.ID, &h.Reference, &h.BagID, &h.IngredientID, &h.IssuedWeight,
			&h.ReturnedWeight, &h.PhotoRef, &h.ReturnedBy, &h.ReturnedAt,
		); err != nil {
			return nil, err
		}
		hoppers = append(hoppers, &h)
	}
	return hoppers, rows.Err()
}

func (r *ReturnedHopperRepository) CountByBagID(bagID int64) (int, error) {
	query := `SELECT COUNT(1) FROM returned_hoppers WHERE bag_id = ` + placeholder(1)
	var count int
	err := r.db.QueryRow(query, bagID).Scan(&count)
	return count, err
}
