package repository

import (
	"database/sql"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/pkg/vendhub/core"
)

// BagRepository provides persistence for bags and the hoppers issued in them.
type BagRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewBagRepository(db *sql.DB, clock core.Clock) *BagRepository {
	return &BagRepository{db: db, clock: clock}
}

const bagColumns = ` id, code, machine_id, operator_id, status, note, created `

func (r *BagRepository) Save(b *domain.Bag) (int64, error) {
	if b.Created.IsZero() {
		b.Created = r.clock.Now().UTC()
	}
	if b.Status == "" {
		b.Status = domain.BagStatusDispatched
	}
	base := `
		INSERT INTO bags (code, machine_id, operator_id, status, note, created)
		VALUES (` + placeholder(1) + `, ` + placeholder(2) + `, ` + placeholder(3) + `, ` + placeholder(4) + `, ` + placeholder(5) + `, ` + placeholder(6) + `)`
	vals := []interface{}{b.Code, b.MachineID, b.OperatorID, b.Status, b.Note, formatDateInDatabase(b.Created)}

	var err error
	if supportsReturning() {
		err = r.db.QueryRow(base+" RETURNING id", vals...).Scan(&b.ID)
	} else {
		res, e := r.db.Exec(base, vals...)
		if e != nil {
			err = e
		} else {
			b.ID, err = res.LastInsertId()
		}
	}
	return b.ID, err
}

func (r *BagRepository) scanOne(row *sql.Row) (*domain.Bag, error) {
	var b domain.Bag
	err := row.Scan(&b.ID, &b.Code, &b.MachineID, &b.OperatorID, &b.Status, &b.Note, &b.Created)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BagRepository) FindByID(id int64) (*domain.Bag, error) {
	query := `SELECT` + bagColumns + `FROM bags WHERE id = ` + placeholder(1)
	return r.scanOne(r.db.QueryRow(query, id))
}

func (r *BagRepository) FindByCode(code string) (*domain.Bag, error) {
	query := `SELECT` + bagColumns + `FROM bags WHERE code = ` + placeholder(1)
	return r.scanOne(r.db.QueryRow(query, code))
}

func (r *BagRepository) ExistsByCode(code string) (bool, error) {
	query := `SELECT COUNT(1) FROM bags WHERE code = ` + placeholder(1)
	var count int
	if err := r.db.QueryRow(query, code).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *BagRepository) UpdateStatus(id int64, status string) error {
	query := `UPDATE bags SET status = ` + placeholder(1) + ` WHERE id = ` + placeholder(2)
	_, err := r.db.Exec(query, status, id)
	return err
}

func (r *BagRepository) SaveItem(item *domain.BagItem) (int64, error) {
	base := `
		INSERT INTO bag_items (bag_id, ingredient_id, issued_weight)
		VALUES (` + placeholder(1) + `, ` + placeholder(2) + `, ` + placeholder(3) + `)`
	vals := []interface{}{item.BagID, item.IngredientID, item.IssuedWeight}

	var err error
	if supportsReturning() {
		err = r.db.QueryRow(base+" RETURNING id", vals...).Scan(&item.ID)
	} else {
		res, e := r.db.Exec(base, vals...)
		if e != nil {
			err = e
		} else {
			item.ID, err = res.LastInsertId()
		}
	}
	return item.ID, err
}

func (r *BagRepository) FindItems(bagID int64) ([]domain.BagItem, error) {
	query := `SELECT id, bag_id, ingredient_id, issued_weight FROM bag_items
		WHERE bag_id = ` + placeholder(1) + ` ORDER BY id`
	rows, err := r.db.Query(query, bagID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.BagItem
	for rows.Next() {
		var it domain.BagItem
		if err := rows.Scan(&it.ID, &it.BagID, &it.IngredientID, &it.IssuedWeight); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
