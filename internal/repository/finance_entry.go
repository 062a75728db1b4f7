package repository

import (
	"database/sql"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/pkg/vendhub/core"
)

type FinanceEntryRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewFinanceEntryRepository(db *sql.DB, clock core.Clock) *FinanceEntryRepository {
	return &FinanceEntryRepository{db: db, clock: clock}
}

const financeEntryColumns = ` id, reference, kind, amount, category, note, entered_by, occurred_on, entered_at `

func (r *FinanceEntryRepository) Save(f *domain.FinanceEntry) (int64, error) {
	if f.EnteredAt.IsZero() {
		f.EnteredAt = r.clock.Now().UTC()
	}
	base := `
		INSERT INTO finance_entries (
			reference, kind, amount, category, note, entered_by, occurred_on, entered_at
		) VALUES (` + placeholder(1) + `, ` + placeholder(2) + `, ` + placeholder(3) + `, ` + placeholder(4) + `, ` + placeholder(5) + `, ` + placeholder(6) + `, ` + placeholder(7) + `, ` + placeholder(8) + `)`
	vals := []interface{}{
		f.Reference, f.Kind, f.Amount, f.Category, f.Note,
		f.EnteredBy, f.OccurredOn, formatDateInDatabase(f.EnteredAt),
	}

	var err error
	if supportsReturning() {
		err = r.db.QueryRow(base+" RETURNING id", vals...).Scan(&f.ID)
	} else {
		res, e := r.db.Exec(base, vals...)
		if e != nil {
			err = e
		} else {
			f.ID, err = res.LastInsertId()
		}
	}
	return f.ID, err
}

func (r *FinanceEntryRepository) FindByID(id int64) (*domain.FinanceEntry, error) {
	query := `SELECT` + financeEntryColumns + `FROM finance_entries WHERE id = ` + placeholder(1)
	var f domain.FinanceEntry
	err := r.db.QueryRow(query, id).Scan(
		&f.ID, &f.Reference, &f.Kind, &f.Amount, &f.Category, &f.Note,
		&f.EnteredBy, &f.OccurredOn, &f.EnteredAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FinanceEntryRepository) FindRecent(limit int) ([]*domain.FinanceEntry, error) {
	query := `SELECT` + financeEntryColumns + `FROM finance_entries ORDER BY entered_at DESC LIMIT ` + placeholder(1)
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.FinanceEntry
	for rows.Next() {
		var f domain.FinanceEntry
		if err := rows.Scan(
			&f.ID, &f.Reference, &f.Kind, &f.Amount, &f.Category, &f.Note,
			&f.EnteredBy, &f.OccurredOn, &f.EnteredAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &f)
	}
	return entries, rows.Err()
}
