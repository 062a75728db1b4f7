package repository

import (
	"database/sql"
	"time"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/pkg/vendhub/core"
)

// CashEntryRepository provides persistence methods for the cash_entries
// table. The reconciliation writes are conditional on reconciled = false and
// status = PENDING so a verdict can only ever be applied once.
type CashEntryRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewCashEntryRepository(db *sql.DB, clock core.Clock) *CashEntryRepository {
	return &CashEntryRepository{db: db, clock: clock}
}

const cashEntryColumns = ` id, reference, machine_id, operator_id, amount, photo_ref, note,
		status, reconciled, reconciled_by, reconciled_at, reject_reason, collected_at `

func (r *CashEntryRepository) Save(e *domain.CashEntry) (int64, error) {
	if e.CollectedAt.IsZero() {
		e.CollectedAt = r.clock.Now().UTC()
	}
	base := `
		INSERT INTO cash_entries (
			reference, machine_id, operator_id, amount, photo_ref, note,
			status, reconciled, collected_at
		) VALUES (` + placeholder(1) + `, ` + placeholder(2) + `, ` + placeholder(3) + `, ` + placeholder(4) + `, ` + placeholder(5) + `, ` + placeholder(6) + `, ` + placeholder(7) + `, ` + placeholder(8) + `, ` + placeholder(9) + `)`
	vals := []interface{}{
		e.Reference, e.MachineID, e.OperatorID, e.Amount, e.PhotoRef, e.Note,
		e.Status, e.Reconciled, formatDateInDatabase(e.CollectedAt),
	}

	var err error
	if supportsReturning() {
		err = r.db.QueryRow(base+" RETURNING id", vals...).Scan(&e.ID)
	} else {
		res, er := r.db.Exec(base, vals...)
		if er != nil {
			err = er
		} else {
			e.ID, err = res.LastInsertId()
		}
	}
	return e.ID, err
}

func scanCashEntry(scan func(dest ...interface{}) error) (*domain.CashEntry, error) {
	var e domain.CashEntry
	err := scan(
		&e.ID, &e.Reference, &e.MachineID, &e.OperatorID, &e.Amount, &e.PhotoRef, &e.Note,
		&e.Status, &e.Reconciled, &e.ReconciledBy, &e.ReconciledAt, &e.RejectReason, &e.CollectedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *CashEntryRepository) FindByID(id int64) (*domain.CashEntry, error) {
	query := `SELECT` + cashEntryColumns + `FROM cash_entries WHERE id = ` + placeholder(1)
	return scanCashEntry(r.db.QueryRow(query, id).Scan)
}

func (r *CashEntryRepository) FindByReference(reference string) (*domain.CashEntry, error) {
	query := `SELECT` + cashEntryColumns + `FROM cash_entries WHERE reference = ` + placeholder(1)
	return scanCashEntry(r.db.QueryRow(query, reference).Scan)
}

func (r *CashEntryRepository) FindPending(limit int) ([]*domain.CashEntry, error) {
	query := `SELECT` + cashEntryColumns + `FROM cash_entries
		WHERE reconciled = ` + placeholder(1) + ` AND status = ` + placeholder(2) + `
		ORDER BY collected_at ASC LIMIT ` + placeholder(3)
	rows, err := r.db.Query(query, false, domain.CashEntryPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.CashEntry
	for rows.Next() {
		e, err := scanCashEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkReconciled applies the confirm verdict. Returns false when the entry
// already has a verdict.
func (r *CashEntryRepository) MarkReconciled(id int64, approverID int64, at time.Time) (bool, error) {
	query := `
		UPDATE cash_entries
		SET reconciled = ` + placeholder(1) + `, status = ` + placeholder(2) + `,
		    reconciled_by = ` + placeholder(3) + `, reconciled_at = ` + placeholder(4) + `
		WHERE id = ` + placeholder(5) + ` AND reconciled = ` + placeholder(6) + ` AND status = ` + placeholder(7)
	res, err := r.db.Exec(query,
		true, domain.CashEntryApproved, approverID, formatDateInDatabase(at),
		id, false, domain.CashEntryPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// MarkRejected applies the reject verdict. Returns false when the entry
// already has a verdict.
func (r *CashEntryRepository) MarkRejected(id int64, approverID int64, reason string, at time.Time) (bool, error) {
	query := `
		UPDATE cash_entries
		SET status = ` + placeholder(1) + `, reconciled_by = ` + placeholder(2) + `,
		    reconciled_at = ` + placeholder(3) + `, reject_reason = ` + placeholder(4) + `
		WHERE id = ` + placeholder(5) + ` AND reconciled = ` + placeholder(6) + ` AND status = ` + placeholder(7)
	res, err := r.db.Exec(query,
		domain.CashEntryRejected, approverID, formatDateInDatabase(at), reason,
		id, false, domain.CashEntryPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
