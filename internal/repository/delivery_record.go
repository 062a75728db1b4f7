package repository

import (
	"database/sql"
	"log/slog"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/pkg/vendhub/core"
)

// DeliveryRecordRepository persists notification delivery attempts for
// observability.
type DeliveryRecordRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewDeliveryRecordRepository(db *sql.DB, clock core.Clock) *DeliveryRecordRepository {
	return &DeliveryRecordRepository{db: db, clock: clock}
}

func (r *DeliveryRecordRepository) Save(rec *domain.DeliveryRecord) (int64, error) {
	base := `
		INSERT INTO delivery_log (recipient_id, event, message, status, error, date_time)
		VALUES (` + placeholder(1) + `, ` + placeholder(2) + `, ` + placeholder(3) + `, ` + placeholder(4) + `, ` + placeholder(5) + `, ` + placeholder(6) + `)`
	vals := []interface{}{
		rec.RecipientID, rec.Event, rec.Message, rec.Status, rec.Error, formatDateInDatabase(rec.DateTime),
	}

	var err error
	if supportsReturning() {
		err = r.db.QueryRow(base+" RETURNING id", vals...).Scan(&rec.ID)
	} else {
		res, e := r.db.Exec(base, vals...)
		if e != nil {
			err = e
		} else {
			rec.ID, err = res.LastInsertId()
		}
	}

	if err != nil {
		slog.Error("Failed to save delivery record", "error", err)
	}
	return rec.ID, err
}

func (r *DeliveryRecordRepository) FindFailed(limit int) ([]*domain.DeliveryRecord, error) {
	query := `
		SELECT id, recipient_id, event, message, status, error, date_time
		FROM delivery_log WHERE status = ` + placeholder(1) + `
		ORDER BY id DESC LIMIT ` + placeholder(2)
	rows, err := r.db.Query(query, domain.DeliveryFailed, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.DeliveryRecord
	for rows.Next() {
		var rec domain.DeliveryRecord
		if err := rows.Scan(&rec.ID, &rec.RecipientID, &rec.Event, &rec.Message, &rec.Status, &rec.Error, &rec.DateTime); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
