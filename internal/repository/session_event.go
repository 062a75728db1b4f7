package repository

import (
	"database/sql"
	"log/slog"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/pkg/vendhub/core"
)

// SessionEventRepository persists the audit trail of workflow sessions.
type SessionEventRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewSessionEventRepository(db *sql.DB, clock core.Clock) *SessionEventRepository {
	return &SessionEventRepository{db: db, clock: clock}
}

func (r *SessionEventRepository) Save(e *domain.SessionEvent) (int64, error) {
	base := `
		INSERT INTO session_events (
			user_id, workflow_id, step_index, type, text, date_time
		) VALUES (
			` + placeholder(1) + `, ` + placeholder(2) + `, ` + placeholder(3) + `, ` + placeholder(4) + `, ` + placeholder(5) + `, ` + placeholder(6) + `
		)`
	vals := []interface{}{
		e.UserID, e.WorkflowID, e.StepIndex, e.Type, e.Text, formatDateInDatabase(e.DateTime),
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

	if err != nil {
		slog.Error("Failed to save session event", "error", err)
	}
	return e.ID, err
}

func (r *SessionEventRepository) FindAllByUserID(userID int64, limit int) ([]*domain.SessionEvent, error) {
	query := `
		SELECT id, user_id, workflow_id, step_index, type, text, date_time
		FROM session_events WHERE user_id = ` + placeholder(1) + `
		ORDER BY id DESC LIMIT ` + placeholder(2)
	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.SessionEvent
	for rows.Next() {
		var e domain.SessionEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.WorkflowID, &e.StepIndex, &e.Type, &e.Text, &e.DateTime); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
