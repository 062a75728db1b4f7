package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vendhub/vendhub/internal/workflow"
	"github.com/vendhub/vendhub/pkg/vendhub/core"
)

// SessionRepository is the SQL-backed workflow.Store. One row per user; form
// data travels as a JSON text column. Every session key is unique per user,
// so a single-row upsert is all the locking the engine needs.
type SessionRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewSessionRepository(db *sql.DB, clock core.Clock) *SessionRepository {
	return &SessionRepository{db: db, clock: clock}
}

func (r *SessionRepository) Get(userID int64) (workflow.Session, bool, error) {
	query := `SELECT user_id, workflow_id, step_index, form_data, started_at
		FROM sessions WHERE user_id = ` + placeholder(1)

	var s workflow.Session
	var formJSON string
	err := r.db.QueryRow(query, userID).Scan(&s.UserID, &s.WorkflowID, &s.StepIndex, &formJSON, &s.StartedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return workflow.Session{}, false, nil
	}
	if err != nil {
		return workflow.Session{}, false, err
	}

	s.Form = map[string]string{}
	if formJSON != "" && formJSON != "null" {
		if err := json.Unmarshal([]byte(formJSON), &s.Form); err != nil {
			return workflow.Session{}, false, fmt.Errorf("parse session form: %w", err)
		}
	}
	return s, true, nil
}

func (r *SessionRepository) Put(s workflow.Session) error {
	formJSON, err := json.Marshal(s.Form)
	if err != nil {
		return fmt.Errorf("encode session form: %w", err)
	}

	// delete-then-insert keeps the upsert portable across all three dialects
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sessions WHERE user_id = `+placeholder(1), s.UserID); err != nil {
		return err
	}
	insert := `INSERT INTO sessions (user_id, workflow_id, step_index, form_data, started_at)
		VALUES (` + placeholder(1) + `, ` + placeholder(2) + `, ` + placeholder(3) + `, ` + placeholder(4) + `, ` + placeholder(5) + `)`
	if _, err := tx.Exec(insert, s.UserID, s.WorkflowID, s.StepIndex, string(formJSON), formatDateInDatabase(s.StartedAt)); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SessionRepository) Delete(userID int64) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE user_id = `+placeholder(1), userID)
	return err
}
