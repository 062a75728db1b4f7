package repository

import (
	"database/sql"
	"time"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/pkg/vendhub/core"
)

// UserRepository provides persistence methods for the users table.
type UserRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewUserRepository(db *sql.DB, clock core.Clock) *UserRepository {
	return &UserRepository{db: db, clock: clock}
}

const userColumns = ` id, username, password, role, chat_id, session_id, api_key, session_expiry, created, enabled `

// Save inserts a new user and returns its generated id.
// It will set Created to now if it's not provided.
func (r *UserRepository) Save(u *domain.User) (int64, error) {
	if !u.Created.Valid {
		u.Created = sql.NullTime{Time: r.clock.Now().UTC(), Valid: true}
	}
	base := `
		INSERT INTO users (username, password, role, chat_id, session_id, api_key, session_expiry, created, enabled)
		VALUES (` + placeholder(1) + `,` + placeholder(2) + `,` + placeholder(3) + `,` + placeholder(4) + `,` + placeholder(5) + `,` + placeholder(6) + `,` + placeholder(7) + `,` + placeholder(8) + `,` + placeholder(9) + `)`
	vals := []interface{}{
		u.Username, u.Password, u.Role, u.ChatID, u.SessionID, u.ApiKey,
		formatDateInDatabaseNull(u.SessionExpiry), formatDateInDatabaseNull(u.Created), u.Enabled,
	}

	var id int64
	var err error
	if supportsReturning() {
		err = r.db.QueryRow(base+" RETURNING id", vals...).Scan(&id)
	} else {
		res, e := r.db.Exec(base, vals...)
		if e != nil {
			err = e
		} else {
			id, err = res.LastInsertId()
		}
	}
	u.ID = id
	return id, err
}

func (r *UserRepository) scanOne(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Password, &u.Role, &u.ChatID, &u.SessionID,
		&u.ApiKey, &u.SessionExpiry, &u.Created, &u.Enabled,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindById(id int64) (*domain.User, error) {
	query := `SELECT` + userColumns + `FROM users WHERE id = ` + placeholder(1)
	return r.scanOne(r.db.QueryRow(query, id))
}

func (r *UserRepository) FindByUsername(username string) (*domain.User, error) {
	query := `SELECT` + userColumns + `FROM users WHERE username = ` + placeholder(1)
	return r.scanOne(r.db.QueryRow(query, username))
}

func (r *UserRepository) FindByApiKey(apiKey string) (*domain.User, error) {
	query := `SELECT` + userColumns + `FROM users WHERE api_key = ` + placeholder(1) + ` AND enabled = ` + placeholder(2)
	return r.scanOne(r.db.QueryRow(query, apiKey, true))
}

// FindBySessionID returns the user only while the session has not expired.
func (r *UserRepository) FindBySessionID(sessionID string, now time.Time) (*domain.User, error) {
	query := `SELECT` + userColumns + `FROM users
		WHERE session_id = ` + placeholder(1) + ` AND session_expiry > ` + placeholder(2) + ` AND enabled = ` + placeholder(3)
	return r.scanOne(r.db.QueryRow(query, sessionID, formatDateInDatabase(now), true))
}

func (r *UserRepository) FindAll() ([]*domain.User, error) {
	query := `SELECT` + userColumns + `FROM users ORDER BY username`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

// FindEnabledByRole is the notification audience query; resolved at dispatch
// time so role changes take effect immediately.
func (r *UserRepository) FindEnabledByRole(role string) ([]*domain.User, error) {
	query := `SELECT` + userColumns + `FROM users
		WHERE role = ` + placeholder(1) + ` AND enabled = ` + placeholder(2) + ` ORDER BY username`
	rows, err := r.db.Query(query, role, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func scanUsers(rows *sql.Rows) ([]*domain.User, error) {
	var users []*domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Password, &u.Role, &u.ChatID, &u.SessionID,
			&u.ApiKey, &u.SessionExpiry, &u.Created, &u.Enabled,
		); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (r *UserRepository) UpdateSession(userID int64, sessionID string, expiry time.Time) error {
	query := `UPDATE users SET session_id = ` + placeholder(1) + `, session_expiry = ` + placeholder(2) + ` WHERE id = ` + placeholder(3)
	_, err := r.db.Exec(query, sessionID, formatDateInDatabase(expiry), userID)
	return err
}

func (r *UserRepository) ClearSessionBySessionID(sessionID string) error {
	query := `UPDATE users SET session_id = NULL, session_expiry = NULL WHERE session_id = ` + placeholder(1)
	_, err := r.db.Exec(query, sessionID)
	return err
}

func (r *UserRepository) SetEnabled(id int64, enabled bool) error {
	query := `UPDATE users SET enabled = ` + placeholder(1) + ` WHERE id = ` + placeholder(2)
	_, err := r.db.Exec(query, enabled, id)
	return err
}

func (r *UserRepository) CountAll() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(1) FROM users`).Scan(&count)
	return count, err
}
