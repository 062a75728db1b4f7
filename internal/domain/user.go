package domain

import (
	"database/sql"
)

const (
	RoleOperator  = "OPERATOR"
	RoleManager   = "MANAGER"
	RoleWarehouse = "WAREHOUSE"
	RoleAdmin     = "ADMIN"
)

type User struct {
	ID            int64          `json:"id"`
	Username      string         `json:"username"`
	Password      string         `json:"-"`
	Role          string         `json:"role"`
	ChatID        sql.NullString `json:"chatId"`
	SessionID     sql.NullString `json:"sessionId"`
	ApiKey        sql.NullString `json:"apiKey"`
	SessionExpiry sql.NullTime   `json:"sessionExpiry"`
	Created       sql.NullTime   `json:"created"`
	Enabled       sql.NullBool   `json:"enabled"`
}
