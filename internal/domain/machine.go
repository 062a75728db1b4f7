package domain

import (
	"database/sql"
	"time"
)

type Machine struct {
	ID       int64          `json:"id"`
	Code     string         `json:"code"`
	Name     string         `json:"name"`
	Location sql.NullString `json:"location"`
	Active   bool           `json:"active"`
	Created  time.Time      `json:"created"`
}
