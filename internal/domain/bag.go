package domain

import (
	"database/sql"
	"time"
)

const (
	BagStatusDispatched = "DISPATCHED"
	BagStatusReturned   = "RETURNED"
)

// Bag is a kit of hoppers issued to an operator for one maintenance run.
type Bag struct {
	ID         int64          `json:"id"`
	Code       string         `json:"code"`
	MachineID  sql.NullInt64  `json:"machineId"`
	OperatorID sql.NullInt64  `json:"operatorId"`
	Status     string         `json:"status"`
	Note       sql.NullString `json:"note"`
	Created    time.Time      `json:"created"`
}

// BagItem is one hopper inside a bag with the weight it was issued at.
type BagItem struct {
	ID           int64   `json:"id"`
	BagID        int64   `json:"bagId"`
	IngredientID int64   `json:"ingredientId"`
	IssuedWeight float64 `json:"issuedWeight"`
}
