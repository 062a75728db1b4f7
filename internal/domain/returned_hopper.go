package domain

import (
	"database/sql"
	"time"
)

// ReturnedHopper records a hopper coming back from an operator run. The
// ingredient stock is adjusted by the returned weight in the same logical
// unit of work.
type ReturnedHopper struct {
	ID             int64          `json:"id"`
	Reference      string         `json:"reference"`
	BagID          int64          `json:"bagId"`
	IngredientID   int64          `json:"ingredientId"`
	IssuedWeight   float64        `json:"issuedWeight"`
	ReturnedWeight float64        `json:"returnedWeight"`
	PhotoRef       sql.NullString `json:"photoRef"`
	ReturnedBy     int64          `json:"returnedBy"`
	ReturnedAt     time.Time      `json:"returnedAt"`
}
