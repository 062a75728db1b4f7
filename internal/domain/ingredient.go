package domain

import "time"

// Ingredient is a stocked item tracked by weight in grams. Version is bumped
// on every stock write so concurrent adjustments can be detected.
type Ingredient struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Unit        string    `json:"unit"`
	StockWeight float64   `json:"stockWeight"`
	Version     int64     `json:"version"`
	Created     time.Time `json:"created"`
}
