package domain

import "time"

const (
	CountTypeIngredient = "INGREDIENT"
	CountTypeWater      = "WATER"
)

type InventoryCount struct {
	ID           int64     `json:"id"`
	Reference    string    `json:"reference"`
	CountType    string    `json:"countType"`
	IngredientID int64     `json:"ingredientId"`
	SystemWeight float64   `json:"systemWeight"`
	ActualWeight float64   `json:"actualWeight"`
	Discrepancy  float64   `json:"discrepancy"`
	CountedBy    int64     `json:"countedBy"`
	CountedAt    time.Time `json:"countedAt"`
}
