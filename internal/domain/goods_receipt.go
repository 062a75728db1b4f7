package domain

import (
	"database/sql"
	"time"
)

type GoodsReceipt struct {
	ID           int64          `json:"id"`
	Reference    string         `json:"reference"`
	IngredientID int64          `json:"ingredientId"`
	Weight       float64        `json:"weight"`
	SupplierNote sql.NullString `json:"supplierNote"`
	PhotoRef     sql.NullString `json:"photoRef"`
	ReceivedBy   int64          `json:"receivedBy"`
	ReceivedAt   time.Time      `json:"receivedAt"`
}
