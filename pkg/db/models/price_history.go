package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceHistoryEntry records what a brewery paid for an ingredient on a date.
// IngredientID must resolve to an existing inventory item.
type PriceHistoryEntry struct {
	ID           int             `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	BreweryID    *string         `gorm:"column:brewery_id" json:"breweryId"`
	IngredientID *int            `gorm:"column:ingredient_id" json:"ingredientId"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	Supplier     *string         `gorm:"column:supplier" json:"supplier"`
	Date         time.Time       `gorm:"column:date;not null" json:"date"`
	Notes        *string         `gorm:"column:notes" json:"notes"`
	CreatedAt    time.Time       `gorm:"column:created_at;not null" json:"createdAt"`
}

func (PriceHistoryEntry) TableName() string { return "ingredient_price_history" }
