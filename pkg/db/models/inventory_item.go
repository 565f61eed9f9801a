package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem tracks a stocked ingredient or supply owned by one brewery.
type InventoryItem struct {
	ID              int              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	BreweryID       *string          `gorm:"column:brewery_id" json:"breweryId"`
	Name            string           `gorm:"column:name;not null" json:"name"`
	Quantity        int              `gorm:"column:quantity;not null" json:"quantity"`
	CurrentQuantity int              `gorm:"column:current_quantity;not null" json:"currentQuantity"`
	MinimumQuantity int              `gorm:"column:minimum_quantity;not null" json:"minimumQuantity"`
	Unit            string           `gorm:"column:unit;not null" json:"unit"`
	Location        *string          `gorm:"column:location" json:"location"`
	ExpirationDate  *time.Time       `gorm:"column:expiration_date" json:"expirationDate"`
	Cost            *decimal.Decimal `gorm:"column:cost;type:numeric(10,2)" json:"cost"`
	Supplier        *string          `gorm:"column:supplier" json:"supplier"`
	Barcode         *string          `gorm:"column:barcode" json:"barcode"`
	Category        *string          `gorm:"column:category" json:"category"`
	Notes           *string          `gorm:"column:notes" json:"notes"`
	ImageURL        *string          `gorm:"column:image_url" json:"imageUrl"`
	Status          string           `gorm:"column:status;default:'good'" json:"status"`
	Forecast        string           `gorm:"column:forecast;default:'Sufficient'" json:"forecast"`
	CreatedAt       time.Time        `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;not null" json:"updatedAt"`
}

func (InventoryItem) TableName() string { return "inventory_items" }
