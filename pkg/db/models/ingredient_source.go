package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// IngredientSource records where a brewery buys an ingredient, including
// optional geocoordinates for the sourcing map.
type IngredientSource struct {
	ID        int              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	BreweryID *string          `gorm:"column:brewery_id" json:"breweryId"`
	Name      string           `gorm:"column:name;not null" json:"name"`
	Type      string           `gorm:"column:type;not null" json:"type"`
	Supplier  string           `gorm:"column:supplier;not null" json:"supplier"`
	Location  string           `gorm:"column:location;not null" json:"location"`
	Contact   *string          `gorm:"column:contact" json:"contact"`
	Rating    *int             `gorm:"column:rating" json:"rating"`
	Notes     *string          `gorm:"column:notes" json:"notes"`
	Latitude  *decimal.Decimal `gorm:"column:latitude;type:numeric(10,8)" json:"latitude"`
	Longitude *decimal.Decimal `gorm:"column:longitude;type:numeric(11,8)" json:"longitude"`
	CreatedAt time.Time        `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt time.Time        `gorm:"column:updated_at;not null" json:"updatedAt"`
}

func (IngredientSource) TableName() string { return "ingredient_sources" }
