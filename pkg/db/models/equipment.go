package models

import "time"

// Equipment statuses.
const (
	EquipmentAvailable   = "available"
	EquipmentActive      = "active"
	EquipmentMaintenance = "maintenance"
	EquipmentRetired     = "retired"
)

// Equipment is a piece of brewhouse hardware owned by one brewery.
type Equipment struct {
	ID              int        `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	BreweryID       *string    `gorm:"column:brewery_id" json:"breweryId"`
	Name            string     `gorm:"column:name;not null" json:"name"`
	Type            string     `gorm:"column:type;not null" json:"type"`
	Capacity        *string    `gorm:"column:capacity" json:"capacity"`
	Status          string     `gorm:"column:status;not null;default:'available'" json:"status"`
	Location        *string    `gorm:"column:location" json:"location"`
	PurchaseDate    *time.Time `gorm:"column:purchase_date" json:"purchaseDate"`
	LastMaintenance *time.Time `gorm:"column:last_maintenance" json:"lastMaintenance"`
	NextMaintenance *time.Time `gorm:"column:next_maintenance" json:"nextMaintenance"`
	Notes           *string    `gorm:"column:notes" json:"notes"`
	ImageURL        *string    `gorm:"column:image_url" json:"imageUrl"`
	CreatedAt       time.Time  `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;not null" json:"updatedAt"`
}

func (Equipment) TableName() string { return "equipment" }
