package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Brewing schedule statuses.
const (
	ScheduleScheduled  = "scheduled"
	ScheduleInProgress = "in-progress"
	ScheduleCompleted  = "completed"
	ScheduleCancelled  = "cancelled"
)

// BrewingSchedule plans one brew run. Recipe and equipment references, when
// set, must point at rows owned by the same brewery.
type BrewingSchedule struct {
	ID          int              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	BreweryID   *string          `gorm:"column:brewery_id" json:"breweryId"`
	Title       string           `gorm:"column:title;not null" json:"title"`
	Description *string          `gorm:"column:description" json:"description"`
	RecipeID    *int             `gorm:"column:recipe_id" json:"recipeId"`
	EquipmentID *int             `gorm:"column:equipment_id" json:"equipmentId"`
	StartDate   time.Time        `gorm:"column:start_date;not null" json:"startDate"`
	EndDate     time.Time        `gorm:"column:end_date;not null" json:"endDate"`
	Status      string           `gorm:"column:status;not null;default:'scheduled'" json:"status"`
	BatchSize   *decimal.Decimal `gorm:"column:batch_size;type:numeric(10,2)" json:"batchSize"`
	Notes       *string          `gorm:"column:notes" json:"notes"`
	CreatedAt   time.Time        `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;not null" json:"updatedAt"`
}

func (BrewingSchedule) TableName() string { return "brewing_schedules" }

// ValidScheduleStatus reports whether status is a known schedule state.
func ValidScheduleStatus(status string) bool {
	switch status {
	case ScheduleScheduled, ScheduleInProgress, ScheduleCompleted, ScheduleCancelled:
		return true
	}
	return false
}
