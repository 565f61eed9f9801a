package models

import (
	"time"

	"github.com/shopspring/decimal"

	dbtypes "github.com/kolschhq/kolsch-backend/pkg/db/types"
)

// Recipe holds a beer recipe. Ingredients and instructions are ordered lists
// and must be non-empty once submitted.
type Recipe struct {
	ID               int                `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	BreweryID        *string            `gorm:"column:brewery_id" json:"breweryId"`
	Name             string             `gorm:"column:name;not null" json:"name"`
	Style            *string            `gorm:"column:style" json:"style"`
	BatchSize        *decimal.Decimal   `gorm:"column:batch_size;type:numeric(10,2)" json:"batchSize"`
	TargetABV        *decimal.Decimal   `gorm:"column:target_abv;type:numeric(4,2)" json:"targetAbv"`
	TargetIBU        *int               `gorm:"column:target_ibu" json:"targetIbu"`
	SRM              *int               `gorm:"column:srm" json:"srm"`
	Ingredients      dbtypes.StringList `gorm:"column:ingredients;type:jsonb;not null" json:"ingredients"`
	Instructions     dbtypes.StringList `gorm:"column:instructions;type:jsonb;not null" json:"instructions"`
	FermentationTemp *string            `gorm:"column:fermentation_temp" json:"fermentationTemp"`
	FermentationTime *string            `gorm:"column:fermentation_time" json:"fermentationTime"`
	Description      *string            `gorm:"column:description" json:"description"`
	ImageURL         *string            `gorm:"column:image_url" json:"imageUrl"`
	CreatedAt        time.Time          `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;not null" json:"updatedAt"`
}

func (Recipe) TableName() string { return "recipes" }
