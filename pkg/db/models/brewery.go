package models

import "time"

// Brewery is the tenant root. Its id is an opaque GUID assigned at signup and
// never changed afterwards.
type Brewery struct {
	ID              string    `gorm:"column:id;primaryKey" json:"id"`
	Name            string    `gorm:"column:name;not null" json:"name"`
	Type            string    `gorm:"column:type;not null" json:"type"`
	Location        string    `gorm:"column:location;not null" json:"location"`
	FoundedYear     *int      `gorm:"column:founded_year" json:"foundedYear"`
	Website         *string   `gorm:"column:website" json:"website"`
	Phone           *string   `gorm:"column:phone" json:"phone"`
	BrewingCapacity *string   `gorm:"column:brewing_capacity" json:"brewingCapacity"`
	Specialties     *string   `gorm:"column:specialties" json:"specialties"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Brewery) TableName() string { return "breweries" }
