package models

import "time"

// Roles a user can hold within a brewery.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User is the identity entity. Username and email are unique across all
// tenants; BreweryID stays nil until the user joins a brewery.
type User struct {
	ID              string    `gorm:"column:id;primaryKey" json:"id"`
	Username        string    `gorm:"column:username;not null;uniqueIndex:users_username_key" json:"username"`
	Email           string    `gorm:"column:email;not null;uniqueIndex:users_email_key" json:"email"`
	Password        string    `gorm:"column:password;not null" json:"-"`
	FirstName       string    `gorm:"column:first_name;not null" json:"firstName"`
	LastName        string    `gorm:"column:last_name;not null" json:"lastName"`
	BreweryID       *string   `gorm:"column:brewery_id" json:"breweryId"`
	Role            string    `gorm:"column:role;not null;default:'member'" json:"role"`
	ProfileImageURL *string   `gorm:"column:profile_image_url" json:"profileImageUrl"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// ValidRole reports whether role is one of the known brewery roles.
func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}
