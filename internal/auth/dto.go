package auth

import (
	"time"

	"github.com/kolschhq/kolsch-backend/pkg/db/models"
)

// SignupRequest onboards a brewery together with its owner account.
type SignupRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	BreweryName     string `json:"breweryName" validate:"required"`
	BreweryType     string `json:"breweryType" validate:"required"`
	BreweryLocation string `json:"breweryLocation" validate:"required"`

	// IP is filled in by the controller for rate limiting, never by clients.
	IP string `json:"-"`
}

// LoginRequest authenticates an existing user by username.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`

	IP string `json:"-"`
}

// Handle identifies an issued session. The controller turns it into a
// cookie; the payload itself stays server side.
type Handle struct {
	SID       string
	ExpiresAt time.Time
}

// Identity is the resolved session state attached to request contexts.
type Identity struct {
	User      *models.User
	BreweryID *string
}

// sessionPayload is what gets persisted as the session body.
type sessionPayload struct {
	UserID    string  `json:"userID"`
	BreweryID *string `json:"breweryID,omitempty"`
}
