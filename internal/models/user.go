package models

import (
	"time"

	"github.com/google/uuid"
)

// Role values accepted by the authorization layer.
const (
	RoleUser     = "USER"
	RoleEmployee = "EMPLOYEE"
	RoleAdmin    = "ADMIN"
)

// User is the single identity record for the shop. Password is nil for
// accounts created through a federated provider that never set one.
// RefreshToken holds the one currently valid refresh token, so each account
// has at most one active session.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	FirstName    string    `gorm:"size:100;not null" json:"firstName"`
	LastName     string    `gorm:"size:100;not null" json:"lastName"`
	Password     *string   `json:"-"`
	Role         string    `gorm:"size:20;not null;default:'USER'" json:"role"`
	Verified     bool      `gorm:"not null;default:false" json:"verified"`
	Provider     *string   `gorm:"size:50" json:"-"`
	RefreshToken *string   `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProviderName returns the provider tag, or "local" for password accounts.
func (u *User) ProviderName() string {
	if u.Provider == nil || *u.Provider == "" {
		return "local"
	}
	return *u.Provider
}
