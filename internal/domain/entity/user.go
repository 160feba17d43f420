// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the account at the center of the system. It owns documents,
// templates and extraction jobs.
type User struct {
	ID           uuid.UUID  // The Global Unique Identifier (GUID) for the user.
	Email        string     // Unique contact email, usable as a login identifier.
	Username     string     // Unique short login name.
	FullName     string     // Optional display name.
	PasswordHash string     // Bcrypt hash of the user's password. Never exposed outside the domain.
	IsActive     bool       // Deactivated accounts cannot authenticate.
	IsSuperuser  bool       // Superusers receive the "admin" scope on login.
	LastLogin    *time.Time // Refreshed on every successful login.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Scopes returns the capability tags carried in this user's tokens.
func (u *User) Scopes() []string {
	scopes := []string{ScopeUser}
	if u.IsSuperuser {
		scopes = append(scopes, ScopeAdmin)
	}

	return scopes
}

// Capability tags carried in session tokens.
const (
	ScopeUser  = "user"
	ScopeAdmin = "admin"
)
