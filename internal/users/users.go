// Package users defines the user and role model consumed by the
// authentication core, plus the narrow store contracts it reads and
// updates through.
package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

// Role names form a closed set. Anything else maps to RoleUnknown.
const (
	RoleAdministrator = "Administrator"
	RoleRecipeUser    = "Recipe User"
	RoleUnknown       = "Unknown"
)

// Role is a named capability grant. Roles are read-only from the
// authentication core's perspective.
type Role struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// NormalizeRoleName collapses unrecognized role names to RoleUnknown.
func NormalizeRoleName(name string) string {
	switch name {
	case RoleAdministrator, RoleRecipeUser:
		return name
	default:
		return RoleUnknown
	}
}

// User is an account record. PasswordHash is an Argon2id PHC string and
// never leaves the server.
type User struct {
	ID                     uuid.UUID
	Username               string
	PasswordHash           string
	LastLogin              *time.Time
	FailedLoginAttempts    int
	LastFailedLoginAttempt *time.Time
	Disabled               bool
	UpdatedAt              time.Time
}

// Store is the user persistence contract required by the authentication
// service. Username lookup is case-insensitive.
type Store interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	Update(ctx context.Context, user *User) error
}

// RoleStore resolves the roles granted to a user.
type RoleStore interface {
	RolesForUser(ctx context.Context, userID uuid.UUID) ([]Role, error)
}
