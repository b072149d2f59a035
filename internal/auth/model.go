package auth

import (
	"time"

	"github.com/google/uuid"
)

// Account roles.
const (
	RoleBuyer      = "buyer"
	RoleSpecialist = "specialist"
	RoleAdmin      = "admin"
)

// ValidRole reports whether role is a known account role.
func ValidRole(role string) bool {
	switch role {
	case RoleBuyer, RoleSpecialist, RoleAdmin:
		return true
	}
	return false
}

// Account represents a row in the accounts table.
type Account struct {
	ID           uuid.UUID
	Name         string
	Role         string
	ApiKeyPrefix string
	ApiKeyHash   string
	CreatedAt    time.Time
	RevokedAt    *time.Time
}

// Identity is stored in the request context after authentication.
type Identity struct {
	AccountID uuid.UUID
	Name      string
	Role      string
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
