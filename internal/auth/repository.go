package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrAccountNotFound is returned when an account record is not found.
var ErrAccountNotFound = errors.New("account not found")

// ErrAccountRevoked is returned when attempting to operate on a revoked account.
var ErrAccountRevoked = errors.New("account is revoked")

// AccountRepository provides operations on the accounts table.
type AccountRepository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByPrefix(ctx context.Context, prefix string) ([]Account, error)
	List(ctx context.Context) ([]Account, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	CountAll(ctx context.Context) (int, error)
}
