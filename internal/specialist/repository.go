package specialist

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a specialist profile does not exist.
var ErrNotFound = errors.New("specialist profile not found")

// ErrDuplicateProfile is returned when an account already has a profile.
var ErrDuplicateProfile = errors.New("account already has a specialist profile")

// Repository provides operations on the specialist_profiles table.
type Repository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*Profile, error)
	// SetCommissionOverride stores percent, or clears the override when nil.
	SetCommissionOverride(ctx context.Context, id uuid.UUID, percent *float64) (*Profile, error)
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) (*Profile, error)
	// PromoteFounding marks the profile as founding and assigns the next rank.
	// Promoting an existing founding specialist keeps its original rank.
	PromoteFounding(ctx context.Context, id uuid.UUID) (*Profile, error)
	IncrementCompletedSales(ctx context.Context, id uuid.UUID) error
}
