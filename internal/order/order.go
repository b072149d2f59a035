// Package order stores purchases of solutions and their commission split.
package order

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Order statuses.
const (
	StatusPendingPayment            = "pending_payment"
	StatusPaidPendingImplementation = "paid_pending_implementation"
	StatusInProgress                = "in_progress"
	StatusDelivered                 = "delivered"
	StatusDisputed                  = "disputed"
	StatusCompleted                 = "completed"
	StatusCancelled                 = "cancelled"
	StatusRefunded                  = "refunded"
)

// ActiveStatuses are the statuses in which money has moved and the order
// locks its solution.
var ActiveStatuses = []string{
	StatusPaidPendingImplementation, StatusInProgress, StatusDelivered, StatusDisputed,
}

// Statuses lists every known status.
var Statuses = []string{
	StatusPendingPayment, StatusPaidPendingImplementation, StatusInProgress, StatusDelivered,
	StatusDisputed, StatusCompleted, StatusCancelled, StatusRefunded,
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	return slices.Contains(Statuses, s)
}

// IsActive reports whether an order in status s locks its solution.
func IsActive(s string) bool {
	return slices.Contains(ActiveStatuses, s)
}

// ErrNotFound is returned when no matching order exists.
var ErrNotFound = errors.New("order not found")

// Order represents a row in the orders table. The split is computed once at
// placement from the listing's commission snapshot and never recomputed.
type Order struct {
	ID               uuid.UUID
	SolutionID       uuid.UUID
	SpecialistID     uuid.UUID
	BuyerID          uuid.UUID
	Status           string
	GrossCents       int64
	CommissionRate   float64
	PlatformFeeCents int64
	PayoutCents      int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CompletedAt      *time.Time
}

// Repository provides operations on the orders table.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*Order, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) (*Order, error)
	// FindActiveForSolution returns any order on the solution in an active
	// status, or ErrNotFound when there is none.
	FindActiveForSolution(ctx context.Context, solutionID uuid.UUID) (*Order, error)
}
