// Package bid stores buyer bids on solutions.
package bid

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Bid statuses.
const (
	StatusSubmitted   = "submitted"
	StatusShortlisted = "shortlisted"
	StatusAccepted    = "accepted"
	StatusRejected    = "rejected"
	StatusWithdrawn   = "withdrawn"
	StatusExpired     = "expired"
)

// ActiveStatuses are the statuses in which a bid locks its solution.
var ActiveStatuses = []string{StatusSubmitted, StatusShortlisted, StatusAccepted}

// Statuses lists every known status.
var Statuses = []string{
	StatusSubmitted, StatusShortlisted, StatusAccepted,
	StatusRejected, StatusWithdrawn, StatusExpired,
}

// ValidStatus reports whether s is a known bid status.
func ValidStatus(s string) bool {
	return slices.Contains(Statuses, s)
}

// IsActive reports whether a bid in status s locks its solution.
func IsActive(s string) bool {
	return slices.Contains(ActiveStatuses, s)
}

// ErrNotFound is returned when no matching bid exists.
var ErrNotFound = errors.New("bid not found")

// Bid represents a row in the bids table.
type Bid struct {
	ID         uuid.UUID
	SolutionID uuid.UUID
	BuyerID    uuid.UUID
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Repository provides operations on the bids table.
type Repository interface {
	Create(ctx context.Context, b *Bid) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bid, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*Bid, error)
	// FindActiveForSolution returns any bid on the solution in an active
	// status, or ErrNotFound when there is none.
	FindActiveForSolution(ctx context.Context, solutionID uuid.UUID) (*Bid, error)
}
