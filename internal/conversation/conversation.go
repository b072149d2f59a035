// Package conversation stores buyer discussions about solutions.
package conversation

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Conversation statuses.
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusClosed   = "closed"
	StatusArchived = "archived"
)

// ActiveStatuses are the statuses in which a conversation locks its solution.
var ActiveStatuses = []string{StatusActive, StatusPending}

// Statuses lists every known status.
var Statuses = []string{StatusPending, StatusActive, StatusClosed, StatusArchived}

// ValidStatus reports whether s is a known conversation status.
func ValidStatus(s string) bool {
	return slices.Contains(Statuses, s)
}

// IsActive reports whether a conversation in status s locks its solution.
func IsActive(s string) bool {
	return slices.Contains(ActiveStatuses, s)
}

// ErrNotFound is returned when no matching conversation exists.
var ErrNotFound = errors.New("conversation not found")

// Conversation represents a row in the conversations table.
type Conversation struct {
	ID         uuid.UUID
	SolutionID uuid.UUID
	BuyerID    uuid.UUID
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Repository provides operations on the conversations table.
type Repository interface {
	Create(ctx context.Context, c *Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Conversation, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*Conversation, error)
	// FindActiveForSolution returns any active or pending conversation about
	// the solution, or ErrNotFound when there is none.
	FindActiveForSolution(ctx context.Context, solutionID uuid.UUID) (*Conversation, error)
}
