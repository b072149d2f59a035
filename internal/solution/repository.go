package solution

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a solution record is not found.
var ErrNotFound = errors.New("solution not found")

// ErrDuplicateSlug is returned when a generated slug collides with an existing one.
var ErrDuplicateSlug = errors.New("solution slug already exists")

// Repository provides operations on the solutions and solution_events tables.
type Repository interface {
	Create(ctx context.Context, s *Solution) error
	GetByID(ctx context.Context, id uuid.UUID) (*Solution, error)
	// GetForUpdate reads the row with SELECT ... FOR UPDATE. It must be
	// called inside a transaction; the lock is held until commit.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Solution, error)
	// GetForShare reads the row with SELECT ... FOR SHARE.
	GetForShare(ctx context.Context, id uuid.UUID) (*Solution, error)
	ListBySpecialist(ctx context.Context, specialistID uuid.UUID) ([]Solution, error)
	// Update writes the editable content fields of s.
	Update(ctx context.Context, s *Solution) error
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) (*Solution, error)
	MarkArchived(ctx context.Context, id uuid.UUID, at time.Time) (*Solution, error)
	AppendEvent(ctx context.Context, e *Event) error
	ListEvents(ctx context.Context, solutionID uuid.UUID) ([]Event, error)
}
