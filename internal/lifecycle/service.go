// Package lifecycle moves solutions through draft, published and archived,
// gating each change on ownership, the publish checklist and lock state.
//
// Mutations run in one transaction that first locks the solution row, then
// evaluates lock state, then writes. References created concurrently by
// buyers insert rows with a foreign key to the solution, so they wait for
// the mutation to commit and cannot slip in between check and write.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/automarket/automarket/internal/database"
	"github.com/automarket/automarket/internal/lock"
	"github.com/automarket/automarket/internal/solution"
	"github.com/automarket/automarket/internal/specialist"
	"github.com/automarket/automarket/internal/telemetry"
)

// Actor is the caller of a lifecycle operation.
type Actor struct {
	AccountID uuid.UUID
	Admin     bool
}

// SolutionStore is the persistence the lifecycle needs.
type SolutionStore interface {
	Create(ctx context.Context, s *solution.Solution) error
	GetByID(ctx context.Context, id uuid.UUID) (*solution.Solution, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*solution.Solution, error)
	ListBySpecialist(ctx context.Context, specialistID uuid.UUID) ([]solution.Solution, error)
	Update(ctx context.Context, s *solution.Solution) error
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) (*solution.Solution, error)
	MarkArchived(ctx context.Context, id uuid.UUID, at time.Time) (*solution.Solution, error)
	AppendEvent(ctx context.Context, e *solution.Event) error
}

// ProfileReader resolves the specialist profile of an account.
type ProfileReader interface {
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*specialist.Profile, error)
}

// LockResolver reports whether a solution is locked.
type LockResolver interface {
	StateOf(ctx context.Context, solutionID uuid.UUID) (lock.State, error)
}

// Service implements the solution lifecycle.
type Service struct {
	tx        database.TxRunner
	solutions SolutionStore
	profiles  ProfileReader
	locks     LockResolver
	timeout   time.Duration
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds every operation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithClock replaces time.Now for publish and archive timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a lifecycle Service.
func NewService(tx database.TxRunner, solutions SolutionStore, profiles ProfileReader, locks LockResolver, opts ...Option) *Service {
	s := &Service{
		tx:        tx,
		solutions: solutions,
		profiles:  profiles,
		locks:     locks,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateDraft creates a draft owned by the caller's specialist profile. The
// listing snapshots the specialist's live commission percent.
func (s *Service) CreateDraft(ctx context.Context, actor Actor, fields solution.Patch) (_ *solution.Solution, err error) {
	ctx, finish := s.begin(ctx, "CreateDraft", uuid.Nil)
	defer func() { err = finish(err) }()

	profile, err := s.profiles.GetByAccountID(ctx, actor.AccountID)
	if err != nil {
		if errors.Is(err, specialist.ErrNotFound) {
			return nil, ErrNoProfile
		}
		return nil, fmt.Errorf("loading specialist profile: %w", err)
	}

	title := ""
	if fields.Title != nil {
		title = *fields.Title
	}
	slug, err := solution.NewSlug(title)
	if err != nil {
		return nil, fmt.Errorf("generating slug: %w", err)
	}

	draft := &solution.Solution{
		SpecialistID:   profile.ID,
		Slug:           slug,
		Status:         solution.StatusDraft,
		CommissionRate: profile.CommissionPercent(),
	}
	draft.Apply(fields)

	if err := s.solutions.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("creating solution: %w", err)
	}

	slog.Info("solution draft created",
		"solutionId", draft.ID,
		"specialistId", profile.ID,
		"commissionRate", draft.CommissionRate,
	)
	return draft, nil
}

// Get returns a solution visible to the caller. Published listings are
// visible to everyone; other statuses only to the owner and admins.
func (s *Service) Get(ctx context.Context, actor Actor, id uuid.UUID) (_ *solution.Solution, err error) {
	ctx, finish := s.begin(ctx, "Get", id)
	defer func() { err = finish(err) }()

	sol, err := s.load(ctx, id, s.solutions.GetByID)
	if err != nil {
		return nil, err
	}
	if sol.Status == solution.StatusPublished {
		return sol, nil
	}
	if err := s.authorize(ctx, actor, sol); err != nil {
		return nil, err
	}
	return sol, nil
}

// ListMine returns the caller's own solutions, newest first.
func (s *Service) ListMine(ctx context.Context, actor Actor) (_ []solution.Solution, err error) {
	ctx, finish := s.begin(ctx, "ListMine", uuid.Nil)
	defer func() { err = finish(err) }()

	profile, err := s.profiles.GetByAccountID(ctx, actor.AccountID)
	if err != nil {
		if errors.Is(err, specialist.ErrNotFound) {
			return []solution.Solution{}, nil
		}
		return nil, fmt.Errorf("loading specialist profile: %w", err)
	}
	return s.solutions.ListBySpecialist(ctx, profile.ID)
}

// LockState reports the current lock state to the owner or an admin.
func (s *Service) LockState(ctx context.Context, actor Actor, id uuid.UUID) (_ lock.State, err error) {
	ctx, finish := s.begin(ctx, "LockState", id)
	defer func() { err = finish(err) }()

	sol, err := s.load(ctx, id, s.solutions.GetByID)
	if err != nil {
		return lock.State{}, err
	}
	if err := s.authorize(ctx, actor, sol); err != nil {
		return lock.State{}, err
	}
	return s.locks.StateOf(ctx, id)
}

// UpdateDraft applies patch to a draft or published solution. Published
// listings must still satisfy the publish checklist afterwards.
func (s *Service) UpdateDraft(ctx context.Context, actor Actor, id uuid.UUID, patch solution.Patch) (_ *solution.Solution, err error) {
	ctx, finish := s.begin(ctx, "UpdateDraft", id)
	defer func() { err = finish(err) }()

	var updated *solution.Solution
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		sol, err := s.load(ctx, id, s.solutions.GetForUpdate)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, actor, sol); err != nil {
			return err
		}
		if sol.Status == solution.StatusArchived {
			return ErrInvalidTransition
		}
		if err := s.ensureUnlocked(ctx, id); err != nil {
			return err
		}

		sol.Apply(patch)
		if sol.Status == solution.StatusPublished {
			if missing := solution.MissingPublishFields(sol); len(missing) > 0 {
				return &ValidationError{Missing: missing}
			}
		}

		if err := s.solutions.Update(ctx, sol); err != nil {
			return fmt.Errorf("updating solution: %w", err)
		}
		updated = sol
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Publish moves a draft to published after checking every required field.
// Moderation is approved automatically.
func (s *Service) Publish(ctx context.Context, actor Actor, id uuid.UUID) (_ *solution.Solution, err error) {
	ctx, finish := s.begin(ctx, "Publish", id)
	defer func() { err = finish(err) }()

	var published *solution.Solution
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		sol, err := s.load(ctx, id, s.solutions.GetForUpdate)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, actor, sol); err != nil {
			return err
		}
		if sol.Status != solution.StatusDraft {
			return ErrInvalidTransition
		}
		if missing := solution.MissingPublishFields(sol); len(missing) > 0 {
			return &ValidationError{Missing: missing}
		}

		published, err = s.transition(ctx, actor, sol, solution.StatusPublished, s.solutions.MarkPublished)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.announce(actor, id, solution.StatusDraft, solution.StatusPublished)
	return published, nil
}

// Archive retires a solution. Drafts are archived without a lock check;
// anything else must be unlocked. Archiving twice is an invalid transition.
func (s *Service) Archive(ctx context.Context, actor Actor, id uuid.UUID) (_ *solution.Solution, err error) {
	ctx, finish := s.begin(ctx, "Archive", id)
	defer func() { err = finish(err) }()

	var (
		archived *solution.Solution
		from     string
	)
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		sol, err := s.load(ctx, id, s.solutions.GetForUpdate)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, actor, sol); err != nil {
			return err
		}

		switch sol.Status {
		case solution.StatusArchived:
			return ErrInvalidTransition
		case solution.StatusDraft:
			// Nothing can reference a draft.
		default:
			if err := s.ensureUnlocked(ctx, id); err != nil {
				return err
			}
		}

		from = sol.Status
		archived, err = s.transition(ctx, actor, sol, solution.StatusArchived, s.solutions.MarkArchived)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.announce(actor, id, from, solution.StatusArchived)
	return archived, nil
}

// begin starts a span and applies the operation timeout. The returned
// finish classifies the error and records rejections.
func (s *Service) begin(ctx context.Context, op string, id uuid.UUID) (context.Context, func(error) error) {
	ctx, span := telemetry.Tracer().Start(ctx, "lifecycle."+op)
	if id != uuid.Nil {
		span.SetAttributes(attribute.String("solution.id", id.String()))
	}

	cancel := context.CancelFunc(func() {})
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}

	return ctx, func(err error) error {
		defer span.End()
		defer cancel()

		err = classify(err)
		if err != nil {
			reason := rejectionReason(err)
			telemetry.RecordRejection(op, reason)
			span.SetAttributes(attribute.String("lifecycle.rejection", reason))
			if errors.Is(err, ErrStoreUnavailable) {
				span.RecordError(err)
				span.SetStatus(codes.Error, "store unavailable")
				slog.Error("lifecycle operation failed", "operation", op, "solutionId", id, "error", err)
			}
		}
		return err
	}
}

func (s *Service) load(ctx context.Context, id uuid.UUID, get func(context.Context, uuid.UUID) (*solution.Solution, error)) (*solution.Solution, error) {
	sol, err := get(ctx, id)
	if err != nil {
		if errors.Is(err, solution.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading solution: %w", err)
	}
	return sol, nil
}

// authorize allows admins and the specialist owning sol.
func (s *Service) authorize(ctx context.Context, actor Actor, sol *solution.Solution) error {
	if actor.Admin {
		return nil
	}
	profile, err := s.profiles.GetByAccountID(ctx, actor.AccountID)
	if err != nil {
		if errors.Is(err, specialist.ErrNotFound) {
			return ErrUnauthorized
		}
		return fmt.Errorf("loading specialist profile: %w", err)
	}
	if profile.ID != sol.SpecialistID {
		return ErrUnauthorized
	}
	return nil
}

// ensureUnlocked fails closed: a resolver error aborts the operation.
func (s *Service) ensureUnlocked(ctx context.Context, id uuid.UUID) error {
	state, err := s.locks.StateOf(ctx, id)
	if err != nil {
		return fmt.Errorf("resolving lock state: %w", err)
	}
	if state.Locked {
		return &LockedError{Reason: state.Reason}
	}
	return nil
}

// transition writes the new status and its outbox event in the caller's transaction.
func (s *Service) transition(
	ctx context.Context,
	actor Actor,
	sol *solution.Solution,
	to string,
	mark func(context.Context, uuid.UUID, time.Time) (*solution.Solution, error),
) (*solution.Solution, error) {
	at := s.now().UTC()

	updated, err := mark(ctx, sol.ID, at)
	if err != nil {
		return nil, fmt.Errorf("marking solution %s: %w", to, err)
	}

	event := &solution.Event{
		SolutionID: sol.ID,
		FromStatus: sol.Status,
		ToStatus:   to,
		ActorID:    actor.AccountID,
		OccurredAt: at,
	}
	if err := s.solutions.AppendEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("recording transition: %w", err)
	}
	return updated, nil
}

// announce reports a committed transition.
func (s *Service) announce(actor Actor, id uuid.UUID, from, to string) {
	telemetry.RecordTransition(to)
	slog.Info("solution transitioned",
		"solutionId", id,
		"from", from,
		"to", to,
		"actorId", actor.AccountID,
	)
}
