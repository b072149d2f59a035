package lifecycle_test

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/automarket/automarket/internal/lock"
	"github.com/automarket/automarket/internal/solution"
	"github.com/automarket/automarket/internal/specialist"
)

type fakeTx struct {
	calls int
}

func (f *fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeSolutions struct {
	rows      map[uuid.UUID]*solution.Solution
	events    []solution.Event
	getErr    error
	updateErr error
	locked    []uuid.UUID
}

func newFakeSolutions() *fakeSolutions {
	return &fakeSolutions{rows: map[uuid.UUID]*solution.Solution{}}
}

func (f *fakeSolutions) put(s *solution.Solution) *solution.Solution {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	f.rows[s.ID] = &cp
	return s
}

func (f *fakeSolutions) Create(_ context.Context, s *solution.Solution) error {
	s.ID = uuid.New()
	s.ModerationStatus = solution.ModerationPending
	s.CreatedAt = time.Now()
	f.put(s)
	return nil
}

func (f *fakeSolutions) GetByID(_ context.Context, id uuid.UUID) (*solution.Solution, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.rows[id]
	if !ok {
		return nil, solution.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSolutions) GetForUpdate(ctx context.Context, id uuid.UUID) (*solution.Solution, error) {
	f.locked = append(f.locked, id)
	return f.GetByID(ctx, id)
}

func (f *fakeSolutions) ListBySpecialist(_ context.Context, specialistID uuid.UUID) ([]solution.Solution, error) {
	out := []solution.Solution{}
	for _, s := range f.rows {
		if s.SpecialistID == specialistID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSolutions) Update(_ context.Context, s *solution.Solution) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.rows[s.ID]; !ok {
		return solution.ErrNotFound
	}
	f.put(s)
	return nil
}

func (f *fakeSolutions) mark(id uuid.UUID, apply func(*solution.Solution)) (*solution.Solution, error) {
	s, ok := f.rows[id]
	if !ok {
		return nil, solution.ErrNotFound
	}
	apply(s)
	cp := *s
	return &cp, nil
}

func (f *fakeSolutions) MarkPublished(_ context.Context, id uuid.UUID, at time.Time) (*solution.Solution, error) {
	return f.mark(id, func(s *solution.Solution) {
		s.Status = solution.StatusPublished
		s.PublishedAt = &at
		s.ModerationStatus = solution.ModerationApproved
	})
}

func (f *fakeSolutions) MarkArchived(_ context.Context, id uuid.UUID, at time.Time) (*solution.Solution, error) {
	return f.mark(id, func(s *solution.Solution) {
		s.Status = solution.StatusArchived
		s.ArchivedAt = &at
	})
}

func (f *fakeSolutions) AppendEvent(_ context.Context, e *solution.Event) error {
	e.ID = uuid.New()
	f.events = append(f.events, *e)
	return nil
}

type fakeProfiles struct {
	byAccount map[uuid.UUID]*specialist.Profile
	err       error
}

func (f *fakeProfiles) GetByAccountID(_ context.Context, accountID uuid.UUID) (*specialist.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.byAccount[accountID]
	if !ok {
		return nil, specialist.ErrNotFound
	}
	return p, nil
}

type fakeLocks struct {
	state lock.State
	err   error
	calls int
}

func (f *fakeLocks) StateOf(context.Context, uuid.UUID) (lock.State, error) {
	f.calls++
	return f.state, f.err
}

var errBoom = errors.New("connection refused")
