package engagement_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/automarket/automarket/internal/bid"
	"github.com/automarket/automarket/internal/solution"
)

type fakeTx struct {
	calls int
}

func (f *fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeSolutions struct {
	rows   map[uuid.UUID]*solution.Solution
	shared []uuid.UUID
}

func (f *fakeSolutions) GetForShare(_ context.Context, id uuid.UUID) (*solution.Solution, error) {
	f.shared = append(f.shared, id)
	s, ok := f.rows[id]
	if !ok {
		return nil, solution.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

type fakeBids struct {
	rows        map[uuid.UUID]*bid.Bid
	statusCalls int
}

func (f *fakeBids) Create(_ context.Context, b *bid.Bid) error {
	b.ID = uuid.New()
	cp := *b
	f.rows[b.ID] = &cp
	return nil
}

func (f *fakeBids) GetByID(_ context.Context, id uuid.UUID) (*bid.Bid, error) {
	b, ok := f.rows[id]
	if !ok {
		return nil, bid.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBids) SetStatus(_ context.Context, id uuid.UUID, status string) (*bid.Bid, error) {
	f.statusCalls++
	b, ok := f.rows[id]
	if !ok {
		return nil, bid.ErrNotFound
	}
	b.Status = status
	cp := *b
	return &cp, nil
}

func (f *fakeBids) FindActiveForSolution(_ context.Context, solutionID uuid.UUID) (*bid.Bid, error) {
	for _, b := range f.rows {
		if b.SolutionID == solutionID && bid.IsActive(b.Status) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, bid.ErrNotFound
}
