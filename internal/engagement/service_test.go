package engagement_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automarket/automarket/internal/bid"
	"github.com/automarket/automarket/internal/conversation"
	"github.com/automarket/automarket/internal/database/dbtest"
	"github.com/automarket/automarket/internal/engagement"
	"github.com/automarket/automarket/internal/order"
	"github.com/automarket/automarket/internal/solution"
	"github.com/automarket/automarket/internal/specialist"
)

func TestSetStatus_RejectsUnknownStatus(t *testing.T) {
	svc := engagement.NewService(nil, nil, nil, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.SetBidStatus(ctx, uuid.New(), "won")
	assert.ErrorIs(t, err, engagement.ErrInvalidStatus)

	_, err = svc.SetConversationStatus(ctx, uuid.New(), "open")
	assert.ErrorIs(t, err, engagement.ErrInvalidStatus)

	_, err = svc.SetOrderStatus(ctx, uuid.New(), "shipped")
	assert.ErrorIs(t, err, engagement.ErrInvalidStatus)

	_, err = svc.SetOrderStatus(ctx, uuid.New(), order.StatusCompleted)
	assert.ErrorIs(t, err, engagement.ErrInvalidStatus, "completion goes through CompleteOrder")
}

func newBidStatusService(status string) (*engagement.Service, *fakeTx, *fakeSolutions, *fakeBids, uuid.UUID) {
	sol := &solution.Solution{ID: uuid.New(), Status: status}
	b := &bid.Bid{ID: uuid.New(), SolutionID: sol.ID, Status: bid.StatusWithdrawn}

	tx := &fakeTx{}
	solutions := &fakeSolutions{rows: map[uuid.UUID]*solution.Solution{sol.ID: sol}}
	bids := &fakeBids{rows: map[uuid.UUID]*bid.Bid{b.ID: b}}
	return engagement.NewService(tx, solutions, bids, nil, nil, nil), tx, solutions, bids, b.ID
}

func TestSetBidStatus_ReactivationSharesSolutionRow(t *testing.T) {
	svc, tx, solutions, bids, id := newBidStatusService(solution.StatusPublished)

	b, err := svc.SetBidStatus(context.Background(), id, bid.StatusAccepted)
	require.NoError(t, err)

	assert.Equal(t, bid.StatusAccepted, b.Status)
	assert.Equal(t, 1, tx.calls)
	assert.Len(t, solutions.shared, 1)
	assert.Equal(t, 1, bids.statusCalls)
}

func TestSetBidStatus_ReactivationRequiresPublishedSolution(t *testing.T) {
	for _, status := range []string{solution.StatusArchived, solution.StatusPaused, solution.StatusDraft} {
		t.Run(status, func(t *testing.T) {
			svc, _, _, bids, id := newBidStatusService(status)

			_, err := svc.SetBidStatus(context.Background(), id, bid.StatusAccepted)
			assert.ErrorIs(t, err, engagement.ErrNotPublished)
			assert.Zero(t, bids.statusCalls)
		})
	}
}

func TestSetBidStatus_DeactivationOnArchivedSolution(t *testing.T) {
	svc, _, solutions, _, id := newBidStatusService(solution.StatusArchived)

	b, err := svc.SetBidStatus(context.Background(), id, bid.StatusExpired)
	require.NoError(t, err)
	assert.Equal(t, bid.StatusExpired, b.Status)
	assert.Len(t, solutions.shared, 1)
}

func TestSetBidStatus_UnknownBid(t *testing.T) {
	svc, _, _, _, _ := newBidStatusService(solution.StatusPublished)

	_, err := svc.SetBidStatus(context.Background(), uuid.New(), bid.StatusRejected)
	assert.ErrorIs(t, err, engagement.ErrNotFound)
}

type fixture struct {
	svc          *engagement.Service
	pool         *pgxpool.Pool
	solutions    *solution.PostgresRepository
	specialists  *specialist.PostgresRepository
	specialistID uuid.UUID
	buyerID      uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.Open(t)
	pool := db.Pool()
	f := &fixture{
		pool:        pool,
		solutions:   solution.NewPostgresRepository(pool),
		specialists: specialist.NewPostgresRepository(pool),
		buyerID:     dbtest.SeedAccount(t, pool, "buyer"),
	}
	f.specialistID, _ = dbtest.SeedSpecialist(t, pool)
	f.svc = engagement.NewService(db, f.solutions,
		bid.NewPostgresRepository(pool),
		conversation.NewPostgresRepository(pool),
		order.NewPostgresRepository(pool),
		f.specialists,
	)
	return f
}

// publishedSolution seeds a listing priced at 250000 with a 13% snapshot.
func (f *fixture) publishedSolution(t *testing.T) uuid.UUID {
	t.Helper()

	price := int64(250000)
	s := &solution.Solution{
		SpecialistID:             f.specialistID,
		Slug:                     "listing-" + uuid.NewString()[:6],
		Title:                    "Listing",
		ImplementationPriceCents: &price,
		CommissionRate:           13,
	}
	require.NoError(t, f.solutions.Create(context.Background(), s))
	_, err := f.solutions.MarkPublished(context.Background(), s.ID, time.Now())
	require.NoError(t, err)
	return s.ID
}

func TestOpenBidAndConversation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	solutionID := f.publishedSolution(t)

	b, err := f.svc.OpenBid(ctx, f.buyerID, solutionID)
	require.NoError(t, err)
	assert.Equal(t, bid.StatusSubmitted, b.Status)

	c, err := f.svc.OpenConversation(ctx, f.buyerID, solutionID)
	require.NoError(t, err)
	assert.Equal(t, conversation.StatusPending, c.Status)

	b, err = f.svc.SetBidStatus(ctx, b.ID, bid.StatusShortlisted)
	require.NoError(t, err)
	assert.Equal(t, bid.StatusShortlisted, b.Status)

	_, err = f.svc.SetConversationStatus(ctx, uuid.New(), conversation.StatusClosed)
	assert.ErrorIs(t, err, engagement.ErrNotFound)
}

func TestEngagementRequiresPublishedSolution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	draftID := dbtest.SeedSolution(t, f.pool, f.specialistID)

	_, err := f.svc.OpenBid(ctx, f.buyerID, draftID)
	assert.ErrorIs(t, err, engagement.ErrNotPublished)

	_, err = f.svc.PlaceOrder(ctx, f.buyerID, draftID)
	assert.ErrorIs(t, err, engagement.ErrNotPublished)

	_, err = f.svc.OpenConversation(ctx, f.buyerID, uuid.New())
	assert.ErrorIs(t, err, engagement.ErrSolutionNotFound)
}

func TestPlaceOrder_UsesSnapshotRate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	solutionID := f.publishedSolution(t)

	// The specialist's live rate has since changed; the order keeps 13%.
	pct := 5.0
	_, err := f.specialists.SetCommissionOverride(ctx, f.specialistID, &pct)
	require.NoError(t, err)

	o, err := f.svc.PlaceOrder(ctx, f.buyerID, solutionID)
	require.NoError(t, err)

	assert.Equal(t, order.StatusPendingPayment, o.Status)
	assert.Equal(t, int64(250000), o.GrossCents)
	assert.Equal(t, 13.0, o.CommissionRate)
	assert.Equal(t, int64(32500), o.PlatformFeeCents)
	assert.Equal(t, int64(217500), o.PayoutCents)
}

func TestCompleteOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	solutionID := f.publishedSolution(t)

	o, err := f.svc.PlaceOrder(ctx, f.buyerID, solutionID)
	require.NoError(t, err)

	_, err = f.svc.CompleteOrder(ctx, o.ID)
	assert.ErrorIs(t, err, engagement.ErrNotDelivered)

	_, err = f.svc.SetOrderStatus(ctx, o.ID, order.StatusDelivered)
	require.NoError(t, err)

	done, err := f.svc.CompleteOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)

	p, err := f.specialists.GetByID(ctx, f.specialistID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CompletedSales)

	_, err = f.svc.CompleteOrder(ctx, o.ID)
	assert.ErrorIs(t, err, engagement.ErrNotDelivered)

	p, err = f.specialists.GetByID(ctx, f.specialistID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CompletedSales, "a sale is credited once")

	_, err = f.svc.CompleteOrder(ctx, uuid.New())
	assert.ErrorIs(t, err, engagement.ErrNotFound)
}
