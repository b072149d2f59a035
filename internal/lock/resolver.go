// Package lock decides whether a solution may currently be mutated or
// archived, based on in-flight bids, buyer conversations and orders.
//
// Lock state is derived on every call and never cached. A failed lookup is
// returned as an error and must never be read as "unlocked".
package lock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/automarket/automarket/internal/bid"
	"github.com/automarket/automarket/internal/conversation"
	"github.com/automarket/automarket/internal/order"
	"github.com/automarket/automarket/internal/telemetry"
)

// Reasons reported for a locked solution.
const (
	ReasonActiveBid          = "active bid"
	ReasonActiveConversation = "active buyer discussion"
	ReasonActiveOrder        = "active project"
)

// State is a point-in-time lock decision.
type State struct {
	Locked bool   `json:"locked"`
	Reason string `json:"reason,omitempty"`
}

// Unlocked is the state of a solution with no in-flight references.
var Unlocked = State{}

// BidFinder looks up an active bid for a solution. It returns bid.ErrNotFound
// when there is none.
type BidFinder interface {
	FindActiveForSolution(ctx context.Context, solutionID uuid.UUID) (*bid.Bid, error)
}

// ConversationFinder looks up an active conversation for a solution. It
// returns conversation.ErrNotFound when there is none.
type ConversationFinder interface {
	FindActiveForSolution(ctx context.Context, solutionID uuid.UUID) (*conversation.Conversation, error)
}

// OrderFinder looks up an active order for a solution. It returns
// order.ErrNotFound when there is none.
type OrderFinder interface {
	FindActiveForSolution(ctx context.Context, solutionID uuid.UUID) (*order.Order, error)
}

// Resolver computes lock state from the three collaborators.
type Resolver struct {
	bids          BidFinder
	conversations ConversationFinder
	orders        OrderFinder
}

// NewResolver creates a Resolver.
func NewResolver(bids BidFinder, conversations ConversationFinder, orders OrderFinder) *Resolver {
	return &Resolver{bids: bids, conversations: conversations, orders: orders}
}

// check is one lookup in the fixed evaluation order.
type check struct {
	reason string
	name   string
	found  func(ctx context.Context, id uuid.UUID) (bool, error)
}

// StateOf reports whether solutionID is locked. Checks run in the order
// bids, conversations, orders and stop at the first match, so the reason
// names only the earliest blocking condition.
func (r *Resolver) StateOf(ctx context.Context, solutionID uuid.UUID) (State, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "lock.StateOf")
	defer span.End()
	span.SetAttributes(attribute.String("solution.id", solutionID.String()))

	checks := []check{
		{reason: ReasonActiveBid, name: "bids", found: func(ctx context.Context, id uuid.UUID) (bool, error) {
			b, err := r.bids.FindActiveForSolution(ctx, id)
			return present(b, err, bid.ErrNotFound)
		}},
		{reason: ReasonActiveConversation, name: "conversations", found: func(ctx context.Context, id uuid.UUID) (bool, error) {
			c, err := r.conversations.FindActiveForSolution(ctx, id)
			return present(c, err, conversation.ErrNotFound)
		}},
		{reason: ReasonActiveOrder, name: "orders", found: func(ctx context.Context, id uuid.UUID) (bool, error) {
			o, err := r.orders.FindActiveForSolution(ctx, id)
			return present(o, err, order.ErrNotFound)
		}},
	}

	for _, c := range checks {
		found, err := c.found(ctx, solutionID)
		if err != nil {
			err = fmt.Errorf("checking active %s: %w", c.name, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "lock check failed")
			telemetry.RecordLockCheck("error")
			return State{}, err
		}
		if found {
			span.SetAttributes(attribute.Bool("lock.locked", true), attribute.String("lock.reason", c.reason))
			telemetry.RecordLockCheck("locked")
			return State{Locked: true, Reason: c.reason}, nil
		}
	}

	span.SetAttributes(attribute.Bool("lock.locked", false))
	telemetry.RecordLockCheck("unlocked")
	return Unlocked, nil
}

// present interprets a finder result: a record means found, the finder's
// not-found sentinel means absent, anything else is a lookup failure.
func present[T any](rec *T, err, notFound error) (bool, error) {
	switch {
	case err == nil:
		return rec != nil, nil
	case errors.Is(err, notFound):
		return false, nil
	default:
		return false, err
	}
}
