// Package engagement opens bids, conversations and orders against published
// solutions and moves them through their statuses.
package engagement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/automarket/automarket/internal/bid"
	"github.com/automarket/automarket/internal/commission"
	"github.com/automarket/automarket/internal/conversation"
	"github.com/automarket/automarket/internal/database"
	"github.com/automarket/automarket/internal/order"
	"github.com/automarket/automarket/internal/solution"
)

var (
	// ErrSolutionNotFound is returned when the referenced solution does not exist.
	ErrSolutionNotFound = errors.New("solution not found")

	// ErrNotPublished is returned when a buyer engages with a solution that
	// is not published.
	ErrNotPublished = errors.New("solution is not published")

	// ErrNoPrice is returned when an order is placed on a listing without
	// an implementation price.
	ErrNoPrice = errors.New("solution has no implementation price")

	// ErrInvalidStatus is returned for an unknown status value.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrNotDelivered is returned when completing an order that is not delivered.
	ErrNotDelivered = errors.New("order is not delivered")

	// ErrNotFound is returned when the bid, conversation or order does not exist.
	ErrNotFound = errors.New("record not found")
)

// SolutionReader reads the solution an engagement refers to, holding a
// share lock until the transaction ends.
type SolutionReader interface {
	GetForShare(ctx context.Context, id uuid.UUID) (*solution.Solution, error)
}

// SalesCounter increments a specialist's completed-sales counter.
type SalesCounter interface {
	IncrementCompletedSales(ctx context.Context, specialistID uuid.UUID) error
}

// Service coordinates engagement writes.
type Service struct {
	tx            database.TxRunner
	solutions     SolutionReader
	bids          bid.Repository
	conversations conversation.Repository
	orders        order.Repository
	sales         SalesCounter
	now           func() time.Time
}

// NewService creates an engagement Service.
func NewService(
	tx database.TxRunner,
	solutions SolutionReader,
	bids bid.Repository,
	conversations conversation.Repository,
	orders order.Repository,
	sales SalesCounter,
) *Service {
	return &Service{
		tx:            tx,
		solutions:     solutions,
		bids:          bids,
		conversations: conversations,
		orders:        orders,
		sales:         sales,
		now:           time.Now,
	}
}

// publishedSolution loads solutionID under a share lock. A concurrent archive
// either commits first, and the buyer sees it archived, or waits for us.
func (s *Service) publishedSolution(ctx context.Context, solutionID uuid.UUID) (*solution.Solution, error) {
	sol, err := s.solutions.GetForShare(ctx, solutionID)
	if err != nil {
		if errors.Is(err, solution.ErrNotFound) {
			return nil, ErrSolutionNotFound
		}
		return nil, fmt.Errorf("loading solution: %w", err)
	}
	if sol.Status != solution.StatusPublished {
		return nil, ErrNotPublished
	}
	return sol, nil
}

// OpenBid submits a buyer bid on a published solution.
func (s *Service) OpenBid(ctx context.Context, buyerID, solutionID uuid.UUID) (*bid.Bid, error) {
	b := &bid.Bid{SolutionID: solutionID, BuyerID: buyerID, Status: bid.StatusSubmitted}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.publishedSolution(ctx, solutionID); err != nil {
			return err
		}
		return s.bids.Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("bid submitted", "bidId", b.ID, "solutionId", solutionID, "buyerId", buyerID)
	return b, nil
}

// OpenConversation starts a pending buyer discussion about a published solution.
func (s *Service) OpenConversation(ctx context.Context, buyerID, solutionID uuid.UUID) (*conversation.Conversation, error) {
	c := &conversation.Conversation{SolutionID: solutionID, BuyerID: buyerID, Status: conversation.StatusPending}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.publishedSolution(ctx, solutionID); err != nil {
			return err
		}
		return s.conversations.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("conversation opened", "conversationId", c.ID, "solutionId", solutionID, "buyerId", buyerID)
	return c, nil
}

// PlaceOrder orders a published solution at its implementation price. The
// split uses the listing's commission snapshot, not the specialist's live tier.
// Payment is not collected here; the order starts in pending_payment.
func (s *Service) PlaceOrder(ctx context.Context, buyerID, solutionID uuid.UUID) (*order.Order, error) {
	var o *order.Order
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		sol, err := s.publishedSolution(ctx, solutionID)
		if err != nil {
			return err
		}
		if sol.ImplementationPriceCents == nil {
			return ErrNoPrice
		}

		split := commission.SplitOf(*sol.ImplementationPriceCents, sol.CommissionRate)
		o = &order.Order{
			SolutionID:       sol.ID,
			SpecialistID:     sol.SpecialistID,
			BuyerID:          buyerID,
			Status:           order.StatusPendingPayment,
			GrossCents:       split.GrossCents,
			CommissionRate:   split.Percent,
			PlatformFeeCents: split.PlatformFeeCents,
			PayoutCents:      split.PayoutCents,
		}
		return s.orders.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("order placed",
		"orderId", o.ID,
		"solutionId", solutionID,
		"grossCents", o.GrossCents,
		"platformFeeCents", o.PlatformFeeCents,
	)
	return o, nil
}

// guardSolution share-locks the solution a record belongs to, so a status
// change waits behind any lifecycle mutation holding the row. Moving a record
// into an active status requires the solution to be published.
func (s *Service) guardSolution(ctx context.Context, solutionID uuid.UUID, activating bool) error {
	sol, err := s.solutions.GetForShare(ctx, solutionID)
	if err != nil {
		if errors.Is(err, solution.ErrNotFound) {
			return ErrSolutionNotFound
		}
		return fmt.Errorf("loading solution: %w", err)
	}
	if activating && sol.Status != solution.StatusPublished {
		return ErrNotPublished
	}
	return nil
}

// SetBidStatus moves a bid to status.
func (s *Service) SetBidStatus(ctx context.Context, id uuid.UUID, status string) (*bid.Bid, error) {
	if !bid.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	var updated *bid.Bid
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		b, err := s.bids.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, bid.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("loading bid: %w", err)
		}
		if err := s.guardSolution(ctx, b.SolutionID, bid.IsActive(status)); err != nil {
			return err
		}
		updated, err = s.bids.SetStatus(ctx, id, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetConversationStatus moves a conversation to status.
func (s *Service) SetConversationStatus(ctx context.Context, id uuid.UUID, status string) (*conversation.Conversation, error) {
	if !conversation.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	var updated *conversation.Conversation
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		c, err := s.conversations.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, conversation.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("loading conversation: %w", err)
		}
		if err := s.guardSolution(ctx, c.SolutionID, conversation.IsActive(status)); err != nil {
			return err
		}
		updated, err = s.conversations.SetStatus(ctx, id, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetOrderStatus moves an order to any status except completed, which only
// CompleteOrder may set.
func (s *Service) SetOrderStatus(ctx context.Context, id uuid.UUID, status string) (*order.Order, error) {
	if !order.ValidStatus(status) || status == order.StatusCompleted {
		return nil, ErrInvalidStatus
	}

	var updated *order.Order
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("loading order: %w", err)
		}
		if err := s.guardSolution(ctx, o.SolutionID, order.IsActive(status)); err != nil {
			return err
		}
		updated, err = s.orders.SetStatus(ctx, id, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CompleteOrder moves a delivered order to completed and credits the sale to
// the specialist in the same transaction.
func (s *Service) CompleteOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var completed *order.Order
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("loading order: %w", err)
		}
		if o.Status != order.StatusDelivered {
			return ErrNotDelivered
		}

		completed, err = s.orders.MarkCompleted(ctx, id, s.now().UTC())
		if err != nil {
			return fmt.Errorf("completing order: %w", err)
		}
		if err := s.sales.IncrementCompletedSales(ctx, o.SpecialistID); err != nil {
			return fmt.Errorf("crediting completed sale: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("order completed", "orderId", id, "specialistId", completed.SpecialistID)
	return completed, nil
}
