package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/automarket/automarket/internal/api/middleware"
	"github.com/automarket/automarket/internal/api/response"
	"github.com/automarket/automarket/internal/api/validation"
	"github.com/automarket/automarket/internal/bid"
	"github.com/automarket/automarket/internal/conversation"
	"github.com/automarket/automarket/internal/engagement"
	"github.com/automarket/automarket/internal/order"
)

// Engagements opens and moves bids, conversations and orders.
type Engagements interface {
	OpenBid(ctx context.Context, buyerID, solutionID uuid.UUID) (*bid.Bid, error)
	OpenConversation(ctx context.Context, buyerID, solutionID uuid.UUID) (*conversation.Conversation, error)
	PlaceOrder(ctx context.Context, buyerID, solutionID uuid.UUID) (*order.Order, error)
	SetBidStatus(ctx context.Context, id uuid.UUID, status string) (*bid.Bid, error)
	SetConversationStatus(ctx context.Context, id uuid.UUID, status string) (*conversation.Conversation, error)
	SetOrderStatus(ctx context.Context, id uuid.UUID, status string) (*order.Order, error)
	CompleteOrder(ctx context.Context, id uuid.UUID) (*order.Order, error)
}

type statusRequest struct {
	Status string `json:"status"`
}

// engagementResponse serves both bids and conversations.
type engagementResponse struct {
	ID         string `json:"id"`
	SolutionID string `json:"solutionId"`
	BuyerID    string `json:"buyerId"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

func toEngagementResponse(id, solutionID, buyerID uuid.UUID, status string, created, updated time.Time) engagementResponse {
	return engagementResponse{
		ID:         id.String(),
		SolutionID: solutionID.String(),
		BuyerID:    buyerID.String(),
		Status:     status,
		CreatedAt:  response.Time(created),
		UpdatedAt:  response.Time(updated),
	}
}

func bidResponse(b *bid.Bid) engagementResponse {
	return toEngagementResponse(b.ID, b.SolutionID, b.BuyerID, b.Status, b.CreatedAt, b.UpdatedAt)
}

func conversationResponse(c *conversation.Conversation) engagementResponse {
	return toEngagementResponse(c.ID, c.SolutionID, c.BuyerID, c.Status, c.CreatedAt, c.UpdatedAt)
}

type orderResponse struct {
	ID               string  `json:"id"`
	SolutionID       string  `json:"solutionId"`
	SpecialistID     string  `json:"specialistId"`
	BuyerID          string  `json:"buyerId"`
	Status           string  `json:"status"`
	GrossCents       int64   `json:"grossCents"`
	CommissionRate   float64 `json:"commissionRate"`
	PlatformFeeCents int64   `json:"platformFeeCents"`
	PayoutCents      int64   `json:"payoutCents"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
	CompletedAt      *string `json:"completedAt"`
}

func toOrderResponse(o *order.Order) orderResponse {
	return orderResponse{
		ID:               o.ID.String(),
		SolutionID:       o.SolutionID.String(),
		SpecialistID:     o.SpecialistID.String(),
		BuyerID:          o.BuyerID.String(),
		Status:           o.Status,
		GrossCents:       o.GrossCents,
		CommissionRate:   o.CommissionRate,
		PlatformFeeCents: o.PlatformFeeCents,
		PayoutCents:      o.PayoutCents,
		CreatedAt:        response.Time(o.CreatedAt),
		UpdatedAt:        response.Time(o.UpdatedAt),
		CompletedAt:      response.TimePtr(o.CompletedAt),
	}
}

// EngagementHandler handles buyer engagement and the admin status endpoints.
type EngagementHandler struct {
	engagements Engagements
}

// NewEngagementHandler creates a new EngagementHandler.
func NewEngagementHandler(engagements Engagements) *EngagementHandler {
	return &EngagementHandler{engagements: engagements}
}

// OpenBid handles POST /solutions/{id}/bids.
func (h *EngagementHandler) OpenBid(w http.ResponseWriter, r *http.Request) {
	solutionID, buyerID, ok := buyerTarget(w, r)
	if !ok {
		return
	}
	b, err := h.engagements.OpenBid(r.Context(), buyerID, solutionID)
	if err != nil {
		writeEngagementError(w, r, err)
		return
	}
	response.Success(w, http.StatusCreated, bidResponse(b), middleware.GetRequestID(r.Context()))
}

// OpenConversation handles POST /solutions/{id}/conversations.
func (h *EngagementHandler) OpenConversation(w http.ResponseWriter, r *http.Request) {
	solutionID, buyerID, ok := buyerTarget(w, r)
	if !ok {
		return
	}
	c, err := h.engagements.OpenConversation(r.Context(), buyerID, solutionID)
	if err != nil {
		writeEngagementError(w, r, err)
		return
	}
	response.Success(w, http.StatusCreated, conversationResponse(c), middleware.GetRequestID(r.Context()))
}

// PlaceOrder handles POST /solutions/{id}/orders.
func (h *EngagementHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	solutionID, buyerID, ok := buyerTarget(w, r)
	if !ok {
		return
	}
	o, err := h.engagements.PlaceOrder(r.Context(), buyerID, solutionID)
	if err != nil {
		writeEngagementError(w, r, err)
		return
	}
	response.Success(w, http.StatusCreated, toOrderResponse(o), middleware.GetRequestID(r.Context()))
}

// SetBidStatus handles PUT /bids/{id}/status.
func (h *EngagementHandler) SetBidStatus(w http.ResponseWriter, r *http.Request) {
	id, status, ok := statusChange(w, r, bid.ValidStatus, bid.Statuses)
	if !ok {
		return
	}
	b, err := h.engagements.SetBidStatus(r.Context(), id, status)
	if err != nil {
		writeEngagementError(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, bidResponse(b), middleware.GetRequestID(r.Context()))
}

// SetConversationStatus handles PUT /conversations/{id}/status.
func (h *EngagementHandler) SetConversationStatus(w http.ResponseWriter, r *http.Request) {
	id, status, ok := statusChange(w, r, conversation.ValidStatus, conversation.Statuses)
	if !ok {
		return
	}
	c, err := h.engagements.SetConversationStatus(r.Context(), id, status)
	if err != nil {
		writeEngagementError(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, conversationResponse(c), middleware.GetRequestID(r.Context()))
}

// SetOrderStatus handles PUT /orders/{id}/status. Completion has its own
// endpoint.
func (h *EngagementHandler) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, status, ok := statusChange(w, r, order.ValidStatus, order.Statuses)
	if !ok {
		return
	}
	o, err := h.engagements.SetOrderStatus(r.Context(), id, status)
	if err != nil {
		writeEngagementError(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, toOrderResponse(o), middleware.GetRequestID(r.Context()))
}

// CompleteOrder handles POST /orders/{id}/complete.
func (h *EngagementHandler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	o, err := h.engagements.CompleteOrder(r.Context(), id)
	if err != nil {
		writeEngagementError(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, toOrderResponse(o), middleware.GetRequestID(r.Context()))
}

// buyerTarget resolves the solution in the path and the calling buyer.
func buyerTarget(w http.ResponseWriter, r *http.Request) (solutionID, buyerID uuid.UUID, ok bool) {
	solutionID, ok = pathID(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return solutionID, middleware.GetIdentity(r.Context()).AccountID, true
}

// statusChange decodes and validates a {"status": ...} body.
func statusChange(w http.ResponseWriter, r *http.Request, valid func(string) bool, allowed []string) (uuid.UUID, string, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return uuid.Nil, "", false
	}
	var req statusRequest
	if !decodeBody(w, r, &req) {
		return uuid.Nil, "", false
	}
	if rejectInvalid(w, r, validation.ValidateStatus(req.Status, valid, allowed)) {
		return uuid.Nil, "", false
	}
	return id, req.Status, true
}

func writeEngagementError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())

	switch {
	case errors.Is(err, engagement.ErrSolutionNotFound):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Solution not found", requestID)
	case errors.Is(err, engagement.ErrNotFound):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Record not found", requestID)
	case errors.Is(err, engagement.ErrNotPublished):
		response.Err(w, http.StatusConflict, "NOT_PUBLISHED", "Solution is not published", requestID)
	case errors.Is(err, engagement.ErrNoPrice):
		response.Err(w, http.StatusConflict, "PRICE_NOT_SET", "Solution has no implementation price", requestID)
	case errors.Is(err, engagement.ErrNotDelivered):
		response.Err(w, http.StatusConflict, "ORDER_NOT_DELIVERED", "Only delivered orders can be completed", requestID)
	case errors.Is(err, engagement.ErrInvalidStatus):
		response.Err(w, http.StatusBadRequest, "INVALID_STATUS", "Status is not allowed here", requestID)
	default:
		internalError(w, r, "engagement operation failed", err, "Failed to process request")
	}
}
