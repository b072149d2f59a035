package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/automarket/automarket/internal/api/middleware"
	"github.com/automarket/automarket/internal/api/response"
	"github.com/automarket/automarket/internal/api/validation"
	"github.com/automarket/automarket/internal/commission"
	"github.com/automarket/automarket/internal/lifecycle"
	"github.com/automarket/automarket/internal/lock"
	"github.com/automarket/automarket/internal/solution"
)

// Lifecycle is the solution lifecycle as seen by the HTTP layer.
type Lifecycle interface {
	CreateDraft(ctx context.Context, actor lifecycle.Actor, fields solution.Patch) (*solution.Solution, error)
	Get(ctx context.Context, actor lifecycle.Actor, id uuid.UUID) (*solution.Solution, error)
	ListMine(ctx context.Context, actor lifecycle.Actor) ([]solution.Solution, error)
	LockState(ctx context.Context, actor lifecycle.Actor, id uuid.UUID) (lock.State, error)
	UpdateDraft(ctx context.Context, actor lifecycle.Actor, id uuid.UUID, patch solution.Patch) (*solution.Solution, error)
	Publish(ctx context.Context, actor lifecycle.Actor, id uuid.UUID) (*solution.Solution, error)
	Archive(ctx context.Context, actor lifecycle.Actor, id uuid.UUID) (*solution.Solution, error)
}

// solutionRequest is the body of POST /solutions and PATCH /solutions/{id}.
// Omitted fields are left unchanged.
type solutionRequest struct {
	Title                    *string   `json:"title"`
	Category                 *string   `json:"category"`
	ShortDescription         *string   `json:"shortDescription"`
	LongDescription          *string   `json:"longDescription"`
	Integrations             *[]string `json:"integrations"`
	Included                 *[]string `json:"included"`
	ImplementationPriceCents *int64    `json:"implementationPriceCents"`
	MonthlyCostMinCents      *int64    `json:"monthlyCostMinCents"`
	MonthlyCostMaxCents      *int64    `json:"monthlyCostMaxCents"`
	DeliveryDays             *int      `json:"deliveryDays"`
	SupportDays              *int      `json:"supportDays"`
	AccessRequirements       *string   `json:"accessRequirements"`
	PaybackPeriod            *string   `json:"paybackPeriod"`
}

func (req solutionRequest) validate() []validation.FieldError {
	return validation.ValidateSolutionRequest(validation.SolutionRequest{
		Title:                    req.Title,
		ShortDescription:         req.ShortDescription,
		Integrations:             req.Integrations,
		Included:                 req.Included,
		ImplementationPriceCents: req.ImplementationPriceCents,
		MonthlyCostMinCents:      req.MonthlyCostMinCents,
		MonthlyCostMaxCents:      req.MonthlyCostMaxCents,
		DeliveryDays:             req.DeliveryDays,
		SupportDays:              req.SupportDays,
	})
}

func (req solutionRequest) patch() solution.Patch {
	return solution.Patch{
		Title:                    req.Title,
		Category:                 req.Category,
		ShortDescription:         req.ShortDescription,
		LongDescription:          req.LongDescription,
		Integrations:             req.Integrations,
		Included:                 req.Included,
		ImplementationPriceCents: req.ImplementationPriceCents,
		MonthlyCostMinCents:      req.MonthlyCostMinCents,
		MonthlyCostMaxCents:      req.MonthlyCostMaxCents,
		DeliveryDays:             req.DeliveryDays,
		SupportDays:              req.SupportDays,
		AccessRequirements:       req.AccessRequirements,
		PaybackPeriod:            req.PaybackPeriod,
	}
}

type solutionResponse struct {
	ID                       string   `json:"id"`
	SpecialistID             string   `json:"specialistId"`
	Slug                     string   `json:"slug"`
	Status                   string   `json:"status"`
	Title                    string   `json:"title"`
	Category                 string   `json:"category"`
	ShortDescription         string   `json:"shortDescription"`
	LongDescription          string   `json:"longDescription"`
	Integrations             []string `json:"integrations"`
	Included                 []string `json:"included"`
	ImplementationPriceCents *int64   `json:"implementationPriceCents"`
	MonthlyCostMinCents      *int64   `json:"monthlyCostMinCents"`
	MonthlyCostMaxCents      *int64   `json:"monthlyCostMaxCents"`
	DeliveryDays             *int     `json:"deliveryDays"`
	SupportDays              *int     `json:"supportDays"`
	AccessRequirements       string   `json:"accessRequirements"`
	PaybackPeriod            string   `json:"paybackPeriod"`
	CommissionRate           float64  `json:"commissionRate"`
	ModerationStatus         string   `json:"moderationStatus"`
	PublishedAt              *string  `json:"publishedAt"`
	ArchivedAt               *string  `json:"archivedAt"`
	CreatedAt                string   `json:"createdAt"`
	UpdatedAt                string   `json:"updatedAt"`
}

func toSolutionResponse(s *solution.Solution) solutionResponse {
	return solutionResponse{
		ID:                       s.ID.String(),
		SpecialistID:             s.SpecialistID.String(),
		Slug:                     s.Slug,
		Status:                   s.Status,
		Title:                    s.Title,
		Category:                 s.Category,
		ShortDescription:         s.ShortDescription,
		LongDescription:          s.LongDescription,
		Integrations:             nonNil(s.Integrations),
		Included:                 nonNil(s.Included),
		ImplementationPriceCents: s.ImplementationPriceCents,
		MonthlyCostMinCents:      s.MonthlyCostMinCents,
		MonthlyCostMaxCents:      s.MonthlyCostMaxCents,
		DeliveryDays:             s.DeliveryDays,
		SupportDays:              s.SupportDays,
		AccessRequirements:       s.AccessRequirements,
		PaybackPeriod:            s.PaybackPeriod,
		CommissionRate:           s.CommissionRate,
		ModerationStatus:         s.ModerationStatus,
		PublishedAt:              response.TimePtr(s.PublishedAt),
		ArchivedAt:               response.TimePtr(s.ArchivedAt),
		CreatedAt:                response.Time(s.CreatedAt),
		UpdatedAt:                response.Time(s.UpdatedAt),
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

type lockResponse struct {
	Locked bool    `json:"locked"`
	Reason *string `json:"reason"`
}

// SolutionHandler handles the solution lifecycle endpoints.
type SolutionHandler struct {
	lifecycle Lifecycle
}

// NewSolutionHandler creates a new SolutionHandler.
func NewSolutionHandler(lc Lifecycle) *SolutionHandler {
	return &SolutionHandler{lifecycle: lc}
}

// Create handles POST /solutions.
func (h *SolutionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req solutionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if rejectInvalid(w, r, req.validate()) {
		return
	}

	s, err := h.lifecycle.CreateDraft(r.Context(), actor(r), req.patch())
	if err != nil {
		writeLifecycleError(w, r, err)
		return
	}
	response.Success(w, http.StatusCreated, toSolutionResponse(s), middleware.GetRequestID(r.Context()))
}

// Get handles GET /solutions/{id}.
func (h *SolutionHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, http.StatusOK, h.lifecycle.Get)
}

// List handles GET /solutions?mine=true. Only the caller's own listings are
// served; there is no public browse endpoint.
func (h *SolutionHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if r.URL.Query().Get("mine") != "true" {
		response.Err(w, http.StatusBadRequest, "INVALID_QUERY", "mine=true is required", requestID)
		return
	}

	solutions, err := h.lifecycle.ListMine(r.Context(), actor(r))
	if err != nil {
		writeLifecycleError(w, r, err)
		return
	}

	items := make([]solutionResponse, 0, len(solutions))
	for i := range solutions {
		items = append(items, toSolutionResponse(&solutions[i]))
	}
	response.List(w, items, requestID)
}

// Update handles PATCH /solutions/{id}.
func (h *SolutionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req solutionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if rejectInvalid(w, r, req.validate()) {
		return
	}

	s, err := h.lifecycle.UpdateDraft(r.Context(), actor(r), id, req.patch())
	if err != nil {
		writeLifecycleError(w, r, err)
		return
	}
	response.Success(w, http.StatusOK, toSolutionResponse(s), middleware.GetRequestID(r.Context()))
}

// Publish handles POST /solutions/{id}/publish.
func (h *SolutionHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, http.StatusOK, h.lifecycle.Publish)
}

// Archive handles POST /solutions/{id}/archive.
func (h *SolutionHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, http.StatusOK, h.lifecycle.Archive)
}

// Lock handles GET /solutions/{id}/lock.
func (h *SolutionHandler) Lock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	state, err := h.lifecycle.LockState(r.Context(), actor(r), id)
	if err != nil {
		writeLifecycleError(w, r, err)
		return
	}

	resp := lockResponse{Locked: state.Locked}
	if state.Locked {
		reason := state.Reason
		resp.Reason = &reason
	}
	response.Success(w, http.StatusOK, resp, middleware.GetRequestID(r.Context()))
}

// Payout handles GET /solutions/{id}/payout: the split of the listing's
// implementation price at the commission rate captured on the listing.
func (h *SolutionHandler) Payout(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s, err := h.lifecycle.Get(r.Context(), actor(r), id)
	if err != nil {
		writeLifecycleError(w, r, err)
		return
	}
	if s.ImplementationPriceCents == nil {
		response.Err(w, http.StatusConflict, "PRICE_NOT_SET", "Solution has no implementation price", requestID)
		return
	}

	response.Success(w, http.StatusOK, commission.SplitOf(*s.ImplementationPriceCents, s.CommissionRate), requestID)
}

// serve runs a lifecycle operation keyed by the {id} path parameter and
// writes the resulting solution.
func (h *SolutionHandler) serve(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	op func(context.Context, lifecycle.Actor, uuid.UUID) (*solution.Solution, error),
) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s, err := op(r.Context(), actor(r), id)
	if err != nil {
		writeLifecycleError(w, r, err)
		return
	}
	response.Success(w, status, toSolutionResponse(s), middleware.GetRequestID(r.Context()))
}
