package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/automarket/automarket/internal/api/middleware"
	"github.com/automarket/automarket/internal/api/response"
	"github.com/automarket/automarket/internal/api/validation"
	"github.com/automarket/automarket/internal/commission"
	"github.com/automarket/automarket/internal/specialist"
)

type createSpecialistRequest struct {
	Tools []string `json:"tools"`
}

type commissionOverrideRequest struct {
	Percent *float64 `json:"percent"`
}

type specialistResponse struct {
	ID                 string   `json:"id"`
	AccountID          string   `json:"accountId"`
	Status             string   `json:"status"`
	IsVerified         bool     `json:"isVerified"`
	IsFounding         bool     `json:"isFounding"`
	FoundingRank       *int     `json:"foundingRank"`
	CompletedSales     int      `json:"completedSales"`
	CommissionOverride *float64 `json:"commissionOverride"`
	Tier               string   `json:"tier"`
	CommissionPercent  float64  `json:"commissionPercent"`
	Tools              []string `json:"tools"`
	CreatedAt          string   `json:"createdAt"`
	UpdatedAt          string   `json:"updatedAt"`
}

type commissionQuoteResponse struct {
	Tier             string  `json:"tier"`
	Percent          float64 `json:"percent"`
	Overridden       bool    `json:"overridden"`
	GrossCents       *int64  `json:"grossCents,omitempty"`
	PlatformFeeCents *int64  `json:"platformFeeCents,omitempty"`
	PayoutCents      *int64  `json:"payoutCents,omitempty"`
}

func toSpecialistResponse(p *specialist.Profile) specialistResponse {
	return specialistResponse{
		ID:                 p.ID.String(),
		AccountID:          p.AccountID.String(),
		Status:             p.Status,
		IsVerified:         p.IsVerified,
		IsFounding:         p.IsFounding,
		FoundingRank:       p.FoundingRank,
		CompletedSales:     p.CompletedSales,
		CommissionOverride: p.CommissionOverride,
		Tier:               string(p.Tier()),
		CommissionPercent:  p.CommissionPercent(),
		Tools:              p.Tools,
		CreatedAt:          response.Time(p.CreatedAt),
		UpdatedAt:          response.Time(p.UpdatedAt),
	}
}

// SpecialistHandler handles specialist profile and commission endpoints.
type SpecialistHandler struct {
	profiles specialist.Repository
}

// NewSpecialistHandler creates a new SpecialistHandler.
func NewSpecialistHandler(profiles specialist.Repository) *SpecialistHandler {
	return &SpecialistHandler{profiles: profiles}
}

// Create handles POST /specialists: the caller onboards its own profile.
func (h *SpecialistHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req createSpecialistRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if rejectInvalid(w, r, validation.ValidateCreateSpecialistRequest(validation.CreateSpecialistRequest{Tools: req.Tools})) {
		return
	}

	identity := middleware.GetIdentity(r.Context())
	p := &specialist.Profile{AccountID: identity.AccountID, Tools: req.Tools}
	if err := h.profiles.Create(r.Context(), p); err != nil {
		if errors.Is(err, specialist.ErrDuplicateProfile) {
			response.Err(w, http.StatusConflict, "DUPLICATE_PROFILE", "Account already has a specialist profile", requestID)
			return
		}
		internalError(w, r, "failed to create specialist profile", err, "Failed to create specialist profile")
		return
	}

	response.Success(w, http.StatusCreated, toSpecialistResponse(p), requestID)
}

// Get handles GET /specialists/{id}. Tier and percent are derived on every read.
func (h *SpecialistHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, ok := h.load(w, r, func() (*specialist.Profile, error) { return h.profiles.GetByID(r.Context(), id) })
	if !ok {
		return
	}
	response.Success(w, http.StatusOK, toSpecialistResponse(p), middleware.GetRequestID(r.Context()))
}

// Commission handles GET /specialists/{id}/commission. With ?grossCents= it
// also quotes the split of that amount at the live percent.
func (h *SpecialistHandler) Commission(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var gross *int64
	if raw := r.URL.Query().Get("grossCents"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "INVALID_QUERY", "grossCents must be an integer", requestID)
			return
		}
		if rejectInvalid(w, r, validation.ValidateGrossCents(v)) {
			return
		}
		gross = &v
	}

	p, ok := h.load(w, r, func() (*specialist.Profile, error) { return h.profiles.GetByID(r.Context(), id) })
	if !ok {
		return
	}

	quote := commissionQuoteResponse{
		Tier:       string(p.Tier()),
		Percent:    p.CommissionPercent(),
		Overridden: p.CommissionOverride != nil,
	}
	if gross != nil {
		split := commission.SplitOf(*gross, quote.Percent)
		quote.GrossCents = &split.GrossCents
		quote.PlatformFeeCents = &split.PlatformFeeCents
		quote.PayoutCents = &split.PayoutCents
	}

	response.Success(w, http.StatusOK, quote, requestID)
}

// SetCommissionOverride handles PUT /specialists/{id}/commission-override.
// A null percent clears the override.
func (h *SpecialistHandler) SetCommissionOverride(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req commissionOverrideRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if rejectInvalid(w, r, validation.ValidateCommissionOverride(req.Percent)) {
		return
	}

	p, ok := h.load(w, r, func() (*specialist.Profile, error) {
		return h.profiles.SetCommissionOverride(r.Context(), id, req.Percent)
	})
	if !ok {
		return
	}
	response.Success(w, http.StatusOK, toSpecialistResponse(p), middleware.GetRequestID(r.Context()))
}

// Verify handles POST /specialists/{id}/verify.
func (h *SpecialistHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, ok := h.load(w, r, func() (*specialist.Profile, error) { return h.profiles.SetVerified(r.Context(), id, true) })
	if !ok {
		return
	}
	response.Success(w, http.StatusOK, toSpecialistResponse(p), middleware.GetRequestID(r.Context()))
}

// PromoteFounding handles POST /specialists/{id}/founding. Promotion is
// sticky; repeating it keeps the original rank.
func (h *SpecialistHandler) PromoteFounding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, ok := h.load(w, r, func() (*specialist.Profile, error) { return h.profiles.PromoteFounding(r.Context(), id) })
	if !ok {
		return
	}
	response.Success(w, http.StatusOK, toSpecialistResponse(p), middleware.GetRequestID(r.Context()))
}

// load runs fn and writes the error response when it fails.
func (h *SpecialistHandler) load(w http.ResponseWriter, r *http.Request, fn func() (*specialist.Profile, error)) (*specialist.Profile, bool) {
	p, err := fn()
	if err != nil {
		if errors.Is(err, specialist.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Specialist not found", middleware.GetRequestID(r.Context()))
			return nil, false
		}
		internalError(w, r, "specialist profile operation failed", err, "Failed to process specialist profile")
		return nil, false
	}
	return p, true
}
