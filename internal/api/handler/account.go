package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/automarket/automarket/internal/api/middleware"
	"github.com/automarket/automarket/internal/api/response"
	"github.com/automarket/automarket/internal/api/validation"
	"github.com/automarket/automarket/internal/auth"
)

// AccountIssuer creates accounts together with their API key.
type AccountIssuer interface {
	CreateAccount(ctx context.Context, name, role string) (*auth.Account, string, error)
}

type createAccountRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type accountResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Role         string  `json:"role"`
	ApiKeyPrefix string  `json:"apiKeyPrefix"`
	CreatedAt    string  `json:"createdAt"`
	RevokedAt    *string `json:"revokedAt,omitempty"`
}

type accountWithKeyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	ApiKey    string `json:"apiKey"`
	CreatedAt string `json:"createdAt"`
}

// AccountHandler handles the admin account endpoints.
type AccountHandler struct {
	issuer   AccountIssuer
	accounts auth.AccountRepository
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(issuer AccountIssuer, accounts auth.AccountRepository) *AccountHandler {
	return &AccountHandler{issuer: issuer, accounts: accounts}
}

// Create handles POST /accounts. The raw API key is only ever returned here.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req createAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if rejectInvalid(w, r, validation.ValidateCreateAccountRequest(validation.CreateAccountRequest{
		Name: req.Name,
		Role: req.Role,
	})) {
		return
	}

	a, rawKey, err := h.issuer.CreateAccount(r.Context(), strings.TrimSpace(req.Name), req.Role)
	if err != nil {
		internalError(w, r, "failed to create account", err, "Failed to create account")
		return
	}

	response.Success(w, http.StatusCreated, accountWithKeyResponse{
		ID:        a.ID.String(),
		Name:      a.Name,
		Role:      a.Role,
		ApiKey:    rawKey,
		CreatedAt: response.Time(a.CreatedAt),
	}, requestID)
}

// List handles GET /accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		internalError(w, r, "failed to list accounts", err, "Failed to list accounts")
		return
	}

	items := make([]accountResponse, 0, len(accounts))
	for i := range accounts {
		a := &accounts[i]
		items = append(items, accountResponse{
			ID:           a.ID.String(),
			Name:         a.Name,
			Role:         a.Role,
			ApiKeyPrefix: a.ApiKeyPrefix,
			CreatedAt:    response.Time(a.CreatedAt),
			RevokedAt:    response.TimePtr(a.RevokedAt),
		})
	}

	response.List(w, items, middleware.GetRequestID(r.Context()))
}

// Delete handles DELETE /accounts/{id}. Revoking is idempotent; an admin
// cannot revoke their own account.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if identity := middleware.GetIdentity(r.Context()); identity != nil && identity.AccountID == id {
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "Cannot revoke your own account", requestID)
		return
	}

	err := h.accounts.Revoke(r.Context(), id)
	switch {
	case err == nil, errors.Is(err, auth.ErrAccountRevoked):
		response.NoContent(w)
	case errors.Is(err, auth.ErrAccountNotFound):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Account not found", requestID)
	default:
		internalError(w, r, "failed to revoke account", err, "Failed to revoke account")
	}
}
