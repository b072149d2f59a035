// Package handler implements the HTTP endpoints. Handlers decode and
// validate input, call a service or repository, and write the response
// envelope.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/automarket/automarket/internal/api/middleware"
	"github.com/automarket/automarket/internal/api/response"
	"github.com/automarket/automarket/internal/api/validation"
	"github.com/automarket/automarket/internal/lifecycle"
)

const maxBodyBytes = 1 << 20

// decodeBody decodes the JSON request body into dst. On failure it writes a
// 400 and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

// pathID parses the {id} URL parameter. On failure it writes a 400 and
// returns false.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", middleware.GetRequestID(r.Context()))
		return uuid.Nil, false
	}
	return id, true
}

// rejectInvalid writes a 400 VALIDATION_ERROR when errs is non-empty.
func rejectInvalid(w http.ResponseWriter, r *http.Request, errs []validation.FieldError) bool {
	if len(errs) == 0 {
		return false
	}
	response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", errs, middleware.GetRequestID(r.Context()))
	return true
}

// actor builds the lifecycle caller from the authenticated identity.
func actor(r *http.Request) lifecycle.Actor {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		return lifecycle.Actor{}
	}
	return lifecycle.Actor{AccountID: identity.AccountID, Admin: identity.IsAdmin()}
}

type lockedDetails struct {
	Reason string `json:"reason"`
}

type missingDetails struct {
	Missing []string `json:"missing"`
}

// writeLifecycleError maps a lifecycle error to its HTTP response. Callers
// that lack access get the same 404 as for a missing solution.
func writeLifecycleError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())

	var locked *lifecycle.LockedError
	var invalid *lifecycle.ValidationError

	switch {
	case errors.Is(err, lifecycle.ErrNotFound), errors.Is(err, lifecycle.ErrUnauthorized):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Solution not found", requestID)
	case errors.As(err, &locked):
		response.ErrWithDetails(w, http.StatusConflict, "SOLUTION_LOCKED",
			"Solution is locked by an "+locked.Reason, lockedDetails{Reason: locked.Reason}, requestID)
	case errors.As(err, &invalid):
		response.ErrWithDetails(w, http.StatusUnprocessableEntity, "PUBLISH_VALIDATION_FAILED",
			"Solution is missing required fields", missingDetails{Missing: invalid.Missing}, requestID)
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		response.Err(w, http.StatusConflict, "INVALID_TRANSITION", "Operation is not allowed in the current status", requestID)
	case errors.Is(err, lifecycle.ErrNoProfile):
		response.Err(w, http.StatusForbidden, "NO_PROFILE", "A specialist profile is required", requestID)
	case errors.Is(err, lifecycle.ErrStoreUnavailable):
		response.Err(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "The store is temporarily unavailable", requestID)
	default:
		slog.Error("unexpected lifecycle error", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", requestID)
	}
}

// internalError logs err and writes a 500 with message.
func internalError(w http.ResponseWriter, r *http.Request, logMsg string, err error, message string) {
	requestID := middleware.GetRequestID(r.Context())
	slog.Error(logMsg, "error", err, "requestId", requestID)
	response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", message, requestID)
}
