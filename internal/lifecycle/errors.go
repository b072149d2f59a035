package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthorized is returned when the caller neither owns the solution
	// nor is an admin.
	ErrUnauthorized = errors.New("caller may not modify this solution")

	// ErrNotFound is returned when the solution does not exist.
	ErrNotFound = errors.New("solution not found")

	// ErrNoProfile is returned when a draft is created by an account
	// without a specialist profile.
	ErrNoProfile = errors.New("account has no specialist profile")

	// ErrInvalidTransition is returned when the current status does not
	// allow the requested operation.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrLocked matches any *LockedError.
	ErrLocked = errors.New("solution is locked")

	// ErrValidation matches any *ValidationError.
	ErrValidation = errors.New("solution is not ready to publish")

	// ErrStoreUnavailable wraps any failure of the underlying store,
	// including timeouts. The requested change was not applied.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// LockedError reports the in-flight reference that blocks a mutation.
type LockedError struct {
	Reason string
}

func (e *LockedError) Error() string {
	return "solution is locked: " + e.Reason
}

// Is makes errors.Is(err, ErrLocked) hold.
func (e *LockedError) Is(target error) bool {
	return target == ErrLocked
}

// ValidationError lists every required field a solution lacks for publishing.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "solution is not ready to publish: missing " + strings.Join(e.Missing, ", ")
}

// Is makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var businessErrors = []error{
	ErrUnauthorized, ErrNotFound, ErrNoProfile, ErrInvalidTransition, ErrLocked, ErrValidation,
}

// classify passes business-rule errors through and folds everything else
// into ErrStoreUnavailable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return err
		}
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// rejectionReason is the metric label for a refused operation.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNoProfile):
		return "no_profile"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrLocked):
		return "locked"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "store"
	}
}
