package validation

import (
	"github.com/automarket/automarket/internal/commission"
)

// CreateSpecialistRequest mirrors the fields needed for onboarding validation.
type CreateSpecialistRequest struct {
	Tools []string
}

// ValidateCreateSpecialistRequest validates the declared tool list.
func ValidateCreateSpecialistRequest(req CreateSpecialistRequest) []FieldError {
	return validateList("tools", req.Tools)
}

// ValidateCommissionOverride validates an admin override. Nil clears the
// override and is always accepted.
func ValidateCommissionOverride(percent *float64) []FieldError {
	if percent == nil || commission.ValidOverride(*percent) {
		return nil
	}
	return []FieldError{{Field: "percent", Message: "percent must be between 0 and 100, or null"}}
}

// ValidateGrossCents validates the amount of a commission quote.
func ValidateGrossCents(gross int64) []FieldError {
	if gross < 0 {
		return []FieldError{{Field: "grossCents", Message: "grossCents must not be negative"}}
	}
	return nil
}
