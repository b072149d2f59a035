package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// SolutionRequest mirrors the editable solution fields. It serves both draft
// creation and patches; nil fields are not validated.
type SolutionRequest struct {
	Title                    *string
	ShortDescription         *string
	Integrations             *[]string
	Included                 *[]string
	ImplementationPriceCents *int64
	MonthlyCostMinCents      *int64
	MonthlyCostMaxCents      *int64
	DeliveryDays             *int
	SupportDays              *int
}

// ValidateSolutionRequest validates only the non-nil fields of req.
// Completeness for publishing is checked later by the lifecycle.
func ValidateSolutionRequest(req SolutionRequest) []FieldError {
	var errs []FieldError

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if utf8.RuneCountInString(title) > maxTitleLen {
			errs = append(errs, FieldError{Field: "title", Message: "title must be at most 200 characters"})
		}
	}

	if req.ShortDescription != nil && utf8.RuneCountInString(*req.ShortDescription) > maxShortDescLen {
		errs = append(errs, FieldError{Field: "shortDescription", Message: "shortDescription must be at most 500 characters"})
	}

	if req.Integrations != nil {
		errs = append(errs, validateList("integrations", *req.Integrations)...)
	}
	if req.Included != nil {
		errs = append(errs, validateList("included", *req.Included)...)
	}

	errs = appendNonNegative(errs, "implementationPriceCents", req.ImplementationPriceCents)
	errs = appendNonNegative(errs, "monthlyCostMinCents", req.MonthlyCostMinCents)
	errs = appendNonNegative(errs, "monthlyCostMaxCents", req.MonthlyCostMaxCents)

	if req.MonthlyCostMinCents != nil && req.MonthlyCostMaxCents != nil &&
		*req.MonthlyCostMinCents > *req.MonthlyCostMaxCents {
		errs = append(errs, FieldError{Field: "monthlyCostMinCents", Message: "monthlyCostMinCents must not exceed monthlyCostMaxCents"})
	}

	if req.DeliveryDays != nil && *req.DeliveryDays <= 0 {
		errs = append(errs, FieldError{Field: "deliveryDays", Message: "deliveryDays must be positive"})
	}
	if req.SupportDays != nil && *req.SupportDays <= 0 {
		errs = append(errs, FieldError{Field: "supportDays", Message: "supportDays must be positive"})
	}

	return errs
}

func appendNonNegative(errs []FieldError, field string, v *int64) []FieldError {
	if v != nil && *v < 0 {
		return append(errs, FieldError{Field: field, Message: field + " must not be negative"})
	}
	return errs
}

// validateList checks a list of short labels: bounded length, no blank items.
func validateList(field string, items []string) []FieldError {
	if len(items) > maxListItems {
		return []FieldError{{Field: field, Message: fmt.Sprintf("%s must have at most %d items", field, maxListItems)}}
	}
	for i, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			return []FieldError{{Field: fmt.Sprintf("%s[%d]", field, i), Message: "item must not be blank"}}
		}
		if utf8.RuneCountInString(trimmed) > maxListItemLen {
			return []FieldError{{Field: fmt.Sprintf("%s[%d]", field, i), Message: fmt.Sprintf("item must be at most %d characters", maxListItemLen)}}
		}
	}
	return nil
}
