package validation

import (
	"strings"

	"github.com/automarket/automarket/internal/auth"
)

// CreateAccountRequest mirrors the fields needed for create account validation.
type CreateAccountRequest struct {
	Name string
	Role string
}

// ValidateCreateAccountRequest validates the fields of a create account request.
func ValidateCreateAccountRequest(req CreateAccountRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > maxNameLen {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	if req.Role == "" {
		errs = append(errs, FieldError{Field: "role", Message: "role is required"})
	} else if !auth.ValidRole(req.Role) {
		errs = append(errs, FieldError{Field: "role", Message: `role must be one of: "admin", "buyer", "specialist"`})
	}

	return errs
}
