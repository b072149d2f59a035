// Package validation checks request payloads at the HTTP boundary and
// reports every problem as a FieldError.
package validation

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Maximum lengths of free-text inputs.
const (
	maxNameLen      = 255
	maxTitleLen     = 200
	maxShortDescLen = 500
	maxListItems    = 50
	maxListItemLen  = 200
)
