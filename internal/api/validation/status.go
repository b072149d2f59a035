package validation

import (
	"fmt"
	"sort"
	"strings"
)

// ValidateStatus checks that status is non-empty and accepted by valid.
// allowed is only used to build the error message.
func ValidateStatus(status string, valid func(string) bool, allowed []string) []FieldError {
	if status == "" {
		return []FieldError{{Field: "status", Message: "status is required"}}
	}
	if !valid(status) {
		return []FieldError{{Field: "status", Message: fmt.Sprintf("status must be one of: %s", joinQuoted(allowed))}}
	}
	return nil
}

// joinQuoted returns a sorted, comma-separated list of quoted values.
func joinQuoted(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	sort.Strings(quoted)
	return strings.Join(quoted, ", ")
}
