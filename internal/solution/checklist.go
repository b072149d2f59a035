package solution

import "strings"

// MinIncluded is the minimum number of included deliverables a published
// listing must declare.
const MinIncluded = 3

// Required publish fields, named as they appear in the API.
const (
	FieldTitle                    = "title"
	FieldCategory                 = "category"
	FieldLongDescription          = "longDescription"
	FieldIntegrations             = "integrations"
	FieldIncluded                 = "included"
	FieldImplementationPriceCents = "implementationPriceCents"
	FieldDeliveryDays             = "deliveryDays"
	FieldAccessRequirements       = "accessRequirements"
	FieldPaybackPeriod            = "paybackPeriod"
)

var requirementText = map[string]string{
	FieldTitle:                    "a title is required",
	FieldCategory:                 "a category is required",
	FieldLongDescription:          "a long description is required",
	FieldIntegrations:             "at least one integration or tool is required",
	FieldIncluded:                 "at least 3 included deliverables are required",
	FieldImplementationPriceCents: "an implementation price is required",
	FieldDeliveryDays:             "a delivery time is required",
	FieldAccessRequirements:       "access requirements are required",
	FieldPaybackPeriod:            "a payback period is required",
}

// RequirementText returns a human-readable description of a publish field.
func RequirementText(field string) string {
	if text, ok := requirementText[field]; ok {
		return text
	}
	return field + " is required"
}

// MissingPublishFields returns every required field s lacks, in checklist
// order. An empty result means s may be published.
func MissingPublishFields(s *Solution) []string {
	var missing []string
	add := func(ok bool, field string) {
		if !ok {
			missing = append(missing, field)
		}
	}

	add(present(s.Title), FieldTitle)
	add(present(s.Category), FieldCategory)
	add(present(s.LongDescription), FieldLongDescription)
	add(countPresent(s.Integrations) >= 1, FieldIntegrations)
	add(countPresent(s.Included) >= MinIncluded, FieldIncluded)
	add(s.ImplementationPriceCents != nil && *s.ImplementationPriceCents > 0, FieldImplementationPriceCents)
	add(s.DeliveryDays != nil && *s.DeliveryDays > 0, FieldDeliveryDays)
	add(present(s.AccessRequirements), FieldAccessRequirements)
	add(present(s.PaybackPeriod), FieldPaybackPeriod)

	return missing
}

func present(v string) bool {
	return strings.TrimSpace(v) != ""
}

func countPresent(items []string) int {
	n := 0
	for _, item := range items {
		if present(item) {
			n++
		}
	}
	return n
}
