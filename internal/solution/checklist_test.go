package solution_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/automarket/automarket/internal/solution"
)

func i64(v int64) *int64 { return &v }
func intp(v int) *int { return &v }
func str(v string) *string { return &v }

func publishable() *solution.Solution {
	return &solution.Solution{
		Title:                    "Invoice triage agent",
		Category:                 "finance",
		LongDescription:          "Reads inbound invoices and routes them.",
		Integrations:             []string{"gmail"},
		Included:                 []string{"setup", "training", "handover"},
		ImplementationPriceCents: i64(250000),
		DeliveryDays:             intp(14),
		AccessRequirements:       "Gmail admin",
		PaybackPeriod:            "3 months",
	}
}

func TestMissingPublishFields_Complete(t *testing.T) {
	assert.Empty(t, solution.MissingPublishFields(publishable()))
}

func TestMissingPublishFields_CollectsAll(t *testing.T) {
	s := publishable()
	s.Title = ""
	s.ImplementationPriceCents = nil

	assert.Equal(t, []string{
		solution.FieldTitle,
		solution.FieldImplementationPriceCents,
	}, solution.MissingPublishFields(s))
}

func TestMissingPublishFields_EmptyDraft(t *testing.T) {
	missing := solution.MissingPublishFields(&solution.Solution{})

	assert.Equal(t, []string{
		solution.FieldTitle,
		solution.FieldCategory,
		solution.FieldLongDescription,
		solution.FieldIntegrations,
		solution.FieldIncluded,
		solution.FieldImplementationPriceCents,
		solution.FieldDeliveryDays,
		solution.FieldAccessRequirements,
		solution.FieldPaybackPeriod,
	}, missing)
}

func TestMissingPublishFields_Edges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*solution.Solution)
		want   string
	}{
		{"whitespace title", func(s *solution.Solution) { s.Title = "   " }, solution.FieldTitle},
		{"two included", func(s *solution.Solution) { s.Included = []string{"a", "b"} }, solution.FieldIncluded},
		{"blank included item", func(s *solution.Solution) { s.Included = []string{"a", "b", " "} }, solution.FieldIncluded},
		{"no integrations", func(s *solution.Solution) { s.Integrations = nil }, solution.FieldIntegrations},
		{"zero price", func(s *solution.Solution) { s.ImplementationPriceCents = i64(0) }, solution.FieldImplementationPriceCents},
		{"zero delivery days", func(s *solution.Solution) { s.DeliveryDays = intp(0) }, solution.FieldDeliveryDays},
		{"no payback period", func(s *solution.Solution) { s.PaybackPeriod = "" }, solution.FieldPaybackPeriod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := publishable()
			tt.mutate(s)
			assert.Equal(t, []string{tt.want}, solution.MissingPublishFields(s))
		})
	}
}

func TestRequirementText(t *testing.T) {
	assert.Equal(t, "at least 3 included deliverables are required", solution.RequirementText(solution.FieldIncluded))
	assert.Equal(t, "foo is required", solution.RequirementText("foo"))
}

func TestApply(t *testing.T) {
	s := publishable()
	integrations := []string{"slack", "notion"}

	s.Apply(solution.Patch{
		Title:        str("New title"),
		Integrations: &integrations,
		SupportDays:  intp(30),
	})

	assert.Equal(t, "New title", s.Title)
	assert.Equal(t, "finance", s.Category)
	assert.Equal(t, []string{"slack", "notion"}, s.Integrations)
	assert.Equal(t, 30, *s.SupportDays)
	assert.Equal(t, int64(250000), *s.ImplementationPriceCents)

	integrations[0] = "changed"
	assert.Equal(t, "slack", s.Integrations[0], "patch slices must be copied")
}
