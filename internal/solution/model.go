package solution

import (
	"time"

	"github.com/google/uuid"
)

// Listing statuses. Paused exists in storage but no transition reaches it.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusPaused    = "paused"
	StatusArchived  = "archived"
)

// Moderation statuses.
const (
	ModerationPending  = "pending"
	ModerationApproved = "approved"
	ModerationRejected = "rejected"
)

// Solution represents a row in the solutions table.
type Solution struct {
	ID                       uuid.UUID
	SpecialistID             uuid.UUID
	Slug                     string
	Status                   string
	Title                    string
	Category                 string
	ShortDescription         string
	LongDescription          string
	Integrations             []string
	Included                 []string
	ImplementationPriceCents *int64
	MonthlyCostMinCents      *int64
	MonthlyCostMaxCents      *int64
	DeliveryDays             *int
	SupportDays              *int
	AccessRequirements       string
	PaybackPeriod            string
	// CommissionRate is the specialist's commission percent captured when
	// the listing was created. Orders priced from this listing use it even
	// if the specialist's live tier has since changed.
	CommissionRate   float64
	ModerationStatus string
	PublishedAt      *time.Time
	ArchivedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Patch is a partial update of a listing's editable fields. Nil fields are
// left unchanged.
type Patch struct {
	Title                    *string
	Category                 *string
	ShortDescription         *string
	LongDescription          *string
	Integrations             *[]string
	Included                 *[]string
	ImplementationPriceCents *int64
	MonthlyCostMinCents      *int64
	MonthlyCostMaxCents      *int64
	DeliveryDays             *int
	SupportDays              *int
	AccessRequirements       *string
	PaybackPeriod            *string
}

// Apply copies every non-nil field of p onto s.
func (s *Solution) Apply(p Patch) {
	setString(&s.Title, p.Title)
	setString(&s.Category, p.Category)
	setString(&s.ShortDescription, p.ShortDescription)
	setString(&s.LongDescription, p.LongDescription)
	setString(&s.AccessRequirements, p.AccessRequirements)
	setString(&s.PaybackPeriod, p.PaybackPeriod)

	if p.Integrations != nil {
		s.Integrations = append([]string{}, (*p.Integrations)...)
	}
	if p.Included != nil {
		s.Included = append([]string{}, (*p.Included)...)
	}
	if p.ImplementationPriceCents != nil {
		s.ImplementationPriceCents = ptr(*p.ImplementationPriceCents)
	}
	if p.MonthlyCostMinCents != nil {
		s.MonthlyCostMinCents = ptr(*p.MonthlyCostMinCents)
	}
	if p.MonthlyCostMaxCents != nil {
		s.MonthlyCostMaxCents = ptr(*p.MonthlyCostMaxCents)
	}
	if p.DeliveryDays != nil {
		s.DeliveryDays = ptr(*p.DeliveryDays)
	}
	if p.SupportDays != nil {
		s.SupportDays = ptr(*p.SupportDays)
	}
}

// Event is a status transition recorded in solution_events.
type Event struct {
	ID         uuid.UUID
	SolutionID uuid.UUID
	FromStatus string
	ToStatus   string
	ActorID    uuid.UUID
	OccurredAt time.Time
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func ptr[T any](v T) *T { return &v }
