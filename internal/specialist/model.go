package specialist

import (
	"time"

	"github.com/google/uuid"

	"github.com/automarket/automarket/internal/commission"
)

// Profile statuses. Suspension is owned by moderation tooling; the lifecycle
// only requires that a profile exists.
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// Profile represents a row in the specialist_profiles table.
type Profile struct {
	ID                 uuid.UUID
	AccountID          uuid.UUID
	Status             string
	IsVerified         bool
	IsFounding         bool
	FoundingRank       *int // nil until promoted
	CompletedSales     int
	CommissionOverride *float64 // nil when the tier ladder applies
	Tools              []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CommissionProfile projects the attributes the commission engine reads.
func (p *Profile) CommissionProfile() commission.Profile {
	return commission.Profile{
		Founding:       p.IsFounding,
		CompletedSales: p.CompletedSales,
		Override:       p.CommissionOverride,
	}
}

// Tier returns the profile's current commission tier.
func (p *Profile) Tier() commission.Tier {
	return commission.TierOf(p.CommissionProfile())
}

// CommissionPercent returns the live commission percentage for the profile.
func (p *Profile) CommissionPercent() float64 {
	return commission.Percent(p.CommissionProfile())
}
