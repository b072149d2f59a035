// Package commission derives a specialist's fee tier, commission percentage
// and the platform/specialist split of a gross price.
//
// Everything here is a pure function of its inputs. Tiers and percentages
// are recomputed on every call and are never persisted.
package commission

import "math"

// Tier is a specialist's commission band.
type Tier string

const (
	TierStandard Tier = "standard"
	TierProven   Tier = "proven"
	TierElite    Tier = "elite"
	TierFounding Tier = "founding"
)

// Sales thresholds for the volume-based tiers.
const (
	ProvenSales = 10
	EliteSales  = 50
)

// Commission percentages of gross price per tier.
const (
	StandardPercent = 15.0
	ProvenPercent   = 13.0
	ElitePercent    = 12.0
	FoundingPercent = 11.0
)

// Profile is the subset of specialist attributes the engine reads.
type Profile struct {
	Founding       bool
	CompletedSales int
	// Override is an admin-negotiated percentage. When non-nil it replaces
	// the tier ladder entirely.
	Override *float64
}

// TierOf classifies a profile. Founding status wins over any sales count.
func TierOf(p Profile) Tier {
	switch {
	case p.Founding:
		return TierFounding
	case p.CompletedSales >= EliteSales:
		return TierElite
	case p.CompletedSales >= ProvenSales:
		return TierProven
	default:
		return TierStandard
	}
}

// Percent returns the commission percentage charged on a specialist's sales.
func Percent(p Profile) float64 {
	if p.Override != nil {
		return *p.Override
	}
	return TierPercent(TierOf(p))
}

// TierPercent returns the ladder percentage for a tier.
func TierPercent(t Tier) float64 {
	switch t {
	case TierFounding:
		return FoundingPercent
	case TierElite:
		return ElitePercent
	case TierProven:
		return ProvenPercent
	default:
		return StandardPercent
	}
}

// PlatformFee returns round(gross * percent / 100) in minor units, rounding
// halves away from zero. Percentages are taken to two decimal places, the
// precision at which overrides and listing snapshots are stored, so the
// arithmetic is exact integer math.
func PlatformFee(grossCents int64, percent float64) int64 {
	hundredths := int64(math.Round(percent * 100))
	if grossCents < 0 {
		return -roundHalfUp(-grossCents * hundredths)
	}
	return roundHalfUp(grossCents * hundredths)
}

// roundHalfUp divides a non-negative amount expressed in cent-hundredths-of-a-percent
// by 10000, rounding halves up.
func roundHalfUp(v int64) int64 {
	return (v + 5000) / 10000
}

// Payout returns what the specialist receives: gross minus the platform fee.
// It is defined as the remainder so that fee + payout == gross exactly.
func Payout(grossCents int64, percent float64) int64 {
	return grossCents - PlatformFee(grossCents, percent)
}

// Split is the breakdown of a gross amount between platform and specialist.
type Split struct {
	GrossCents       int64   `json:"grossCents"`
	Percent          float64 `json:"percent"`
	PlatformFeeCents int64   `json:"platformFeeCents"`
	PayoutCents      int64   `json:"payoutCents"`
}

// SplitOf computes the platform fee and payout for grossCents at percent.
func SplitOf(grossCents int64, percent float64) Split {
	fee := PlatformFee(grossCents, percent)
	return Split{
		GrossCents:       grossCents,
		Percent:          percent,
		PlatformFeeCents: fee,
		PayoutCents:      grossCents - fee,
	}
}

// ValidOverride reports whether percent may be stored as a commission override.
func ValidOverride(percent float64) bool {
	if math.IsNaN(percent) || math.IsInf(percent, 0) {
		return false
	}
	return percent >= 0 && percent <= 100
}
