package plans

import "strings"

// Tier constants (single source of truth)
const (
	TierNone    = "none"
	TierBasic   = "basic"
	TierPremium = "premium"
)

// PlanTier returns the effective tier for a plan.
// Priority:
// 1. Explicit Tier stored in DB
// 2. Fallback inference from the visit quota
func PlanTier(p *Plan) string {
	if p == nil {
		return TierNone
	}

	tier := strings.ToLower(strings.TrimSpace(p.Tier))
	switch tier {
	case TierBasic, TierPremium:
		return tier
	}

	return inferTierFromVisits(p.IncludedVisits)
}

func inferTierFromVisits(visits int) string {
	if visits > 2 {
		return TierPremium
	}
	return TierBasic
}
