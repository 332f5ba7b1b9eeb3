package plans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeEndDate(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		period string
		want   time.Time
	}{
		{PeriodMonthly, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)},
		{PeriodQuarterly, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodHalfYearly, time.Date(2026, 7, 2, 0, 0, 0, 0, time.UTC)},
		{PeriodYearly, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodAnnual, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"fortnightly", time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeEndDate(start, tt.period))
		})
	}
}

func TestRemainingVisits(t *testing.T) {
	tests := []struct {
		included, consumed, want int
	}{
		{4, 0, 4},
		{4, 3, 1},
		{4, 4, 0},
		{2, 5, 0},
		{0, 0, 0},
	}
	for _, tt := range tests {
		s := Subscription{Plan: Plan{IncludedVisits: tt.included}, VisitsConsumed: tt.consumed}
		assert.Equal(t, tt.want, s.RemainingVisits(), "included=%d consumed=%d", tt.included, tt.consumed)
	}
}

func TestSubscriptionTransition(t *testing.T) {
	s := &Subscription{Status: StatusPending, AutoRenew: true}
	require.NoError(t, s.Transition(StatusActive))
	assert.Equal(t, StatusActive, s.Status)

	require.NoError(t, s.Transition(StatusCanceled))
	assert.Equal(t, StatusCanceled, s.Status)
	assert.False(t, s.AutoRenew)

	err := s.Transition(StatusActive)
	assert.ErrorIs(t, err, ErrTransition)
	assert.Equal(t, StatusCanceled, s.Status)

	assert.False(t, CanTransition(StatusPending, StatusExpired))
	assert.True(t, CanTransition(StatusActive, StatusExpired))
	assert.False(t, CanTransition(StatusExpired, StatusActive))
}

func TestNewSubscription(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	sub, err := NewSubscription(Plan{ID: 3, Active: true, BillingPeriod: PeriodQuarterly, IncludedVisits: 4}, start)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, sub.Status)
	assert.Equal(t, uint(3), sub.PlanID)
	assert.True(t, sub.AutoRenew)
	require.NotNil(t, sub.EndDate)
	assert.Equal(t, start.AddDate(0, 0, 90), *sub.EndDate)
	assert.Equal(t, 4, sub.RemainingVisits())

	_, err = NewSubscription(Plan{ID: 4, Active: false}, start)
	assert.ErrorIs(t, err, ErrInactivePlan)
}

func TestPlanTier(t *testing.T) {
	assert.Equal(t, TierNone, PlanTier(nil))
	assert.Equal(t, TierPremium, PlanTier(&Plan{Tier: " Premium "}))
	assert.Equal(t, TierBasic, PlanTier(&Plan{Tier: "", IncludedVisits: 2}))
	assert.Equal(t, TierPremium, PlanTier(&Plan{Tier: "gold", IncludedVisits: 6}))
}

func TestMakeSlug(t *testing.T) {
	tests := map[string]string{
		"Gold Care Plan":        "gold-care-plan",
		"  Basic   Service  ":   "basic-service",
		"Premium (12 months)!":  "premium-12-months",
		"--Quarterly--":         "quarterly",
		"!!!":                   "plan",
	}
	for in, want := range tests {
		assert.Equal(t, want, MakeSlug(in), in)
	}
}
