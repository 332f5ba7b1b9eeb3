package plans

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
)

var (
	ErrInactivePlan = errors.New("plan is not active")
	ErrTransition   = errors.New("invalid subscription status transition")
)

type Subscription struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	PlanID                uint           `gorm:"not null;index" json:"plan"`
	Plan                  Plan           `json:"plan_detail"`
	UserID                *uint          `gorm:"index" json:"user"`
	ContactEmail          string         `gorm:"type:varchar(254);index" json:"contact_email"`
	ContactPhone          string         `gorm:"type:varchar(20);index" json:"contact_phone"`
	Status                Status         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	AutoRenew             bool           `gorm:"not null" json:"auto_renew"`
	StartDate             time.Time      `json:"start_date"`
	EndDate               *time.Time     `json:"end_date"`
	NextBillingDate       *time.Time     `json:"next_billing_date"`
	GatewaySubscriptionID *string        `gorm:"column:gateway_subscription_id" json:"-"`
	Metadata              datatypes.JSON `json:"metadata"`
	VisitsConsumed        int            `gorm:"not null;default:0" json:"visits_consumed"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

var transitions = map[Status][]Status{
	StatusPending: {StatusActive, StatusCanceled},
	StatusActive:  {StatusCanceled, StatusExpired},
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s *Subscription) Transition(to Status) error {
	if !CanTransition(s.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrTransition, s.Status, to)
	}
	s.Status = to
	if to == StatusCanceled {
		s.AutoRenew = false
	}
	return nil
}

// RemainingVisits never goes below zero.
func (s *Subscription) RemainingVisits() int {
	left := s.Plan.IncludedVisits - s.VisitsConsumed
	if left < 0 {
		return 0
	}
	return left
}

func ComputeEndDate(start time.Time, period string) time.Time {
	return start.AddDate(0, 0, PeriodDays(period))
}

// NewSubscription builds a pending subscription for an active plan, with the
// period end and next billing date derived from the plan's billing period.
func NewSubscription(plan Plan, start time.Time) (Subscription, error) {
	if !plan.Active {
		return Subscription{}, ErrInactivePlan
	}
	end := ComputeEndDate(start, plan.BillingPeriod)
	next := end
	return Subscription{
		PlanID:          plan.ID,
		Plan:            plan,
		Status:          StatusPending,
		AutoRenew:       true,
		StartDate:       start,
		EndDate:         &end,
		NextBillingDate: &next,
	}, nil
}

// ExpireSubscriptions moves active subscriptions whose period has ended to expired.
func ExpireSubscriptions(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Model(&Subscription{}).
		Where("status = ? AND end_date IS NOT NULL AND end_date < ?", StatusActive, now).
		Update("status", StatusExpired)
	return res.RowsAffected, res.Error
}
