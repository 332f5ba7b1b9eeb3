package plans

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	PeriodMonthly    = "monthly"
	PeriodQuarterly  = "quarterly"
	PeriodHalfYearly = "half_yearly"
	PeriodYearly     = "yearly"
	PeriodAnnual     = "annual"
)

type Plan struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"type:varchar(100);not null" json:"name"`
	Slug           string          `gorm:"type:varchar(120);not null;uniqueIndex" json:"slug"`
	Description    string          `json:"description"`
	Tier           string          `gorm:"type:varchar(20);not null;default:'basic'" json:"tier"`
	Benefits       datatypes.JSON  `json:"benefits"`
	Services       datatypes.JSON  `json:"services"`
	Price          decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Currency       string          `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`
	BillingPeriod  string          `gorm:"type:varchar(20);not null;default:'monthly'" json:"billing_period"`
	IncludedVisits int             `gorm:"not null;default:0" json:"included_visits"`
	Active         bool            `gorm:"not null;default:true;index" json:"active"`
	GatewayPlanID  *string         `gorm:"column:gateway_plan_id" json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// PeriodDays is the length of one billing period in days. Unknown periods
// count as monthly.
func PeriodDays(period string) int {
	switch period {
	case PeriodQuarterly:
		return 90
	case PeriodHalfYearly:
		return 182
	case PeriodYearly, PeriodAnnual:
		return 365
	default:
		return 30
	}
}

func ValidPeriod(period string) bool {
	switch period {
	case PeriodMonthly, PeriodQuarterly, PeriodHalfYearly, PeriodYearly, PeriodAnnual:
		return true
	}
	return false
}
