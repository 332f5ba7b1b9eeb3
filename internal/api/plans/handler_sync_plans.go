package plans

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"repairmybike-api/internal/api/respond"
	"repairmybike-api/internal/domain/plans"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/price"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// billingPeriod maps a Stripe recurring interval onto a plan period.
func billingPeriod(r *stripe.PriceRecurring) string {
	switch {
	case r.Interval == stripe.PriceRecurringIntervalYear:
		return plans.PeriodYearly
	case r.Interval == stripe.PriceRecurringIntervalMonth && r.IntervalCount == 3:
		return plans.PeriodQuarterly
	case r.Interval == stripe.PriceRecurringIntervalMonth && r.IntervalCount == 6:
		return plans.PeriodHalfYearly
	case r.Interval == stripe.PriceRecurringIntervalMonth && r.IntervalCount == 12:
		return plans.PeriodYearly
	default:
		return plans.PeriodMonthly
	}
}

// POST /api/staff/admin/sync-plans
//
// Upserts plans from active recurring Stripe prices. Prices with metadata
// visible=false are skipped; metadata plan/tier/included_visits override the
// product's defaults.
func (h *Handler) SyncPlansFromStripe(c *gin.Context) {
	if stripe.Key == "" {
		respond.Error(c, http.StatusServiceUnavailable, "Stripe key not configured")
		return
	}

	params := &stripe.PriceListParams{}
	params.Active = stripe.Bool(true)
	params.Type = stripe.String("recurring")
	params.AddExpand("data.product")
	params.Context = c.Request.Context()

	it := price.List(params)

	synced := 0
	created := 0
	updated := 0
	skipped := 0

	for it.Next() {
		p := it.Price()

		if !p.Active || p.Recurring == nil || p.Product == nil || !p.Product.Active {
			skipped++
			continue
		}
		if p.Metadata != nil && p.Metadata["visible"] == "false" {
			skipped++
			continue
		}

		displayName := p.Product.Name
		if v := p.Metadata["plan"]; v != "" {
			displayName = v
		}

		amount := decimal.New(p.UnitAmount, -2)
		period := billingPeriod(p.Recurring)

		var existing plans.Plan
		err := h.DB.Where("gateway_plan_id = ?", p.ID).First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			slug, err := plans.UniqueSlug(h.DB, displayName, 0)
			if err != nil {
				respond.Error(c, http.StatusInternalServerError, "Failed to create plan")
				return
			}
			gatewayID := p.ID
			plan := plans.Plan{
				Name:          displayName,
				Slug:          slug,
				Description:   p.Product.Description,
				Price:         amount,
				Currency:      strings.ToUpper(string(p.Currency)),
				BillingPeriod: period,
				Active:        true,
				GatewayPlanID: &gatewayID,
			}
			applyPriceMetadata(&plan, p.Metadata)
			if err := h.DB.Create(&plan).Error; err != nil {
				zap.L().Error("plan sync create failed", zap.String("price_id", p.ID), zap.Error(err))
				respond.Error(c, http.StatusInternalServerError, "Failed to create plan")
				return
			}
			created++

		case err != nil:
			respond.Error(c, http.StatusInternalServerError, "Failed to load plans")
			return

		default:
			existing.Name = displayName
			existing.Price = amount
			existing.Currency = strings.ToUpper(string(p.Currency))
			existing.BillingPeriod = period
			applyPriceMetadata(&existing, p.Metadata)

			if err := h.DB.Save(&existing).Error; err != nil {
				zap.L().Error("plan sync update failed", zap.String("price_id", p.ID), zap.Error(err))
				respond.Error(c, http.StatusInternalServerError, "Failed to update plan")
				return
			}
			updated++
		}

		synced++
	}

	if err := it.Err(); err != nil {
		respond.Error(c, http.StatusBadGateway, "Failed to fetch Stripe prices")
		return
	}

	h.Cache.Delete(c.Request.Context(), plansCacheKey)

	c.JSON(http.StatusOK, gin.H{
		"synced":  synced,
		"created": created,
		"updated": updated,
		"skipped": skipped,
	})
}

func applyPriceMetadata(plan *plans.Plan, md map[string]string) {
	if v := md["tier"]; v != "" {
		plan.Tier = v
	}
	if v := md["included_visits"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			plan.IncludedVisits = n
		}
	}
	plan.Tier = plans.PlanTier(plan)
}
