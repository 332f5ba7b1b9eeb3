package plans

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"repairmybike-api/internal/api/respond"
	"repairmybike-api/internal/domain/plans"
	"repairmybike-api/internal/infra/cache"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	plansCacheKey = "subscriptions_plans_list"
	plansTTL      = 60 * time.Second
)

type Handler struct {
	DB    *gorm.DB
	Cache *cache.Cache
	Now   func() time.Time
}

func NewHandler(db *gorm.DB, c *cache.Cache) *Handler {
	return &Handler{DB: db, Cache: c, Now: time.Now}
}

// GET /api/subscriptions/plans?search=
func (h *Handler) ListPlans(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))

	load := func() ([]plans.Plan, error) {
		q := h.DB.Where("active = ?", true)
		if search != "" {
			like := "%" + search + "%"
			q = q.Where("name ILIKE ? OR description ILIKE ?", like, like)
		}
		var list []plans.Plan
		err := q.Order("price ASC").Find(&list).Error
		return list, err
	}

	var (
		list []plans.Plan
		err  error
	)
	if search == "" {
		list, err = cache.Remember(c.Request.Context(), h.Cache, plansCacheKey, plansTTL, load)
	} else {
		list, err = load()
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load plans")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/subscriptions/plans/:id
func (h *Handler) GetPlan(c *gin.Context) {
	var plan plans.Plan
	if !respond.First(c, h.DB.Where("active = ?", true), &plan, "Plan not found") {
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *Handler) loadSubscription(c *gin.Context) (*plans.Subscription, bool) {
	var sub plans.Subscription
	if !respond.First(c, h.DB.Preload("Plan"), &sub, "Subscription not found") {
		return nil, false
	}
	return &sub, true
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func respondTransitionError(c *gin.Context, err error) {
	if errors.Is(err, plans.ErrTransition) {
		respond.Error(c, http.StatusBadRequest, "Subscription cannot move from its current status")
		return
	}
	respond.Error(c, http.StatusInternalServerError, "Failed to update subscription")
}
