package plans

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"repairmybike-api/internal/api/respond"
	"repairmybike-api/internal/domain/plans"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var contactPhonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)

// SubscriptionDTO adds the derived fields clients display.
type SubscriptionDTO struct {
	plans.Subscription
	PlanName        string `json:"plan_name"`
	RemainingVisits int    `json:"remaining_visits"`
}

func buildSubscription(s *plans.Subscription) SubscriptionDTO {
	return SubscriptionDTO{
		Subscription:    *s,
		PlanName:        s.Plan.Name,
		RemainingVisits: s.RemainingVisits(),
	}
}

// GET /api/subscriptions/subscriptions?email=&user_id=&phone=
func (h *Handler) ListSubscriptions(c *gin.Context) {
	userID, ok := respond.OptionalQueryID(c, "user_id")
	if !ok {
		return
	}

	q := h.DB.Preload("Plan")
	if email := strings.TrimSpace(c.Query("email")); email != "" {
		q = q.Where("contact_email = ?", strings.ToLower(email))
	}
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if phone := strings.TrimSpace(c.Query("phone")); phone != "" {
		q = q.Where("contact_phone = ?", phone)
	}

	var list []plans.Subscription
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load subscriptions")
		return
	}

	out := make([]SubscriptionDTO, 0, len(list))
	for i := range list {
		out = append(out, buildSubscription(&list[i]))
	}
	respond.Success(c, http.StatusOK, "Subscriptions retrieved successfully", out)
}

// POST /api/subscriptions/subscriptions
func (h *Handler) CreateSubscription(c *gin.Context) {
	var input struct {
		PlanID       uint                   `json:"plan" binding:"required"`
		UserID       *uint                  `json:"user"`
		ContactEmail string                 `json:"contact_email" binding:"omitempty,email"`
		ContactPhone string                 `json:"contact_phone"`
		StartDate    *time.Time             `json:"start_date"`
		AutoRenew    *bool                  `json:"auto_renew"`
		Metadata     map[string]interface{} `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	phone := strings.TrimSpace(input.ContactPhone)
	if phone != "" && !contactPhonePattern.MatchString(phone) {
		respond.FieldError(c, "contact_phone", "Invalid phone number format")
		return
	}
	if uid := c.GetUint("user_id"); uid != 0 && input.UserID == nil {
		input.UserID = &uid
	}

	var plan plans.Plan
	if err := h.DB.First(&plan, input.PlanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.FieldError(c, "plan", "Invalid plan.")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Failed to load plan")
		return
	}

	start := h.now()
	if input.StartDate != nil {
		start = *input.StartDate
	}
	sub, err := plans.NewSubscription(plan, start)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "Selected plan is not active.")
		return
	}

	sub.UserID = input.UserID
	sub.ContactEmail = strings.ToLower(strings.TrimSpace(input.ContactEmail))
	sub.ContactPhone = phone
	if input.AutoRenew != nil {
		sub.AutoRenew = *input.AutoRenew
	}
	if input.Metadata != nil {
		raw, err := json.Marshal(input.Metadata)
		if err != nil {
			respond.FieldError(c, "metadata", "Invalid metadata.")
			return
		}
		sub.Metadata = datatypes.JSON(raw)
	}

	if err := h.DB.Omit("Plan").Create(&sub).Error; err != nil {
		zap.L().Error("subscription create failed", zap.Uint("plan_id", plan.ID), zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "Failed to create subscription")
		return
	}
	respond.Success(c, http.StatusCreated, "Subscription created successfully", buildSubscription(&sub))
}

// GET /api/subscriptions/subscriptions/:id
func (h *Handler) GetSubscription(c *gin.Context) {
	sub, ok := h.loadSubscription(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, buildSubscription(sub))
}

// POST /api/subscriptions/subscriptions/:id/activate
func (h *Handler) ActivateSubscription(c *gin.Context) {
	h.transition(c, plans.StatusActive)
}

// POST /api/subscriptions/subscriptions/:id/cancel
func (h *Handler) CancelSubscription(c *gin.Context) {
	h.transition(c, plans.StatusCanceled)
}

func (h *Handler) transition(c *gin.Context, to plans.Status) {
	sub, ok := h.loadSubscription(c)
	if !ok {
		return
	}
	from := sub.Status
	if err := sub.Transition(to); err != nil {
		respondTransitionError(c, err)
		return
	}

	// The status guard keeps a concurrent transition from being overwritten.
	res := h.DB.Model(&plans.Subscription{}).
		Where("id = ? AND status = ?", sub.ID, from).
		Updates(map[string]interface{}{"status": sub.Status, "auto_renew": sub.AutoRenew})
	if res.Error != nil {
		respondTransitionError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondTransitionError(c, plans.ErrTransition)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": sub.Status})
}
