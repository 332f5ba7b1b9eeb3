package admin

import (
	"errors"
	"net/http"
	"strings"
	"time"

	billingapi "repairmybike-api/internal/api/billing"
	"repairmybike-api/internal/api/respond"
	usersapi "repairmybike-api/internal/api/users"
	"repairmybike-api/internal/domain/billing"
	"repairmybike-api/internal/domain/bookings"
	"repairmybike-api/internal/domain/plans"
	"repairmybike-api/internal/domain/users"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Now: time.Now}
}

type AdminUser struct {
	ID              uint      `json:"id"`
	Username        string    `json:"username"`
	FullName        string    `json:"full_name"`
	Email           *string   `json:"email"`
	PhoneNumber     *string   `json:"phone_number"`
	Role            string    `json:"role"`
	AuthProvider    string    `json:"auth_provider"`
	IsVerified      bool      `json:"is_verified"`
	IsPhoneVerified bool      `json:"is_phone_verified"`
	IsActive        bool      `json:"is_active"`
	ActiveSessions  int64     `json:"active_sessions"`
	CreatedAt       time.Time `json:"created_at"`
}

type AdminStats struct {
	TotalUsers          int64            `json:"total_users"`
	UsersPerRole        map[string]int64 `json:"users_per_role"`
	TotalBookings       int64            `json:"total_bookings"`
	TotalRevenue        string           `json:"total_revenue"`
	RecentRevenue       string           `json:"recent_revenue"`
	ActiveSubscriptions int64            `json:"active_subscriptions"`
	ActiveSessions      int64            `json:"active_sessions"`
}

// GET /api/staff/admin/dashboard
func (h *Handler) AdminDashboard(c *gin.Context) {
	var stats AdminStats
	db := h.DB.WithContext(c.Request.Context())

	type roleCount struct {
		Role  string
		Count int64
	}
	var roles []roleCount
	err := db.Model(&users.User{}).Select("role, COUNT(*) AS count").Group("role").Scan(&roles).Error
	if err == nil {
		stats.UsersPerRole = make(map[string]int64, len(roles))
		for _, r := range roles {
			stats.UsersPerRole[r.Role] = r.Count
			stats.TotalUsers += r.Count
		}
	}

	thirtyDaysAgo := h.Now().AddDate(0, 0, -30)
	steps := []func() error{
		func() error { return err },
		func() error { return db.Model(&bookings.Booking{}).Count(&stats.TotalBookings).Error },
		func() error {
			return db.Model(&billing.Payment{}).
				Where("status = ?", billing.StatusCaptured).
				Select("COALESCE(SUM(amount), 0)::text").
				Scan(&stats.TotalRevenue).Error
		},
		func() error {
			return db.Model(&billing.Payment{}).
				Where("status = ? AND updated_at >= ?", billing.StatusCaptured, thirtyDaysAgo).
				Select("COALESCE(SUM(amount), 0)::text").
				Scan(&stats.RecentRevenue).Error
		},
		func() error {
			return db.Model(&plans.Subscription{}).Where("status = ?", plans.StatusActive).Count(&stats.ActiveSubscriptions).Error
		},
		func() error {
			return db.Model(&users.UserSession{}).
				Where("status = ? AND expires_at > ?", users.SessionActive, h.Now()).
				Count(&stats.ActiveSessions).Error
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			zap.L().Error("admin dashboard query failed", zap.Error(err))
			respond.Error(c, http.StatusInternalServerError, "Failed to load dashboard")
			return
		}
	}

	c.JSON(http.StatusOK, stats)
}

// GET /api/staff/admin/users?role=&search=
func (h *Handler) ListAllUsers(c *gin.Context) {
	q := h.DB.Model(&users.User{})
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		q = q.Where("email ILIKE ? OR phone_number ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?", like, like, like, like)
	}

	var list []users.User
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load users")
		return
	}

	type sessionCount struct {
		UserID uint
		Count  int64
	}
	var counts []sessionCount
	if err := h.DB.Model(&users.UserSession{}).
		Select("user_id, COUNT(*) AS count").
		Where("status = ? AND expires_at > ?", users.SessionActive, h.Now()).
		Group("user_id").
		Scan(&counts).Error; err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load users")
		return
	}
	active := make(map[uint]int64, len(counts))
	for _, sc := range counts {
		active[sc.UserID] = sc.Count
	}

	adminUsers := make([]AdminUser, 0, len(list))
	for i := range list {
		u := &list[i]
		adminUsers = append(adminUsers, AdminUser{
			ID:              u.ID,
			Username:        u.Username,
			FullName:        u.DisplayName(),
			Email:           u.Email,
			PhoneNumber:     u.PhoneNumber,
			Role:            u.Role,
			AuthProvider:    u.AuthProvider,
			IsVerified:      u.IsVerified,
			IsPhoneVerified: u.IsPhoneVerified,
			IsActive:        u.IsActive,
			ActiveSessions:  active[u.ID],
			CreatedAt:       u.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, adminUsers)
}

// GET /api/staff/admin/users/:id
func (h *Handler) GetUserDetails(c *gin.Context) {
	var user users.User
	if !respond.First(c, h.DB, &user, "User not found") {
		return
	}

	var sessions []users.UserSession
	if err := h.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Limit(20).Find(&sessions).Error; err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to fetch sessions")
		return
	}

	var subs []plans.Subscription
	if err := h.DB.Preload("Plan").Where("user_id = ?", user.ID).Order("created_at DESC").Find(&subs).Error; err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to fetch subscriptions")
		return
	}

	sessionDTOs := make([]usersapi.SessionDTO, 0, len(sessions))
	for i := range sessions {
		sessionDTOs = append(sessionDTOs, usersapi.BuildSession(&sessions[i], 0))
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          usersapi.BuildProfile(&user),
		"sessions":      sessionDTOs,
		"subscriptions": subs,
	})
}

// GET /api/staff/admin/payments?status=
func (h *Handler) ListAllPayments(c *gin.Context) {
	q := h.DB.Model(&billing.Payment{})
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var list []billing.Payment
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load payments")
		return
	}

	result := make([]billingapi.PaymentDTO, 0, len(list))
	for i := range list {
		result = append(result, billingapi.BuildPayment(&list[i]))
	}
	c.JSON(http.StatusOK, result)
}

type StaffEntry struct {
	ID         uint      `json:"id"`
	Identifier string    `json:"identifier"`
	Name       string    `json:"name"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func buildStaffEntry(e *users.StaffDirectory) StaffEntry {
	return StaffEntry{ID: e.ID, Identifier: e.Identifier, Name: e.Name, IsActive: e.IsActive, CreatedAt: e.CreatedAt}
}

// GET /api/staff/admin/staff-directory
func (h *Handler) ListStaffDirectory(c *gin.Context) {
	var entries []users.StaffDirectory
	if err := h.DB.Order("identifier ASC").Find(&entries).Error; err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load staff directory")
		return
	}
	out := make([]StaffEntry, 0, len(entries))
	for i := range entries {
		out = append(out, buildStaffEntry(&entries[i]))
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/staff/admin/staff-directory
func (h *Handler) CreateStaffEntry(c *gin.Context) {
	var input struct {
		Identifier string `json:"identifier" binding:"required"`
		Name       string `json:"name" binding:"max=150"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	method := users.MethodPhone
	if strings.Contains(input.Identifier, "@") {
		method = users.MethodEmail
	}
	identifier, _, err := users.NormalizeIdentifier(method, input.Identifier)
	if err != nil {
		respond.FieldError(c, "identifier", "Enter a valid phone number or email address.")
		return
	}

	entry := users.StaffDirectory{Identifier: identifier, Name: strings.TrimSpace(input.Name), IsActive: true}
	if err := h.DB.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respond.Error(c, http.StatusConflict, "Identifier is already in the staff directory")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Failed to create staff entry")
		return
	}

	zap.L().Info("staff directory entry added", zap.String("identifier", identifier), zap.Uint("by_user_id", c.GetUint("user_id")))
	respond.Success(c, http.StatusCreated, "Staff entry created", buildStaffEntry(&entry))
}

// POST /api/staff/admin/staff-directory/:id/deactivate
func (h *Handler) DeactivateStaffEntry(c *gin.Context) {
	var entry users.StaffDirectory
	if !respond.First(c, h.DB, &entry, "Staff entry not found") {
		return
	}
	if err := h.DB.Model(&entry).Update("is_active", false).Error; err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to deactivate staff entry")
		return
	}
	entry.IsActive = false
	respond.Success(c, http.StatusOK, "Staff entry deactivated", buildStaffEntry(&entry))
}
