package auth

import (
	"errors"
	"net/http"
	"strings"

	"repairmybike-api/internal/api/respond"
	"repairmybike-api/internal/domain/users"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgStaffRequired = "Staff privileges required"
	msgAdminRequired = "Admin privileges required"
)

type privilegedOTPInput struct {
	Identifier string `json:"identifier" binding:"required"`
	Method     string `json:"method" binding:"required,oneof=phone email sms"`
	OTPCode    string `json:"otp_code" binding:"required"`
	DeviceID   string `json:"device_id"`
}

type passwordLoginInput struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
	DeviceID   string `json:"device_id"`
}

func normalizeMethod(m string) string {
	if strings.EqualFold(m, "sms") {
		return users.MethodPhone
	}
	return strings.ToLower(m)
}

// grantStaffFromDirectory promotes a verified identifier listed in the staff
// directory. It returns false when the identifier is not listed.
func (h *Handler) grantStaffFromDirectory(user *users.User, identifier string) (bool, error) {
	entry, err := users.LookupStaffDirectory(h.DB, identifier)
	if err != nil || entry == nil {
		return false, err
	}

	updates := map[string]interface{}{"role": users.RoleStaff}
	if user.FirstName == "" && entry.Name != "" {
		updates["first_name"] = entry.Name
		user.FirstName = entry.Name
	}
	if err := h.DB.Model(user).Updates(updates).Error; err != nil {
		return false, err
	}
	user.Role = users.RoleStaff
	zap.L().Info("staff access provisioned from directory", zap.Uint("user_id", user.ID))
	return true, nil
}

// POST /api/auth/staff/login
func (h *Handler) StaffLogin(c *gin.Context) {
	var input privilegedOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	user, channel, identifier := h.checkCode(c, normalizeMethod(input.Method), input.Identifier, input.OTPCode, http.StatusUnauthorized)
	if user == nil {
		return
	}

	if !user.IsStaffMember() {
		granted, err := h.grantStaffFromDirectory(user, identifier)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "Failed to check staff directory")
			return
		}
		if !granted {
			respond.Error(c, http.StatusForbidden, msgStaffRequired)
			return
		}
	}

	pair, err := h.startSession(c, user, input.DeviceID, map[string]any{
		"login_method": string(channel),
		"portal":       "staff",
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to create session")
		return
	}
	h.loginResponse(c, http.StatusOK, "Staff login successful", user, pair)
}

// POST /api/auth/admin/login
func (h *Handler) AdminLogin(c *gin.Context) {
	var input privilegedOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	user, channel, _ := h.checkCode(c, normalizeMethod(input.Method), input.Identifier, input.OTPCode, http.StatusUnauthorized)
	if user == nil {
		return
	}
	if !user.IsAdmin() {
		respond.Error(c, http.StatusForbidden, msgAdminRequired)
		return
	}

	pair, err := h.startSession(c, user, input.DeviceID, map[string]any{
		"login_method": string(channel),
		"portal":       "admin",
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to create session")
		return
	}
	h.loginResponse(c, http.StatusOK, "Admin login successful", user, pair)
}

// passwordLogin authenticates by email or phone plus password. allowed
// decides whether the resolved user may use this portal.
func (h *Handler) passwordLogin(c *gin.Context, portal string, allowed func(*users.User) bool, denied string) {
	var input passwordLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	var user *users.User
	var err error
	if email, eerr := users.NormalizeEmail(input.Identifier); eerr == nil {
		user, err = users.FindByIdentifier(h.DB, users.ChannelEmail, email)
	} else if phone, perr := users.NormalizePhone(input.Identifier); perr == nil {
		user, err = users.FindByIdentifier(h.DB, users.ChannelSMS, phone)
	} else {
		respond.FieldError(c, "identifier", "Enter a valid email address or phone number")
		return
	}
	if errors.Is(err, users.ErrUserNotFound) {
		respond.Error(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load user")
		return
	}

	if user.Password == nil || *user.Password == "" {
		respond.Error(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(input.Password)); err != nil {
		respond.Error(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !user.IsActive {
		respond.Error(c, http.StatusForbidden, "This account is disabled")
		return
	}
	if !allowed(user) {
		respond.Error(c, http.StatusForbidden, denied)
		return
	}

	pair, err := h.startSession(c, user, input.DeviceID, map[string]any{
		"login_method": "password",
		"portal":       portal,
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to create session")
		return
	}
	h.loginResponse(c, http.StatusOK, "Login successful", user, pair)
}

// POST /api/auth/staff/password-login
func (h *Handler) StaffPasswordLogin(c *gin.Context) {
	h.passwordLogin(c, "staff", (*users.User).IsStaffMember, msgStaffRequired)
}

// POST /api/auth/admin/password-login
func (h *Handler) AdminPasswordLogin(c *gin.Context) {
	h.passwordLogin(c, "admin", (*users.User).IsAdmin, msgAdminRequired)
}
