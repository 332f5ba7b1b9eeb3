package auth

import (
	"net/http"
	"strings"

	"repairmybike-api/internal/api/respond"
	"repairmybike-api/internal/domain/users"
	"repairmybike-api/internal/infra/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgTooManyRequests = "Too many OTP requests. Please try again later."
	msgSendFailed      = "Failed to send verification code. Please try again later."
	msgInvalidOTP      = "Invalid OTP code"
)

func identifierKey(method string) string {
	if method == users.MethodEmail {
		return "email"
	}
	return "phone_number"
}

// sendCode runs the rate limiter, asks the provider to deliver a code and
// records the masked attempt. A failed delivery gives its slot back. It
// writes the response itself.
func (h *Handler) sendCode(c *gin.Context, method, raw string) {
	method = strings.ToLower(strings.TrimSpace(method))
	identifier, channel, err := users.NormalizeIdentifier(method, raw)
	if err != nil {
		respond.FieldError(c, "identifier", err.Error())
		return
	}

	ctx := c.Request.Context()
	reservation, allowed, err := users.ReserveOTPSend(ctx, h.DB, identifier, channel, h.now(), h.Limit)
	if err != nil {
		zap.L().Error("otp rate limiter failed", zap.String("channel", string(channel)), zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "Failed to process OTP request")
		return
	}
	if !allowed {
		metrics.OTPRequests.WithLabelValues(string(channel), "rate_limited").Inc()
		respond.Error(c, http.StatusTooManyRequests, msgTooManyRequests)
		return
	}

	if err := h.Identity.SendCode(ctx, channel, identifier); err != nil {
		metrics.OTPRequests.WithLabelValues(string(channel), "provider_error").Inc()
		zap.L().Warn("otp send failed", zap.String("channel", string(channel)), zap.Error(err))
		if rerr := users.ReleaseOTPSend(ctx, h.DB, reservation, h.now(), h.Limit); rerr != nil {
			zap.L().Error("otp reservation not released", zap.Error(rerr))
		}
		respond.Error(c, http.StatusServiceUnavailable, msgSendFailed)
		return
	}

	if err := users.RecordOTP(h.DB, channel, identifier, h.OTPTTL); err != nil {
		zap.L().Warn("otp record not stored", zap.Error(err))
	}
	metrics.OTPRequests.WithLabelValues(string(channel), "sent").Inc()

	c.JSON(http.StatusOK, gin.H{
		"error":               false,
		"message":             "OTP sent successfully",
		"method":              method,
		"identifier":          identifier,
		identifierKey(method): identifier,
		"expires_in":          int(h.OTPTTL.Seconds()),
	})
}

// checkCode verifies a code with the provider and resolves the user. On
// failure it writes the response and returns nil.
func (h *Handler) checkCode(c *gin.Context, method, raw, code string, rejectStatus int) (*users.User, users.Channel, string) {
	method = strings.ToLower(strings.TrimSpace(method))
	identifier, channel, err := users.NormalizeIdentifier(method, raw)
	if err != nil {
		respond.FieldError(c, "identifier", err.Error())
		return nil, "", ""
	}
	if err := users.ValidateOTPCode(code); err != nil {
		respond.FieldError(c, "otp_code", err.Error())
		return nil, "", ""
	}

	result, err := h.Identity.VerifyCode(c.Request.Context(), channel, identifier, strings.TrimSpace(code))
	if err != nil {
		providerFailure(c, err)
		return nil, "", ""
	}
	if !result.Approved {
		respond.Error(c, rejectStatus, msgInvalidOTP)
		return nil, "", ""
	}

	user, created, err := users.ResolveVerifiedUser(h.DB, channel, identifier, result.SubjectID)
	if err != nil {
		zap.L().Error("resolve verified user failed", zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "Failed to load user")
		return nil, "", ""
	}
	if created {
		zap.L().Info("user created on first verification", zap.Uint("user_id", user.ID))
	}
	if !user.IsActive {
		respond.Error(c, http.StatusForbidden, "This account is disabled")
		return nil, "", ""
	}

	if err := users.MarkOTPVerified(h.DB, channel, identifier, user.ID); err != nil {
		zap.L().Warn("otp records not marked verified", zap.Error(err))
	}
	return user, channel, identifier
}

func (h *Handler) verifyAndLogin(c *gin.Context, method, raw, code, deviceID string, rejectStatus int, message string) {
	user, channel, _ := h.checkCode(c, method, raw, code, rejectStatus)
	if user == nil {
		return
	}
	pair, err := h.startSession(c, user, deviceID, map[string]any{"login_method": string(channel)})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to create session")
		return
	}
	h.loginResponse(c, http.StatusOK, message, user, pair)
}

type otpRequestInput struct {
	Identifier string `json:"identifier" binding:"required"`
	Method     string `json:"method" binding:"required,oneof=phone email"`
}

type otpVerifyInput struct {
	Identifier string `json:"identifier" binding:"required"`
	Method     string `json:"method" binding:"required,oneof=phone email"`
	OTPCode    string `json:"otp_code" binding:"required"`
	DeviceID   string `json:"device_id"`
}

// POST /api/auth/otp/request
func (h *Handler) RequestOTP(c *gin.Context) {
	var input otpRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}
	h.sendCode(c, input.Method, input.Identifier)
}

// POST /api/auth/otp/verify
func (h *Handler) VerifyOTP(c *gin.Context) {
	var input otpVerifyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}
	h.verifyAndLogin(c, input.Method, input.Identifier, input.OTPCode, input.DeviceID, http.StatusBadRequest, "OTP verified successfully")
}

// POST /api/auth/phone/request-otp
func (h *Handler) RequestPhoneOTP(c *gin.Context) {
	var input struct {
		PhoneNumber string `json:"phone_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}
	h.sendCode(c, users.MethodPhone, input.PhoneNumber)
}

type phoneVerifyInput struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	OTPCode     string `json:"otp_code" binding:"required"`
	DeviceID    string `json:"device_id"`
}

// POST /api/auth/phone/verify-otp
func (h *Handler) VerifyPhoneOTP(c *gin.Context) {
	var input phoneVerifyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}
	h.verifyAndLogin(c, users.MethodPhone, input.PhoneNumber, input.OTPCode, input.DeviceID, http.StatusBadRequest, "Phone number verified successfully")
}

// POST /api/auth/phone/login
func (h *Handler) PhoneLogin(c *gin.Context) {
	var input phoneVerifyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}
	h.verifyAndLogin(c, users.MethodPhone, input.PhoneNumber, input.OTPCode, input.DeviceID, http.StatusUnauthorized, "Login successful")
}

// POST /api/auth/email/request-otp
func (h *Handler) RequestEmailOTP(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}
	h.sendCode(c, users.MethodEmail, input.Email)
}

type emailVerifyInput struct {
	Email    string `json:"email" binding:"required"`
	OTPCode  string `json:"otp_code" binding:"required"`
	DeviceID string `json:"device_id"`
}

// POST /api/auth/email/verify-otp
func (h *Handler) VerifyEmailOTP(c *gin.Context) {
	var input emailVerifyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}
	h.verifyAndLogin(c, users.MethodEmail, input.Email, input.OTPCode, input.DeviceID, http.StatusBadRequest, "Email verified successfully")
}

// POST /api/auth/email/login
func (h *Handler) EmailLogin(c *gin.Context) {
	var input emailVerifyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}
	h.verifyAndLogin(c, users.MethodEmail, input.Email, input.OTPCode, input.DeviceID, http.StatusUnauthorized, "Login successful")
}

// POST /api/auth/phone/resend-otp
func (h *Handler) ResendPhoneOTP(c *gin.Context) {
	var user users.User
	if err := h.DB.First(&user, c.GetUint("user_id")).Error; err != nil {
		respond.Error(c, http.StatusNotFound, "User not found")
		return
	}
	if user.PhoneNumber == nil || *user.PhoneNumber == "" {
		respond.Error(c, http.StatusBadRequest, "No phone number on this account")
		return
	}
	if user.IsPhoneVerified {
		respond.Error(c, http.StatusBadRequest, "Phone number is already verified")
		return
	}
	h.sendCode(c, users.MethodPhone, *user.PhoneNumber)
}
