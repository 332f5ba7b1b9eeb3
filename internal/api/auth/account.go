package auth

import (
	"errors"
	"net/http"
	"strings"

	"repairmybike-api/internal/api/respond"
	usersapi "repairmybike-api/internal/api/users"
	"repairmybike-api/internal/domain/users"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func isPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, c := range password {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
			hasLetter = true
		case '0' <= c && c <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var input struct {
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required"`
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	email, err := users.NormalizeEmail(input.Email)
	if err != nil {
		respond.FieldError(c, "email", "Invalid email format")
		return
	}
	if !isPasswordStrong(input.Password) {
		respond.FieldError(c, "password", "Password must be at least 8 characters long and contain both letters and numbers")
		return
	}

	var phone *string
	if strings.TrimSpace(input.PhoneNumber) != "" {
		p, err := users.NormalizePhone(input.PhoneNumber)
		if err != nil {
			respond.FieldError(c, "phone_number", "Invalid phone number format")
			return
		}
		phone = &p
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}
	hashed := string(hashedPassword)

	user := users.User{
		Username:     email,
		Email:        &email,
		PhoneNumber:  phone,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Password:     &hashed,
		AuthProvider: users.ProviderLocal,
		Role:         users.RoleCustomer,
		IsActive:     true,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respond.Error(c, http.StatusConflict, "A user with this email or phone number already exists")
			return
		}
		zap.L().Error("register insert failed", zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"error":   false,
		"message": "User registered successfully. Please verify your email or phone with an OTP to sign in.",
		"user":    usersapi.BuildProfile(&user),
	})
}

// POST /api/auth/login
// Customers sign in with one-time codes only.
func (h *Handler) Login(c *gin.Context) {
	respond.ErrorWith(c, http.StatusBadRequest,
		"Password login is not available. Please sign in with an OTP sent to your phone or email.",
		gin.H{"redirect_to_otp": true})
}

// POST /api/auth/password-reset
func (h *Handler) PasswordReset(c *gin.Context) {
	respond.ErrorWith(c, http.StatusBadRequest,
		"Password reset is not available. Please sign in with an OTP sent to your phone or email.",
		gin.H{"redirect_to_otp": true})
}

// POST /api/auth/password-reset-confirm
func (h *Handler) PasswordResetConfirm(c *gin.Context) {
	var input struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}
	respond.ErrorWith(c, http.StatusBadRequest,
		"Password update is not available. Please sign in with an OTP sent to your phone or email.",
		gin.H{"redirect_to_otp": true})
}

// POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.ShouldBindJSON(&input)

	var revoked int64
	var err error
	switch {
	case input.RefreshToken != "":
		revoked, err = users.RevokeSessions(h.DB, "refresh_token = ?", input.RefreshToken)
	case c.GetString("session_token") != "":
		revoked, err = users.RevokeSessions(h.DB, "session_token = ?", c.GetString("session_token"))
	default:
		respond.Error(c, http.StatusBadRequest, "Refresh token or session token is required")
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to log out")
		return
	}

	c.JSON(http.StatusOK, gin.H{"error": false, "message": "Logged out successfully", "sessions_revoked": revoked})
}
