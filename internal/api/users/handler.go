package users

import (
	"errors"
	"net/http"
	"strings"

	"repairmybike-api/internal/api/respond"
	"repairmybike-api/internal/domain/users"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	DB *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db}
}

func (h *Handler) currentUser(c *gin.Context) (*users.User, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		respond.Error(c, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	var user users.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		respond.Error(c, http.StatusNotFound, "User not found")
		return nil, false
	}
	return &user, true
}

// GET /api/auth/profile
func (h *Handler) GetProfile(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, BuildProfile(user))
}

// PATCH /api/auth/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var input struct {
		FirstName      *string `json:"first_name" binding:"omitempty,max=150"`
		LastName       *string `json:"last_name" binding:"omitempty,max=150"`
		PhoneNumber    *string `json:"phone_number"`
		ProfilePicture *string `json:"profile_picture"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if input.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.ProfilePicture != nil {
		updates["profile_picture"] = strings.TrimSpace(*input.ProfilePicture)
	}
	if input.PhoneNumber != nil {
		phone, err := users.NormalizePhone(*input.PhoneNumber)
		if err != nil {
			respond.FieldError(c, "phone_number", "Invalid phone number format")
			return
		}
		if user.PhoneNumber == nil || *user.PhoneNumber != phone {
			var taken int64
			h.DB.Model(&users.User{}).Where("phone_number = ? AND id <> ?", phone, user.ID).Count(&taken)
			if taken > 0 {
				respond.FieldError(c, "phone_number", "This phone number is already in use")
				return
			}
			// A new number has to be verified again.
			updates["phone_number"] = phone
			updates["is_phone_verified"] = false
		}
	}

	if len(updates) > 0 {
		if err := h.DB.Model(user).Updates(updates).Error; err != nil {
			respond.Error(c, http.StatusInternalServerError, "Failed to update profile")
			return
		}
	}

	if err := h.DB.First(user, user.ID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		respond.Error(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    BuildProfile(user),
	})
}

// GET /api/auth/phone/verification-status
func (h *Handler) PhoneVerificationStatus(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"phone_number":       user.PhoneNumber,
		"is_phone_verified":  user.IsPhoneVerified,
		"needs_verification": user.PhoneNumber != nil && !user.IsPhoneVerified,
	})
}
