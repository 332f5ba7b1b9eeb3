package auth

import (
	"errors"
	"net/http"
	"time"

	"repairmybike-api/internal/api/respond"
	usersapi "repairmybike-api/internal/api/users"
	"repairmybike-api/internal/domain/users"
	"repairmybike-api/internal/infra/identity"
	"repairmybike-api/internal/infra/tokens"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	DB       *gorm.DB
	Identity identity.Provider
	Tokens   *tokens.Issuer
	Limit    users.RateLimit
	OTPTTL   time.Duration
	Now      func() time.Time
}

func NewHandler(db *gorm.DB, provider identity.Provider, issuer *tokens.Issuer, limit users.RateLimit, otpTTL time.Duration) *Handler {
	if otpTTL <= 0 {
		otpTTL = 5 * time.Minute
	}
	return &Handler{
		DB:       db,
		Identity: provider,
		Tokens:   issuer,
		Limit:    limit,
		OTPTTL:   otpTTL,
		Now:      time.Now,
	}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// startSession issues a token pair for the user and records the session row.
func (h *Handler) startSession(c *gin.Context, user *users.User, deviceID string, extra map[string]any) (tokens.Pair, error) {
	pair, err := h.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		return tokens.Pair{}, err
	}

	_, err = users.PersistSession(h.DB, user.ID, pair.SessionToken, pair.RefreshToken, pair.SessionExpiresAt, users.SessionMeta{
		DeviceID:  deviceID,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
		Extra:     extra,
	})
	if err != nil {
		zap.L().Error("session persistence failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return tokens.Pair{}, err
	}
	return pair, nil
}

func (h *Handler) loginResponse(c *gin.Context, status int, message string, user *users.User, pair tokens.Pair) {
	c.JSON(status, gin.H{
		"error":         false,
		"message":       message,
		"user":          usersapi.BuildProfile(user),
		"session_token": pair.SessionToken,
		"refresh_token": pair.RefreshToken,
		"expires_at":    pair.SessionExpiresAt,
	})
}

// providerFailure maps identity provider errors to responses.
func providerFailure(c *gin.Context, err error) {
	if errors.Is(err, identity.ErrNotConfigured) {
		respond.Error(c, http.StatusServiceUnavailable, "Verification service is not configured")
		return
	}
	respond.Error(c, http.StatusBadRequest, err.Error())
}
