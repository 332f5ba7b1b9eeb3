package middleware

import (
	"net/http"
	"strings"
	"time"

	"repairmybike-api/internal/api/respond"
	"repairmybike-api/internal/domain/users"
	"repairmybike-api/internal/infra/tokens"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// authFailure carries the response for a rejected credential.
type authFailure struct {
	status  int
	message string
}

func (f *authFailure) Error() string { return f.message }

var (
	errNoToken        = &authFailure{http.StatusUnauthorized, "Authorization header missing"}
	errMalformedToken = &authFailure{http.StatusUnauthorized, "Bearer token malformed"}
	errInvalidToken   = &authFailure{http.StatusUnauthorized, "Invalid or expired token"}
	errSessionEnded   = &authFailure{http.StatusUnauthorized, "Session has been revoked or expired"}
	errUserInactive   = &authFailure{http.StatusForbidden, "User account is disabled"}
)

// authenticate resolves a bearer session token to its live session row.
func authenticate(c *gin.Context, db *gorm.DB, issuer *tokens.Issuer) (*users.UserSession, *authFailure) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, errNoToken
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if raw == header || raw == "" {
		return nil, errMalformedToken
	}

	claims, err := issuer.Parse(raw, tokens.TypeSession)
	if err != nil {
		return nil, errInvalidToken
	}

	now := time.Now()
	var session users.UserSession
	err = db.Preload("User").
		Where("session_token = ? AND status = ? AND expires_at > ?", raw, users.SessionActive, now).
		First(&session).Error
	if err != nil || session.UserID != claims.UserID {
		return nil, errSessionEnded
	}
	if !session.User.IsActive {
		return nil, errUserInactive
	}

	if err := db.Model(&users.UserSession{}).Where("id = ?", session.ID).Update("last_activity", now).Error; err != nil {
		zap.L().Warn("session activity not recorded", zap.Uint("session_id", session.ID), zap.Error(err))
	}
	return &session, nil
}

func setIdentity(c *gin.Context, session *users.UserSession) {
	c.Set("user_id", session.UserID)
	c.Set("role", session.User.Role)
	c.Set("session_id", session.ID)
	c.Set("session_token", session.SessionToken)
}

// AuthMiddleware requires a valid session token backed by an active session.
func AuthMiddleware(db *gorm.DB, issuer *tokens.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, failure := authenticate(c, db, issuer)
		if failure != nil {
			respond.Abort(c, failure.status, failure.message)
			return
		}
		setIdentity(c, session)
		c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid token is sent and
// lets anonymous requests through.
func OptionalAuth(db *gorm.DB, issuer *tokens.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if session, failure := authenticate(c, db, issuer); failure == nil {
			setIdentity(c, session)
		}
		c.Next()
	}
}

func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("role")
		if !exists {
			respond.Abort(c, http.StatusUnauthorized, "Role not found in token")
			return
		}

		for _, role := range roles {
			if value == role {
				c.Next()
				return
			}
		}
		respond.Abort(c, http.StatusForbidden, "Access denied")
	}
}
