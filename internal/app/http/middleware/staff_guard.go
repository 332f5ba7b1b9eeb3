package middleware

import (
	"crypto/subtle"
	"net/http"

	"repairmybike-api/internal/api/respond"
	"repairmybike-api/internal/domain/access"
	"repairmybike-api/internal/infra/tokens"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const StaffKeyHeader = "X-API-Key"

// StaffAccess admits requests carrying the shared staff API key or a session
// belonging to a staff or admin user. The granted capabilities are stored
// under "capabilities".
func StaffAccess(db *gorm.DB, issuer *tokens.Issuer, apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader(StaffKeyHeader); key != "" {
			if apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				respond.Abort(c, http.StatusForbidden, "Invalid API key")
				return
			}
			c.Set("auth_method", "api_key")
			c.Set("capabilities", access.StaffKeyCapabilities())
			c.Next()
			return
		}

		session, failure := authenticate(c, db, issuer)
		if failure != nil {
			respond.Abort(c, http.StatusUnauthorized, "Staff authentication required")
			return
		}
		if !session.User.IsStaffMember() {
			respond.Abort(c, http.StatusForbidden, "Staff access required")
			return
		}

		setIdentity(c, session)
		c.Set("auth_method", "session")
		c.Set("capabilities", access.CapabilitiesFor(session.User.Role))
		c.Next()
	}
}

// RequireCapability must run after StaffAccess.
func RequireCapability(capability access.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		caps, _ := c.Get("capabilities")
		granted, _ := caps.([]access.Capability)
		if !access.HasCapability(granted, capability) {
			respond.Abort(c, http.StatusForbidden, "Access denied")
			return
		}
		c.Next()
	}
}
