package auth

import (
	"net/http"
	"strconv"

	"repairmybike-api/internal/api/respond"
	usersapi "repairmybike-api/internal/api/users"
	"repairmybike-api/internal/domain/users"

	"github.com/gin-gonic/gin"
)

// GET /api/auth/sessions
func (h *Handler) ListSessions(c *gin.Context) {
	userID := c.GetUint("user_id")

	var sessions []users.UserSession
	if err := h.DB.
		Where("user_id = ? AND status = ? AND expires_at > ?", userID, users.SessionActive, h.now()).
		Order("last_activity DESC").
		Find(&sessions).Error; err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load sessions")
		return
	}

	currentID := c.GetUint("session_id")
	result := make([]usersapi.SessionDTO, 0, len(sessions))
	for i := range sessions {
		result = append(result, usersapi.BuildSession(&sessions[i], currentID))
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "sessions": result, "count": len(result)})
}

// POST /api/auth/sessions/:id/revoke
func (h *Handler) RevokeSession(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "Session not found")
		return
	}

	var session users.UserSession
	if err := h.DB.Where("id = ? AND user_id = ?", id, c.GetUint("user_id")).First(&session).Error; err != nil {
		respond.Error(c, http.StatusNotFound, "Session not found")
		return
	}
	if err := session.Transition(users.SessionRevoked); err != nil {
		respond.Error(c, http.StatusBadRequest, "Session is not active")
		return
	}
	if err := h.DB.Model(&session).Update("status", session.Status).Error; err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to revoke session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"error": false, "message": "Session revoked successfully"})
}
