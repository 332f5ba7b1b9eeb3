package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionActive  SessionStatus = "active"
	SessionRevoked SessionStatus = "revoked"
	SessionExpired SessionStatus = "expired"
)

var ErrSessionTransition = errors.New("invalid session status transition")

type UserSession struct {
	ID           uint          `gorm:"primaryKey"`
	UserID       uint          `gorm:"index;not null"`
	User         User          `gorm:"constraint:OnDelete:CASCADE"`
	SessionToken string        `gorm:"uniqueIndex;not null"`
	RefreshToken string        `gorm:"index"`
	Status       SessionStatus `gorm:"type:varchar(16);not null;default:'active';index"`
	ExpiresAt    time.Time     `gorm:"index"`
	DeviceID     string        `gorm:"type:varchar(255)"`
	UserAgent    string
	IPAddress    string `gorm:"type:varchar(64)"`
	Metadata     datatypes.JSON
	LastActivity time.Time
	CreatedAt    time.Time
}

// CanTransition reports whether a session may move from one status to another.
// Only active sessions change state.
func CanTransition(from, to SessionStatus) bool {
	if from != SessionActive {
		return false
	}
	return to == SessionRevoked || to == SessionExpired
}

func (s *UserSession) Transition(to SessionStatus) error {
	if !CanTransition(s.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrSessionTransition, s.Status, to)
	}
	s.Status = to
	return nil
}

func (s *UserSession) IsUsable(now time.Time) bool {
	return s.Status == SessionActive && now.Before(s.ExpiresAt)
}

// SessionMeta is the device information captured when a session is issued.
type SessionMeta struct {
	DeviceID  string
	UserAgent string
	IPAddress string
	Extra     map[string]any
}

// PersistSession creates the session row for a freshly issued token pair, or
// refreshes it when the same token is presented again.
func PersistSession(db *gorm.DB, userID uint, sessionToken, refreshToken string, expiresAt time.Time, meta SessionMeta) (*UserSession, error) {
	now := time.Now()
	var extra datatypes.JSON
	if len(meta.Extra) > 0 {
		b, err := json.Marshal(meta.Extra)
		if err != nil {
			return nil, err
		}
		extra = datatypes.JSON(b)
	}

	session := UserSession{
		UserID:       userID,
		SessionToken: sessionToken,
		RefreshToken: refreshToken,
		Status:       SessionActive,
		ExpiresAt:    expiresAt,
		DeviceID:     meta.DeviceID,
		UserAgent:    meta.UserAgent,
		IPAddress:    meta.IPAddress,
		Metadata:     extra,
		LastActivity: now,
	}

	err := db.Where(UserSession{UserID: userID, SessionToken: sessionToken}).
		Assign(map[string]interface{}{
			"refresh_token": refreshToken,
			"status":        SessionActive,
			"expires_at":    expiresAt,
			"device_id":     meta.DeviceID,
			"user_agent":    meta.UserAgent,
			"ip_address":    meta.IPAddress,
			"last_activity": now,
		}).
		FirstOrCreate(&session).Error
	if err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return &session, nil
}

// RevokeSessions flips every active session matching the condition to revoked
// and returns how many rows changed.
func RevokeSessions(db *gorm.DB, query string, args ...interface{}) (int64, error) {
	res := db.Model(&UserSession{}).
		Where("status = ?", SessionActive).
		Where(query, args...).
		Update("status", SessionRevoked)
	return res.RowsAffected, res.Error
}
