package users

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCanTransition(t *testing.T) {
	tests := []struct {
		from, to SessionStatus
		want     bool
	}{
		{SessionActive, SessionRevoked, true},
		{SessionActive, SessionExpired, true},
		{SessionActive, SessionActive, false},
		{SessionRevoked, SessionActive, false},
		{SessionRevoked, SessionExpired, false},
		{SessionExpired, SessionActive, false},
		{SessionExpired, SessionRevoked, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestSessionTransition(t *testing.T) {
	s := &UserSession{Status: SessionActive}
	require.NoError(t, s.Transition(SessionRevoked))
	assert.Equal(t, SessionRevoked, s.Status)

	err := s.Transition(SessionActive)
	assert.ErrorIs(t, err, ErrSessionTransition)
	assert.Equal(t, SessionRevoked, s.Status)
}

func TestSessionIsUsable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, (&UserSession{Status: SessionActive, ExpiresAt: now.Add(time.Minute)}).IsUsable(now))
	assert.False(t, (&UserSession{Status: SessionActive, ExpiresAt: now}).IsUsable(now))
	assert.False(t, (&UserSession{Status: SessionRevoked, ExpiresAt: now.Add(time.Hour)}).IsUsable(now))
}
