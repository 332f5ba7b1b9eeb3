package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupIssuer(now time.Time) *Issuer {
	i := NewIssuer("test-secret", 8*time.Hour, 30*24*time.Hour)
	i.now = func() time.Time { return now }
	return i
}

func TestIssueAndParse(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	issuer := setupIssuer(now)

	pair, err := issuer.Issue(42, "staff")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.SessionID)
	assert.Equal(t, now.Add(8*time.Hour), pair.SessionExpiresAt)
	assert.Equal(t, now.Add(30*24*time.Hour), pair.RefreshExpiresAt)

	claims, err := issuer.Parse(pair.SessionToken, TypeSession)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "staff", claims.Role)
	assert.Equal(t, pair.SessionID, claims.ID)

	refresh, err := issuer.Parse(pair.RefreshToken, TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, pair.SessionID, refresh.ID)
}

func TestParseRejects(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	issuer := setupIssuer(now)
	pair, err := issuer.Issue(7, "customer")
	require.NoError(t, err)

	t.Run("wrong token type", func(t *testing.T) {
		_, err := issuer.Parse(pair.RefreshToken, TypeSession)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewIssuer("another-secret", time.Hour, time.Hour)
		_, err := other.Parse(pair.SessionToken, TypeSession)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := setupIssuer(now.Add(9 * time.Hour))
		_, err := later.Parse(pair.SessionToken, TypeSession)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Parse("not-a-token", TypeSession)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
