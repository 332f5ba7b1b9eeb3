package users

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"repairmybike-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPhone = "+14155550100"

var testLimit = RateLimit{MaxSends: 5, Window: time.Hour, Block: time.Hour}

func setupLimiterDB(t *testing.T) *gorm.DB {
	return testutil.NewTestDB(t, &OTPAttempt{}, &OTPSend{})
}

func loadAttempt(t *testing.T, db *gorm.DB, identifier string, channel Channel) OTPAttempt {
	t.Helper()
	var a OTPAttempt
	require.NoError(t, db.Where("identifier = ? AND channel = ?", identifier, channel).First(&a).Error)
	return a
}

func TestReserveOTPSendSixthInHourRejected(t *testing.T) {
	db := setupLimiterDB(t)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for n := 1; n <= 5; n++ {
		r, allowed, err := ReserveOTPSend(context.Background(), db, testPhone, ChannelSMS, start.Add(time.Duration(n)*time.Minute), testLimit)
		require.NoError(t, err)
		require.True(t, allowed, "send %d", n)
		assert.Equal(t, n, r.Attempt.AttemptsCount)
	}

	r, allowed, err := ReserveOTPSend(context.Background(), db, testPhone, ChannelSMS, start.Add(10*time.Minute), testLimit)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Nil(t, r)

	a := loadAttempt(t, db, testPhone, ChannelSMS)
	assert.Equal(t, 5, a.AttemptsCount)
	assert.True(t, a.IsBlocked)
	require.NotNil(t, a.BlockedUntil)
	assert.True(t, a.BlockedUntil.Equal(start.Add(5*time.Minute+time.Hour)))
}

func TestReserveOTPSendRollingWindow(t *testing.T) {
	db := setupLimiterDB(t)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	steps := []struct {
		offset  time.Duration
		allowed bool
		count   int
	}{
		{0, true, 1},
		{57 * time.Minute, true, 2},
		{58 * time.Minute, true, 3},
		{59 * time.Minute, true, 4},
		// the first send has left the window
		{61 * time.Minute, true, 4},
		{62 * time.Minute, true, 5},
		{63 * time.Minute, false, 0},
		{90 * time.Minute, false, 0},
	}
	for _, s := range steps {
		r, allowed, err := ReserveOTPSend(context.Background(), db, testPhone, ChannelSMS, start.Add(s.offset), testLimit)
		require.NoError(t, err)
		require.Equal(t, s.allowed, allowed, "send at +%s", s.offset)
		if s.allowed {
			assert.Equal(t, s.count, r.Attempt.AttemptsCount, "send at +%s", s.offset)
		}
	}

	var sends int64
	require.NoError(t, db.Model(&OTPSend{}).
		Where("sent_at > ?", start.Add(3*time.Minute)).
		Where("sent_at <= ?", start.Add(63*time.Minute)).
		Count(&sends).Error)
	assert.LessOrEqual(t, sends, int64(testLimit.MaxSends))
}

func TestReserveOTPSendBlockLiftsAnHourAfterLastSend(t *testing.T) {
	db := setupLimiterDB(t)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for n := 0; n < 5; n++ {
		_, allowed, err := ReserveOTPSend(context.Background(), db, testPhone, ChannelSMS, start.Add(time.Duration(n)*time.Minute), testLimit)
		require.NoError(t, err)
		require.True(t, allowed)
	}
	lastSend := start.Add(4 * time.Minute)

	_, allowed, err := ReserveOTPSend(context.Background(), db, testPhone, ChannelSMS, lastSend.Add(59*time.Minute), testLimit)
	require.NoError(t, err)
	assert.False(t, allowed)

	r, allowed, err := ReserveOTPSend(context.Background(), db, testPhone, ChannelSMS, lastSend.Add(61*time.Minute), testLimit)
	require.NoError(t, err)
	require.True(t, allowed)
	assert.Equal(t, 1, r.Attempt.AttemptsCount)
	assert.False(t, r.Attempt.IsBlocked)
	assert.Nil(t, r.Attempt.BlockedUntil)
}

func TestReserveOTPSendPairsAreIndependent(t *testing.T) {
	db := setupLimiterDB(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for n := 0; n < 5; n++ {
		_, allowed, err := ReserveOTPSend(context.Background(), db, testPhone, ChannelSMS, now, testLimit)
		require.NoError(t, err)
		require.True(t, allowed)
	}

	_, allowed, err := ReserveOTPSend(context.Background(), db, "rider@example.com", ChannelEmail, now, testLimit)
	require.NoError(t, err)
	assert.True(t, allowed)

	_, allowed, err = ReserveOTPSend(context.Background(), db, "+14155550199", ChannelSMS, now, testLimit)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestReserveOTPSendConcurrent(t *testing.T) {
	db := setupLimiterDB(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := ReserveOTPSend(context.Background(), db, testPhone, ChannelSMS, now, testLimit)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, testLimit.MaxSends, allowed)
	assert.Equal(t, testLimit.MaxSends, loadAttempt(t, db, testPhone, ChannelSMS).AttemptsCount)
}

func TestReleaseOTPSend(t *testing.T) {
	db := setupLimiterDB(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	for n := 0; n < 4; n++ {
		_, allowed, err := ReserveOTPSend(ctx, db, testPhone, ChannelSMS, now, testLimit)
		require.NoError(t, err)
		require.True(t, allowed)
	}

	fifth, allowed, err := ReserveOTPSend(ctx, db, testPhone, ChannelSMS, now, testLimit)
	require.NoError(t, err)
	require.True(t, allowed)
	require.True(t, fifth.Attempt.IsBlocked)

	require.NoError(t, ReleaseOTPSend(ctx, db, fifth, now, testLimit))

	a := loadAttempt(t, db, testPhone, ChannelSMS)
	assert.Equal(t, 4, a.AttemptsCount)
	assert.False(t, a.IsBlocked)
	assert.Nil(t, a.BlockedUntil)

	r, allowed, err := ReserveOTPSend(ctx, db, testPhone, ChannelSMS, now.Add(time.Minute), testLimit)
	require.NoError(t, err)
	require.True(t, allowed)
	assert.Equal(t, 5, r.Attempt.AttemptsCount)

	assert.NoError(t, ReleaseOTPSend(ctx, db, nil, now, testLimit))
}

func TestReserveOTPSendDatabaseError(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("connection reset"))

	r, allowed, err := ReserveOTPSend(context.Background(), db, "rider@example.com", ChannelEmail, time.Now(), testLimit)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserve otp send")
	assert.False(t, allowed)
	assert.Nil(t, r)
}
