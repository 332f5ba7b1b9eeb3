package users

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OTPAttempt is the limiter state for one (identifier, channel) pair.
// AttemptsCount is the number of sends inside the current rolling window.
type OTPAttempt struct {
	ID            uint       `gorm:"primaryKey"`
	Identifier    string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_otp_attempts_identifier_channel"`
	Channel       Channel    `gorm:"type:varchar(10);not null;uniqueIndex:idx_otp_attempts_identifier_channel"`
	AttemptsCount int        `gorm:"not null;default:0"`
	LastAttempt   time.Time  `gorm:"not null;index"`
	IsBlocked     bool       `gorm:"not null;default:false"`
	BlockedUntil  *time.Time `gorm:""`
	CreatedAt     time.Time
}

// OTPSend records one code that was handed to the provider.
type OTPSend struct {
	ID         uint      `gorm:"primaryKey"`
	Identifier string    `gorm:"type:varchar(255);not null;index:idx_otp_sends_pair_sent"`
	Channel    Channel   `gorm:"type:varchar(10);not null;index:idx_otp_sends_pair_sent"`
	SentAt     time.Time `gorm:"not null;index:idx_otp_sends_pair_sent"`
}

// RateLimit bounds how many codes one identifier may request.
type RateLimit struct {
	MaxSends int
	Window   time.Duration
	Block    time.Duration
}

var DefaultRateLimit = RateLimit{MaxSends: 5, Window: time.Hour, Block: time.Hour}

func (l RateLimit) orDefault() RateLimit {
	if l.MaxSends <= 0 || l.Window <= 0 {
		return DefaultRateLimit
	}
	if l.Block <= 0 {
		l.Block = l.Window
	}
	return l
}

// OTPReservation is an allowed send. SendID identifies the counted send so
// it can be handed back when delivery fails.
type OTPReservation struct {
	Attempt OTPAttempt
	SendID  uint
}

// lockAttempt creates the limiter row on first use and locks it for the rest
// of the transaction, so reservations for one pair run one at a time.
func lockAttempt(tx *gorm.DB, identifier string, channel Channel, now time.Time) (*OTPAttempt, error) {
	seed := OTPAttempt{Identifier: identifier, Channel: channel, LastAttempt: now, CreatedAt: now}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identifier"}, {Name: "channel"}},
		DoNothing: true,
	}).Create(&seed).Error
	if err != nil {
		return nil, err
	}

	var attempt OTPAttempt
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("identifier = ? AND channel = ?", identifier, channel).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func countRecentSends(tx *gorm.DB, identifier string, channel Channel, since time.Time) (int, error) {
	var n int64
	err := tx.Model(&OTPSend{}).
		Where("identifier = ? AND channel = ? AND sent_at > ?", identifier, channel, since).
		Count(&n).Error
	return int(n), err
}

func saveAttempt(tx *gorm.DB, attempt *OTPAttempt) error {
	return tx.Model(attempt).
		Select("attempts_count", "last_attempt", "is_blocked", "blocked_until").
		Updates(attempt).Error
}

// ReserveOTPSend counts one code send for (identifier, channel) against a
// rolling window. It returns the reservation and true when the send is
// allowed, or false while the pair is blocked or the window is full. The send
// that fills the window blocks the pair until limit.Block after it.
//
// A successful verification does not reset the counter.
func ReserveOTPSend(ctx context.Context, db *gorm.DB, identifier string, channel Channel, now time.Time, limit RateLimit) (*OTPReservation, bool, error) {
	limit = limit.orDefault()
	now = now.UTC()

	var reservation *OTPReservation
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt, err := lockAttempt(tx, identifier, channel, now)
		if err != nil {
			return err
		}
		if attempt.IsBlocked && attempt.BlockedUntil != nil && attempt.BlockedUntil.After(now) {
			return nil
		}

		recent, err := countRecentSends(tx, identifier, channel, now.Add(-limit.Window))
		if err != nil {
			return err
		}
		if recent >= limit.MaxSends {
			return nil
		}

		send := OTPSend{Identifier: identifier, Channel: channel, SentAt: now}
		if err := tx.Create(&send).Error; err != nil {
			return err
		}

		attempt.AttemptsCount = recent + 1
		attempt.LastAttempt = now
		attempt.IsBlocked = attempt.AttemptsCount >= limit.MaxSends
		attempt.BlockedUntil = nil
		if attempt.IsBlocked {
			until := now.Add(limit.Block)
			attempt.BlockedUntil = &until
		}
		if err := saveAttempt(tx, attempt); err != nil {
			return err
		}

		reservation = &OTPReservation{Attempt: *attempt, SendID: send.ID}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("reserve otp send: %w", err)
	}
	return reservation, reservation != nil, nil
}

// ReleaseOTPSend hands back a reservation whose code never reached the
// provider, so failed deliveries do not use up the quota.
func ReleaseOTPSend(ctx context.Context, db *gorm.DB, r *OTPReservation, now time.Time, limit RateLimit) error {
	if r == nil {
		return nil
	}
	limit = limit.orDefault()
	now = now.UTC()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt, err := lockAttempt(tx, r.Attempt.Identifier, r.Attempt.Channel, now)
		if err != nil {
			return err
		}
		if err := tx.Delete(&OTPSend{}, r.SendID).Error; err != nil {
			return err
		}

		recent, err := countRecentSends(tx, attempt.Identifier, attempt.Channel, now.Add(-limit.Window))
		if err != nil {
			return err
		}
		attempt.AttemptsCount = recent
		if recent < limit.MaxSends {
			attempt.IsBlocked = false
			attempt.BlockedUntil = nil
		}
		return saveAttempt(tx, attempt)
	})
	if err != nil {
		return fmt.Errorf("release otp send: %w", err)
	}
	return nil
}
