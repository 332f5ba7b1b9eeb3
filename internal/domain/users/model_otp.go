package users

import (
	"time"

	"gorm.io/gorm"
)

// MaskedCode is stored in place of the real code; the provider owns the secret.
const MaskedCode = "****"

const DefaultOTPMaxAttempts = 3

type PhoneOTP struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      *uint  `gorm:"index"`
	PhoneNumber string `gorm:"type:varchar(20);not null;index"`
	OTPCode     string `gorm:"column:otp_code;type:varchar(10);not null"`
	IsVerified  bool
	Attempts    int
	MaxAttempts int       `gorm:"not null;default:3"`
	ExpiresAt   time.Time `gorm:"index"`
	CreatedAt   time.Time
}

type EmailOTP struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      *uint  `gorm:"index"`
	Email       string `gorm:"type:varchar(254);not null;index"`
	OTPCode     string `gorm:"column:otp_code;type:varchar(10);not null"`
	IsVerified  bool
	Attempts    int
	MaxAttempts int       `gorm:"not null;default:3"`
	ExpiresAt   time.Time `gorm:"index"`
	CreatedAt   time.Time
}

func (o *PhoneOTP) IsExpired(now time.Time) bool { return !now.Before(o.ExpiresAt) }

func (o *EmailOTP) IsExpired(now time.Time) bool { return !now.Before(o.ExpiresAt) }

// RecordOTP stores the bookkeeping row for a code the provider just sent.
func RecordOTP(db *gorm.DB, channel Channel, identifier string, ttl time.Duration) error {
	expires := time.Now().Add(ttl)
	if channel == ChannelEmail {
		return db.Create(&EmailOTP{
			Email:       identifier,
			OTPCode:     MaskedCode,
			MaxAttempts: DefaultOTPMaxAttempts,
			ExpiresAt:   expires,
		}).Error
	}
	return db.Create(&PhoneOTP{
		PhoneNumber: identifier,
		OTPCode:     MaskedCode,
		MaxAttempts: DefaultOTPMaxAttempts,
		ExpiresAt:   expires,
	}).Error
}

// MarkOTPVerified flags the outstanding codes of an identifier as used and
// links them to the user.
func MarkOTPVerified(db *gorm.DB, channel Channel, identifier string, userID uint) error {
	updates := map[string]interface{}{"is_verified": true, "user_id": userID}
	if channel == ChannelEmail {
		return db.Model(&EmailOTP{}).
			Where("email = ? AND is_verified = ?", identifier, false).
			Updates(updates).Error
	}
	return db.Model(&PhoneOTP{}).
		Where("phone_number = ? AND is_verified = ?", identifier, false).
		Updates(updates).Error
}
