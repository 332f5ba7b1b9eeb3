package users

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type CleanupOptions struct {
	OTPs     bool
	Sessions bool
	DryRun   bool

	OTPRetention     time.Duration
	AttemptReset     time.Duration
	SessionRetention time.Duration
}

var DefaultCleanupOptions = CleanupOptions{
	OTPs:             true,
	Sessions:         true,
	OTPRetention:     7 * 24 * time.Hour,
	AttemptReset:     24 * time.Hour,
	SessionRetention: 30 * 24 * time.Hour,
}

type CleanupReport struct {
	ExpiredOTPs     int64 `json:"expired_otps"`
	OldOTPs         int64 `json:"old_otps"`
	ResetAttempts   int64 `json:"reset_attempts"`
	PrunedSends     int64 `json:"pruned_sends"`
	ExpiredSessions int64 `json:"expired_sessions"`
	PrunedSessions  int64 `json:"pruned_sessions"`
}

var errDryRun = errors.New("dry run")

// RunCleanup removes spent verification state and retires stale sessions in
// one transaction. With DryRun set the counts are reported and the
// transaction is rolled back.
func RunCleanup(db *gorm.DB, now time.Time, opts CleanupOptions) (CleanupReport, error) {
	var report CleanupReport

	err := db.Transaction(func(tx *gorm.DB) error {
		if opts.OTPs {
			for _, model := range []interface{}{&PhoneOTP{}, &EmailOTP{}} {
				res := tx.Where("expires_at < ?", now).Delete(model)
				if res.Error != nil {
					return res.Error
				}
				report.ExpiredOTPs += res.RowsAffected

				res = tx.Where("created_at < ?", now.Add(-opts.OTPRetention)).Delete(model)
				if res.Error != nil {
					return res.Error
				}
				report.OldOTPs += res.RowsAffected
			}

			res := tx.Model(&OTPAttempt{}).
				Where("last_attempt < ?", now.Add(-opts.AttemptReset)).
				Where("blocked_until IS NULL OR blocked_until < ?", now).
				Updates(map[string]interface{}{
					"attempts_count": 0,
					"is_blocked":     false,
					"blocked_until":  nil,
				})
			if res.Error != nil {
				return res.Error
			}
			report.ResetAttempts = res.RowsAffected

			res = tx.Where("sent_at < ?", now.Add(-opts.AttemptReset)).Delete(&OTPSend{})
			if res.Error != nil {
				return res.Error
			}
			report.PrunedSends = res.RowsAffected
		}

		if opts.Sessions {
			res := tx.Model(&UserSession{}).
				Where("status = ? AND expires_at < ?", SessionActive, now).
				Update("status", SessionExpired)
			if res.Error != nil {
				return res.Error
			}
			report.ExpiredSessions = res.RowsAffected

			res = tx.Where("status <> ? AND created_at < ?", SessionActive, now.Add(-opts.SessionRetention)).
				Delete(&UserSession{})
			if res.Error != nil {
				return res.Error
			}
			report.PrunedSessions = res.RowsAffected
		}

		if opts.DryRun {
			return errDryRun
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return CleanupReport{}, err
	}
	return report, nil
}
