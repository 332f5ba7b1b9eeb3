package plans

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrVisitQuotaRace = errors.New("subscription visit quota changed concurrently")

const claimVisitSQL = `
UPDATE bookings SET subscription_visit_consumed = true, updated_at = ?
WHERE id = ? AND subscription_id = ? AND booking_status = 'completed'
	AND subscription_visit_consumed = false
	AND EXISTS (
		SELECT 1 FROM subscriptions s JOIN plans p ON p.id = s.plan_id
		WHERE s.id = ? AND s.visits_consumed < p.included_visits
	)`

const countVisitSQL = `
UPDATE subscriptions SET visits_consumed = visits_consumed + 1, updated_at = ?
WHERE id = ? AND visits_consumed < (SELECT included_visits FROM plans WHERE plans.id = subscriptions.plan_id)`

// ConsumeVisit charges one included visit to the subscription of a completed
// booking. The booking flag makes it happen at most once per booking. It must
// run inside the transaction that completed the booking; a returned error
// means that transaction has to roll back.
func ConsumeVisit(tx *gorm.DB, bookingID, subscriptionID uint) (bool, error) {
	now := time.Now()

	res := tx.Exec(claimVisitSQL, now, bookingID, subscriptionID, subscriptionID)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	res = tx.Exec(countVisitSQL, now, subscriptionID)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, ErrVisitQuotaRace
	}
	return true, nil
}
