package bookings

import (
	"context"
	"errors"
	"fmt"

	"repairmybike-api/internal/domain/plans"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrStatusTransition = errors.New("booking status transition not allowed")

// StatusResult describes what an update-status call changed.
type StatusResult struct {
	Booking       *Booking
	VisitConsumed bool
}

// UpdateStatus moves a booking to a new status. Completing a cash booking
// settles its payment, and completing a subscription booking consumes one
// included visit in the same transaction.
func UpdateStatus(ctx context.Context, db *gorm.DB, id uint, to Status) (*StatusResult, error) {
	result := &StatusResult{}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b Booking
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}

		if !CanTransition(b.BookingStatus, to) {
			return fmt.Errorf("%w: %s -> %s", ErrStatusTransition, b.BookingStatus, to)
		}

		updates := map[string]interface{}{"booking_status": to}
		if to == StatusCompleted && b.PaymentMethod == PaymentCash {
			updates["payment_status"] = PaymentCompleted
		}
		if err := tx.Model(&Booking{}).Where("id = ?", b.ID).Updates(updates).Error; err != nil {
			return err
		}

		if to == StatusCompleted && b.SubscriptionID != nil {
			consumed, err := plans.ConsumeVisit(tx, b.ID, *b.SubscriptionID)
			if err != nil {
				return err
			}
			result.VisitConsumed = consumed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	b, err := Load(db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	result.Booking = b
	return result, nil
}
