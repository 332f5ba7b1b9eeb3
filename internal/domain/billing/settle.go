package billing

import (
	"context"
	"errors"
	"fmt"

	"repairmybike-api/internal/domain/bookings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrPaymentNotFound = errors.New("payment record not found")

// OpenOrder creates or refreshes the payment row for a gateway order.
func OpenOrder(ctx context.Context, db *gorm.DB, booking *bookings.Booking, gateway, orderID, currency string) (*Payment, error) {
	payment := Payment{
		BookingID:      booking.ID,
		Gateway:        gateway,
		GatewayOrderID: &orderID,
		Amount:         booking.TotalAmount,
		Currency:       currency,
		Status:         StatusCreated,
	}
	err := db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "booking_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"gateway", "gateway_order_id", "amount", "currency", "status", "updated_at",
		}),
	}).Create(&payment).Error
	if err != nil {
		return nil, fmt.Errorf("store payment order: %w", err)
	}
	return &payment, nil
}

// Capture marks the payment of an order captured and the booking paid, in
// one transaction. Signature checks happen before this is called.
func Capture(ctx context.Context, db *gorm.DB, orderID, paymentID, signature string) (*Payment, error) {
	var payment Payment
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("gateway_order_id = ?", orderID).First(&payment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"gateway_payment_id": paymentID,
			"status":             StatusCaptured,
			"payment_method":     payment.Gateway,
		}
		if signature != "" {
			updates["gateway_signature"] = signature
		}
		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Model(&bookings.Booking{}).
			Where("id = ?", payment.BookingID).
			Updates(map[string]interface{}{
				"payment_status": bookings.PaymentCompleted,
				"payment_method": payment.Gateway,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	payment.Status = StatusCaptured
	payment.GatewayPaymentID = &paymentID
	return &payment, nil
}

// Fail records a gateway-reported failure for an order.
func Fail(ctx context.Context, db *gorm.DB, orderID, code, description string) error {
	res := db.WithContext(ctx).Model(&Payment{}).
		Where("gateway_order_id = ? AND status <> ?", orderID, StatusCaptured).
		Updates(map[string]interface{}{
			"status":            StatusFailed,
			"error_code":        code,
			"error_description": description,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}
