package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"repairmybike-api/internal/api/respond"
	"repairmybike-api/internal/domain/billing"
	"repairmybike-api/internal/domain/bookings"
	"repairmybike-api/internal/infra/metrics"
	"repairmybike-api/internal/infra/payments"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const currencyINR = "INR"

// Handler serves the payment endpoints. Orders is nil when online payments
// are disabled; Verifier is nil for gateways that confirm by webhook only.
type Handler struct {
	DB       *gorm.DB
	Orders   payments.OrderCreator
	Verifier payments.SignatureVerifier
	Currency string
}

func NewHandler(db *gorm.DB, orders payments.OrderCreator, verifier payments.SignatureVerifier) *Handler {
	return &Handler{DB: db, Orders: orders, Verifier: verifier, Currency: currencyINR}
}

type keyIDer interface {
	KeyID() string
}

// CreateOrder returns the handler for POST /api/payments/<gateway>/create-order.
func (h *Handler) CreateOrder(gateway string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.Orders == nil || h.Orders.Name() != gateway {
			respond.Error(c, http.StatusBadRequest, "Online payment is currently disabled. Please use cash payment.")
			return
		}

		var input struct {
			BookingID uint `json:"booking_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.ValidationError(c, err)
			return
		}

		var booking bookings.Booking
		if err := h.DB.First(&booking, input.BookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respond.Error(c, http.StatusNotFound, "Booking not found")
				return
			}
			respond.Error(c, http.StatusInternalServerError, "Failed to load booking")
			return
		}

		var existing billing.Payment
		err := h.DB.Where("booking_id = ?", booking.ID).First(&existing).Error
		if err == nil && existing.IsSettled() {
			respond.Error(c, http.StatusBadRequest, "Payment already completed for this booking")
			return
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(c, http.StatusInternalServerError, "Failed to load payment")
			return
		}

		order, err := h.openOrder(c.Request.Context(), &booking)
		if err != nil {
			zap.L().Error("payment order failed", zap.Uint("booking_id", booking.ID), zap.String("gateway", gateway), zap.Error(err))
			if errors.Is(err, payments.ErrGateway) {
				respond.Error(c, http.StatusServiceUnavailable, fmt.Sprintf("Failed to create %s order: %v", gateway, err))
				return
			}
			respond.Error(c, http.StatusInternalServerError, "Failed to store payment order")
			return
		}

		data := gin.H{
			"order_id": order.ID,
			"gateway":  order.Gateway,
			"amount":   booking.TotalAmount,
			"currency": order.Currency,
			"receipt":  order.Receipt,
		}
		if k, ok := h.Orders.(keyIDer); ok {
			data["key_id"] = k.KeyID()
		}
		if order.ClientSecret != "" {
			data["client_secret"] = order.ClientSecret
		}
		respond.Success(c, http.StatusCreated, "Payment order created successfully", data)
	}
}

func (h *Handler) openOrder(ctx context.Context, booking *bookings.Booking) (payments.Order, error) {
	order, err := h.Orders.CreateOrder(ctx, payments.OrderRequest{
		Amount:   billing.ToMinorUnits(booking.TotalAmount),
		Currency: h.Currency,
		Receipt:  fmt.Sprintf("booking_%d", booking.ID),
		Notes:    map[string]string{"booking_id": fmt.Sprint(booking.ID)},
	})
	if err != nil {
		return payments.Order{}, err
	}
	if _, err := billing.OpenOrder(ctx, h.DB, booking, h.Orders.Name(), order.ID, h.Currency); err != nil {
		return payments.Order{}, err
	}
	return order, nil
}

// POST /api/payments/razorpay/verify
func (h *Handler) VerifyPayment(c *gin.Context) {
	if h.Verifier == nil {
		respond.Error(c, http.StatusBadRequest, "Online payment is currently disabled")
		return
	}

	var input struct {
		OrderID   string `json:"razorpay_order_id" binding:"required"`
		PaymentID string `json:"razorpay_payment_id" binding:"required"`
		Signature string `json:"razorpay_signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	if !h.Verifier.VerifySignature(input.OrderID, input.PaymentID, input.Signature) {
		metrics.PaymentVerifications.WithLabelValues(billing.GatewayRazorpay, "invalid_signature").Inc()
		zap.L().Warn("payment signature mismatch", zap.String("order_id", input.OrderID))
		respond.Error(c, http.StatusBadRequest, "Invalid payment signature")
		return
	}

	payment, err := billing.Capture(c.Request.Context(), h.DB, input.OrderID, input.PaymentID, input.Signature)
	if err != nil {
		if errors.Is(err, billing.ErrPaymentNotFound) {
			metrics.PaymentVerifications.WithLabelValues(billing.GatewayRazorpay, "unknown_order").Inc()
			respond.Error(c, http.StatusNotFound, "Payment record not found")
			return
		}
		zap.L().Error("payment capture failed", zap.String("order_id", input.OrderID), zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "Failed to record payment")
		return
	}

	metrics.PaymentVerifications.WithLabelValues(billing.GatewayRazorpay, "captured").Inc()
	respond.Success(c, http.StatusOK, "Payment verified successfully", gin.H{
		"booking_id":     payment.BookingID,
		"payment_status": bookings.PaymentCompleted,
	})
}
