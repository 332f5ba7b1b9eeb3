package stripewebhooks

import (
	"errors"

	"repairmybike-api/internal/domain/billing"
	"repairmybike-api/internal/infra/metrics"
	stripeinfra "repairmybike-api/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	stripego "github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"
)

// Unknown PaymentIntents are acknowledged; they were not opened by this service.
func (h *Handler) handlePaymentSucceeded(c *gin.Context, pi *stripego.PaymentIntent) error {
	if pi.ID == "" || stripeinfra.PaymentStatus(pi.Status) != billing.StatusCaptured {
		return nil
	}

	payment, err := billing.Capture(c.Request.Context(), h.DB, pi.ID, latestChargeID(pi), "")
	if errors.Is(err, billing.ErrPaymentNotFound) {
		zap.L().Warn("stripe payment for unknown order", zap.String("payment_intent", pi.ID))
		metrics.PaymentVerifications.WithLabelValues(billing.GatewayStripe, "unknown_order").Inc()
		return nil
	}
	if err != nil {
		return err
	}

	metrics.PaymentVerifications.WithLabelValues(billing.GatewayStripe, "captured").Inc()
	zap.L().Info("✅ stripe payment captured", zap.Uint("booking_id", payment.BookingID), zap.String("payment_intent", pi.ID))
	return nil
}

func (h *Handler) handlePaymentFailed(c *gin.Context, pi *stripego.PaymentIntent) error {
	if pi.ID == "" {
		return nil
	}

	code, desc := string(pi.Status), ""
	if pi.LastPaymentError != nil {
		code = string(pi.LastPaymentError.Code)
		desc = pi.LastPaymentError.Msg
	}
	if pi.Status == stripego.PaymentIntentStatusCanceled {
		code, desc = "canceled", string(pi.CancellationReason)
	}

	err := billing.Fail(c.Request.Context(), h.DB, pi.ID, code, desc)
	if errors.Is(err, billing.ErrPaymentNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	metrics.PaymentVerifications.WithLabelValues(billing.GatewayStripe, "failed").Inc()
	return nil
}

func latestChargeID(pi *stripego.PaymentIntent) string {
	if pi.LatestCharge != nil && pi.LatestCharge.ID != "" {
		return pi.LatestCharge.ID
	}
	return pi.ID
}
