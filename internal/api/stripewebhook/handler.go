package stripewebhooks

import (
	"encoding/json"
	"io"
	"net/http"

	"repairmybike-api/internal/api/respond"

	"github.com/gin-gonic/gin"
	stripego "github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventParser authenticates a webhook payload against its Stripe-Signature header.
type EventParser interface {
	ParseEvent(payload []byte, signatureHeader string) (stripego.Event, error)
}

type Handler struct {
	DB     *gorm.DB
	Events EventParser
}

func NewHandler(db *gorm.DB, events EventParser) *Handler {
	return &Handler{DB: db, Events: events}
}

// POST /api/payments/stripe/webhook
func (h *Handler) StripeWebhook(c *gin.Context) {
	if h.Events == nil {
		respond.Error(c, http.StatusServiceUnavailable, "Stripe payments are not configured")
		return
	}

	payload, err := readStripeBody(c, 65536)
	if err != nil {
		respond.Error(c, http.StatusServiceUnavailable, "Error reading request body")
		return
	}

	event, err := h.Events.ParseEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		zap.L().Warn("❌ Stripe signature verification failed", zap.Error(err))
		respond.Error(c, http.StatusBadRequest, "Signature verification failed")
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripego.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			respond.Error(c, http.StatusBadRequest, "Failed to parse payment intent")
			return
		}
		if err := h.handlePaymentSucceeded(c, &pi); err != nil {
			// 500 makes Stripe retry the delivery.
			respond.Error(c, http.StatusInternalServerError, err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return

	case "payment_intent.payment_failed", "payment_intent.canceled":
		var pi stripego.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			respond.Error(c, http.StatusBadRequest, "Failed to parse payment intent")
			return
		}
		if err := h.handlePaymentFailed(c, &pi); err != nil {
			respond.Error(c, http.StatusInternalServerError, err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return

	default:
		// Acknowledge unknown events to avoid retries
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
