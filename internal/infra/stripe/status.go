package stripe

import (
	"strings"

	"repairmybike-api/internal/domain/billing"

	stripego "github.com/stripe/stripe-go/v75"
)

// PaymentStatus maps a PaymentIntent status onto a booking payment status.
func PaymentStatus(s stripego.PaymentIntentStatus) string {
	switch strings.TrimSpace(string(s)) {
	case "succeeded":
		return billing.StatusCaptured
	case "requires_capture":
		return billing.StatusAuthorized
	case "canceled":
		return billing.StatusFailed
	default:
		return billing.StatusCreated
	}
}
