package billing

import (
	"time"

	"repairmybike-api/internal/domain/billing"

	"github.com/shopspring/decimal"
)

type PaymentDTO struct {
	ID               uint            `json:"id"`
	Booking          uint            `json:"booking"`
	Gateway          string          `json:"gateway"`
	GatewayOrderID   *string         `json:"gateway_order_id"`
	GatewayPaymentID *string         `json:"gateway_payment_id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
	PaymentMethod    string          `json:"payment_method"`
	ErrorCode        string          `json:"error_code,omitempty"`
	ErrorDescription string          `json:"error_description,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// BuildPayment omits the gateway signature.
func BuildPayment(p *billing.Payment) PaymentDTO {
	return PaymentDTO{
		ID:               p.ID,
		Booking:          p.BookingID,
		Gateway:          p.Gateway,
		GatewayOrderID:   p.GatewayOrderID,
		GatewayPaymentID: p.GatewayPaymentID,
		Amount:           p.Amount,
		Currency:         p.Currency,
		Status:           p.Status,
		PaymentMethod:    p.PaymentMethod,
		ErrorCode:        p.ErrorCode,
		ErrorDescription: p.ErrorDescription,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
