package billing

import (
	"time"

	"repairmybike-api/internal/domain/bookings"

	"github.com/shopspring/decimal"
)

const (
	StatusCreated    = "created"
	StatusAuthorized = "authorized"
	StatusCaptured   = "captured"
	StatusFailed     = "failed"
	StatusRefunded   = "refunded"
)

const (
	GatewayRazorpay = "razorpay"
	GatewayStripe   = "stripe"
)

type Payment struct {
	ID               uint             `gorm:"primaryKey"`
	BookingID        uint             `gorm:"not null;uniqueIndex"`
	Booking          bookings.Booking `gorm:"constraint:OnDelete:CASCADE"`
	Gateway          string           `gorm:"type:varchar(20);not null;default:'razorpay'"`
	GatewayOrderID   *string          `gorm:"column:gateway_order_id;uniqueIndex"`
	GatewayPaymentID *string          `gorm:"column:gateway_payment_id;index"`
	GatewaySignature *string          `gorm:"column:gateway_signature"`
	Amount           decimal.Decimal  `gorm:"type:numeric(10,2);not null"`
	Currency         string           `gorm:"type:varchar(3);not null;default:'INR'"`
	Status           string           `gorm:"type:varchar(20);not null;default:'created';index"`
	PaymentMethod    string           `gorm:"type:varchar(50)"`
	ErrorCode        string           `gorm:"type:varchar(100)"`
	ErrorDescription string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsSettled reports whether the gateway already holds or captured the money,
// in which case a new order must not be created.
func (p *Payment) IsSettled() bool {
	return p.Status == StatusCaptured || p.Status == StatusAuthorized
}

// ToMinorUnits converts an amount to the smallest currency unit (paise, cents).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
