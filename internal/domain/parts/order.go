package parts

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderCreated   = "created"
	OrderConfirmed = "confirmed"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

const (
	PaymentMethodCash = "cash"
	PaymentCashDue    = "cash_due"
	PaymentPaid       = "paid"
)

type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	SessionID     string          `gorm:"type:varchar(64);index" json:"session_id"`
	UserID        *uint           `gorm:"index" json:"user"`
	CustomerName  string          `gorm:"type:varchar(150);not null" json:"customer_name"`
	Phone         string          `gorm:"type:varchar(20);not null" json:"phone"`
	Address       string          `gorm:"not null" json:"address"`
	AmountTotal   decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount_total"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`
	PaymentMethod string          `gorm:"type:varchar(20);not null;default:'cash'" json:"payment_method"`
	PaymentStatus string          `gorm:"type:varchar(20);not null;default:'cash_due'" json:"payment_status"`
	Status        string          `gorm:"type:varchar(20);not null;default:'created';index" json:"status"`
	Items         []OrderItem     `json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order"`
	SparePartID uint            `gorm:"not null;index" json:"part"`
	SparePart   *SparePart      `json:"part_detail,omitempty"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
}

func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
