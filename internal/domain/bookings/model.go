package bookings

import (
	"time"

	"repairmybike-api/internal/domain/catalog"
	"repairmybike-api/internal/domain/vehicles"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	LocationHome = "home"
	LocationShop = "shop"
)

const (
	PaymentCash     = "cash"
	PaymentRazorpay = "razorpay"
	PaymentStripe   = "stripe"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Phone     string    `gorm:"type:varchar(17);not null;uniqueIndex" json:"phone"`
	Email     string    `gorm:"type:varchar(254)" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Booking struct {
	ID                        uint                  `gorm:"primaryKey"`
	CustomerID                uint                  `gorm:"not null;index"`
	Customer                  Customer              `gorm:"constraint:OnDelete:CASCADE"`
	VehicleModelID            uint                  `gorm:"not null;index"`
	VehicleModel              vehicles.VehicleModel `gorm:"constraint:OnDelete:RESTRICT"`
	ServiceLocation           string                `gorm:"type:varchar(10);not null"`
	Address                   string
	AppointmentDate           time.Time       `gorm:"type:date;not null;index"`
	AppointmentTime           datatypes.Time  `gorm:"not null"`
	TotalAmount               decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	PaymentMethod             string          `gorm:"type:varchar(20);not null;default:'cash'"`
	PaymentStatus             string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	BookingStatus             Status          `gorm:"type:varchar(20);not null;default:'pending';index"`
	Notes                     string
	SubscriptionID            *uint `gorm:"index"`
	SubscriptionVisitConsumed bool  `gorm:"not null;default:false"`
	Services                  []BookingService
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// BookingService is one priced line of a booking. Price is copied from the
// catalog when the booking is made and never follows later price changes.
type BookingService struct {
	ID        uint             `gorm:"primaryKey"`
	BookingID uint             `gorm:"not null;uniqueIndex:idx_booking_services_booking_service"`
	ServiceID uint             `gorm:"not null;uniqueIndex:idx_booking_services_booking_service"`
	Service   *catalog.Service `gorm:"constraint:OnDelete:RESTRICT"`
	Price     decimal.Decimal  `gorm:"type:numeric(10,2);not null"`
	CreatedAt time.Time
}

// Total sums the snapshotted line prices.
func Total(lines []BookingService) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price)
	}
	return total
}
