package bookings

import (
	"time"

	"repairmybike-api/internal/domain/bookings"

	"github.com/shopspring/decimal"
)

type CustomerDTO struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LineDTO struct {
	ID           uint            `json:"id"`
	Service      uint            `json:"service"`
	ServiceName  string          `json:"service_name"`
	CategoryName string          `json:"category_name"`
	Price        decimal.Decimal `json:"price"`
	CreatedAt    time.Time       `json:"created_at"`
}

type BookingDTO struct {
	ID                        uint            `json:"id"`
	Customer                  CustomerDTO     `json:"customer"`
	VehicleModel              uint            `json:"vehicle_model"`
	VehicleModelName          string          `json:"vehicle_model_name"`
	VehicleBrandName          string          `json:"vehicle_brand_name"`
	VehicleTypeName           string          `json:"vehicle_type_name"`
	ServiceLocation           string          `json:"service_location"`
	Address                   string          `json:"address"`
	AppointmentDate           string          `json:"appointment_date"`
	AppointmentTime           string          `json:"appointment_time"`
	TotalAmount               decimal.Decimal `json:"total_amount"`
	PaymentMethod             string          `json:"payment_method"`
	PaymentStatus             string          `json:"payment_status"`
	BookingStatus             string          `json:"booking_status"`
	Notes                     string          `json:"notes"`
	Subscription              *uint           `json:"subscription"`
	SubscriptionVisitConsumed bool            `json:"subscription_visit_consumed"`
	BookingServices           []LineDTO       `json:"booking_services"`
	CreatedAt                 time.Time       `json:"created_at"`
	UpdatedAt                 time.Time       `json:"updated_at"`
}

// BuildBooking flattens a booking loaded with bookings.WithRelations.
func BuildBooking(b *bookings.Booking) BookingDTO {
	dto := BookingDTO{
		ID: b.ID,
		Customer: CustomerDTO{
			ID:        b.Customer.ID,
			Name:      b.Customer.Name,
			Phone:     b.Customer.Phone,
			Email:     b.Customer.Email,
			CreatedAt: b.Customer.CreatedAt,
			UpdatedAt: b.Customer.UpdatedAt,
		},
		VehicleModel:              b.VehicleModelID,
		VehicleModelName:          b.VehicleModel.Name,
		ServiceLocation:           b.ServiceLocation,
		Address:                   b.Address,
		AppointmentDate:           b.AppointmentDate.Format("2006-01-02"),
		AppointmentTime:           b.AppointmentTime.String(),
		TotalAmount:               b.TotalAmount,
		PaymentMethod:             b.PaymentMethod,
		PaymentStatus:             b.PaymentStatus,
		BookingStatus:             string(b.BookingStatus),
		Notes:                     b.Notes,
		Subscription:              b.SubscriptionID,
		SubscriptionVisitConsumed: b.SubscriptionVisitConsumed,
		BookingServices:           make([]LineDTO, 0, len(b.Services)),
		CreatedAt:                 b.CreatedAt,
		UpdatedAt:                 b.UpdatedAt,
	}

	if brand := b.VehicleModel.VehicleBrand; brand != nil {
		dto.VehicleBrandName = brand.Name
		if brand.VehicleType != nil {
			dto.VehicleTypeName = brand.VehicleType.Name
		}
	}

	for _, line := range b.Services {
		l := LineDTO{
			ID:        line.ID,
			Service:   line.ServiceID,
			Price:     line.Price,
			CreatedAt: line.CreatedAt,
		}
		if line.Service != nil {
			l.ServiceName = line.Service.Name
			if line.Service.Category != nil {
				l.CategoryName = line.Service.Category.Name
			}
		}
		dto.BookingServices = append(dto.BookingServices, l)
	}
	return dto
}

func BuildBookings(list []bookings.Booking) []BookingDTO {
	out := make([]BookingDTO, 0, len(list))
	for i := range list {
		out = append(out, BuildBooking(&list[i]))
	}
	return out
}
