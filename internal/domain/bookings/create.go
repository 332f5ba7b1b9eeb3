package bookings

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"repairmybike-api/internal/domain/catalog"
	"repairmybike-api/internal/domain/plans"
	"repairmybike-api/internal/domain/vehicles"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrBookingNotFound      = errors.New("booking not found")
	ErrVehicleModelNotFound = errors.New("vehicle model not found")
	ErrSubscriptionInactive = errors.New("subscription is not active")
)

var customerPhonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)

// FieldError is a validation failure tied to one request field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

type CreateInput struct {
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	VehicleModelID  uint
	ServiceIDs      []uint
	ServiceLocation string
	Address         string
	AppointmentDate time.Time
	AppointmentTime datatypes.Time
	PaymentMethod   string
	Notes           string
	SubscriptionID  *uint
}

// Validate checks everything that does not need the database. today is the
// first acceptable appointment date.
func (in *CreateInput) Validate(today time.Time) error {
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.CustomerEmail = strings.ToLower(strings.TrimSpace(in.CustomerEmail))

	if strings.TrimSpace(in.CustomerName) == "" {
		return &FieldError{"customer_name", "This field is required."}
	}
	if !customerPhonePattern.MatchString(in.CustomerPhone) {
		return &FieldError{"customer_phone", "Phone number must be entered in the format: '+999999999'. Up to 15 digits allowed."}
	}
	if len(in.ServiceIDs) == 0 {
		return &FieldError{"service_ids", "At least one service must be selected."}
	}
	switch in.ServiceLocation {
	case LocationShop:
	case LocationHome:
		if strings.TrimSpace(in.Address) == "" {
			return &FieldError{"address", "Address is required for home service."}
		}
	default:
		return &FieldError{"service_location", fmt.Sprintf("%q is not a valid choice.", in.ServiceLocation)}
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = PaymentCash
	}
	switch in.PaymentMethod {
	case PaymentCash, PaymentRazorpay, PaymentStripe:
	default:
		return &FieldError{"payment_method", fmt.Sprintf("%q is not a valid choice.", in.PaymentMethod)}
	}
	y, m, d := today.Date()
	if in.AppointmentDate.Before(time.Date(y, m, d, 0, 0, 0, 0, in.AppointmentDate.Location())) {
		return &FieldError{"appointment_date", "Appointment date cannot be in the past."}
	}
	return nil
}

// ParseAppointmentTime accepts "15:04" and "15:04:05".
func ParseAppointmentTime(s string) (datatypes.Time, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, &FieldError{"appointment_time", "Time has wrong format. Use HH:MM[:ss]."}
}

// Create stores a booking with its priced lines in one transaction. The
// customer is matched by phone and created on first booking.
func Create(ctx context.Context, db *gorm.DB, in CreateInput) (*Booking, error) {
	serviceIDs := uniqueIDs(in.ServiceIDs)
	var booking Booking

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model vehicles.VehicleModel
		if err := tx.First(&model, in.VehicleModelID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVehicleModelNotFound
			}
			return err
		}

		pricing, err := catalog.PricingFor(tx, model.ID, serviceIDs)
		if err != nil {
			return err
		}

		if in.SubscriptionID != nil {
			var sub plans.Subscription
			err := tx.Where("id = ? AND status = ?", *in.SubscriptionID, plans.StatusActive).First(&sub).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubscriptionInactive
			}
			if err != nil {
				return err
			}
		}

		customer, err := resolveCustomer(tx, in)
		if err != nil {
			return err
		}

		lines := make([]BookingService, 0, len(serviceIDs))
		for _, id := range serviceIDs {
			lines = append(lines, BookingService{ServiceID: id, Price: pricing[id].Price})
		}

		booking = Booking{
			CustomerID:      customer.ID,
			VehicleModelID:  model.ID,
			ServiceLocation: in.ServiceLocation,
			Address:         strings.TrimSpace(in.Address),
			AppointmentDate: in.AppointmentDate,
			AppointmentTime: in.AppointmentTime,
			TotalAmount:     Total(lines),
			PaymentMethod:   in.PaymentMethod,
			PaymentStatus:   PaymentPending,
			BookingStatus:   StatusPending,
			Notes:           in.Notes,
			SubscriptionID:  in.SubscriptionID,
		}
		if err := tx.Omit(clause.Associations).Create(&booking).Error; err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		for i := range lines {
			lines[i].BookingID = booking.ID
		}
		if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
			return fmt.Errorf("create booking services: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return Load(db.WithContext(ctx), booking.ID)
}

func resolveCustomer(tx *gorm.DB, in CreateInput) (*Customer, error) {
	var customer Customer
	err := tx.Where("phone = ?", in.CustomerPhone).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		customer = Customer{
			Name:  strings.TrimSpace(in.CustomerName),
			Phone: in.CustomerPhone,
			Email: in.CustomerEmail,
		}
		if err := tx.Create(&customer).Error; err != nil {
			return nil, fmt.Errorf("create customer: %w", err)
		}
		return &customer, nil
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Model(&customer).Updates(map[string]interface{}{
		"name":  strings.TrimSpace(in.CustomerName),
		"email": in.CustomerEmail,
	}).Error; err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return &customer, nil
}

// Load fetches a booking with customer, vehicle and service lines.
func Load(db *gorm.DB, id uint) (*Booking, error) {
	var b Booking
	err := withRelations(db).First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Customer").
		Preload("VehicleModel.VehicleBrand.VehicleType").
		Preload("Services.Service.Category")
}

// WithRelations is the eager-loading scope used by booking listings.
func WithRelations(db *gorm.DB) *gorm.DB { return withRelations(db) }

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
