package bookings

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"repairmybike-api/internal/api/respond"
	"repairmybike-api/internal/domain/bookings"
	"repairmybike-api/internal/domain/catalog"
	"repairmybike-api/internal/infra/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Now: time.Now}
}

type createInput struct {
	CustomerName    string `json:"customer_name" binding:"required,max=100"`
	CustomerPhone   string `json:"customer_phone" binding:"required,max=17"`
	CustomerEmail   string `json:"customer_email" binding:"omitempty,email"`
	VehicleModelID  uint   `json:"vehicle_model_id" binding:"required"`
	ServiceIDs      []uint `json:"service_ids" binding:"required,min=1"`
	ServiceLocation string `json:"service_location" binding:"required,oneof=home shop"`
	Address         string `json:"address"`
	AppointmentDate string `json:"appointment_date" binding:"required"`
	AppointmentTime string `json:"appointment_time" binding:"required"`
	PaymentMethod   string `json:"payment_method" binding:"omitempty,oneof=cash razorpay stripe"`
	Notes           string `json:"notes"`
	SubscriptionID  *uint  `json:"subscription_id"`
}

// POST /api/bookings
func (h *Handler) Create(c *gin.Context) {
	var input createInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(input.AppointmentDate))
	if err != nil {
		respond.FieldError(c, "appointment_date", "Date has wrong format. Use YYYY-MM-DD.")
		return
	}
	apptTime, err := bookings.ParseAppointmentTime(input.AppointmentTime)
	if err != nil {
		RespondError(c, err)
		return
	}

	in := bookings.CreateInput{
		CustomerName:    input.CustomerName,
		CustomerPhone:   input.CustomerPhone,
		CustomerEmail:   input.CustomerEmail,
		VehicleModelID:  input.VehicleModelID,
		ServiceIDs:      input.ServiceIDs,
		ServiceLocation: input.ServiceLocation,
		Address:         input.Address,
		AppointmentDate: date,
		AppointmentTime: apptTime,
		PaymentMethod:   input.PaymentMethod,
		Notes:           input.Notes,
		SubscriptionID:  input.SubscriptionID,
	}
	if err := in.Validate(h.Now()); err != nil {
		RespondError(c, err)
		return
	}

	booking, err := bookings.Create(c.Request.Context(), h.DB, in)
	if err != nil {
		RespondError(c, err)
		return
	}

	metrics.BookingsCreated.Inc()
	zap.L().Info("booking created",
		zap.Uint("booking_id", booking.ID),
		zap.Uint("customer_id", booking.CustomerID),
		zap.String("total", booking.TotalAmount.StringFixed(2)),
	)
	respond.Success(c, http.StatusCreated, "Booking created successfully", BuildBooking(booking))
}

// GET /api/bookings?phone=
func (h *Handler) List(c *gin.Context) {
	phone := strings.TrimSpace(c.Query("phone"))
	if phone == "" {
		respond.Error(c, http.StatusBadRequest, "phone query parameter is required")
		return
	}

	var customer bookings.Customer
	if err := h.DB.Where("phone = ?", phone).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Success(c, http.StatusOK, "No bookings found for this phone number", []BookingDTO{})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Failed to load bookings")
		return
	}

	var list []bookings.Booking
	err := bookings.WithRelations(h.DB).
		Where("customer_id = ?", customer.ID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load bookings")
		return
	}
	respond.Success(c, http.StatusOK, "Booking history retrieved successfully", BuildBookings(list))
}

// GET /api/bookings/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := respond.ParamID(c, "id")
	if !ok {
		return
	}
	booking, err := bookings.Load(h.DB, id)
	if err != nil {
		RespondError(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "Booking details retrieved successfully", BuildBooking(booking))
}

// RespondError maps booking domain errors to responses. The staff views
// share it.
func RespondError(c *gin.Context, err error) {
	var fieldErr *bookings.FieldError
	var pricingErr *catalog.MissingPricingError

	switch {
	case errors.As(err, &fieldErr):
		respond.FieldError(c, fieldErr.Field, fieldErr.Message)
	case errors.As(err, &pricingErr):
		respond.Error(c, http.StatusBadRequest, pricingErr.Error())
	case errors.Is(err, bookings.ErrVehicleModelNotFound):
		respond.Error(c, http.StatusBadRequest, "Invalid vehicle model")
	case errors.Is(err, bookings.ErrSubscriptionInactive):
		respond.Error(c, http.StatusBadRequest, "Subscription is not active")
	case errors.Is(err, bookings.ErrBookingNotFound):
		respond.Error(c, http.StatusNotFound, "Booking not found")
	case errors.Is(err, bookings.ErrInvalidStatus):
		respond.Error(c, http.StatusBadRequest, "Invalid status. Valid options: pending, confirmed, in_progress, completed, cancelled")
	case errors.Is(err, bookings.ErrStatusTransition):
		respond.Error(c, http.StatusBadRequest, "Booking status cannot change from its current state to the requested one")
	default:
		zap.L().Error("booking operation failed", zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}
