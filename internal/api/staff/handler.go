package staff

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	bookingsapi "repairmybike-api/internal/api/bookings"
	"repairmybike-api/internal/api/respond"
	"repairmybike-api/internal/domain/bookings"

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

// GET /api/staff/bookings?status=&date=&search=
func (h *Handler) ListBookings(c *gin.Context) {
	q := bookings.WithRelations(h.DB.Model(&bookings.Booking{}))

	if s := c.Query("status"); s != "" {
		status, err := bookings.ParseStatus(s)
		if err != nil {
			bookingsapi.RespondError(c, err)
			return
		}
		q = q.Where("bookings.booking_status = ?", status)
	}
	if d := c.Query("date"); d != "" {
		date, err := time.Parse("2006-01-02", d)
		if err != nil {
			respond.FieldError(c, "date", "Date has wrong format. Use YYYY-MM-DD.")
			return
		}
		q = q.Where("bookings.appointment_date = ?", date.Format("2006-01-02"))
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		q = q.Joins("JOIN customers ON customers.id = bookings.customer_id").
			Where("customers.name ILIKE ? OR customers.phone ILIKE ?", like, like)
	}

	var list []bookings.Booking
	err := q.Order("bookings.appointment_date ASC, bookings.appointment_time ASC, bookings.created_at DESC").
		Find(&list).Error
	if err != nil {
		zap.L().Error("staff booking list failed", zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "Failed to load bookings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "Bookings retrieved successfully",
		"data":    bookingsapi.BuildBookings(list),
		"count":   len(list),
	})
}

// GET /api/staff/bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := respond.ParamID(c, "id")
	if !ok {
		return
	}
	b, err := bookings.Load(h.DB, id)
	if err != nil {
		bookingsapi.RespondError(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "Booking details retrieved successfully", bookingsapi.BuildBooking(b))
}

// PATCH /api/staff/bookings/:id/update-status
func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	id, ok := respond.ParamID(c, "id")
	if !ok {
		return
	}

	var input struct {
		Status        string `json:"status"`
		BookingStatus string `json:"booking_status"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}
	raw := input.Status
	if raw == "" {
		raw = input.BookingStatus
	}
	if raw == "" {
		respond.Error(c, http.StatusBadRequest, "status field is required")
		return
	}

	to, err := bookings.ParseStatus(raw)
	if err != nil {
		bookingsapi.RespondError(c, err)
		return
	}

	result, err := bookings.UpdateStatus(c.Request.Context(), h.DB, id, to)
	if err != nil {
		bookingsapi.RespondError(c, err)
		return
	}

	zap.L().Info("booking status updated",
		zap.Uint("booking_id", id),
		zap.String("status", string(to)),
		zap.Uint("staff_user_id", c.GetUint("user_id")),
		zap.Bool("visit_consumed", result.VisitConsumed),
	)
	respond.Success(c, http.StatusOK, fmt.Sprintf("Booking status updated to %s", to), bookingsapi.BuildBooking(result.Booking))
}

type statusCount struct {
	Status string
	Count  int64
}

// GET /api/staff/bookings/stats
func (h *Handler) BookingStats(c *gin.Context) {
	var byBooking, byPayment []statusCount
	if err := h.DB.Model(&bookings.Booking{}).
		Select("booking_status AS status, COUNT(*) AS count").
		Group("booking_status").
		Scan(&byBooking).Error; err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load statistics")
		return
	}
	if err := h.DB.Model(&bookings.Booking{}).
		Select("payment_status AS status, COUNT(*) AS count").
		Group("payment_status").
		Scan(&byPayment).Error; err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load statistics")
		return
	}

	var today int64
	if err := h.DB.Model(&bookings.Booking{}).
		Where("appointment_date = ?", h.Now().Format("2006-01-02")).
		Count(&today).Error; err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load statistics")
		return
	}

	respond.Success(c, http.StatusOK, "Statistics retrieved successfully", buildStats(byBooking, byPayment, today))
}

// buildStats zero-fills every known status so clients see a stable shape.
func buildStats(byBooking, byPayment []statusCount, today int64) gin.H {
	bookingCounts := gin.H{}
	for _, s := range bookings.AllStatuses() {
		bookingCounts[string(s)] = int64(0)
	}
	var total int64
	for _, row := range byBooking {
		bookingCounts[row.Status] = row.Count
		total += row.Count
	}

	paymentCounts := gin.H{
		bookings.PaymentPending:   int64(0),
		bookings.PaymentCompleted: int64(0),
	}
	for _, row := range byPayment {
		paymentCounts[row.Status] = row.Count
	}

	return gin.H{
		"total_bookings": total,
		"today":          today,
		"booking_status": bookingCounts,
		"payment_status": paymentCounts,
	}
}
