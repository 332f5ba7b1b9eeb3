package billing

import (
	"errors"
	"net/http"

	"repairmybike-api/internal/api/respond"
	"repairmybike-api/internal/domain/billing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GET /api/payments/booking/:id
func (h *Handler) GetBookingPayment(c *gin.Context) {
	bookingID, ok := respond.ParamID(c, "id")
	if !ok {
		return
	}

	var payment billing.Payment
	if err := h.DB.Where("booking_id = ?", bookingID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(c, http.StatusNotFound, "Payment record not found")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Failed to load payment")
		return
	}

	c.JSON(http.StatusOK, BuildPayment(&payment))
}
