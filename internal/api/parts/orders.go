package parts

import (
	"errors"
	"net/http"
	"strings"

	"repairmybike-api/internal/api/respond"
	"repairmybike-api/internal/domain/parts"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (h *Handler) loadOrder(id uint) (*parts.Order, error) {
	var order parts.Order
	err := h.DB.Preload("Items.SparePart").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GET /api/shop/spare-parts/orders?session_id=
func (h *Handler) ListOrders(c *gin.Context) {
	q := h.DB.Preload("Items.SparePart")
	if userID := optionalUser(c); userID != nil {
		q = q.Where("user_id = ?", *userID)
	} else if sessionID := strings.TrimSpace(c.Query("session_id")); sessionID != "" {
		q = q.Where("session_id = ?", sessionID)
	} else {
		respond.Error(c, http.StatusBadRequest, "Provide session_id or authenticate")
		return
	}

	var list []parts.Order
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		respondError(c, err)
		return
	}
	out := make([]OrderDTO, 0, len(list))
	for i := range list {
		out = append(out, buildOrder(&list[i]))
	}
	respond.Success(c, http.StatusOK, "Orders retrieved successfully", out)
}

// GET /api/shop/spare-parts/orders/:id
//
// The order must belong to the caller's user or to ?session_id.
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := respond.ParamID(c, "id")
	if !ok {
		return
	}
	order, err := h.loadOrder(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(c, http.StatusNotFound, "Order not found")
			return
		}
		respondError(c, err)
		return
	}

	userID := optionalUser(c)
	owned := (userID != nil && order.UserID != nil && *order.UserID == *userID) ||
		(c.Query("session_id") != "" && c.Query("session_id") == order.SessionID)
	if !owned {
		respond.Error(c, http.StatusNotFound, "Order not found")
		return
	}
	respond.Success(c, http.StatusOK, "Order details retrieved successfully", buildOrder(order))
}
