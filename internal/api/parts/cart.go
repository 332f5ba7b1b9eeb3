package parts

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"repairmybike-api/internal/api/respond"
	"repairmybike-api/internal/domain/parts"
	"repairmybike-api/internal/infra/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// cartFor loads the session's cart, creating it on first use.
func (h *Handler) cartFor(c *gin.Context, sessionID string) (*parts.Cart, bool) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		respond.Error(c, http.StatusBadRequest, "session_id is required")
		return nil, false
	}
	cart, err := parts.GetOrCreateCart(h.DB, sessionID, optionalUser(c))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return cart, true
}

func (h *Handler) respondCart(c *gin.Context, status int, message string, cart *parts.Cart) {
	loaded, err := parts.LoadCart(h.DB, cart.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond.Success(c, status, message, buildCart(loaded))
}

// GET /api/shop/spare-parts/cart?session_id=
func (h *Handler) GetCart(c *gin.Context) {
	cart, ok := h.cartFor(c, c.Query("session_id"))
	if !ok {
		return
	}
	h.respondCart(c, http.StatusOK, "Cart retrieved successfully", cart)
}

// POST /api/shop/spare-parts/cart/add
func (h *Handler) AddToCart(c *gin.Context) {
	var input struct {
		SessionID string `json:"session_id" binding:"required"`
		PartID    uint   `json:"part_id" binding:"required"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	cart, ok := h.cartFor(c, input.SessionID)
	if !ok {
		return
	}
	if err := parts.AddItem(h.DB, cart, input.PartID, input.Quantity); err != nil {
		respondError(c, err)
		return
	}
	h.respondCart(c, http.StatusCreated, "Item added to cart", cart)
}

// PATCH /api/shop/spare-parts/cart/update_item
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var input struct {
		SessionID string `json:"session_id" binding:"required"`
		ItemID    uint   `json:"item_id" binding:"required"`
		Quantity  *int   `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.Error(c, http.StatusBadRequest, "session_id, item_id and quantity are required")
		return
	}

	cart, ok := h.cartFor(c, input.SessionID)
	if !ok {
		return
	}
	if err := parts.UpdateItem(h.DB, cart, input.ItemID, *input.Quantity); err != nil {
		respondError(c, err)
		return
	}
	h.respondCart(c, http.StatusOK, "Cart item updated", cart)
}

// DELETE /api/shop/spare-parts/cart/remove_item?session_id=&item_id=
func (h *Handler) RemoveCartItem(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Query("item_id"), 10, 64)
	if c.Query("session_id") == "" || err != nil {
		respond.Error(c, http.StatusBadRequest, "session_id and item_id are required")
		return
	}

	cart, ok := h.cartFor(c, c.Query("session_id"))
	if !ok {
		return
	}
	message := "Item removed"
	if err := parts.RemoveItem(h.DB, cart, uint(itemID)); err != nil {
		if !errors.Is(err, parts.ErrCartItemNotFound) {
			respondError(c, err)
			return
		}
		message = "Item not found"
	}
	h.respondCart(c, http.StatusOK, message, cart)
}

// DELETE /api/shop/spare-parts/cart/clear?session_id=
func (h *Handler) ClearCart(c *gin.Context) {
	cart, ok := h.cartFor(c, c.Query("session_id"))
	if !ok {
		return
	}
	if err := parts.ClearCart(h.DB, cart); err != nil {
		respondError(c, err)
		return
	}
	h.respondCart(c, http.StatusOK, "Cart cleared", cart)
}

type buyerInput struct {
	SessionID    string `json:"session_id" binding:"required"`
	CustomerName string `json:"customer_name" binding:"required,max=150"`
	Phone        string `json:"phone" binding:"required,max=20"`
	Address      string `json:"address" binding:"required"`
}

func (in buyerInput) buyer(c *gin.Context) parts.Buyer {
	return parts.Buyer{
		SessionID:    strings.TrimSpace(in.SessionID),
		UserID:       optionalUser(c),
		CustomerName: strings.TrimSpace(in.CustomerName),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
	}
}

// POST /api/shop/spare-parts/cart/checkout
func (h *Handler) Checkout(c *gin.Context) {
	var input buyerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	cart, ok := h.cartFor(c, input.SessionID)
	if !ok {
		return
	}
	order, err := parts.Checkout(c.Request.Context(), h.DB, cart, input.buyer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondOrder(c, order.ID, "checkout", "Checkout successful. Pay cash on delivery.")
}

// POST /api/shop/spare-parts/cart/buy_now
func (h *Handler) BuyNow(c *gin.Context) {
	var input struct {
		buyerInput
		PartID   uint `json:"part_id" binding:"required"`
		Quantity int  `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	order, err := parts.BuyNow(c.Request.Context(), h.DB, input.PartID, input.Quantity, input.buyer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondOrder(c, order.ID, "buy_now", "Order created. Pay cash on delivery.")
}

func (h *Handler) respondOrder(c *gin.Context, orderID uint, source, message string) {
	metrics.PartOrders.WithLabelValues(source).Inc()
	zap.L().Info("spare part order placed", zap.Uint("order_id", orderID), zap.String("source", source))

	order, err := h.loadOrder(orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond.Success(c, http.StatusCreated, message, buildOrder(order))
}
