package parts

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock for one or more items")
)

// Line is one part and quantity going into an order.
type Line struct {
	PartID    uint
	Quantity  int
	UnitPrice decimal.Decimal
}

type Buyer struct {
	SessionID    string
	UserID       *uint
	CustomerName string
	Phone        string
	Address      string
}

// CheckStock reports whether every line fits the stock currently on record.
func CheckStock(lines []Line, stock map[uint]int) error {
	for _, l := range lines {
		if l.Quantity < 1 {
			return ErrInvalidQuantity
		}
		if stock[l.PartID] < l.Quantity {
			return ErrInsufficientStock
		}
	}
	return nil
}

func OrderTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// PlaceOrder turns lines into a cash-on-delivery order in one transaction.
// Only active parts marked in stock can be ordered. Stock is decremented with
// a guarded update so two orders can never take the same last unit.
// afterCreate runs inside the transaction (the cart is cleared there on
// checkout).
func PlaceOrder(ctx context.Context, db *gorm.DB, buyer Buyer, lines []Line, afterCreate func(tx *gorm.DB) error) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	var order Order
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.PartID)
		}
		var partsOnRecord []SparePart
		if err := tx.Where("id IN ? AND active = ? AND in_stock = ?", ids, true, true).Find(&partsOnRecord).Error; err != nil {
			return err
		}
		stock := make(map[uint]int, len(partsOnRecord))
		for _, p := range partsOnRecord {
			stock[p.ID] = p.StockQty
		}
		if err := CheckStock(lines, stock); err != nil {
			return err
		}

		for _, l := range lines {
			res := tx.Model(&SparePart{}).
				Where("id = ? AND active = ? AND in_stock = ? AND stock_qty >= ?", l.PartID, true, true, l.Quantity).
				Updates(map[string]interface{}{
					"stock_qty": gorm.Expr("stock_qty - ?", l.Quantity),
					"in_stock":  gorm.Expr("stock_qty - ? > 0", l.Quantity),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientStock
			}
		}

		order = Order{
			SessionID:     buyer.SessionID,
			UserID:        buyer.UserID,
			CustomerName:  buyer.CustomerName,
			Phone:         buyer.Phone,
			Address:       buyer.Address,
			AmountTotal:   OrderTotal(lines),
			Currency:      "INR",
			PaymentMethod: PaymentMethodCash,
			PaymentStatus: PaymentCashDue,
			Status:        OrderCreated,
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		items := make([]OrderItem, 0, len(lines))
		for _, l := range lines {
			items = append(items, OrderItem{
				OrderID:     order.ID,
				SparePartID: l.PartID,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
			})
		}
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return fmt.Errorf("create order items: %w", err)
		}
		order.Items = items

		if afterCreate != nil {
			return afterCreate(tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Checkout orders everything in the cart and empties it.
func Checkout(ctx context.Context, db *gorm.DB, cart *Cart, buyer Buyer) (*Order, error) {
	var items []CartItem
	if err := db.WithContext(ctx).Where("cart_id = ?", cart.ID).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, Line{PartID: it.SparePartID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return PlaceOrder(ctx, db, buyer, lines, func(tx *gorm.DB) error {
		return ClearCart(tx, cart)
	})
}

// BuyNow orders a single part at its current sale price without touching the cart.
func BuyNow(ctx context.Context, db *gorm.DB, partID uint, quantity int, buyer Buyer) (*Order, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	var part SparePart
	err := db.WithContext(ctx).Where("id = ? AND active = ?", partID, true).First(&part).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPartNotFound
	}
	if err != nil {
		return nil, err
	}
	return PlaceOrder(ctx, db, buyer, []Line{{PartID: part.ID, Quantity: quantity, UnitPrice: part.SalePrice}}, nil)
}
