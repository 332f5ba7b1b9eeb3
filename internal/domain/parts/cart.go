package parts

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPartNotFound     = errors.New("spare part not found")
	ErrCartItemNotFound = errors.New("item not found in cart")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
)

type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	SessionID string     `gorm:"type:varchar(64);not null;index" json:"session_id"`
	UserID    *uint      `gorm:"index" json:"user"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CartID      uint            `gorm:"not null;uniqueIndex:idx_cart_items_cart_part" json:"cart"`
	SparePartID uint            `gorm:"not null;uniqueIndex:idx_cart_items_cart_part" json:"part"`
	SparePart   *SparePart      `json:"part_detail,omitempty"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (i *CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].LineTotal())
	}
	return total
}

// GetOrCreateCart returns the cart of a browser session, attaching the user
// when one is known.
func GetOrCreateCart(db *gorm.DB, sessionID string, userID *uint) (*Cart, error) {
	var cart Cart
	if err := db.Where(Cart{SessionID: sessionID}).FirstOrCreate(&cart).Error; err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if userID != nil && (cart.UserID == nil || *cart.UserID != *userID) {
		if err := db.Model(&cart).Update("user_id", *userID).Error; err != nil {
			return nil, err
		}
		cart.UserID = userID
	}
	return &cart, nil
}

// LoadCart fetches the cart with its items and their parts.
func LoadCart(db *gorm.DB, cartID uint) (*Cart, error) {
	var cart Cart
	err := db.Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("Items.SparePart").
		First(&cart, cartID).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem puts an active part into the cart, merging quantities when the part
// is already there. The unit price follows the part's current sale price.
func AddItem(db *gorm.DB, cart *Cart, partID uint, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	var part SparePart
	err := db.Where("id = ? AND active = ?", partID, true).First(&part).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPartNotFound
	}
	if err != nil {
		return err
	}

	item := CartItem{
		CartID:      cart.ID,
		SparePartID: part.ID,
		Quantity:    quantity,
		UnitPrice:   part.SalePrice,
	}
	return db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "spare_part_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
			"unit_price": gorm.Expr("EXCLUDED.unit_price"),
			"updated_at": gorm.Expr("EXCLUDED.updated_at"),
		}),
	}).Create(&item).Error
}

// UpdateItem sets the quantity of a cart line; zero or less removes it.
func UpdateItem(db *gorm.DB, cart *Cart, itemID uint, quantity int) error {
	if quantity <= 0 {
		return RemoveItem(db, cart, itemID)
	}
	res := db.Model(&CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cart.ID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func RemoveItem(db *gorm.DB, cart *Cart, itemID uint) error {
	res := db.Where("id = ? AND cart_id = ?", itemID, cart.ID).Delete(&CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func ClearCart(db *gorm.DB, cart *Cart) error {
	return db.Where("cart_id = ?", cart.ID).Delete(&CartItem{}).Error
}
