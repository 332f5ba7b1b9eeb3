package parts

import (
	"context"
	"testing"

	"repairmybike-api/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupShopDB(t *testing.T) *gorm.DB {
	return testutil.NewTestDB(t,
		&PartCategory{}, &PartBrand{}, &SparePart{},
		&Cart{}, &CartItem{}, &Order{}, &OrderItem{},
	)
}

type partSeed struct {
	sku     string
	price   string
	stock   int
	inStock bool
	active  bool
}

func seedPart(t *testing.T, db *gorm.DB, s partSeed) SparePart {
	t.Helper()

	var cat PartCategory
	require.NoError(t, db.Where(PartCategory{Name: "Brakes", Slug: "brakes"}).FirstOrCreate(&cat).Error)

	p := SparePart{
		SKU:        s.sku,
		Slug:       s.sku,
		Name:       "Part " + s.sku,
		CategoryID: cat.ID,
		MRP:        decimal.RequireFromString(s.price),
		SalePrice:  decimal.RequireFromString(s.price),
		StockQty:   s.stock,
	}
	require.NoError(t, db.Create(&p).Error)
	// zero values would fall back to the column defaults on insert
	require.NoError(t, db.Model(&p).Updates(map[string]interface{}{
		"in_stock": s.inStock,
		"active":   s.active,
	}).Error)
	p.InStock, p.Active = s.inStock, s.active
	return p
}

func stockOf(t *testing.T, db *gorm.DB, id uint) (int, bool) {
	t.Helper()
	var p SparePart
	require.NoError(t, db.First(&p, id).Error)
	return p.StockQty, p.InStock
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

var testBuyer = Buyer{SessionID: "sess-1", CustomerName: "Ravi Kumar", Phone: "+919812345678", Address: "12 MG Road"}

func TestCheckoutPlacesOrder(t *testing.T) {
	db := setupShopDB(t)
	ctx := context.Background()

	pads := seedPart(t, db, partSeed{sku: "BP-100", price: "349.50", stock: 2, inStock: true, active: true})
	chain := seedPart(t, db, partSeed{sku: "CH-420", price: "1299.00", stock: 5, inStock: true, active: true})

	cart, err := GetOrCreateCart(db, testBuyer.SessionID, nil)
	require.NoError(t, err)
	require.NoError(t, AddItem(db, cart, pads.ID, 1))
	require.NoError(t, AddItem(db, cart, pads.ID, 1))
	require.NoError(t, AddItem(db, cart, chain.ID, 1))

	// later price changes do not reach the order
	require.NoError(t, db.Model(&SparePart{}).Where("id = ?", chain.ID).
		Update("sale_price", decimal.RequireFromString("1499.00")).Error)

	order, err := Checkout(ctx, db, cart, testBuyer)
	require.NoError(t, err)

	assert.Equal(t, "1998.00", order.AmountTotal.StringFixed(2))
	assert.Equal(t, PaymentMethodCash, order.PaymentMethod)
	require.Len(t, order.Items, 2)

	var items []OrderItem
	require.NoError(t, db.Where("order_id = ?", order.ID).Order("id").Find(&items).Error)
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "349.50", items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "1299.00", items[1].UnitPrice.StringFixed(2))

	qty, inStock := stockOf(t, db, pads.ID)
	assert.Equal(t, 0, qty)
	assert.False(t, inStock)
	qty, inStock = stockOf(t, db, chain.ID)
	assert.Equal(t, 4, qty)
	assert.True(t, inStock)

	assert.Zero(t, countRows(t, db.Where("cart_id = ?", cart.ID), &CartItem{}))
}

func TestCheckoutWithoutStockLeavesNothingBehind(t *testing.T) {
	tests := []struct {
		name string
		part partSeed
		qty  int
	}{
		{"stock exhausted", partSeed{sku: "BP-100", price: "349.50", stock: 0, inStock: true, active: true}, 1},
		{"less stock than ordered", partSeed{sku: "BP-100", price: "349.50", stock: 2, inStock: true, active: true}, 3},
		{"marked out of stock", partSeed{sku: "BP-100", price: "349.50", stock: 10, inStock: false, active: true}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupShopDB(t)
			ctx := context.Background()

			good := seedPart(t, db, partSeed{sku: "CH-420", price: "1299.00", stock: 5, inStock: true, active: true})
			short := seedPart(t, db, tt.part)

			cart, err := GetOrCreateCart(db, testBuyer.SessionID, nil)
			require.NoError(t, err)
			require.NoError(t, AddItem(db, cart, good.ID, 1))
			require.NoError(t, AddItem(db, cart, short.ID, tt.qty))

			_, err = Checkout(ctx, db, cart, testBuyer)
			assert.ErrorIs(t, err, ErrInsufficientStock)

			assert.Zero(t, countRows(t, db, &Order{}))
			assert.Zero(t, countRows(t, db, &OrderItem{}))
			assert.Equal(t, int64(2), countRows(t, db.Where("cart_id = ?", cart.ID), &CartItem{}))

			qty, _ := stockOf(t, db, good.ID)
			assert.Equal(t, 5, qty)
			qty, inStock := stockOf(t, db, short.ID)
			assert.Equal(t, tt.part.stock, qty)
			assert.Equal(t, tt.part.inStock, inStock)
		})
	}
}

func TestBuyNow(t *testing.T) {
	db := setupShopDB(t)
	ctx := context.Background()

	chain := seedPart(t, db, partSeed{sku: "CH-420", price: "1299.00", stock: 3, inStock: true, active: true})
	shelved := seedPart(t, db, partSeed{sku: "BP-100", price: "349.50", stock: 8, inStock: false, active: true})
	retired := seedPart(t, db, partSeed{sku: "OF-001", price: "99.00", stock: 8, inStock: true, active: false})

	order, err := BuyNow(ctx, db, chain.ID, 2, testBuyer)
	require.NoError(t, err)
	assert.Equal(t, "2598.00", order.AmountTotal.StringFixed(2))
	qty, _ := stockOf(t, db, chain.ID)
	assert.Equal(t, 1, qty)

	_, err = BuyNow(ctx, db, chain.ID, 2, testBuyer)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = BuyNow(ctx, db, shelved.ID, 1, testBuyer)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	qty, _ = stockOf(t, db, shelved.ID)
	assert.Equal(t, 8, qty)

	_, err = BuyNow(ctx, db, retired.ID, 1, testBuyer)
	assert.ErrorIs(t, err, ErrPartNotFound)

	assert.Equal(t, int64(1), countRows(t, db, &Order{}))
}
