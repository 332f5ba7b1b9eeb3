package parts

import (
	"time"

	"repairmybike-api/internal/domain/parts"

	"github.com/shopspring/decimal"
)

type PartSummary struct {
	ID              uint            `json:"id"`
	SKU             string          `json:"sku"`
	Slug            string          `json:"slug"`
	Name            string          `json:"name"`
	Category        uint            `json:"category"`
	CategoryName    string          `json:"category_name"`
	Brand           *uint           `json:"brand"`
	BrandName       string          `json:"brand_name"`
	MRP             decimal.Decimal `json:"mrp"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	DiscountPercent int64           `json:"discount_percent"`
	InStock         bool            `json:"in_stock"`
	StockQty        int             `json:"stock_qty"`
	Rating          decimal.Decimal `json:"rating"`
	Image           string          `json:"image"`
}

func buildSummary(p *parts.SparePart) PartSummary {
	s := PartSummary{
		ID:              p.ID,
		SKU:             p.SKU,
		Slug:            p.Slug,
		Name:            p.Name,
		Category:        p.CategoryID,
		Brand:           p.BrandID,
		MRP:             p.MRP,
		SalePrice:       p.SalePrice,
		DiscountPercent: p.DiscountPercent(),
		InStock:         p.InStock,
		StockQty:        p.StockQty,
		Rating:          p.Rating,
	}
	if p.Category != nil {
		s.CategoryName = p.Category.Name
	}
	if p.Brand != nil {
		s.BrandName = p.Brand.Name
	}
	if len(p.Images) > 0 {
		s.Image = p.Images[0].URL
	}
	return s
}

type PartDetail struct {
	parts.SparePart
	DiscountPercent int64 `json:"discount_percent"`
}

type CartLine struct {
	ID        uint            `json:"id"`
	Part      uint            `json:"part"`
	PartName  string          `json:"part_name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartDTO struct {
	ID        uint            `json:"id"`
	SessionID string          `json:"session_id"`
	User      *uint           `json:"user"`
	Items     []CartLine      `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func buildCart(cart *parts.Cart) CartDTO {
	dto := CartDTO{
		ID:        cart.ID,
		SessionID: cart.SessionID,
		User:      cart.UserID,
		Items:     make([]CartLine, 0, len(cart.Items)),
		Subtotal:  cart.Subtotal(),
		UpdatedAt: cart.UpdatedAt,
	}
	for i := range cart.Items {
		it := &cart.Items[i]
		line := CartLine{
			ID:        it.ID,
			Part:      it.SparePartID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal(),
		}
		if it.SparePart != nil {
			line.PartName = it.SparePart.Name
			line.SKU = it.SparePart.SKU
		}
		dto.ItemCount += it.Quantity
		dto.Items = append(dto.Items, line)
	}
	return dto
}

type OrderLine struct {
	ID        uint            `json:"id"`
	Part      uint            `json:"part"`
	PartName  string          `json:"part_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type OrderDTO struct {
	ID            uint            `json:"id"`
	SessionID     string          `json:"session_id"`
	User          *uint           `json:"user"`
	CustomerName  string          `json:"customer_name"`
	Phone         string          `json:"phone"`
	Address       string          `json:"address"`
	AmountTotal   decimal.Decimal `json:"amount_total"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus string          `json:"payment_status"`
	Status        string          `json:"status"`
	Items         []OrderLine     `json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
}

func buildOrder(o *parts.Order) OrderDTO {
	dto := OrderDTO{
		ID:            o.ID,
		SessionID:     o.SessionID,
		User:          o.UserID,
		CustomerName:  o.CustomerName,
		Phone:         o.Phone,
		Address:       o.Address,
		AmountTotal:   o.AmountTotal,
		Currency:      o.Currency,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		Status:        o.Status,
		Items:         make([]OrderLine, 0, len(o.Items)),
		CreatedAt:     o.CreatedAt,
	}
	for i := range o.Items {
		it := &o.Items[i]
		line := OrderLine{
			ID:        it.ID,
			Part:      it.SparePartID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal(),
		}
		if it.SparePart != nil {
			line.PartName = it.SparePart.Name
		}
		dto.Items = append(dto.Items, line)
	}
	return dto
}
