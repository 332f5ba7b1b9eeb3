package parts

import (
	"time"

	"repairmybike-api/internal/domain/vehicles"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PartCategory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Slug        string    `gorm:"type:varchar(120);not null;uniqueIndex" json:"slug"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PartBrand struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Logo      string    `json:"logo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SparePart struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	SKU            string          `gorm:"column:sku;type:varchar(64);not null;uniqueIndex" json:"sku"`
	Slug           string          `gorm:"type:varchar(220);not null;uniqueIndex" json:"slug"`
	Name           string          `gorm:"type:varchar(200);not null;index" json:"name"`
	CategoryID     uint            `gorm:"not null;index" json:"category"`
	Category       *PartCategory   `json:"category_detail,omitempty"`
	BrandID        *uint           `gorm:"index" json:"brand"`
	Brand          *PartBrand      `json:"brand_detail,omitempty"`
	Description    string          `json:"description"`
	Specs          datatypes.JSON  `json:"specs"`
	MRP            decimal.Decimal `gorm:"column:mrp;type:numeric(10,2);not null" json:"mrp"`
	SalePrice      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"sale_price"`
	InStock        bool            `gorm:"not null;default:true" json:"in_stock"`
	StockQty       int             `gorm:"not null;default:0" json:"stock_qty"`
	WarrantyMonths int             `gorm:"not null;default:0" json:"warranty_months"`
	Rating         decimal.Decimal `gorm:"type:numeric(2,1);not null;default:0" json:"rating"`
	Active         bool            `gorm:"not null;default:true;index" json:"active"`
	Images         []PartImage     `json:"images,omitempty"`
	Fitments       []PartFitment   `json:"fitments,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type PartImage struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	SparePartID uint   `gorm:"not null;index" json:"part"`
	URL         string `gorm:"column:url;not null" json:"url"`
	AltText     string `json:"alt_text"`
	SortOrder   int    `gorm:"not null;default:0" json:"sort_order"`
}

// PartFitment marks a part as compatible with a vehicle model.
type PartFitment struct {
	ID             uint                   `gorm:"primaryKey" json:"id"`
	SparePartID    uint                   `gorm:"not null;uniqueIndex:idx_part_fitments_part_model" json:"part"`
	VehicleModelID uint                   `gorm:"not null;uniqueIndex:idx_part_fitments_part_model" json:"vehicle_model"`
	VehicleModel   *vehicles.VehicleModel `json:"vehicle_model_detail,omitempty"`
	Notes          string                 `json:"notes"`
}

// DiscountPercent is the saving of the sale price against MRP, rounded to a whole percent.
func (p *SparePart) DiscountPercent() int64 {
	if !p.MRP.IsPositive() || p.SalePrice.GreaterThanOrEqual(p.MRP) {
		return 0
	}
	return p.MRP.Sub(p.SalePrice).Div(p.MRP).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
