package parts

import (
	"errors"
	"net/http"
	"strings"

	"repairmybike-api/internal/api/respond"
	"repairmybike-api/internal/domain/parts"
	"repairmybike-api/internal/domain/vehicles"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	DB *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db}
}

// GET /api/shop/spare-parts/categories
func (h *Handler) ListCategories(c *gin.Context) {
	var list []parts.PartCategory
	if err := h.DB.Order("name ASC").Find(&list).Error; err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load categories")
		return
	}
	respond.Success(c, http.StatusOK, "Spare part categories retrieved successfully", list)
}

// GET /api/shop/spare-parts/categories/:id
func (h *Handler) GetCategory(c *gin.Context) {
	var category parts.PartCategory
	if !respond.First(c, h.DB, &category, "Category not found") {
		return
	}
	respond.Success(c, http.StatusOK, "Spare part category retrieved successfully", category)
}

// GET /api/shop/spare-parts/brands?category=
func (h *Handler) ListBrands(c *gin.Context) {
	categoryID, ok := respond.OptionalQueryID(c, "category")
	if !ok {
		return
	}

	q := h.DB.Model(&parts.PartBrand{})
	if categoryID != nil {
		q = q.Where("id IN (?)", h.DB.Model(&parts.SparePart{}).
			Select("brand_id").
			Where("category_id = ? AND brand_id IS NOT NULL", *categoryID))
	}

	var list []parts.PartBrand
	if err := q.Order("name ASC").Find(&list).Error; err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load brands")
		return
	}
	respond.Success(c, http.StatusOK, "Spare part brands retrieved successfully", list)
}

// GET /api/shop/spare-parts/brands/:id
func (h *Handler) GetBrand(c *gin.Context) {
	var brand parts.PartBrand
	if !respond.First(c, h.DB, &brand, "Brand not found") {
		return
	}
	respond.Success(c, http.StatusOK, "Spare part brand retrieved successfully", brand)
}

// GET /api/shop/spare-parts/parts?q=&category=&brand=&in_stock=&price_min=&price_max=&vehicle_model=
func (h *Handler) ListParts(c *gin.Context) {
	q := h.DB.Model(&parts.SparePart{}).
		Preload("Category").
		Preload("Brand").
		Preload("Images", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order ASC, id ASC") }).
		Where("spare_parts.active = ?", true)

	if term := strings.TrimSpace(c.Query("q")); term != "" {
		like := "%" + term + "%"
		q = q.Where("spare_parts.name ILIKE ? OR spare_parts.sku ILIKE ?", like, like)
	}
	for _, f := range []struct{ param, column string }{
		{"category", "spare_parts.category_id"},
		{"brand", "spare_parts.brand_id"},
	} {
		id, ok := respond.OptionalQueryID(c, f.param)
		if !ok {
			return
		}
		if id != nil {
			q = q.Where(f.column+" = ?", *id)
		}
	}
	switch c.Query("in_stock") {
	case "true":
		q = q.Where("spare_parts.in_stock = ?", true)
	case "false":
		q = q.Where("spare_parts.in_stock = ?", false)
	}
	for _, f := range []struct{ param, op string }{
		{"price_min", ">="},
		{"price_max", "<="},
	} {
		raw := c.Query(f.param)
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "Invalid "+f.param)
			return
		}
		q = q.Where("spare_parts.sale_price "+f.op+" ?", v)
	}
	modelID, ok := respond.OptionalQueryID(c, "vehicle_model")
	if !ok {
		return
	}
	if modelID != nil {
		q = q.Where("EXISTS (SELECT 1 FROM part_fitments pf WHERE pf.spare_part_id = spare_parts.id AND pf.vehicle_model_id = ?)", *modelID)
	}

	var list []parts.SparePart
	if err := q.Order("spare_parts.name ASC").Find(&list).Error; err != nil {
		zap.L().Error("spare part list failed", zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "Failed to load spare parts")
		return
	}

	out := make([]PartSummary, 0, len(list))
	for i := range list {
		out = append(out, buildSummary(&list[i]))
	}
	respond.Success(c, http.StatusOK, "Spare parts retrieved successfully", out)
}

// GET /api/shop/spare-parts/parts/:id
func (h *Handler) GetPart(c *gin.Context) {
	var part parts.SparePart
	q := h.DB.Preload("Category").
		Preload("Brand").
		Preload("Images", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order ASC, id ASC") }).
		Where("active = ?", true)
	if !respond.First(c, q, &part, "Spare part not found") {
		return
	}
	respond.Success(c, http.StatusOK, "Spare part details retrieved successfully", PartDetail{
		SparePart:       part,
		DiscountPercent: part.DiscountPercent(),
	})
}

// GET /api/shop/spare-parts/parts/:id/compatibility
func (h *Handler) Compatibility(c *gin.Context) {
	var part parts.SparePart
	if !respond.First(c, h.DB.Preload("Fitments.VehicleModel.VehicleBrand.VehicleType"), &part, "Spare part not found") {
		return
	}

	data := make([]gin.H, 0, len(part.Fitments))
	for _, f := range part.Fitments {
		model := f.VehicleModel
		if model == nil {
			model = &vehicles.VehicleModel{ID: f.VehicleModelID}
		}
		entry := gin.H{
			"vehicle_model_id": f.VehicleModelID,
			"model":            model.Name,
			"brand":            "",
			"type":             "",
			"notes":            f.Notes,
		}
		if model.VehicleBrand != nil {
			entry["brand"] = model.VehicleBrand.Name
			if model.VehicleBrand.VehicleType != nil {
				entry["type"] = model.VehicleBrand.VehicleType.Name
			}
		}
		data = append(data, entry)
	}
	respond.Success(c, http.StatusOK, "Compatibility list retrieved successfully", data)
}

// respondError maps storefront domain errors to responses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, parts.ErrPartNotFound):
		respond.Error(c, http.StatusNotFound, "Spare part not found")
	case errors.Is(err, parts.ErrCartItemNotFound):
		respond.Error(c, http.StatusNotFound, "Cart item not found")
	case errors.Is(err, parts.ErrInvalidQuantity):
		respond.FieldError(c, "quantity", "Ensure this value is at least 1.")
	case errors.Is(err, parts.ErrEmptyCart):
		respond.Error(c, http.StatusBadRequest, "Cart is empty")
	case errors.Is(err, parts.ErrInsufficientStock):
		respond.Error(c, http.StatusBadRequest, "Insufficient stock for one or more items")
	default:
		zap.L().Error("storefront operation failed", zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}

func optionalUser(c *gin.Context) *uint {
	if id := c.GetUint("user_id"); id != 0 {
		return &id
	}
	return nil
}
