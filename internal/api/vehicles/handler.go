package vehicles

import (
	"fmt"
	"net/http"
	"time"

	"repairmybike-api/internal/api/respond"
	"repairmybike-api/internal/domain/vehicles"
	"repairmybike-api/internal/infra/cache"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const listTTL = time.Hour

type Handler struct {
	DB    *gorm.DB
	Cache *cache.Cache
}

func NewHandler(db *gorm.DB, c *cache.Cache) *Handler {
	return &Handler{DB: db, Cache: c}
}

// GET /api/vehicles/vehicle-types
func (h *Handler) ListTypes(c *gin.Context) {
	types, err := cache.Remember(c.Request.Context(), h.Cache, "vehicle_types", listTTL, func() ([]vehicles.VehicleType, error) {
		var out []vehicles.VehicleType
		err := h.DB.Order("name ASC").Find(&out).Error
		return out, err
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load vehicle types")
		return
	}
	c.JSON(http.StatusOK, types)
}

// GET /api/vehicles/vehicle-types/:id
func (h *Handler) GetType(c *gin.Context) {
	var vt vehicles.VehicleType
	if !respond.First(c, h.DB, &vt, "Vehicle type not found") {
		return
	}
	c.JSON(http.StatusOK, vt)
}

// GET /api/vehicles/vehicle-brands?vehicle_type=
func (h *Handler) ListBrands(c *gin.Context) {
	typeID, ok := respond.RequiredQueryID(c, "vehicle_type")
	if !ok {
		return
	}

	key := fmt.Sprintf("vehicle_brands:%d", typeID)
	brands, err := cache.Remember(c.Request.Context(), h.Cache, key, listTTL, func() ([]vehicles.VehicleBrand, error) {
		var out []vehicles.VehicleBrand
		err := h.DB.Where("vehicle_type_id = ?", typeID).Order("name ASC").Find(&out).Error
		return out, err
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load vehicle brands")
		return
	}
	c.JSON(http.StatusOK, brands)
}

// GET /api/vehicles/vehicle-brands/:id
func (h *Handler) GetBrand(c *gin.Context) {
	var brand vehicles.VehicleBrand
	if !respond.First(c, h.DB.Preload("VehicleType"), &brand, "Vehicle brand not found") {
		return
	}
	c.JSON(http.StatusOK, brand)
}

// GET /api/vehicles/vehicle-models?vehicle_brand=
func (h *Handler) ListModels(c *gin.Context) {
	brandID, ok := respond.RequiredQueryID(c, "vehicle_brand")
	if !ok {
		return
	}

	key := fmt.Sprintf("vehicle_models:%d", brandID)
	models, err := cache.Remember(c.Request.Context(), h.Cache, key, listTTL, func() ([]vehicles.VehicleModel, error) {
		var out []vehicles.VehicleModel
		err := h.DB.Where("vehicle_brand_id = ?", brandID).Order("name ASC").Find(&out).Error
		return out, err
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load vehicle models")
		return
	}
	c.JSON(http.StatusOK, models)
}

// GET /api/vehicles/vehicle-models/:id
func (h *Handler) GetModel(c *gin.Context) {
	var model vehicles.VehicleModel
	if !respond.First(c, h.DB.Preload("VehicleBrand.VehicleType"), &model, "Vehicle model not found") {
		return
	}
	c.JSON(http.StatusOK, model)
}
