package services

import (
	"fmt"
	"net/http"
	"time"

	"repairmybike-api/internal/api/respond"
	"repairmybike-api/internal/domain/catalog"
	"repairmybike-api/internal/infra/cache"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const pricingTTL = 30 * time.Minute

type Handler struct {
	DB    *gorm.DB
	Cache *cache.Cache
}

func NewHandler(db *gorm.DB, c *cache.Cache) *Handler {
	return &Handler{DB: db, Cache: c}
}

// GET /api/services/service-categories
func (h *Handler) ListCategories(c *gin.Context) {
	var categories []catalog.ServiceCategory
	if err := h.DB.Where("is_active = ?", true).Order("name ASC").Find(&categories).Error; err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load service categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GET /api/services/service-categories/:id
func (h *Handler) GetCategory(c *gin.Context) {
	var category catalog.ServiceCategory
	if !respond.First(c, h.DB, &category, "Service category not found") {
		return
	}
	c.JSON(http.StatusOK, category)
}

// GET /api/services/services?category_id=
func (h *Handler) ListServices(c *gin.Context) {
	categoryID, ok := respond.OptionalQueryID(c, "category_id")
	if !ok {
		return
	}

	q := h.DB.Preload("Category").Where("is_active = ?", true)
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}

	var list []catalog.Service
	if err := q.Order("name ASC").Find(&list).Error; err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load services")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/services/services/:id
func (h *Handler) GetService(c *gin.Context) {
	var service catalog.Service
	if !respond.First(c, h.DB.Preload("Category"), &service, "Service not found") {
		return
	}
	c.JSON(http.StatusOK, service)
}

// GET /api/services/service-pricing
func (h *Handler) ListPricing(c *gin.Context) {
	var list []catalog.ServicePricing
	err := h.DB.Preload("Service").Preload("VehicleModel").
		Order("service_id ASC, vehicle_model_id ASC").
		Find(&list).Error
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load service pricing")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/services/service-pricing/:id
func (h *Handler) GetPricing(c *gin.Context) {
	var pricing catalog.ServicePricing
	if !respond.First(c, h.DB.Preload("Service").Preload("VehicleModel"), &pricing, "Service pricing not found") {
		return
	}
	c.JSON(http.StatusOK, pricing)
}

// GET /api/services/service-pricing/by-vehicle?vehicle_model_id=
func (h *Handler) PricingByVehicle(c *gin.Context) {
	modelID, ok := respond.RequiredQueryID(c, "vehicle_model_id")
	if !ok {
		return
	}

	key := fmt.Sprintf("service_pricing:model:%d", modelID)
	list, err := cache.Remember(c.Request.Context(), h.Cache, key, pricingTTL, func() ([]catalog.ServicePricing, error) {
		var out []catalog.ServicePricing
		err := h.DB.Preload("Service.Category").
			Joins("JOIN services ON services.id = service_pricing.service_id AND services.is_active = ?", true).
			Where("service_pricing.vehicle_model_id = ?", modelID).
			Order("service_pricing.price ASC").
			Find(&out).Error
		return out, err
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load service pricing")
		return
	}
	c.JSON(http.StatusOK, list)
}
