package shop

import (
	"net/http"
	"time"

	"repairmybike-api/internal/api/respond"
	"repairmybike-api/internal/domain/shop"
	"repairmybike-api/internal/infra/cache"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const shopInfoTTL = time.Hour

type Handler struct {
	DB    *gorm.DB
	Cache *cache.Cache
}

func NewHandler(db *gorm.DB, c *cache.Cache) *Handler {
	return &Handler{DB: db, Cache: c}
}

// GET /api/shop/shop-info
func (h *Handler) ListShopInfo(c *gin.Context) {
	list, err := cache.Remember(c.Request.Context(), h.Cache, "shop_info_list", shopInfoTTL, func() ([]shop.ShopInfo, error) {
		var out []shop.ShopInfo
		err := h.DB.Where("is_active = ?", true).Order("id ASC").Find(&out).Error
		return out, err
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to load shop information")
		return
	}
	respond.Success(c, http.StatusOK, "Shop information retrieved successfully", list)
}

// GET /api/shop/shop-info/:id
func (h *Handler) GetShopInfo(c *gin.Context) {
	var info shop.ShopInfo
	if !respond.First(c, h.DB.Where("is_active = ?", true), &info, "Shop not found") {
		return
	}
	respond.Success(c, http.StatusOK, "Shop details retrieved successfully", info)
}
