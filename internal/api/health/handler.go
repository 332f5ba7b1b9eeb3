package health

import (
	"context"
	"net/http"
	"time"

	"repairmybike-api/internal/infra/cache"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const checkTimeout = 2 * time.Second

type Handler struct {
	DB      *gorm.DB
	Cache   *cache.Cache
	Version string
}

func NewHandler(db *gorm.DB, c *cache.Cache, version string) *Handler {
	return &Handler{DB: db, Cache: c, Version: version}
}

func (h *Handler) pingDB(ctx context.Context) error {
	sqlDB, err := h.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// GET /health
// A cache outage degrades the report but does not fail it.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	status, code := "healthy", http.StatusOK
	database := "connected"
	if err := h.pingDB(ctx); err != nil {
		database = "disconnected"
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	cacheState := "disabled"
	if h.Cache != nil {
		cacheState = "connected"
		if err := h.Cache.Ping(ctx); err != nil {
			cacheState = "disconnected"
			if code == http.StatusOK {
				status = "degraded"
			}
		}
	}

	c.JSON(code, gin.H{
		"status":    status,
		"database":  database,
		"cache":     cacheState,
		"version":   h.Version,
		"timestamp": time.Now().UTC(),
	})
}

// GET /ready
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	if err := h.pingDB(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
