package respond

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ParamID parses a numeric path parameter, answering 400 when it is not one.
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		Error(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// RequiredQueryID parses a mandatory numeric query parameter.
func RequiredQueryID(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		Error(c, http.StatusBadRequest, name+" parameter is required")
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// OptionalQueryID parses a numeric query parameter when present.
func OptionalQueryID(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "Invalid "+name)
		return nil, false
	}
	v := uint(id)
	return &v, true
}

// First loads the row named by the :id path parameter into dest.
func First(c *gin.Context, db *gorm.DB, dest interface{}, notFound string) bool {
	id, ok := ParamID(c, "id")
	if !ok {
		return false
	}
	if err := db.First(dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Error(c, http.StatusNotFound, notFound)
			return false
		}
		Error(c, http.StatusInternalServerError, "Failed to load record")
		return false
	}
	return true
}
