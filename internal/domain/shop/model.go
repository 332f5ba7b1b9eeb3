package shop

import (
	"time"

	"gorm.io/datatypes"
)

type ShopInfo struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"type:varchar(200);not null" json:"name"`
	Address      string         `json:"address"`
	Phone        string         `gorm:"type:varchar(20)" json:"phone"`
	Email        string         `gorm:"type:varchar(254)" json:"email"`
	OpeningHours datatypes.JSON `json:"opening_hours"`
	MapURL       string         `json:"map_url"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (ShopInfo) TableName() string { return "shop_info" }
