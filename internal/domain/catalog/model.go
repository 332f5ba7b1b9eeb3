package catalog

import (
	"time"

	"repairmybike-api/internal/domain/vehicles"

	"github.com/shopspring/decimal"
)

type ServiceCategory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Service struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	CategoryID      uint             `gorm:"not null;index" json:"category"`
	Category        *ServiceCategory `json:"category_detail,omitempty"`
	Name            string           `gorm:"type:varchar(200);not null" json:"name"`
	Description     string           `json:"description"`
	Image           string           `json:"image"`
	DurationMinutes int              `gorm:"not null;default:60" json:"duration_minutes"`
	IsActive        bool             `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type ServicePricing struct {
	ID             uint                   `gorm:"primaryKey" json:"id"`
	ServiceID      uint                   `gorm:"not null;uniqueIndex:idx_service_pricing_service_model" json:"service"`
	Service        *Service               `json:"service_detail,omitempty"`
	VehicleModelID uint                   `gorm:"not null;uniqueIndex:idx_service_pricing_service_model" json:"vehicle_model"`
	VehicleModel   *vehicles.VehicleModel `json:"vehicle_model_detail,omitempty"`
	Price          decimal.Decimal        `gorm:"type:numeric(10,2);not null" json:"price"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

func (ServicePricing) TableName() string { return "service_pricing" }
