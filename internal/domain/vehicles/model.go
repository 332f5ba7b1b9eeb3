package vehicles

import "time"

type VehicleType struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VehicleBrand struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	VehicleTypeID uint         `gorm:"not null;uniqueIndex:idx_vehicle_brands_type_name" json:"vehicle_type"`
	VehicleType   *VehicleType `json:"vehicle_type_detail,omitempty"`
	Name          string       `gorm:"type:varchar(100);not null;uniqueIndex:idx_vehicle_brands_type_name" json:"name"`
	Image         string       `json:"image"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

type VehicleModel struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	VehicleBrandID uint          `gorm:"not null;uniqueIndex:idx_vehicle_models_brand_name" json:"vehicle_brand"`
	VehicleBrand   *VehicleBrand `json:"vehicle_brand_detail,omitempty"`
	Name           string        `gorm:"type:varchar(100);not null;uniqueIndex:idx_vehicle_models_brand_name" json:"name"`
	Image          string        `json:"image"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// DisplayName is "<brand> <model>" when the brand is loaded.
func (m *VehicleModel) DisplayName() string {
	if m.VehicleBrand != nil {
		return m.VehicleBrand.Name + " " + m.Name
	}
	return m.Name
}
