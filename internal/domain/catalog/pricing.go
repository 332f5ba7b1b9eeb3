package catalog

import (
	"fmt"

	"gorm.io/gorm"
)

// MissingPricingError names the first requested service that has no price
// for the chosen vehicle model.
type MissingPricingError struct {
	ServiceID uint
}

func (e *MissingPricingError) Error() string {
	return fmt.Sprintf("Service pricing not found for service ID %d and selected vehicle", e.ServiceID)
}

// PricingFor loads the price of every requested service for one vehicle model.
// The first service without a price yields a *MissingPricingError.
func PricingFor(db *gorm.DB, vehicleModelID uint, serviceIDs []uint) (map[uint]ServicePricing, error) {
	var rows []ServicePricing
	if err := db.Where("vehicle_model_id = ? AND service_id IN ?", vehicleModelID, serviceIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	byService := make(map[uint]ServicePricing, len(rows))
	for _, p := range rows {
		byService[p.ServiceID] = p
	}
	for _, id := range serviceIDs {
		if _, ok := byService[id]; !ok {
			return nil, &MissingPricingError{ServiceID: id}
		}
	}
	return byService, nil
}
