package users

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// StaffDirectory lists identifiers that are granted staff access on their
// first OTP login.
type StaffDirectory struct {
	ID         uint   `gorm:"primaryKey"`
	Identifier string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Name       string `gorm:"type:varchar(150)"`
	IsActive   bool   `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LookupStaffDirectory returns the active entry for an identifier, or nil.
func LookupStaffDirectory(db *gorm.DB, identifier string) (*StaffDirectory, error) {
	var entry StaffDirectory
	err := db.Where("identifier = ? AND is_active = ?", identifier, true).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
