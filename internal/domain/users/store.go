package users

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// FindByIdentifier looks a user up by phone number or email.
func FindByIdentifier(db *gorm.DB, channel Channel, identifier string) (*User, error) {
	var user User
	column := "phone_number"
	if channel == ChannelEmail {
		column = "email"
	}
	err := db.Where(column+" = ?", identifier).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ResolveVerifiedUser returns the user behind a verified identifier, creating
// it on first login. The bool reports whether a new user was created.
func ResolveVerifiedUser(db *gorm.DB, channel Channel, identifier, externalID string) (*User, bool, error) {
	var user User
	var err error

	if externalID != "" {
		err = db.Where("external_id = ?", externalID).First(&user).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}
	if externalID == "" || errors.Is(err, gorm.ErrRecordNotFound) {
		found, ferr := FindByIdentifier(db, channel, identifier)
		switch {
		case ferr == nil:
			user = *found
			err = nil
		case errors.Is(ferr, ErrUserNotFound):
			err = gorm.ErrRecordNotFound
		default:
			return nil, false, ferr
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = User{
			Username:     identifier,
			AuthProvider: ProviderOTP,
			Role:         RoleCustomer,
			IsVerified:   true,
			IsActive:     true,
		}
		if externalID != "" {
			user.ExternalID = &externalID
		}
		id := identifier
		if channel == ChannelEmail {
			user.Email = &id
		} else {
			user.PhoneNumber = &id
			user.IsPhoneVerified = true
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, false, fmt.Errorf("create user: %w", err)
		}
		return &user, true, nil
	}

	updates := map[string]interface{}{"is_verified": true}
	if channel == ChannelSMS {
		updates["is_phone_verified"] = true
	}
	if externalID != "" && user.ExternalID == nil {
		updates["external_id"] = externalID
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		return nil, false, fmt.Errorf("update user: %w", err)
	}
	user.IsVerified = true
	if channel == ChannelSMS {
		user.IsPhoneVerified = true
	}
	if externalID != "" && user.ExternalID == nil {
		user.ExternalID = &externalID
	}
	return &user, false, nil
}
