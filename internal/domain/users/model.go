package users

import (
	"strings"
	"time"
)

const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

const (
	ProviderOTP    = "otp"
	ProviderGoogle = "google"
	ProviderLocal  = "local"
)

type User struct {
	ID             uint    `gorm:"primaryKey"`
	ExternalID     *string `gorm:"column:external_id;uniqueIndex:idx_users_external_id"`
	PhoneNumber    *string `gorm:"column:phone_number;uniqueIndex:idx_users_phone_number"`
	Email          *string `gorm:"uniqueIndex:idx_users_email"`
	Username       string  `gorm:"type:varchar(150)"`
	FirstName      string  `gorm:"type:varchar(150)"`
	LastName       string  `gorm:"type:varchar(150)"`
	ProfilePicture string
	Password       *string
	AuthProvider   string  `gorm:"type:varchar(20);not null;default:'otp'"`
	GoogleSub      *string `gorm:"uniqueIndex:idx_users_google_sub"`
	Role           string  `gorm:"type:varchar(20);not null;default:'customer'"`

	IsVerified      bool
	IsPhoneVerified bool
	IsActive        bool `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) IsStaffMember() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName prefers the full name, then the username, then whichever
// contact identifier is present.
func (u *User) DisplayName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	switch {
	case full != "":
		return full
	case u.Username != "":
		return u.Username
	case u.Email != nil && *u.Email != "":
		return *u.Email
	case u.PhoneNumber != nil:
		return *u.PhoneNumber
	}
	return ""
}
