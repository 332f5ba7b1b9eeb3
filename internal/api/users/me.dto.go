package users

import "time"

type ProfileDTO struct {
	ID              uint      `json:"id"`
	Username        string    `json:"username"`
	Email           *string   `json:"email"`
	PhoneNumber     *string   `json:"phone_number"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	FullName        string    `json:"full_name"`
	ProfilePicture  string    `json:"profile_picture"`
	Role            string    `json:"role"`
	IsVerified      bool      `json:"is_verified"`
	IsPhoneVerified bool      `json:"is_phone_verified"`
	IsStaff         bool      `json:"is_staff"`
	IsSuperuser     bool      `json:"is_superuser"`
	Capabilities    []string  `json:"capabilities"`
	CreatedAt       time.Time `json:"created_at"`
}

type SessionDTO struct {
	ID           uint      `json:"id"`
	DeviceID     string    `json:"device_id"`
	UserAgent    string    `json:"user_agent"`
	IPAddress    string    `json:"ip_address"`
	Status       string    `json:"status"`
	ExpiresAt    time.Time `json:"expires_at"`
	LastActivity time.Time `json:"last_activity"`
	CreatedAt    time.Time `json:"created_at"`
	Current      bool      `json:"current"`
}
