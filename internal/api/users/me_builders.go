package users

import (
	"repairmybike-api/internal/domain/access"
	"repairmybike-api/internal/domain/users"
)

func BuildProfile(u *users.User) ProfileDTO {
	caps := access.CapabilitiesFor(u.Role)
	names := make([]string, 0, len(caps))
	for _, c := range caps {
		names = append(names, string(c))
	}

	return ProfileDTO{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		PhoneNumber:     u.PhoneNumber,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		FullName:        u.DisplayName(),
		ProfilePicture:  u.ProfilePicture,
		Role:            u.Role,
		IsVerified:      u.IsVerified,
		IsPhoneVerified: u.IsPhoneVerified,
		IsStaff:         u.IsStaffMember(),
		IsSuperuser:     u.IsAdmin(),
		Capabilities:    names,
		CreatedAt:       u.CreatedAt,
	}
}

func BuildSession(s *users.UserSession, currentID uint) SessionDTO {
	return SessionDTO{
		ID:           s.ID,
		DeviceID:     s.DeviceID,
		UserAgent:    s.UserAgent,
		IPAddress:    s.IPAddress,
		Status:       string(s.Status),
		ExpiresAt:    s.ExpiresAt,
		LastActivity: s.LastActivity,
		CreatedAt:    s.CreatedAt,
		Current:      s.ID == currentID,
	}
}
