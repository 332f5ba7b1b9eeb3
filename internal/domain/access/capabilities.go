package access

import (
	"repairmybike-api/internal/domain/users"
)

func CapabilitiesFor(role string) []Capability {
	switch role {
	case users.RoleAdmin:
		return []Capability{
			CapBook, CapManageProfile, CapManageBookings, CapViewStats,
			CapManageUsers, CapManageStaff, CapViewPayments,
		}
	case users.RoleStaff:
		return []Capability{CapBook, CapManageProfile, CapManageBookings, CapViewStats}
	case users.RoleCustomer:
		return []Capability{CapBook, CapManageProfile}
	default:
		return []Capability{}
	}
}
