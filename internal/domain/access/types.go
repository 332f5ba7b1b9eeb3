package access

type Capability string

const (
	CapBook           Capability = "book"
	CapManageProfile  Capability = "manage_profile"
	CapManageBookings Capability = "manage_bookings"
	CapViewStats      Capability = "view_stats"
	CapManageUsers    Capability = "manage_users"
	CapManageStaff    Capability = "manage_staff"
	CapViewPayments   Capability = "view_payments"
)
