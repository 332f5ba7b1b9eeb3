package access

// Can reports whether a role carries a capability.
func Can(role string, capability Capability) bool {
	for _, c := range CapabilitiesFor(role) {
		if c == capability {
			return true
		}
	}
	return false
}

// StaffKeyCapabilities are granted to requests authenticated with the shared
// staff API key instead of a session.
func StaffKeyCapabilities() []Capability {
	return []Capability{CapManageBookings, CapViewStats}
}

func HasCapability(caps []Capability, capability Capability) bool {
	for _, c := range caps {
		if c == capability {
			return true
		}
	}
	return false
}
