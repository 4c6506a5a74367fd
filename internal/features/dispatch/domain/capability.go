package domain

import "strings"

// Capabilities is the set of privileged operations a caller may perform. It is
// resolved at the edge and passed in; the core never inspects caller identity.
type Capabilities uint8

const (
	CapDispatchOverride Capabilities = 1 << iota
	CapCancelOrders
)

// Has reports whether every bit of want is present.
func (c Capabilities) Has(want Capabilities) bool {
	return c&want == want
}

// CapabilitiesForRole maps a validated role name to capabilities.
func CapabilitiesForRole(role string) Capabilities {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "admin":
		return CapDispatchOverride | CapCancelOrders
	case "dispatcher":
		return CapDispatchOverride
	case "support":
		return CapCancelOrders
	default:
		return 0
	}
}
