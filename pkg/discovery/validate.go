package discovery

import "strings"

// IsValidAddress reports whether address may be used to reach a core.
//
// The loopback literal and anything containing "::" (an IPv6 address) are
// rejected. Everything else, including unresolvable hostnames, is accepted;
// resolution failures surface when connecting.
func IsValidAddress(address string) bool {
	if address == LoopbackAddress {
		return false
	}
	return !strings.Contains(address, "::")
}
