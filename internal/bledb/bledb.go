// Package bledb maps Bluetooth SIG assigned numbers to human-readable names
// and normalizes UUID strings to the short lowercase form used for lookups.
package bledb

import "strings"

// sigBaseSuffix is the tail of the Bluetooth SIG base UUID
// (0000xxxx-0000-1000-8000-00805f9b34fb) without dashes.
const sigBaseSuffix = "00001000800000805f9b34fb"

// NormalizeUUID returns the lookup key for a UUID: lowercase hex without
// braces, dashes or a 0x prefix, with SIG base UUIDs reduced to 16 bits.
// Vendor UUIDs keep every digit. Empty or non-hex input yields "".
func NormalizeUUID(uuid string) string {
	s := strings.ToLower(strings.TrimSpace(uuid))
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	s = strings.TrimPrefix(s, "0x")
	s = strings.ReplaceAll(s, "-", "")

	if !isHex(s) {
		return ""
	}

	if len(s) == 32 && strings.HasPrefix(s, "0000") && strings.HasSuffix(s, sigBaseSuffix) {
		return s[4:8]
	}
	return s
}

// LookupService returns the assigned name of a GATT service, or "" if unknown.
func LookupService(uuid string) string {
	return services[NormalizeUUID(uuid)]
}

// LookupCharacteristic returns the assigned name of a GATT characteristic, or "" if unknown.
func LookupCharacteristic(uuid string) string {
	return characteristics[NormalizeUUID(uuid)]
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
