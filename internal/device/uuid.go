package device

import (
	"errors"
	"fmt"

	"github.com/srg/bleconform/internal/bledb"
)

// shortUUIDLen is the prefix kept by ShortenUUID for vendor 128-bit UUIDs.
const shortUUIDLen = 8

// errNoUUIDs is returned by ValidateUUID when called without arguments.
var errNoUUIDs = errors.New("at least one UUID is required")

// InvalidUUIDError reports a service or characteristic UUID that cannot be used as a lookup key.
type InvalidUUIDError struct {
	Index int
	UUID  string
}

func (e *InvalidUUIDError) Error() string {
	if e.UUID == "" {
		return fmt.Sprintf("UUID at index %d cannot be empty", e.Index)
	}
	return fmt.Sprintf("invalid UUID format at index %d: %s", e.Index, e.UUID)
}

// NormalizeUUID turns any accepted spelling of a GATT UUID ("0x2A21",
// "{00002a21-0000-1000-8000-00805f9b34fb}") into the key connections index by.
func NormalizeUUID(uuid string) string {
	return bledb.NormalizeUUID(uuid)
}

// ShortenUUID trims a normalized UUID for goroutine names and log fields.
func ShortenUUID(uuid string) string {
	if len(uuid) <= shortUUIDLen {
		return uuid
	}
	return uuid[:shortUUIDLen]
}

// ValidateUUID normalizes a service/characteristic UUID path.
// The first UUID that is empty or malformed yields an *InvalidUUIDError.
func ValidateUUID(uuids ...string) ([]string, error) {
	if len(uuids) == 0 {
		return nil, errNoUUIDs
	}

	keys := make([]string, len(uuids))
	for i, raw := range uuids {
		if keys[i] = NormalizeUUID(raw); keys[i] == "" {
			return nil, &InvalidUUIDError{Index: i, UUID: raw}
		}
	}
	return keys, nil
}
