package fake

import (
	"errors"
	"fmt"

	"github.com/go-ble/ble"
)

var (
	// ErrPairingRejected is returned when none of the supplied PINs match the peripheral PIN.
	ErrPairingRejected = errors.New("pairing rejected")

	// ErrNotConnected is returned for GATT operations on a disconnected peripheral.
	ErrNotConnected = errors.New("peripheral not connected")

	// ErrAlreadyConnected is returned when connecting a connected peripheral.
	ErrAlreadyConnected = errors.New("peripheral already connected")

	// ErrDuplicatePeripheral is returned when simulating an address twice.
	ErrDuplicatePeripheral = errors.New("peripheral already simulated")

	// ErrInvalidPIN is returned for PINs that are empty or contain non-digits.
	ErrInvalidPIN = errors.New("invalid PIN")
)

// Status is a GATT status code carried by a simulated read response.
// Values match the ATT error codes.
type Status byte

const (
	StatusSuccess                    Status = 0x00
	StatusReadNotPermitted           Status = 0x02
	StatusInsufficientAuthentication Status = 0x05
	StatusRequestNotSupported        Status = 0x06
	StatusUnlikelyError              Status = 0x0e
)

var statusNames = map[Status]string{
	StatusSuccess:                    "success",
	StatusReadNotPermitted:           "read not permitted",
	StatusInsufficientAuthentication: "insufficient authentication",
	StatusRequestNotSupported:        "request not supported",
	StatusUnlikelyError:              "unlikely error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status 0x%02x", byte(s))
}

// ATT returns the status as a go-ble ATT error.
func (s Status) ATT() ble.ATTError {
	return ble.ATTError(s)
}

// GATTError reports a non-success status returned by a simulated characteristic.
type GATTError struct {
	Status Status
	UUID   string
}

func (e *GATTError) Error() string {
	return fmt.Sprintf("characteristic %s responded with GATT status 0x%02x (%s)", e.UUID, byte(e.Status), e.Status)
}

// Unwrap exposes the underlying ATT error so callers can match on it with errors.Is.
func (e *GATTError) Unwrap() error {
	return e.Status.ATT()
}

// IsGATTStatus reports whether err carries a GATTError with the given status.
func IsGATTStatus(err error, status Status) bool {
	var gerr *GATTError
	if errors.As(err, &gerr) {
		return gerr.Status == status
	}
	return false
}
