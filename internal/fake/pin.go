package fake

import "fmt"

// MaxPINLength is the longest passkey accepted by the simulated pairing flow.
const MaxPINLength = 16

// PIN is a numeric pairing credential.
type PIN string

// Validate checks that the PIN is non-empty, at most MaxPINLength long and numeric.
func (p PIN) Validate() error {
	if p == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPIN)
	}
	if len(p) > MaxPINLength {
		return fmt.Errorf("%w: %d digits exceeds %d", ErrInvalidPIN, len(p), MaxPINLength)
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: %q contains non-digit %q", ErrInvalidPIN, string(p), r)
		}
	}
	return nil
}

// containsPIN reports whether pin is one of candidates.
func containsPIN(candidates []PIN, pin PIN) bool {
	for _, c := range candidates {
		if c == pin {
			return true
		}
	}
	return false
}
