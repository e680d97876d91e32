package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNormalizeUUID covers the spellings fixtures and conformance tests use
// for the Health Thermometer service and its Measurement Interval characteristic.
func TestNormalizeUUID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "service short form", input: "1809", expected: "1809"},
		{name: "characteristic uppercase", input: "2A21", expected: "2a21"},
		{name: "hex prefix", input: "0x2A21", expected: "2a21"},
		{name: "go-ble string form", input: "00002a2100001000800000805f9b34fb", expected: "2a21"},
		{name: "canonical dashed form", input: "00001809-0000-1000-8000-00805F9B34FB", expected: "1809"},
		{name: "braced form", input: "{00001809-0000-1000-8000-00805f9b34fb}", expected: "1809"},
		{name: "surrounding whitespace", input: " 1809 ", expected: "1809"},
		{name: "vendor 128-bit kept whole", input: "6E400001-B5A3-F393-E0A9-E50E24DCCA9E", expected: "6e400001b5a3f393e0a9e50e24dcca9e"},
		{name: "empty", input: "", expected: ""},
		{name: "non-hex", input: "temp", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeUUID(tt.input))
		})
	}
}

func TestValidateUUID(t *testing.T) {
	// GOAL: Verify a service/characteristic path is normalized or rejected with its position
	//
	// TEST SCENARIO: Mixed spellings → lookup keys; empty/malformed entries → InvalidUUIDError with index

	keys, err := ValidateUUID("0x1809", "00002A21-0000-1000-8000-00805F9B34FB")
	require.NoError(t, err)
	assert.Equal(t, []string{"1809", "2a21"}, keys)

	_, err = ValidateUUID()
	assert.ErrorIs(t, err, errNoUUIDs)

	tests := []struct {
		name    string
		uuids   []string
		index   int
		message string
	}{
		{name: "empty characteristic", uuids: []string{"1809", ""}, index: 1, message: "UUID at index 1 cannot be empty"},
		{name: "malformed service", uuids: []string{"zz09", "2a21"}, index: 0, message: "invalid UUID format at index 0: zz09"},
		{name: "dashes only", uuids: []string{"1809", "----"}, index: 1, message: "invalid UUID format at index 1: ----"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, err := ValidateUUID(tt.uuids...)
			assert.Nil(t, keys, "keys MUST NOT be returned on error")

			var invalid *InvalidUUIDError
			require.True(t, errors.As(err, &invalid), "error MUST be an InvalidUUIDError")
			assert.Equal(t, tt.index, invalid.Index)
			assert.EqualError(t, err, tt.message)
		})
	}
}

func TestShortenUUID(t *testing.T) {
	assert.Equal(t, "2a21", ShortenUUID("2a21"))
	assert.Equal(t, "6e400001", ShortenUUID("6e400001b5a3f393e0a9e50e24dcca9e"))
	assert.Equal(t, "", ShortenUUID(""))
}
