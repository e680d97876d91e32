package bledb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeUUID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "battery service short form", input: "180F", expected: "180f"},
		{name: "hex prefix", input: "0x2a19", expected: "2a19"},
		{name: "SIG base with dashes", input: "00001809-0000-1000-8000-00805f9b34fb", expected: "1809"},
		{name: "SIG base as printed by go-ble", input: "00002a2100001000800000805f9b34fb", expected: "2a21"},
		{name: "braced uppercase", input: "{00002A19-0000-1000-8000-00805F9B34FB}", expected: "2a19"},
		{name: "non-SIG 128-bit", input: "12345678-0000-1000-8000-00805f9b34fb", expected: "1234567800001000800000805f9b34fb"},
		{name: "32-bit form kept", input: "0000180f", expected: "0000180f"},
		{name: "empty", input: "", expected: ""},
		{name: "non-hex", input: "battery", expected: ""},
		{name: "stray characters", input: "18-0z", expected: ""},
		{name: "empty braces", input: "{}", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeUUID(tt.input))
		})
	}
}

func TestLookupService(t *testing.T) {
	// GOAL: Verify the service names shown for simulated peripherals resolve from any UUID spelling
	//
	// TEST SCENARIO: Short, prefixed and full SIG UUIDs → table name; unknown or malformed → ""

	tests := []struct {
		uuid     string
		expected string
	}{
		{uuid: "1809", expected: "Health Thermometer"},
		{uuid: "0x1809", expected: "Health Thermometer"},
		{uuid: "0000180F-0000-1000-8000-00805F9B34FB", expected: "Battery Service"},
		{uuid: "2a21", expected: ""},
		{uuid: "6e400001-b5a3-f393-e0a9-e50e24dcca9e", expected: ""},
		{uuid: "not-a-uuid", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.uuid, func(t *testing.T) {
			assert.Equal(t, tt.expected, LookupService(tt.uuid))
		})
	}
}

func TestLookupCharacteristic(t *testing.T) {
	tests := []struct {
		uuid     string
		expected string
	}{
		{uuid: "2a21", expected: "Measurement Interval"},
		{uuid: "00002A21-0000-1000-8000-00805F9B34FB", expected: "Measurement Interval"},
		{uuid: "0x2A19", expected: "Battery Level"},
		{uuid: "1809", expected: ""},
		{uuid: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.uuid, func(t *testing.T) {
			assert.Equal(t, tt.expected, LookupCharacteristic(tt.uuid))
		})
	}
}

func TestNameTablesUseLookupKeys(t *testing.T) {
	for uuid := range services {
		assert.Equal(t, uuid, NormalizeUUID(uuid), "service key %q MUST already be normalized", uuid)
	}
	for uuid := range characteristics {
		assert.Equal(t, uuid, NormalizeUUID(uuid), "characteristic key %q MUST already be normalized", uuid)
	}
}
