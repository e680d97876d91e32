package testutils

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-ble/ble"
	"github.com/srg/bleconform/internal/fake"
)

// DefaultPeripheralAddress is used when a profile does not set one.
const DefaultPeripheralAddress = "AA:BB:CC:DD:EE:FF"

// CharacteristicConfig describes a simulated characteristic.
type CharacteristicConfig struct {
	UUID       string `json:"uuid"`
	Properties string `json:"properties,omitempty"` // e.g. "read,write,indicate"
	Secure     bool   `json:"secure,omitempty"`
	// Value, when set, is queued as the next successful read response.
	Value []byte `json:"value,omitempty"`
}

// ServiceConfig describes a simulated service.
type ServiceConfig struct {
	UUID            string                 `json:"uuid"`
	Characteristics []CharacteristicConfig `json:"characteristics,omitempty"`
}

// PeripheralConfig is the complete simulated peripheral profile.
type PeripheralConfig struct {
	Address  string          `json:"address,omitempty"`
	Name     string          `json:"name,omitempty"`
	PIN      string          `json:"pin,omitempty"`
	Services []ServiceConfig `json:"services"`
}

// PeripheralBuilder builds simulated peripherals on a fake.Adapter.
type PeripheralBuilder struct {
	config PeripheralConfig
}

func NewPeripheralBuilder() *PeripheralBuilder {
	return &PeripheralBuilder{
		config: PeripheralConfig{
			Address:  DefaultPeripheralAddress,
			Services: []ServiceConfig{},
		},
	}
}

func (b *PeripheralBuilder) WithAddress(address string) *PeripheralBuilder {
	b.config.Address = address
	return b
}

func (b *PeripheralBuilder) WithName(name string) *PeripheralBuilder {
	b.config.Name = name
	return b
}

func (b *PeripheralBuilder) WithPIN(pin string) *PeripheralBuilder {
	b.config.PIN = pin
	return b
}

// WithService adds a service to the profile
func (b *PeripheralBuilder) WithService(uuid string) *PeripheralBuilder {
	b.config.Services = append(b.config.Services, ServiceConfig{
		UUID:            uuid,
		Characteristics: []CharacteristicConfig{},
	})
	return b
}

// WithCharacteristic adds a characteristic to the last added service
func (b *PeripheralBuilder) WithCharacteristic(uuid, properties string, value []byte) *PeripheralBuilder {
	return b.withCharacteristic(CharacteristicConfig{UUID: uuid, Properties: properties, Value: value})
}

// WithSecureCharacteristic adds a characteristic whose reads require pairing.
func (b *PeripheralBuilder) WithSecureCharacteristic(uuid, properties string) *PeripheralBuilder {
	return b.withCharacteristic(CharacteristicConfig{UUID: uuid, Properties: properties, Secure: true})
}

func (b *PeripheralBuilder) withCharacteristic(char CharacteristicConfig) *PeripheralBuilder {
	if len(b.config.Services) == 0 {
		panic("WithCharacteristic: no service added yet, call WithService first")
	}
	last := len(b.config.Services) - 1
	b.config.Services[last].Characteristics = append(b.config.Services[last].Characteristics, char)
	return b
}

// FromJSON replaces the profile with the one described by JSON.
func (b *PeripheralBuilder) FromJSON(jsonStrFmt string, args ...interface{}) *PeripheralBuilder {
	jsonStr := fmt.Sprintf(jsonStrFmt, args...)

	var config PeripheralConfig
	if err := json.Unmarshal([]byte(jsonStr), &config); err != nil {
		panic(fmt.Sprintf("PeripheralBuilder.FromJSON: failed to unmarshal: %v", err))
	}
	if config.Address == "" {
		config.Address = DefaultPeripheralAddress
	}

	b.config = config
	return b
}

// Build registers the peripheral on the adapter.
func (b *PeripheralBuilder) Build(adapter *fake.Adapter) (*fake.Peripheral, error) {
	p, err := adapter.SimulatePeripheral(fake.PeripheralConfig{
		Address: b.config.Address,
		Name:    b.config.Name,
		PIN:     fake.PIN(b.config.PIN),
	})
	if err != nil {
		return nil, err
	}

	for _, svcConfig := range b.config.Services {
		svc, err := p.AddService(svcConfig.UUID)
		if err != nil {
			return nil, err
		}
		for _, charConfig := range svcConfig.Characteristics {
			props, err := ParseProperties(charConfig.Properties)
			if err != nil {
				return nil, fmt.Errorf("characteristic %s: %w", charConfig.UUID, err)
			}

			var opts []fake.CharacteristicOption
			if charConfig.Secure {
				opts = append(opts, fake.WithSecureRead())
			}
			char, err := svc.AddCharacteristic(charConfig.UUID, props, opts...)
			if err != nil {
				return nil, err
			}
			if charConfig.Value != nil {
				var pins []fake.PIN
				if b.config.PIN != "" {
					pins = append(pins, fake.PIN(b.config.PIN))
				}
				char.SetNextReadResponse(fake.StatusSuccess, charConfig.Value, pins...)
			}
		}
	}
	return p, nil
}

// MustBuild is Build that panics on error.
func (b *PeripheralBuilder) MustBuild(adapter *fake.Adapter) *fake.Peripheral {
	p, err := b.Build(adapter)
	if err != nil {
		panic(fmt.Sprintf("PeripheralBuilder.Build: %v", err))
	}
	return p
}

var propertyNames = map[string]ble.Property{
	"broadcast":              ble.CharBroadcast,
	"read":                   ble.CharRead,
	"write-without-response": ble.CharWriteNR,
	"write":                  ble.CharWrite,
	"notify":                 ble.CharNotify,
	"indicate":               ble.CharIndicate,
	"signed-write":           ble.CharSignedWrite,
	"extended":               ble.CharExtended,
}

// ParseProperties converts a comma separated property list to ble.Property flags.
// An empty list means read,write,notify.
func ParseProperties(props string) (ble.Property, error) {
	if strings.TrimSpace(props) == "" {
		return ble.CharRead | ble.CharWrite | ble.CharNotify, nil
	}

	var property ble.Property
	for _, name := range strings.Split(props, ",") {
		flag, ok := propertyNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, fmt.Errorf("unknown characteristic property %q", name)
		}
		property |= flag
	}
	return property, nil
}
