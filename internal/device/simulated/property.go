package simulated

import (
	"github.com/go-ble/ble"
	"github.com/srg/bleconform/internal/device"
)

// property represents a single characteristic property with its bit flag value and human-readable name.
type property struct {
	value ble.Property
	name  string
}

func (p *property) Value() int {
	return int(p.value)
}

func (p *property) KnownName() string {
	return p.name
}

// properties is keyed by the go-ble flag; absent flags are not stored.
type properties map[ble.Property]*property

var propertyNames = []struct {
	flag ble.Property
	name string
}{
	{ble.CharBroadcast, "Broadcast"},
	{ble.CharRead, "Read"},
	{ble.CharWriteNR, "WriteWithoutResponse"},
	{ble.CharWrite, "Write"},
	{ble.CharNotify, "Notify"},
	{ble.CharIndicate, "Indicate"},
	{ble.CharSignedWrite, "AuthenticatedSignedWrites"},
	{ble.CharExtended, "ExtendedProperties"},
}

// NewProperties creates a Properties instance from ble.Property bit flags.
func NewProperties(p ble.Property) device.Properties {
	props := properties{}
	for _, pn := range propertyNames {
		if p&pn.flag != 0 {
			props[pn.flag] = &property{value: pn.flag, name: pn.name}
		}
	}
	return props
}

// get returns nil (not a typed nil) for absent flags so callers can compare against nil.
func (p properties) get(flag ble.Property) device.Property {
	if prop, ok := p[flag]; ok {
		return prop
	}
	return nil
}

func (p properties) Broadcast() device.Property                 { return p.get(ble.CharBroadcast) }
func (p properties) Read() device.Property                      { return p.get(ble.CharRead) }
func (p properties) Write() device.Property                     { return p.get(ble.CharWrite) }
func (p properties) WriteWithoutResponse() device.Property      { return p.get(ble.CharWriteNR) }
func (p properties) Notify() device.Property                    { return p.get(ble.CharNotify) }
func (p properties) Indicate() device.Property                  { return p.get(ble.CharIndicate) }
func (p properties) AuthenticatedSignedWrites() device.Property { return p.get(ble.CharSignedWrite) }
func (p properties) ExtendedProperties() device.Property        { return p.get(ble.CharExtended) }
