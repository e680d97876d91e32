package fake

import (
	"fmt"
	"sync"

	"github.com/go-ble/ble"
	"github.com/srg/bleconform/internal/bledb"
	"github.com/srg/bleconform/internal/device"
)

// Service is a simulated primary service.
type Service struct {
	uuid       string
	bleUUID    ble.UUID
	peripheral *Peripheral

	mu              sync.RWMutex
	characteristics []*Characteristic
}

func (s *Service) UUID() string {
	return s.uuid
}

func (s *Service) Peripheral() *Peripheral {
	return s.peripheral
}

// CharacteristicOption configures a simulated characteristic.
type CharacteristicOption func(*Characteristic)

// WithSecureRead makes reads require a paired link.
func WithSecureRead() CharacteristicOption {
	return func(c *Characteristic) {
		c.secureRead = true
	}
}

// AddCharacteristic adds a characteristic with the given go-ble property flags.
func (s *Service) AddCharacteristic(uuid string, props ble.Property, opts ...CharacteristicOption) (*Characteristic, error) {
	normalized, bleUUID, err := parseUUID(uuid)
	if err != nil {
		return nil, fmt.Errorf("invalid characteristic UUID: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.characteristics {
		if c.uuid == normalized {
			return nil, fmt.Errorf("characteristic %s already exists in service %s", normalized, s.uuid)
		}
	}

	c := newCharacteristic(normalized, bleUUID, props, s)
	for _, opt := range opts {
		opt(c)
	}
	s.characteristics = append(s.characteristics, c)
	return c, nil
}

// Characteristic returns the characteristic with the given UUID.
func (s *Service) Characteristic(uuid string) (*Characteristic, error) {
	normalized := bledb.NormalizeUUID(uuid)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.characteristics {
		if c.uuid == normalized {
			return c, nil
		}
	}
	return nil, &device.NotFoundError{Resource: "characteristic", UUIDs: []string{s.uuid, uuid}}
}

func (s *Service) bleService() *ble.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc := &ble.Service{UUID: s.bleUUID}
	for _, c := range s.characteristics {
		svc.Characteristics = append(svc.Characteristics, &ble.Characteristic{
			UUID:     c.bleUUID,
			Property: c.props,
		})
	}
	return svc
}
