package fake

import (
	"fmt"
	"sync"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/bleconform/internal/bledb"
	"github.com/srg/bleconform/internal/device"
)

// Peripheral is a simulated BLE peripheral.
type Peripheral struct {
	address string
	name    string
	logger  *logrus.Logger

	mu        sync.RWMutex
	pin       PIN
	paired    bool
	connected bool
	services  []*Service
}

func newPeripheral(address, name string, pin PIN, logger *logrus.Logger) *Peripheral {
	return &Peripheral{
		address: address,
		name:    name,
		pin:     pin,
		logger:  logger,
	}
}

func (p *Peripheral) Address() string {
	return p.address
}

func (p *Peripheral) Name() string {
	return p.name
}

// PIN returns the PIN the peripheral expects during pairing.
func (p *Peripheral) PIN() PIN {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pin
}

// SetPIN changes the pairing PIN. An empty PIN disables the PIN check.
func (p *Peripheral) SetPIN(pin PIN) error {
	if pin != "" {
		if err := pin.Validate(); err != nil {
			return err
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pin = pin
	return nil
}

// Paired reports whether the simulated pairing flow has completed.
func (p *Peripheral) Paired() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.paired
}

// Unpair forgets the bond so the next secure read pairs again.
func (p *Peripheral) Unpair() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paired = false
}

// Connect marks the peripheral connected.
func (p *Peripheral) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.connected {
		return fmt.Errorf("%s: %w", p.address, ErrAlreadyConnected)
	}
	p.connected = true
	p.logger.WithField("address", p.address).Debug("Simulated peripheral connected")
	return nil
}

// Disconnect marks the peripheral disconnected.
func (p *Peripheral) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected {
		return fmt.Errorf("%s: %w", p.address, ErrNotConnected)
	}
	p.connected = false
	p.logger.WithField("address", p.address).Debug("Simulated peripheral disconnected")
	return nil
}

func (p *Peripheral) Connected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}

// AddService adds a primary service. Returns the existing service if the UUID is already present.
func (p *Peripheral) AddService(uuid string) (*Service, error) {
	normalized, bleUUID, err := parseUUID(uuid)
	if err != nil {
		return nil, fmt.Errorf("invalid service UUID: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.services {
		if s.uuid == normalized {
			return s, nil
		}
	}
	s := &Service{uuid: normalized, bleUUID: bleUUID, peripheral: p}
	p.services = append(p.services, s)
	return s, nil
}

// Service returns the service with the given UUID.
func (p *Peripheral) Service(uuid string) (*Service, error) {
	normalized := bledb.NormalizeUUID(uuid)

	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, s := range p.services {
		if s.uuid == normalized {
			return s, nil
		}
	}
	return nil, &device.NotFoundError{Resource: "service", UUIDs: []string{uuid}}
}

// Characteristic returns the characteristic with the given UUID inside the given service.
func (p *Peripheral) Characteristic(service, uuid string) (*Characteristic, error) {
	svc, err := p.Service(service)
	if err != nil {
		return nil, err
	}
	return svc.Characteristic(uuid)
}

// Profile returns a snapshot of the GATT database in go-ble form, as a
// client would see it after discovery. Services keep insertion order.
func (p *Peripheral) Profile() *ble.Profile {
	p.mu.RLock()
	services := append([]*Service(nil), p.services...)
	p.mu.RUnlock()

	profile := &ble.Profile{}
	for _, s := range services {
		profile.Services = append(profile.Services, s.bleService())
	}
	return profile
}

// pair runs the simulated pairing prompt. Each supplied PIN is tried in order.
func (p *Peripheral) pair(supplied []PIN) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paired {
		return nil
	}

	logger := p.logger.WithFields(logrus.Fields{
		"address":  p.address,
		"attempts": len(supplied),
	})

	if p.pin != "" && !containsPIN(supplied, p.pin) {
		logger.Warn("Simulated pairing rejected")
		return fmt.Errorf("%w: no supplied PIN matches peripheral %s", ErrPairingRejected, p.address)
	}

	p.paired = true
	logger.Debug("Simulated pairing succeeded")
	return nil
}

// parseUUID normalizes a UUID string and parses it into the go-ble representation.
func parseUUID(uuid string) (string, ble.UUID, error) {
	normalized := bledb.NormalizeUUID(uuid)
	if normalized == "" {
		return "", nil, fmt.Errorf("malformed UUID %q", uuid)
	}
	bleUUID, err := ble.Parse(normalized)
	if err != nil {
		return "", nil, fmt.Errorf("malformed UUID %q: %w", uuid, err)
	}
	return normalized, bleUUID, nil
}
