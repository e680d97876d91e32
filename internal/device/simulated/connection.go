package simulated

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/bleconform/internal/bledb"
	"github.com/srg/bleconform/internal/device"
	"github.com/srg/bleconform/internal/fake"
)

// Connection is a live GATT connection to a peripheral simulated by a fake.Adapter.
type Connection struct {
	adapter *fake.Adapter
	logger  *logrus.Logger

	connMutex  sync.RWMutex
	address    string
	peripheral *fake.Peripheral
	services   map[string]*Service
}

// NewConnection creates a disconnected connection bound to the adapter.
// Connect on a connection without an adapter fails with device.ErrNotInitialized.
func NewConnection(adapter *fake.Adapter, logger *logrus.Logger) *Connection {
	return &Connection{
		adapter:  adapter,
		logger:   logger,
		services: make(map[string]*Service),
	}
}

// Connect connects to the simulated peripheral and discovers its GATT profile.
func (c *Connection) Connect(ctx context.Context, address string, opts *device.ConnectOptions) error {
	c.connMutex.Lock()
	defer c.connMutex.Unlock()

	if strings.TrimSpace(address) == "" {
		c.logger.Error("Connection attempt with empty address")
		return fmt.Errorf("device address is empty")
	}

	if c.adapter == nil {
		return device.ErrNotInitialized
	}

	if c.peripheral != nil && c.peripheral.Connected() {
		c.logger.WithField("address", address).Warn("Connection attempt while already connected")
		return device.ErrAlreadyConnected
	}

	if opts != nil && opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ConnectTimeout)
		defer cancel()
	}

	c.logger.WithField("address", address).Info("Connecting to simulated peripheral...")

	p, err := c.adapter.Peripheral(address)
	if err != nil {
		return fmt.Errorf("failed to connect to device with address %q: %w", address, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to connect to device with address %q: %w", address, err)
	}
	if err := p.Connect(); err != nil {
		return fmt.Errorf("failed to connect to device with address %q: %w", address, device.NormalizeError(err))
	}

	services, err := c.discover(p)
	if err != nil {
		_ = p.Disconnect()
		return fmt.Errorf("failed to discover profile of %q: %w", address, err)
	}

	c.address = p.Address()
	c.peripheral = p
	c.services = services

	c.logger.WithFields(logrus.Fields{
		"address":  c.address,
		"services": len(services),
	}).Info("Connected to simulated peripheral")
	return nil
}

// discover maps the peripheral's go-ble profile onto live services and characteristics.
func (c *Connection) discover(p *fake.Peripheral) (map[string]*Service, error) {
	services := make(map[string]*Service)
	for _, bleSvc := range p.Profile().Services {
		rawServiceUUID := bleSvc.UUID.String()
		svcUUID := device.NormalizeUUID(rawServiceUUID)
		svc := &Service{
			uuid:            svcUUID,
			knownName:       bledb.LookupService(rawServiceUUID),
			characteristics: make(map[string]*Characteristic),
		}

		for _, bleChar := range bleSvc.Characteristics {
			rawCharUUID := bleChar.UUID.String()
			charUUID := device.NormalizeUUID(rawCharUUID)
			backing, err := p.Characteristic(svcUUID, charUUID)
			if err != nil {
				return nil, err
			}
			svc.characteristics[charUUID] = &Characteristic{
				uuid:       charUUID,
				knownName:  bledb.LookupCharacteristic(rawCharUUID),
				properties: NewProperties(bleChar.Property),
				readable:   bleChar.Property&ble.CharRead != 0,
				conn:       c,
				backing:    backing,
			}
		}
		services[svcUUID] = svc
	}
	return services, nil
}

// Disconnect closes the connection. Discovered services are dropped.
func (c *Connection) Disconnect() error {
	c.connMutex.Lock()
	defer c.connMutex.Unlock()

	if c.peripheral == nil {
		return device.ErrNotConnected
	}
	err := c.peripheral.Disconnect()
	c.peripheral = nil
	c.services = make(map[string]*Service)
	if err != nil {
		return device.NormalizeError(err)
	}
	c.logger.WithField("address", c.address).Info("Disconnected from simulated peripheral")
	return nil
}

// IsConnected reports whether the simulated peripheral is still connected.
func (c *Connection) IsConnected() bool {
	c.connMutex.RLock()
	defer c.connMutex.RUnlock()
	return c.peripheral != nil && c.peripheral.Connected()
}

func (c *Connection) Address() string {
	c.connMutex.RLock()
	defer c.connMutex.RUnlock()
	return c.address
}

// Services returns all discovered services sorted by UUID. Thread-safe.
func (c *Connection) Services() []device.Service {
	c.connMutex.RLock()
	defer c.connMutex.RUnlock()

	result := make([]device.Service, 0, len(c.services))
	for _, v := range c.services {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UUID() < result[j].UUID()
	})
	return result
}

// GetService retrieves a specific service by its UUID.
// Returns a NotFoundError if the service is not found.
func (c *Connection) GetService(uuid string) (device.Service, error) {
	c.connMutex.RLock()
	defer c.connMutex.RUnlock()

	svc, ok := c.services[device.NormalizeUUID(uuid)]
	if !ok {
		return nil, &device.NotFoundError{Resource: "service", UUIDs: []string{uuid}}
	}
	return svc, nil
}

// GetCharacteristic retrieves a characteristic by service and characteristic UUID.
// Both UUIDs are normalized for consistent lookup (lowercase, no dashes).
func (c *Connection) GetCharacteristic(service, uuid string) (device.Characteristic, error) {
	normalized, err := device.ValidateUUID(service, uuid)
	if err != nil {
		return nil, err
	}

	c.connMutex.RLock()
	defer c.connMutex.RUnlock()

	svc, ok := c.services[normalized[0]]
	if !ok {
		return nil, &device.NotFoundError{Resource: "service", UUIDs: []string{service}}
	}

	char, ok := svc.characteristics[normalized[1]]
	if !ok {
		return nil, &device.NotFoundError{Resource: "characteristic", UUIDs: []string{service, uuid}}
	}
	return char, nil
}

var _ device.Connection = (*Connection)(nil)
var _ device.Characteristic = (*Characteristic)(nil)
