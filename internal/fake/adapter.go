package fake

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cornelk/hashmap"
	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/bleconform/internal/device"
)

// PeripheralConfig describes a peripheral to simulate.
type PeripheralConfig struct {
	Address string
	Name    string
	PIN     PIN // empty means pairing needs no PIN
}

// Adapter is the simulated central's radio. It owns every simulated
// peripheral, keyed by normalized address. Safe for concurrent use.
type Adapter struct {
	logger      *logrus.Logger
	peripherals *hashmap.Map[string, *Peripheral]
}

// NewAdapter creates an adapter with no peripherals.
func NewAdapter(logger *logrus.Logger) *Adapter {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.PanicLevel)
	}
	return &Adapter{
		logger:      logger,
		peripherals: hashmap.New[string, *Peripheral](),
	}
}

// NormalizeAddress returns the canonical (uppercase) form of a device address.
func NormalizeAddress(address string) string {
	return strings.ToUpper(ble.NewAddr(strings.TrimSpace(address)).String())
}

// SimulatePeripheral registers a new simulated peripheral.
// Returns ErrDuplicatePeripheral if the address is already simulated.
func (a *Adapter) SimulatePeripheral(cfg PeripheralConfig) (*Peripheral, error) {
	address := NormalizeAddress(cfg.Address)
	if address == "" {
		return nil, fmt.Errorf("peripheral address is empty")
	}
	if cfg.PIN != "" {
		if err := cfg.PIN.Validate(); err != nil {
			return nil, err
		}
	}

	p := newPeripheral(address, cfg.Name, cfg.PIN, a.logger)
	if !a.peripherals.Insert(address, p) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePeripheral, address)
	}

	a.logger.WithFields(logrus.Fields{
		"address": address,
		"name":    cfg.Name,
		"secured": cfg.PIN != "",
	}).Debug("Simulated peripheral added")
	return p, nil
}

// Peripheral returns the simulated peripheral with the given address.
func (a *Adapter) Peripheral(address string) (*Peripheral, error) {
	p, ok := a.peripherals.Get(NormalizeAddress(address))
	if !ok {
		return nil, &device.NotFoundError{Resource: "peripheral", UUIDs: []string{address}}
	}
	return p, nil
}

// RemovePeripheral disconnects and forgets a simulated peripheral.
// Removing an unknown address is a no-op.
func (a *Adapter) RemovePeripheral(address string) {
	address = NormalizeAddress(address)
	p, ok := a.peripherals.Get(address)
	if !ok {
		return
	}
	_ = p.Disconnect()
	a.peripherals.Del(address)
	a.logger.WithField("address", address).Debug("Simulated peripheral removed")
}

// Peripherals returns all simulated peripherals sorted by address.
func (a *Adapter) Peripherals() []*Peripheral {
	result := make([]*Peripheral, 0, a.peripherals.Len())
	a.peripherals.Range(func(_ string, p *Peripheral) bool {
		result = append(result, p)
		return true
	})
	sort.Slice(result, func(i, j int) bool {
		return result[i].Address() < result[j].Address()
	})
	return result
}
