// Package bluetooth provides the shared fixtures conformance tests use to
// obtain live characteristics backed by simulated peripherals.
package bluetooth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/bleconform/internal/device"
	"github.com/srg/bleconform/internal/device/simulated"
	"github.com/srg/bleconform/internal/fake"
	"github.com/srg/bleconform/internal/harness"
)

const (
	HealthThermometerService          = "1809"
	MeasurementIntervalCharacteristic = "2a21"

	// HealthThermometerAddress is the address of the simulated thermometer.
	HealthThermometerAddress = "09:09:09:09:09:09"
	HealthThermometerName    = "Health Thermometer"
)

// ErrEnvNotReady is returned by fixtures used outside an entered Env.
// It matches device.ErrNotInitialized with errors.Is.
var ErrEnvNotReady = fmt.Errorf("bluetooth environment not entered: %w", device.ErrNotInitialized)

// Env owns the fake adapter for a run. It implements harness.Extra.
type Env struct {
	logger         *logrus.Logger
	connectTimeout time.Duration

	mu      sync.RWMutex
	adapter *fake.Adapter
}

// NewEnv creates an environment. A zero connectTimeout means no connect deadline.
func NewEnv(logger *logrus.Logger, connectTimeout time.Duration) *Env {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.PanicLevel)
	}
	return &Env{logger: logger, connectTimeout: connectTimeout}
}

// Enter creates a fresh fake adapter.
func (e *Env) Enter(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.adapter = fake.NewAdapter(e.logger)
	e.logger.Debug("Fake bluetooth adapter ready")
	return nil
}

// Exit removes every simulated peripheral and drops the adapter.
func (e *Env) Exit() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.adapter == nil {
		return nil
	}
	for _, p := range e.adapter.Peripherals() {
		e.adapter.RemovePeripheral(p.Address())
	}
	e.adapter = nil
	e.logger.Debug("Fake bluetooth adapter released")
	return nil
}

// Ready reports whether the adapter is available.
func (e *Env) Ready() (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.adapter != nil, nil
}

// Adapter returns the current fake adapter, or nil outside Enter/Exit.
func (e *Env) Adapter() *fake.Adapter {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.adapter
}

func (e *Env) Logger() *logrus.Logger {
	return e.logger
}

// Fixture pairs a live characteristic with the simulated characteristic behind it.
type Fixture struct {
	Characteristic     device.Characteristic
	FakeCharacteristic *fake.Characteristic
	Peripheral         *fake.Peripheral
	Connection         *simulated.Connection
}

// GetMeasurementIntervalCharacteristic simulates a Health Thermometer whose
// Measurement Interval characteristic requires pairing with pin for reads,
// connects to it and returns both views of the characteristic. The
// connection and peripheral are released when t's cleanups run.
func GetMeasurementIntervalCharacteristic(ctx context.Context, t *harness.T, env *Env, pin fake.PIN) (*Fixture, error) {
	adapter := env.Adapter()
	if adapter == nil {
		return nil, ErrEnvNotReady
	}

	// A test abandoned on timeout may still hold the address.
	adapter.RemovePeripheral(HealthThermometerAddress)

	p, err := adapter.SimulatePeripheral(fake.PeripheralConfig{
		Address: HealthThermometerAddress,
		Name:    HealthThermometerName,
		PIN:     pin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to simulate health thermometer: %w", err)
	}
	t.Cleanup(func() { adapter.RemovePeripheral(p.Address()) })

	svc, err := p.AddService(HealthThermometerService)
	if err != nil {
		return nil, err
	}
	fakeChar, err := svc.AddCharacteristic(MeasurementIntervalCharacteristic,
		ble.CharRead|ble.CharWrite|ble.CharIndicate, fake.WithSecureRead())
	if err != nil {
		return nil, err
	}

	conn := simulated.NewConnection(adapter, env.logger)
	if err := conn.Connect(ctx, p.Address(), &device.ConnectOptions{ConnectTimeout: env.connectTimeout}); err != nil {
		return nil, err
	}
	t.Cleanup(func() {
		if conn.IsConnected() {
			_ = conn.Disconnect()
		}
	})

	char, err := conn.GetCharacteristic(HealthThermometerService, MeasurementIntervalCharacteristic)
	if err != nil {
		return nil, err
	}

	t.Logger().WithFields(logrus.Fields{
		"address":        p.Address(),
		"characteristic": char.UUID(),
	}).Debug("Measurement Interval characteristic ready")

	return &Fixture{
		Characteristic:     char,
		FakeCharacteristic: fakeChar,
		Peripheral:         p,
		Connection:         conn,
	}, nil
}

var _ harness.Extra = (*Env)(nil)
