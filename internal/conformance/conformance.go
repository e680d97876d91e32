// Package conformance holds the conformance tests run against simulated
// peripherals.
package conformance

import (
	"context"
	"fmt"

	"github.com/srg/bleconform/internal/bluetooth"
	"github.com/srg/bleconform/internal/fake"
	"github.com/srg/bleconform/internal/harness"
)

// Conformance test names, in registration order.
const (
	SecureReadSucceeds   = "Characteristic read with a successful pairing returns the configured value"
	SecureReadRejected   = "Characteristic read with a rejected pairing does not return the value"
	LastReadResponseWins = "Repeated read response configuration keeps the last value"
	ReadGATTErrorRejects = "Characteristic read with a GATT error status rejects"
)

const (
	peripheralPIN = fake.PIN("123456")
	wrongPIN      = fake.PIN("000000")
)

var expectedValue = []byte{0, 1, 2}

// Register adds every conformance test to h. Tests obtain peripherals from env.
func Register(h *harness.Harness, env *bluetooth.Env) error {
	tests := []struct {
		name string
		fn   harness.TestFunc
	}{
		{SecureReadSucceeds, secureReadSucceeds(env)},
		{SecureReadRejected, secureReadRejected(env)},
		{LastReadResponseWins, lastReadResponseWins(env)},
		{ReadGATTErrorRejects, readGATTErrorRejects(env)},
	}
	for _, tt := range tests {
		if err := h.Register(tt.name, tt.fn); err != nil {
			return fmt.Errorf("failed to register conformance test: %w", err)
		}
	}
	return nil
}

func secureReadSucceeds(env *bluetooth.Env) harness.TestFunc {
	return func(ctx context.Context, t *harness.T) error {
		fixture, err := bluetooth.GetMeasurementIntervalCharacteristic(ctx, t, env, peripheralPIN)
		if err != nil {
			return err
		}
		fixture.FakeCharacteristic.SetNextReadResponse(fake.StatusSuccess, expectedValue, peripheralPIN)

		value, err := fixture.Characteristic.ReadValue(ctx)
		if err != nil {
			return err
		}
		return harness.AssertArrayEquals(value, expectedValue, "")
	}
}

// secureReadRejected expects the read to reject. The pairing error itself
// would be ERROR, so the rejection is asserted explicitly.
func secureReadRejected(env *bluetooth.Env) harness.TestFunc {
	return func(ctx context.Context, t *harness.T) error {
		fixture, err := bluetooth.GetMeasurementIntervalCharacteristic(ctx, t, env, peripheralPIN)
		if err != nil {
			return err
		}
		fixture.FakeCharacteristic.SetNextReadResponse(fake.StatusSuccess, expectedValue, wrongPIN)

		value, err := fixture.Characteristic.ReadValue(ctx)
		if err := harness.AssertRejectsWith(err, fake.ErrPairingRejected, "secure read"); err != nil {
			return err
		}
		t.Logf("read rejected: %v", err)
		if err := harness.AssertTrue(value == nil, "no value returned"); err != nil {
			return err
		}
		return harness.AssertTrue(!fixture.Peripheral.Paired(), "peripheral stays unpaired")
	}
}

func lastReadResponseWins(env *bluetooth.Env) harness.TestFunc {
	return func(ctx context.Context, t *harness.T) error {
		fixture, err := bluetooth.GetMeasurementIntervalCharacteristic(ctx, t, env, peripheralPIN)
		if err != nil {
			return err
		}
		fixture.FakeCharacteristic.SetNextReadResponse(fake.StatusSuccess, []byte{9, 9, 9, 9}, peripheralPIN)
		fixture.FakeCharacteristic.SetNextReadResponse(fake.StatusSuccess, expectedValue, peripheralPIN)

		value, err := fixture.Characteristic.ReadValue(ctx)
		if err != nil {
			return err
		}
		if err := harness.AssertArrayEquals(value, expectedValue, ""); err != nil {
			return err
		}
		if err := harness.AssertEquals(fixture.FakeCharacteristic.ReadCount(), 1, "read count"); err != nil {
			return err
		}
		return harness.AssertTrue(!fixture.FakeCharacteristic.PendingReadResponse(), "response consumed")
	}
}

func readGATTErrorRejects(env *bluetooth.Env) harness.TestFunc {
	return func(ctx context.Context, t *harness.T) error {
		fixture, err := bluetooth.GetMeasurementIntervalCharacteristic(ctx, t, env, peripheralPIN)
		if err != nil {
			return err
		}
		fixture.FakeCharacteristic.SetNextReadResponse(fake.StatusReadNotPermitted, expectedValue, peripheralPIN)

		value, err := fixture.Characteristic.ReadValue(ctx)
		if err := harness.AssertRejectsWith(err, fake.StatusReadNotPermitted.ATT(), "GATT status"); err != nil {
			return err
		}
		return harness.AssertTrue(value == nil, "no value returned")
	}
}
