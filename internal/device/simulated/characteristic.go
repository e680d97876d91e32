package simulated

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/bleconform/internal/device"
	"github.com/srg/bleconform/internal/fake"
	"github.com/srg/bleconform/internal/groutine"
)

// DefaultReadTimeout is the timeout Read applies when called with a zero timeout.
// This prevents indefinite blocking if the simulated peripheral never gets a response configured.
const DefaultReadTimeout = 5 * time.Second

// Characteristic is the live, client-side handle to a simulated characteristic.
type Characteristic struct {
	uuid       string
	knownName  string
	properties device.Properties
	readable   bool
	conn       *Connection
	backing    *fake.Characteristic
}

func (c *Characteristic) UUID() string {
	return c.uuid
}

func (c *Characteristic) KnownName() string {
	return c.knownName
}

func (c *Characteristic) GetProperties() device.Properties {
	return c.properties
}

// ReadValue issues a read request and suspends until the peripheral responds
// or ctx is done. A ctx deadline is reported as device.ErrTimeout.
func (c *Characteristic) ReadValue(ctx context.Context) ([]byte, error) {
	if !c.readable {
		return nil, fmt.Errorf("characteristic %s does not support read operations: %w", c.uuid, device.ErrUnsupported)
	}
	if !c.conn.IsConnected() {
		return nil, fmt.Errorf("cannot read characteristic %s: %w", c.uuid, device.ErrNotConnected)
	}

	logger := c.conn.logger.WithField("characteristic", c.uuid)
	logger.Debug("Reading characteristic...")

	data, err := groutine.Await(ctx, "read-"+device.ShortenUUID(c.uuid), c.backing.HandleRead)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("Characteristic read timed out")
			return nil, fmt.Errorf("timeout reading characteristic %s: %w", c.uuid, device.ErrTimeout)
		}
		logger.WithError(err).Debug("Characteristic read failed")
		return nil, fmt.Errorf("failed to read characteristic %s: %w", c.uuid, device.NormalizeError(err))
	}

	logger.WithFields(logrus.Fields{"length": len(data)}).Debug("Characteristic read completed")
	return data, nil
}

// Read reads the characteristic with the given timeout, or DefaultReadTimeout if timeout is zero.
func (c *Characteristic) Read(timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	data, err := c.ReadValue(ctx)
	if errors.Is(err, device.ErrTimeout) {
		return nil, fmt.Errorf("%w after %v", err, timeout)
	}
	return data, err
}
