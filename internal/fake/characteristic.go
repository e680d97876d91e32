package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
)

// readResponse is the scripted answer to the next read request.
type readResponse struct {
	status      Status
	value       []byte
	pairingPINs []PIN
}

// Characteristic is a simulated GATT characteristic. Reads are answered from
// a single scripted response slot filled by SetNextReadResponse.
type Characteristic struct {
	uuid       string
	bleUUID    ble.UUID
	props      ble.Property
	secureRead bool
	service    *Service

	mu    sync.Mutex
	next  *readResponse
	ready chan struct{} // closed while next is non-nil
	reads int
}

func newCharacteristic(uuid string, bleUUID ble.UUID, props ble.Property, svc *Service) *Characteristic {
	return &Characteristic{
		uuid:    uuid,
		bleUUID: bleUUID,
		props:   props,
		service: svc,
		ready:   make(chan struct{}),
	}
}

func (c *Characteristic) UUID() string {
	return c.uuid
}

func (c *Characteristic) Properties() ble.Property {
	return c.props
}

func (c *Characteristic) SecureRead() bool {
	return c.secureRead
}

func (c *Characteristic) Service() *Service {
	return c.service
}

// SetNextReadResponse scripts the answer to the next read request: a GATT
// status, the value returned on success, and the PINs the simulated pairing
// prompt supplies if the read triggers pairing. The value is copied.
// Calling it again before a read replaces the previous script.
// A read already waiting for a response is released.
func (c *Characteristic) SetNextReadResponse(status Status, value []byte, pairingPINs ...PIN) {
	resp := &readResponse{
		status:      status,
		value:       append([]byte{}, value...),
		pairingPINs: append([]PIN(nil), pairingPINs...),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	replaced := c.next != nil
	c.next = resp
	if !replaced {
		close(c.ready)
	}

	c.logger().WithFields(logrus.Fields{
		"status":   status.String(),
		"length":   len(value),
		"pins":     len(pairingPINs),
		"replaced": replaced,
	}).Debug("Next read response configured")
}

// PendingReadResponse reports whether a scripted response is waiting to be consumed.
func (c *Characteristic) PendingReadResponse() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next != nil
}

// ReadCount returns how many read requests reached the characteristic.
func (c *Characteristic) ReadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// HandleRead serves a read request from a connected client. It blocks until
// a response is scripted or ctx is done. A secure read on an unpaired
// peripheral pairs first using the scripted PINs; on rejection the scripted
// value is never returned.
func (c *Characteristic) HandleRead(ctx context.Context) ([]byte, error) {
	p := c.service.peripheral
	if !p.Connected() {
		return nil, fmt.Errorf("read characteristic %s: %w", c.uuid, ErrNotConnected)
	}
	if c.props&ble.CharRead == 0 {
		return nil, &GATTError{Status: StatusReadNotPermitted, UUID: c.uuid}
	}

	c.mu.Lock()
	c.reads++
	c.mu.Unlock()

	resp, err := c.takeResponse(ctx)
	if err != nil {
		return nil, err
	}

	if c.secureRead && !p.Paired() {
		if err := p.pair(resp.pairingPINs); err != nil {
			return nil, fmt.Errorf("%w: %w", err, &GATTError{Status: StatusInsufficientAuthentication, UUID: c.uuid})
		}
	}

	if resp.status != StatusSuccess {
		return nil, &GATTError{Status: resp.status, UUID: c.uuid}
	}
	return append([]byte{}, resp.value...), nil
}

// takeResponse waits for and consumes the scripted response.
func (c *Characteristic) takeResponse(ctx context.Context) (*readResponse, error) {
	for {
		c.mu.Lock()
		if c.next != nil {
			resp := c.next
			c.next = nil
			c.ready = make(chan struct{})
			c.mu.Unlock()
			return resp, nil
		}
		ready := c.ready
		c.mu.Unlock()

		select {
		case <-ready:
		case <-ctx.Done():
			return nil, fmt.Errorf("read characteristic %s: no response configured: %w", c.uuid, ctx.Err())
		}
	}
}

func (c *Characteristic) logger() *logrus.Entry {
	return c.service.peripheral.logger.WithFields(logrus.Fields{
		"address":        c.service.peripheral.address,
		"characteristic": c.uuid,
	})
}
