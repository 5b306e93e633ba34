// Package i2cdev adapts a Linux I2C bus, as opened by reef-pi, to the
// drivers.I2C interface used by controller.Client.
package i2cdev

import (
	"fmt"
	"sync"

	"github.com/reef-pi/rpi/i2c"
	"tinygo.org/x/drivers"
)

var _ drivers.I2C = (*Adapter)(nil)

// Adapter serializes transactions on one bus
type Adapter struct {
	mu  sync.Mutex
	bus i2c.Bus
}

// New wraps an already open bus
func New(bus i2c.Bus) *Adapter {
	return &Adapter{bus: bus}
}

// Open opens the board's default I2C bus
func Open() (*Adapter, error) {
	bus, err := i2c.New()
	if err != nil {
		return nil, fmt.Errorf("failed to open i2c bus: %w", err)
	}
	return New(bus), nil
}

// Tx writes w, then reads len(r) bytes. Either may be empty.
func (a *Adapter) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7F {
		return fmt.Errorf("i2c address 0x%x is not 7-bit", addr)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if len(w) > 0 {
		if err := a.bus.WriteBytes(byte(addr), w); err != nil {
			return err
		}
	}

	if len(r) > 0 {
		data, err := a.bus.ReadBytes(byte(addr), len(r))
		if err != nil {
			return err
		}
		if len(data) < len(r) {
			return fmt.Errorf("short read from 0x%02x: got %d of %d bytes", addr, len(data), len(r))
		}
		copy(r, data)
	}

	return nil
}

// Close releases the bus
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bus.Close()
}
