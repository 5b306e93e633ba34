// Package sim runs the relay board firmware in a goroutine, attached to an
// in-memory I2C bus. The controller side of the bus satisfies drivers.I2C,
// so controller.Client talks to a simulated board exactly as it would to a
// real one.
package sim

import (
	"errors"
	"sync"

	"relayio/protocol"
)

// ErrNoAck is returned when no simulated device answers the address
var ErrNoAck = errors.New("sim: address not acknowledged")

// transfer is one controller transaction. write is nil for a read.
type transfer struct {
	write []byte
	read  []byte
	done  chan error
}

// Bus connects one controller to one simulated peripheral. The controller
// side (Tx) may be called from any goroutine; the peripheral side methods
// belong to the device goroutine.
type Bus struct {
	addr   uint16
	reqs   chan *transfer
	closed chan struct{}
	once   sync.Once

	// Peripheral side, owned by the device goroutine
	cur *transfer
	pos int
}

// NewBus creates a bus with a peripheral answering at addr
func NewBus(addr uint16) *Bus {
	return &Bus{
		addr:   addr,
		reqs:   make(chan *transfer),
		closed: make(chan struct{}),
	}
}

// Close disconnects the peripheral. Pending and later transactions fail
// with protocol.ErrBusClosed.
func (b *Bus) Close() error {
	b.once.Do(func() { close(b.closed) })
	return nil
}

// Tx performs a write, a read, or a write followed by a read
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if addr != b.addr {
		return ErrNoAck
	}
	if len(w) > 0 {
		if err := b.submit(&transfer{write: w}); err != nil {
			return err
		}
	}
	if len(r) > 0 {
		if err := b.submit(&transfer{read: r}); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bus) submit(t *transfer) error {
	t.done = make(chan error, 1)
	select {
	case b.reqs <- t:
	case <-b.closed:
		return protocol.ErrBusClosed
	}
	select {
	case err := <-t.done:
		return err
	case <-b.closed:
		return protocol.ErrBusClosed
	}
}

// WaitAddress blocks until the controller starts a transaction
func (b *Bus) WaitAddress() (protocol.Direction, error) {
	select {
	case t := <-b.reqs:
		b.cur, b.pos = t, 0
		if t.write != nil {
			return protocol.DirectionWrite, nil
		}
		return protocol.DirectionRead, nil
	case <-b.closed:
		return 0, protocol.ErrBusClosed
	}
}

// ReceiveByte hands out the written bytes, then reports the stop condition
func (b *Bus) ReceiveByte() (byte, bool, error) {
	if b.cur == nil || b.cur.write == nil {
		return 0, false, nil
	}
	if b.pos < len(b.cur.write) {
		c := b.cur.write[b.pos]
		b.pos++
		return c, true, nil
	}
	return 0, false, nil
}

// ClearStop completes the write transaction
func (b *Bus) ClearStop() error {
	b.finish(nil)
	return nil
}

// TransmitByte fills the controller's read buffer. The controller may ask
// for fewer bytes than a full block; the surplus is dropped, and the
// transaction completes with the last byte of the block.
func (b *Bus) TransmitByte(c byte) error {
	if b.cur == nil {
		return nil
	}
	if b.pos < len(b.cur.read) {
		b.cur.read[b.pos] = c
	}
	b.pos++
	if b.pos == protocol.BufferSize {
		b.finish(nil)
	}
	return nil
}

func (b *Bus) finish(err error) {
	if b.cur == nil {
		return
	}
	b.cur.done <- err
	b.cur = nil
}
