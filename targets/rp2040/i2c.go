//go:build rp2040 || rp2350

package main

import (
	"errors"
	"machine"
	"relayio/protocol"
)

// TargetBus adapts TinyGo's I2C target mode to protocol.PeripheralBus.
//
// The RP2040 driver reports whole transfers rather than single bytes: a
// controller write arrives as one I2CReceive event carrying every byte, and a
// controller read as an I2CRequest that must be answered with one Reply. The
// adapter buffers the received bytes and replays them one at a time, and
// collects transmitted bytes until a full status block is ready.
type TargetBus struct {
	i2c *machine.I2C

	rx    [4 * protocol.BufferSize]byte
	rxLen int
	rxPos int

	tx    [protocol.BufferSize]byte
	txLen int
}

// NewTargetBus configures i2c as a target listening on addr
func NewTargetBus(i2c *machine.I2C, addr uint16) (*TargetBus, error) {
	err := i2c.Configure(machine.I2CConfig{
		Mode: machine.I2CModeTarget,
		SDA:  machine.Pin(i2cSDA),
		SCL:  machine.Pin(i2cSCL),
	})
	if err != nil {
		return nil, errors.New("configure i2c target: " + err.Error())
	}

	if err := i2c.Listen(addr); err != nil {
		return nil, errors.New("listen on i2c: " + err.Error())
	}

	return &TargetBus{i2c: i2c}, nil
}

// WaitAddress blocks until the controller starts a write or a read
func (b *TargetBus) WaitAddress() (protocol.Direction, error) {
	for {
		evt, n, err := b.i2c.WaitForEvent(b.rx[:])
		if err != nil {
			return 0, err
		}

		switch evt {
		case machine.I2CReceive:
			b.rxLen = n
			b.rxPos = 0
			return protocol.DirectionWrite, nil
		case machine.I2CRequest:
			b.txLen = 0
			return protocol.DirectionRead, nil
		case machine.I2CFinish:
			// Stop after a transfer we already handled
		}
	}
}

// ReceiveByte replays the buffered write; the end of it is the stop
func (b *TargetBus) ReceiveByte() (byte, bool, error) {
	if b.rxPos >= b.rxLen {
		return 0, false, nil
	}
	c := b.rx[b.rxPos]
	b.rxPos++
	return c, true, nil
}

// ClearStop drops whatever is left of the received transfer
func (b *TargetBus) ClearStop() error {
	b.rxLen = 0
	b.rxPos = 0
	return nil
}

// TransmitByte queues b and replies once a full block is queued
func (b *TargetBus) TransmitByte(c byte) error {
	b.tx[b.txLen] = c
	b.txLen++
	if b.txLen < len(b.tx) {
		return nil
	}

	b.txLen = 0
	return b.i2c.Reply(b.tx[:])
}

// Reset discards any partially buffered transfer
func (b *TargetBus) Reset() {
	b.rxLen = 0
	b.rxPos = 0
	b.txLen = 0
}
