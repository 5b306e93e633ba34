// Package protocol implements the relay board wire protocol: the status line
// codec shared by peripheral and controller, and the peripheral side of the
// I2C transfer.
package protocol

import "time"

// Version represents the relayio firmware version
const Version = "0.1.0"

// Bus constants
const (
	DefaultAddress = 0x27 // 7-bit peripheral address
	BufferSize     = 64   // Receive buffer and status line capacity, including the NUL

	// SettleDelay is how long the controller waits between writing a command
	// and reading the regenerated status line.
	SettleDelay = 20 * time.Millisecond
)

// Channel counts
const (
	RelayCount     = 6  // Relays C..H on bits 2..7
	IndicatorCount = 3  // RGB lamps 1..3 on bits 0..2
	ContactorCount = 2  // AC contactors 1..2 on bits 0..1
	RectifierCount = 15 // Digital input lines, index 0 is physical line 1

	RelayFirstBit = 2
)

// Valid bit masks per output group. Reserved bits are always zero.
const (
	RelayMask     = 0xFC
	IndicatorMask = 0x07
	ContactorMask = 0x03
)

// RelayNames lists the relay channel letters in bit order.
const RelayNames = "CDEFGH"
