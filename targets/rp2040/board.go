//go:build rp2040 || rp2350

package main

import "relayio/core"

// Pin map for the relay board.
// GPIO0/1 carry the debug UART, GPIO20/21 the I2C0 target (SDA/SCL).
var board = core.Board{
	// Relays C..H
	Relays: [6]core.GPIOPin{2, 3, 4, 5, 6, 7},

	// Indicator lamps RGB 1..3
	Indicators: [3]core.GPIOPin{8, 9, 10},

	// Contactor drivers AC 1..2
	Contactors: [2]core.GPIOPin{11, 12},

	// Rectifier lines 1..15
	Rectifiers: [15]core.GPIOPin{
		13, 14, 15, 16, 17, 18, 19,
		22, 23, 24, 25, 26, 27, 28, 29,
	},
}

const (
	i2cSDA = 20
	i2cSCL = 21
)
