//go:build rp2040 || rp2350

package main

import (
	"machine"
	"relayio/core"
	"relayio/protocol"
	"time"
)

var (
	// Debug counters
	servePanics uint32
	serveErrors uint32
)

func main() {
	// CRITICAL: Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitDebugUART()

	gpio := NewRPGPIODriver()
	dev := core.NewDevice(gpio, &board)
	if err := dev.Boot(); err != nil {
		DebugPrintln("Boot failed: " + err.Error())
		// Nothing to drive; keep the debug port alive for inspection
		for {
			time.Sleep(time.Second)
		}
	}

	bus, err := NewTargetBus(machine.I2C0, protocol.DefaultAddress)
	if err != nil {
		DebugPrintln("I2C target setup failed: " + err.Error())
		for {
			time.Sleep(time.Second)
		}
	}

	// Main loop - Serve only returns on a fatal bus error
	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					servePanics++
					DebugPrintln("Recovered from panic in serve loop")
					bus.Reset()
				}
			}()

			if err := dev.Serve(bus); err != nil {
				serveErrors++
				DebugPrintln("Serve stopped: " + err.Error())
				bus.Reset()
				time.Sleep(10 * time.Millisecond)
			}
		}()
	}
}
