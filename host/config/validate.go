package config

import (
	"fmt"

	"relayio/protocol"
)

// Validate checks configuration correctness. It does not mutate cfg.
func Validate(cfg *Config) error {
	switch cfg.Bus.Kind {
	case BusI2CDev, BusSim:
	default:
		return fmt.Errorf("bus.kind %q: must be %q or %q", cfg.Bus.Kind, BusI2CDev, BusSim)
	}

	// 0x00-0x07 and 0x78-0x7F are reserved by the I2C specification
	if cfg.Bus.Address < 0x08 || cfg.Bus.Address > 0x77 {
		return fmt.Errorf("bus.address 0x%02x: outside 0x08..0x77", cfg.Bus.Address)
	}

	if cfg.SettleMs < 0 {
		return fmt.Errorf("settle_ms %d: must not be negative", cfg.SettleMs)
	}

	if cfg.ReadSize < 1 || cfg.ReadSize > protocol.BufferSize {
		return fmt.Errorf("read_size %d: outside 1..%d", cfg.ReadSize, protocol.BufferSize)
	}

	if cfg.Monitor.Baud <= 0 {
		return fmt.Errorf("monitor.baud %d: must be positive", cfg.Monitor.Baud)
	}

	if cfg.Watch.IntervalMs <= 0 {
		return fmt.Errorf("watch.interval_ms %d: must be positive", cfg.Watch.IntervalMs)
	}

	return nil
}
