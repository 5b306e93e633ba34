package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"relayio/protocol"
)

// Bus kinds
const (
	BusI2CDev = "i2cdev"
	BusSim    = "sim"
)

// Config is the relayctl configuration file
type Config struct {
	Bus      BusConfig     `yaml:"bus"`
	SettleMs int           `yaml:"settle_ms"`
	ReadSize int           `yaml:"read_size"`
	Monitor  MonitorConfig `yaml:"monitor"`
	Watch    WatchConfig   `yaml:"watch"`
}

// BusConfig selects how the board is reached
type BusConfig struct {
	Kind    string `yaml:"kind"`    // i2cdev | sim
	Address uint16 `yaml:"address"` // 7-bit peripheral address
}

// MonitorConfig is the board's debug UART
type MonitorConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

// WatchConfig controls the live view
type WatchConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// Load reads a YAML file and fills in defaults. An empty path returns the
// defaults alone.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// Default returns the configuration used without a file
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults fills in missing values
func applyDefaults(cfg *Config) {
	if cfg.Bus.Kind == "" {
		cfg.Bus.Kind = BusI2CDev
	}
	if cfg.Bus.Address == 0 {
		cfg.Bus.Address = protocol.DefaultAddress
	}

	if cfg.SettleMs == 0 {
		cfg.SettleMs = int(protocol.SettleDelay / time.Millisecond)
	}
	if cfg.ReadSize == 0 {
		cfg.ReadSize = protocol.BufferSize
	}

	if cfg.Monitor.Device == "" {
		cfg.Monitor.Device = "/dev/ttyUSB0"
	}
	if cfg.Monitor.Baud == 0 {
		cfg.Monitor.Baud = 115200
	}

	if cfg.Watch.IntervalMs == 0 {
		cfg.Watch.IntervalMs = 500
	}
}

// SettleDelay returns settle_ms as a duration
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleMs) * time.Millisecond
}

// WatchInterval returns watch.interval_ms as a duration
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.Watch.IntervalMs) * time.Millisecond
}
