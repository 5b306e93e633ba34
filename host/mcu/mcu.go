package mcu

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"

	"relayio/controller"
	"relayio/host/config"
	"relayio/host/i2cdev"
	"relayio/host/sim"
	"relayio/protocol"
)

// ErrNotConnected is returned after Close
var ErrNotConnected = errors.New("not connected to board")

// MCU is a connection to one relay board. Methods may be called from
// several goroutines; bus cycles are serialized.
type MCU struct {
	mu     sync.Mutex
	client *controller.Client
	closer io.Closer
	sim    *sim.Simulator

	connected bool
}

// Connect opens the bus named by cfg and returns a board handle
func Connect(cfg *config.Config) (*MCU, error) {
	m := &MCU{}

	opts := []controller.Option{
		controller.WithAddress(cfg.Bus.Address),
		controller.WithSettleDelay(cfg.SettleDelay()),
		controller.WithReadSize(cfg.ReadSize),
	}

	switch cfg.Bus.Kind {
	case config.BusI2CDev:
		bus, err := i2cdev.Open()
		if err != nil {
			return nil, err
		}
		m.client = controller.New(bus, opts...)
		m.closer = bus

	case config.BusSim:
		s, err := sim.New(cfg.Bus.Address)
		if err != nil {
			return nil, fmt.Errorf("failed to boot simulated board: %w", err)
		}
		s.Start()
		m.client = controller.New(s.Bus, opts...)
		m.closer = s
		m.sim = s

	default:
		return nil, fmt.Errorf("unknown bus kind %q", cfg.Bus.Kind)
	}

	m.connected = true
	log.Debug().
		Str("bus", cfg.Bus.Kind).
		Str("addr", fmt.Sprintf("0x%02X", cfg.Bus.Address)).
		Msg("connected to board")

	return m, nil
}

// Close releases the bus
func (m *MCU) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}
	m.connected = false
	return m.closer.Close()
}

// Simulator returns the simulated board, or nil on real hardware
func (m *MCU) Simulator() *sim.Simulator {
	return m.sim
}

// Send normalizes text the way the serial console does and sends it
func (m *MCU) Send(text string) (controller.Response, error) {
	cmd := controller.Normalize(text)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return controller.Response{}, ErrNotConnected
	}

	resp, err := m.client.SendCommand(cmd)
	if err != nil {
		return resp, fmt.Errorf("failed to send %q: %w", cmd, err)
	}

	log.Debug().Str("cmd", cmd).Str("status", resp.Raw).Msg("command sent")
	return resp, nil
}

// Poll reads the status line without sending a command
func (m *MCU) Poll() (controller.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return controller.Response{}, ErrNotConnected
	}

	resp, err := m.client.ReadStatus()
	if err != nil {
		return resp, fmt.Errorf("failed to read status: %w", err)
	}
	return resp, nil
}

// Status polls and decodes the full status line
func (m *MCU) Status() (protocol.Status, error) {
	resp, err := m.Poll()
	if err != nil {
		return protocol.Status{}, err
	}

	s, err := resp.Status()
	if err != nil {
		return s, fmt.Errorf("failed to decode status %q: %w", resp.Raw, err)
	}
	return s, nil
}

// SetChannel switches one output and returns the confirmed status
func (m *MCU) SetChannel(ch protocol.Channel, on bool) (protocol.Status, error) {
	resp, err := m.Send(ch.Command(on))
	if err != nil {
		return protocol.Status{}, err
	}

	s, err := resp.Status()
	if err != nil {
		return s, fmt.Errorf("failed to decode status %q: %w", resp.Raw, err)
	}
	return s, nil
}

// Toggle flips a channel based on the last known status
func (m *MCU) Toggle(ch protocol.Channel, last *protocol.Status) (protocol.Status, error) {
	return m.SetChannel(ch, !ch.State(last))
}
