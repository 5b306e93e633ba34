package sim

import (
	"sync"

	"relayio/core"
)

// GPIO is an in-memory pin bank. Tests and the CLI drive the input lines
// while the device goroutine reads and writes them.
type GPIO struct {
	mu      sync.Mutex
	levels  map[core.GPIOPin]bool
	outputs map[core.GPIOPin]bool
}

// NewGPIO creates a bank with every pin low
func NewGPIO() *GPIO {
	return &GPIO{
		levels:  make(map[core.GPIOPin]bool),
		outputs: make(map[core.GPIOPin]bool),
	}
}

func (g *GPIO) ConfigureOutput(pin core.GPIOPin) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.outputs[pin] = true
	g.levels[pin] = false
	return nil
}

func (g *GPIO) ConfigureInput(pin core.GPIOPin) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.outputs, pin)
	return nil
}

func (g *GPIO) SetPin(pin core.GPIOPin, value bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.levels[pin] = value
	return nil
}

func (g *GPIO) GetPin(pin core.GPIOPin) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.levels[pin], nil
}

// Drive sets the level seen on an input pin
func (g *GPIO) Drive(pin core.GPIOPin, level bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.levels[pin] = level
}

// Level returns the current level of any pin
func (g *GPIO) Level(pin core.GPIOPin) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.levels[pin]
}

// IsOutput reports whether pin was configured as an output
func (g *GPIO) IsOutput(pin core.GPIOPin) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.outputs[pin]
}
