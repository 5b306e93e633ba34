// hal.go
//
// reef-pi HAL glue for the relayio board.
//
// Output pins 0..10 map to protocol.Channels. Writing a pin sends the
// channel's on/off command; the status line that comes back becomes the
// driver's view of every output. Input pins 0..14 are rectifier lines
// 1..15, read with a status poll.
//
// All bus traffic is serialized by d.mu: a command and its status read must
// not interleave with another pin's transaction.
package reefpi

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/reef-pi/hal"
	"github.com/rs/zerolog/log"

	"relayio/controller"
	"relayio/protocol"
)

type outputPin struct {
	driver *driver
	pin    int
}

func (p *outputPin) Name() string        { return protocol.Channels[p.pin].Name }
func (p *outputPin) Number() int         { return p.pin }
func (p *outputPin) Close() error        { return nil }
func (p *outputPin) Read() (bool, error) { return p.driver.readOutput(p.pin) }
func (p *outputPin) Write(b bool) error  { return p.driver.writeOutput(p.pin, b) }
func (p *outputPin) LastState() bool     { return p.driver.lastOutput(p.pin) }

type inputPin struct {
	driver *driver
	pin    int
}

func (p *inputPin) Name() string        { return fmt.Sprintf("Rectifier %d", p.pin+1) }
func (p *inputPin) Number() int         { return p.pin }
func (p *inputPin) Close() error        { return nil }
func (p *inputPin) Read() (bool, error) { return p.driver.readInput(p.pin) }

// driver is the reef-pi driver for one board at one address
type driver struct {
	mu     sync.Mutex
	client *controller.Client
	closer io.Closer
	meta   hal.Metadata
	debug  bool

	// last decoded status line
	last protocol.Status

	outputs []*outputPin
	inputs  []*inputPin
}

func newDriver(client *controller.Client, closer io.Closer, meta hal.Metadata, debug bool) *driver {
	d := &driver{client: client, closer: closer, meta: meta, debug: debug}
	for i := range protocol.Channels {
		d.outputs = append(d.outputs, &outputPin{driver: d, pin: i})
	}
	for i := 0; i < protocol.RectifierCount; i++ {
		d.inputs = append(d.inputs, &inputPin{driver: d, pin: i})
	}
	return d
}

func (d *driver) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

func (d *driver) Metadata() hal.Metadata { return d.meta }

func (d *driver) DigitalInputPins() []hal.DigitalInputPin {
	out := make([]hal.DigitalInputPin, len(d.inputs))
	for i, p := range d.inputs {
		out[i] = p
	}
	return out
}

func (d *driver) DigitalOutputPins() []hal.DigitalOutputPin {
	out := make([]hal.DigitalOutputPin, len(d.outputs))
	for i, p := range d.outputs {
		out[i] = p
	}
	return out
}

func (d *driver) DigitalInputPin(n int) (hal.DigitalInputPin, error) {
	if n < 0 || n >= len(d.inputs) {
		return nil, fmt.Errorf("relayio addr=0x%02X: invalid input pin %d", d.client.Address(), n)
	}
	return d.inputs[n], nil
}

func (d *driver) DigitalOutputPin(n int) (hal.DigitalOutputPin, error) {
	if n < 0 || n >= len(d.outputs) {
		return nil, fmt.Errorf("relayio addr=0x%02X: invalid output pin %d", d.client.Address(), n)
	}
	return d.outputs[n], nil
}

func (d *driver) Pins(cap hal.Capability) ([]hal.Pin, error) {
	var pins []hal.Pin
	switch cap {
	case hal.DigitalInput:
		for _, p := range d.inputs {
			pins = append(pins, p)
		}
	case hal.DigitalOutput:
		for _, p := range d.outputs {
			pins = append(pins, p)
		}
	default:
		return nil, fmt.Errorf("relayio addr=0x%02X: unsupported capability: %s", d.client.Address(), cap.String())
	}
	sort.Slice(pins, func(i, j int) bool { return pins[i].Number() < pins[j].Number() })
	return pins, nil
}

// apply decodes a response into d.last. Caller holds d.mu.
func (d *driver) apply(resp controller.Response) error {
	s, err := resp.Status()
	if err != nil {
		return fmt.Errorf("relayio addr=0x%02X: bad status line %q: %w", d.client.Address(), resp.Raw, err)
	}
	d.last = s
	return nil
}

func (d *driver) refresh() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	resp, err := d.client.ReadStatus()
	if err != nil {
		return err
	}
	return d.apply(resp)
}

func (d *driver) writeOutput(pin int, on bool) error {
	if pin < 0 || pin >= len(d.outputs) {
		return fmt.Errorf("relayio addr=0x%02X: write invalid pin=%d", d.client.Address(), pin)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := protocol.Channels[pin].Command(on)
	if d.debug {
		log.Debug().Str("cmd", cmd).Int("pin", pin).Msg("relayio write")
	}

	resp, err := d.client.SendCommand(cmd)
	if err != nil {
		return fmt.Errorf("relayio write pin=%d: %w", pin, err)
	}
	if err := d.apply(resp); err != nil {
		return err
	}

	if protocol.Channels[pin].State(&d.last) != on {
		return fmt.Errorf("relayio addr=0x%02X write pin=%d: board did not confirm %s", d.client.Address(), pin, cmd)
	}
	return nil
}

func (d *driver) readOutput(pin int) (bool, error) {
	if err := d.refresh(); err != nil {
		return false, fmt.Errorf("relayio read pin=%d: %w", pin, err)
	}
	return d.lastOutput(pin), nil
}

func (d *driver) lastOutput(pin int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return protocol.Channels[pin].State(&d.last)
}

func (d *driver) readInput(pin int) (bool, error) {
	if pin < 0 || pin >= protocol.RectifierCount {
		return false, fmt.Errorf("relayio addr=0x%02X: read invalid pin=%d", d.client.Address(), pin)
	}
	if err := d.refresh(); err != nil {
		return false, fmt.Errorf("relayio read input=%d: %w", pin, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	level := d.last.Rectifiers[pin]
	if d.debug {
		log.Debug().Int("line", pin+1).Bool("level", level).Msg("relayio read")
	}
	return level, nil
}
