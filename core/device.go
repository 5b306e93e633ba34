package core

import "relayio/protocol"

// Device ties the output state, input sampler, command interpreter and
// cached status line together. It is single-threaded: every method must be
// called from the same execution context.
type Device struct {
	board   *Board
	gpio    GPIODriver
	outputs *Outputs
	inputs  *InputSampler
	interp  *Interpreter
	status  protocol.LineBuffer
}

// NewDevice creates a device for board, with the default command vocabulary
func NewDevice(gpio GPIODriver, board *Board) *Device {
	outputs := NewOutputs(gpio, board)
	return &Device{
		board:   board,
		gpio:    gpio,
		outputs: outputs,
		inputs:  NewInputSampler(gpio, board),
		interp:  NewInterpreter(DefaultCommands(), outputs),
	}
}

// Boot configures the pins, drives every output low and renders the
// initial status line
func (d *Device) Boot() error {
	if d.gpio != nil {
		if err := d.board.Configure(d.gpio); err != nil {
			return err
		}
	}

	d.outputs.SetAll(0, 0, 0)
	d.Refresh()

	DebugPrintln("relayio " + protocol.Version + " ready at " + hex8(protocol.DefaultAddress) +
		" (relays C-H, RGB 1-3, AC 1-2, " + itoa(protocol.RectifierCount) + " rect)")
	return nil
}

// HandleCommand interprets one received command and regenerates the status
// line, whether or not the command was recognised
func (d *Device) HandleCommand(cmd []byte) bool {
	applied := d.interp.Interpret(cmd, protocol.BufferSize)
	d.Refresh()
	return applied
}

// Refresh re-samples the inputs and re-encodes the status line
func (d *Device) Refresh() {
	s := d.Snapshot()
	protocol.EncodeStatus(&d.status, &s)
}

// Snapshot returns the current outputs with a fresh input sample
func (d *Device) Snapshot() protocol.Status {
	relays, indicators, contactors := d.outputs.Render()
	return protocol.Status{
		Relays:     relays,
		Indicators: indicators,
		Contactors: contactors,
		Rectifiers: d.inputs.Sample(),
	}
}

// StatusLine returns the cached status line
func (d *Device) StatusLine() *protocol.LineBuffer {
	return &d.status
}

// Outputs returns the output state
func (d *Device) Outputs() *Outputs {
	return d.outputs
}

// Stats returns how many commands were applied and rejected
func (d *Device) Stats() (applied, rejected uint32) {
	return d.interp.Stats()
}

// Serve answers transfers on bus until it is closed
func (d *Device) Serve(bus protocol.PeripheralBus) error {
	p := protocol.NewPeripheral(bus, &d.status, func(cmd []byte) {
		d.HandleCommand(cmd)
	})
	p.SetErrorHandler(func(err error) {
		DebugPrintln("I2C error: " + err.Error())
	})
	return p.Serve()
}
