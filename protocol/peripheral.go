package protocol

import "errors"

// ErrBusClosed is returned by a PeripheralBus that will never produce
// another event. It ends Serve.
var ErrBusClosed = errors.New("peripheral bus closed")

// Direction of an addressed transfer, seen from the controller
type Direction uint8

const (
	DirectionWrite Direction = iota // Controller writes, peripheral receives
	DirectionRead                   // Controller reads, peripheral transmits
)

// PeripheralBus is the device half of an I2C bus in target mode. Every call
// blocks until the hardware reaches the requested phase; there are no timeouts.
type PeripheralBus interface {
	// WaitAddress blocks until the controller addresses this device
	WaitAddress() (Direction, error)

	// ReceiveByte blocks until a data byte arrives (ok=true) or the
	// controller issues a stop condition (ok=false)
	ReceiveByte() (b byte, ok bool, err error)

	// ClearStop acknowledges the stop condition and re-arms ACK for the
	// next transfer
	ClearStop() error

	// TransmitByte blocks until the transmit register is free, then loads b
	TransmitByte(b byte) error
}

// State of the peripheral transfer state machine
type State uint8

const (
	StateIdle State = iota
	StateAddressMatchedRX
	StateReceiving
	StateStopReceived
	StateAddressMatchedTX
	StateTransmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAddressMatchedRX:
		return "address_matched_rx"
	case StateReceiving:
		return "receiving"
	case StateStopReceived:
		return "stop_received"
	case StateAddressMatchedTX:
		return "address_matched_tx"
	case StateTransmitting:
		return "transmitting"
	default:
		return "unknown"
	}
}

// CommandHandler processes one received command. It runs between the
// receive and transmit phases and is expected to refresh the status line.
type CommandHandler func(cmd []byte)

// Peripheral drives the device side of the transfer:
// address match -> receive -> dispatch -> transmit.
type Peripheral struct {
	bus     PeripheralBus
	status  *LineBuffer
	handler CommandHandler
	onError func(error)

	state State
	rx    LineBuffer

	// writePending is set when a write was addressed while waiting for the
	// read phase; the next cycle starts receiving straight away.
	writePending bool
}

// NewPeripheral creates a Peripheral serving status on bus. status is owned
// by the caller and only read here.
func NewPeripheral(bus PeripheralBus, status *LineBuffer, handler CommandHandler) *Peripheral {
	return &Peripheral{
		bus:     bus,
		status:  status,
		handler: handler,
		state:   StateIdle,
	}
}

// SetErrorHandler sets the callback for bus errors that end a cycle
func (p *Peripheral) SetErrorHandler(fn func(error)) {
	p.onError = fn
}

// State returns the current state
func (p *Peripheral) State() State {
	return p.state
}

// Received returns the bytes of the last receive phase
func (p *Peripheral) Received() []byte {
	return p.rx.Bytes()
}

// Serve runs transfer cycles until the bus is closed. Other bus errors end
// the current cycle only.
func (p *Peripheral) Serve() error {
	for {
		err := p.Transact()
		if err == nil {
			continue
		}
		if errors.Is(err, ErrBusClosed) {
			return err
		}
		if p.onError != nil {
			p.onError(err)
		}
	}
}

// Transact runs one transfer cycle and leaves the machine in StateIdle.
//
// A write is received, dispatched, and answered by the next read. A read
// addressed while idle is answered from the cached status line without a
// command. A write addressed while waiting for the read abandons the cycle
// and is received by the next one.
func (p *Peripheral) Transact() error {
	defer func() { p.state = StateIdle }()

	dir := DirectionWrite
	if p.writePending {
		p.writePending = false
	} else {
		p.state = StateIdle
		d, err := p.bus.WaitAddress()
		if err != nil {
			return err
		}
		dir = d
	}

	if dir == DirectionRead {
		return p.transmit()
	}

	if err := p.receive(); err != nil {
		return err
	}
	if p.rx.Len() > 0 && p.handler != nil {
		p.handler(p.rx.Bytes())
	}

	d, err := p.bus.WaitAddress()
	if err != nil {
		return err
	}
	if d == DirectionWrite {
		p.writePending = true
		return nil
	}
	return p.transmit()
}

// receive runs the receive phase. Bytes past capacity are drained and dropped.
func (p *Peripheral) receive() error {
	p.state = StateAddressMatchedRX
	p.rx.Reset()

	p.state = StateReceiving
	for {
		b, ok, err := p.bus.ReceiveByte()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		p.rx.AppendByte(b)
	}

	p.state = StateStopReceived
	p.rx.Terminate()
	return p.bus.ClearStop()
}

// transmit sends the whole status block, NUL padding included
func (p *Peripheral) transmit() error {
	p.state = StateAddressMatchedTX
	block := p.status.Block()

	p.state = StateTransmitting
	for _, b := range block {
		if err := p.bus.TransmitByte(b); err != nil {
			return err
		}
	}
	return nil
}
