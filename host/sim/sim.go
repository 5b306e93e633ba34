package sim

import (
	"errors"

	"github.com/rs/zerolog/log"

	"relayio/core"
	"relayio/protocol"
)

// Board numbers the simulated pins: outputs 0..10, rectifier lines 16..30
func Board() *core.Board {
	b := &core.Board{}
	for i := range b.Relays {
		b.Relays[i] = core.GPIOPin(i)
	}
	for i := range b.Indicators {
		b.Indicators[i] = core.GPIOPin(protocol.RelayCount + i)
	}
	for i := range b.Contactors {
		b.Contactors[i] = core.GPIOPin(protocol.RelayCount + protocol.IndicatorCount + i)
	}
	for i := range b.Rectifiers {
		b.Rectifiers[i] = core.GPIOPin(16 + i)
	}
	return b
}

// Simulator is a booted board serving a Bus
type Simulator struct {
	Bus   *Bus
	GPIO  *GPIO
	board *core.Board
	dev   *core.Device
	done  chan error
}

// New boots a simulated board at addr. Call Start to begin serving.
func New(addr uint16) (*Simulator, error) {
	gpio := NewGPIO()
	board := Board()
	dev := core.NewDevice(gpio, board)
	if err := dev.Boot(); err != nil {
		return nil, err
	}

	return &Simulator{
		Bus:   NewBus(addr),
		GPIO:  gpio,
		board: board,
		dev:   dev,
	}, nil
}

// Start runs the device loop in its own goroutine
func (s *Simulator) Start() {
	s.done = make(chan error, 1)
	go func() {
		log.Debug().Uint16("addr", s.Bus.addr).Msg("simulated board serving")
		s.done <- s.dev.Serve(s.Bus)
	}()
}

// Close stops the device loop and waits for it to exit
func (s *Simulator) Close() error {
	s.Bus.Close()
	if s.done == nil {
		return nil
	}
	err := <-s.done
	s.done = nil
	if errors.Is(err, protocol.ErrBusClosed) {
		return nil
	}
	return err
}

// SetRectifier drives rectifier line (1..15)
func (s *Simulator) SetRectifier(line int, level bool) {
	if line < 1 || line > protocol.RectifierCount {
		return
	}
	s.GPIO.Drive(s.board.Rectifiers[line-1], level)
}

// Relay reports the pin level of relay channel 'C'..'H'
func (s *Simulator) Relay(name byte) bool {
	for i := 0; i < protocol.RelayCount; i++ {
		if protocol.RelayNames[i] == name {
			return s.GPIO.Level(s.board.Relays[i])
		}
	}
	return false
}

// Indicator reports the pin level of RGB lamp n (1..3)
func (s *Simulator) Indicator(n int) bool {
	if n < 1 || n > protocol.IndicatorCount {
		return false
	}
	return s.GPIO.Level(s.board.Indicators[n-1])
}

// Contactor reports the pin level of AC contactor n (1..2)
func (s *Simulator) Contactor(n int) bool {
	if n < 1 || n > protocol.ContactorCount {
		return false
	}
	return s.GPIO.Level(s.board.Contactors[n-1])
}
