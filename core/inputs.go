package core

import "relayio/protocol"

// InputSampler reads the rectifier lines on demand. It keeps no state:
// every Sample is a fresh read, with no debounce.
type InputSampler struct {
	gpio GPIODriver
	pins *[protocol.RectifierCount]GPIOPin
}

// NewInputSampler creates a sampler over the board's rectifier pins
func NewInputSampler(gpio GPIODriver, board *Board) *InputSampler {
	return &InputSampler{gpio: gpio, pins: &board.Rectifiers}
}

// Sample reads every line in physical order. A line that cannot be read
// reports low.
func (s *InputSampler) Sample() protocol.Rectifiers {
	var r protocol.Rectifiers
	if s.gpio == nil {
		return r
	}
	for i, pin := range s.pins {
		level, err := s.gpio.GetPin(pin)
		if err != nil {
			continue
		}
		r[i] = level
	}
	return r
}
