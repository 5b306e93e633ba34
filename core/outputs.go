package core

// Output state for the relay, indicator and contactor banks.
// Every mutation drives the matching GPIO pin before returning.

import "relayio/protocol"

// Group selects one of the three output banks
type Group uint8

const (
	GroupRelays     Group = iota // Relays C..H on bits 2..7
	GroupIndicators              // RGB lamps 1..3 on bits 0..2
	GroupContactors              // AC contactors 1..2 on bits 0..1
)

func (g Group) String() string {
	switch g {
	case GroupRelays:
		return "relays"
	case GroupIndicators:
		return "indicators"
	case GroupContactors:
		return "contactors"
	default:
		return "unknown"
	}
}

// mask returns the meaningful bits of a group
func (g Group) mask() uint8 {
	switch g {
	case GroupRelays:
		return protocol.RelayMask
	case GroupIndicators:
		return protocol.IndicatorMask
	case GroupContactors:
		return protocol.ContactorMask
	default:
		return 0
	}
}

// Outputs holds the three output bitfields. Reserved bits stay zero.
type Outputs struct {
	relays     uint8
	indicators uint8
	contactors uint8

	gpio  GPIODriver
	board *Board
}

// NewOutputs creates an all-off output state driving board pins through gpio.
// A nil gpio keeps the state in memory only.
func NewOutputs(gpio GPIODriver, board *Board) *Outputs {
	return &Outputs{gpio: gpio, board: board}
}

// SetBit sets or clears one bit of a group and drives its pin.
// Bits outside the group's mask are ignored.
func (o *Outputs) SetBit(g Group, bit uint8, on bool) {
	if bit > 7 || g.mask()&(1<<bit) == 0 {
		return
	}

	field := o.field(g)
	if on {
		*field |= 1 << bit
	} else {
		*field &^= 1 << bit
	}

	o.drive(g, bit)
}

// SetAll assigns all three groups at once and drives every pin
func (o *Outputs) SetAll(relays, indicators, contactors uint8) {
	o.relays = relays & protocol.RelayMask
	o.indicators = indicators & protocol.IndicatorMask
	o.contactors = contactors & protocol.ContactorMask
	o.Apply()
}

// Render returns the three bitfields
func (o *Outputs) Render() (relays, indicators, contactors uint8) {
	return o.relays, o.indicators, o.contactors
}

// Bit reports one bit of a group
func (o *Outputs) Bit(g Group, bit uint8) bool {
	if bit > 7 {
		return false
	}
	return *o.field(g)&(1<<bit) != 0
}

// Apply drives every output pin from the current state
func (o *Outputs) Apply() {
	for _, g := range []Group{GroupRelays, GroupIndicators, GroupContactors} {
		mask := g.mask()
		for bit := uint8(0); bit < 8; bit++ {
			if mask&(1<<bit) != 0 {
				o.drive(g, bit)
			}
		}
	}
}

func (o *Outputs) field(g Group) *uint8 {
	switch g {
	case GroupIndicators:
		return &o.indicators
	case GroupContactors:
		return &o.contactors
	default:
		return &o.relays
	}
}

// drive writes one bit to its pin
func (o *Outputs) drive(g Group, bit uint8) {
	if o.gpio == nil || o.board == nil {
		return
	}

	var pin GPIOPin
	switch g {
	case GroupRelays:
		pin = o.board.Relays[bit-protocol.RelayFirstBit]
	case GroupIndicators:
		pin = o.board.Indicators[bit]
	case GroupContactors:
		pin = o.board.Contactors[bit]
	default:
		return
	}

	if err := o.gpio.SetPin(pin, o.Bit(g, bit)); err != nil {
		DebugPrintln("gpio: set pin " + utoa(uint32(pin)) + " failed: " + err.Error())
	}
}
