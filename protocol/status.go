package protocol

// Rectifiers is one snapshot of the digital input lines, in physical order.
type Rectifiers [RectifierCount]bool

// Status is everything the status line carries
type Status struct {
	Relays     uint8
	Indicators uint8
	Contactors uint8
	Rectifiers Rectifiers
}

// Relay reports relay channel i (0 = C .. 5 = H)
func (s *Status) Relay(i int) bool {
	return s.Relays&(1<<(RelayFirstBit+i)) != 0
}

// Indicator reports indicator channel i (0-based)
func (s *Status) Indicator(i int) bool {
	return s.Indicators&(1<<i) != 0
}

// Contactor reports contactor channel i (0-based)
func (s *Status) Contactor(i int) bool {
	return s.Contactors&(1<<i) != 0
}

// Status line markers
const (
	markerStatus     = "S:"
	markerIndicators = "|RGB:"
	markerContactors = "|AC:"
	markerRectifiers = "R:"
	fieldSeparator   = '|'
)

// EncodeStatus renders s into dst using the fixed status grammar:
//
//	S:<HH>|C<b> D<b> E<b> F<b> G<b> H<b> |RGB:<bbb>|AC:<bb>|R:<15 bits>
//
// dst is reset first, so padding past the logical end is always NUL.
func EncodeStatus(dst *LineBuffer, s *Status) {
	dst.Reset()

	dst.AppendString(markerStatus)
	dst.AppendByte(hexDigit(s.Relays >> 4))
	dst.AppendByte(hexDigit(s.Relays))
	dst.AppendByte(fieldSeparator)

	for i := 0; i < RelayCount; i++ {
		dst.AppendByte(RelayNames[i])
		dst.AppendByte(bitChar(s.Relay(i)))
		dst.AppendByte(' ')
	}

	dst.AppendString(markerIndicators)
	for i := 0; i < IndicatorCount; i++ {
		dst.AppendByte(bitChar(s.Indicator(i)))
	}

	dst.AppendString(markerContactors)
	for i := 0; i < ContactorCount; i++ {
		dst.AppendByte(bitChar(s.Contactor(i)))
	}

	dst.AppendByte(fieldSeparator)
	dst.AppendString(markerRectifiers)
	for _, on := range s.Rectifiers {
		dst.AppendByte(bitChar(on))
	}
}

// hexDigit returns the uppercase hex digit for the low nibble of n
func hexDigit(n uint8) byte {
	const digits = "0123456789ABCDEF"
	return digits[n&0x0F]
}

func bitChar(on bool) byte {
	if on {
		return '1'
	}
	return '0'
}
