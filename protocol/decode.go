package protocol

import (
	"errors"
	"strings"
)

var (
	// ErrFieldNotFound is returned when the status line has no rectifier field
	ErrFieldNotFound = errors.New("rectifier field not found")

	// ErrMalformedStatus is returned when a status line does not follow the grammar
	ErrMalformedStatus = errors.New("malformed status line")
)

// RectifierField extracts the raw rectifier bits from a status line: the
// characters after "R:" up to the next '|' or end of line, trimmed.
// ok is false when the line has no "R:" marker.
func RectifierField(line string) (field string, ok bool) {
	pos := strings.Index(line, markerRectifiers)
	if pos < 0 {
		return "", false
	}
	field = line[pos+len(markerRectifiers):]
	if end := strings.IndexByte(field, fieldSeparator); end >= 0 {
		field = field[:end]
	}
	return strings.TrimSpace(field), true
}

// FormatRectifiers groups a rectifier field in fours for display:
// "101100001111010" becomes "1011 0000 1111 010".
func FormatRectifiers(field string) string {
	var sb strings.Builder
	sb.Grow(len(field) + len(field)/4)
	for i := 0; i < len(field); i++ {
		sb.WriteByte(field[i])
		if (i+1)%4 == 0 && i != len(field)-1 {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// ParseRectifiers converts a rectifier field into a snapshot. The field must
// hold exactly RectifierCount '0'/'1' characters.
func ParseRectifiers(field string) (Rectifiers, error) {
	var r Rectifiers
	if len(field) != RectifierCount {
		return r, ErrMalformedStatus
	}
	for i := 0; i < RectifierCount; i++ {
		on, ok := parseBit(field[i])
		if !ok {
			return r, ErrMalformedStatus
		}
		r[i] = on
	}
	return r, nil
}

// ParseStatus decodes a complete status line. The per-relay tokens must agree
// with the hex relay byte.
func ParseStatus(line string) (Status, error) {
	var s Status
	c := cursor{s: line}

	if !c.expect(markerStatus) {
		return s, ErrMalformedStatus
	}
	hi, ok1 := parseHex(c.next())
	lo, ok2 := parseHex(c.next())
	if !ok1 || !ok2 || c.next() != fieldSeparator {
		return s, ErrMalformedStatus
	}
	s.Relays = hi<<4 | lo

	var tokens uint8
	for i := 0; i < RelayCount; i++ {
		if c.next() != RelayNames[i] {
			return s, ErrMalformedStatus
		}
		on, ok := parseBit(c.next())
		if !ok || c.next() != ' ' {
			return s, ErrMalformedStatus
		}
		if on {
			tokens |= 1 << (RelayFirstBit + i)
		}
	}
	if tokens != s.Relays {
		return s, ErrMalformedStatus
	}

	var ok bool
	if s.Indicators, ok = c.bits(markerIndicators, IndicatorCount); !ok {
		return s, ErrMalformedStatus
	}
	if s.Contactors, ok = c.bits(markerContactors, ContactorCount); !ok {
		return s, ErrMalformedStatus
	}

	field, found := RectifierField(c.rest())
	if !found {
		return s, ErrFieldNotFound
	}
	r, err := ParseRectifiers(field)
	if err != nil {
		return s, err
	}
	s.Rectifiers = r
	return s, nil
}

// cursor walks a status line byte by byte. Reading past the end yields 0.
type cursor struct {
	s   string
	pos int
}

func (c *cursor) next() byte {
	if c.pos >= len(c.s) {
		return 0
	}
	b := c.s[c.pos]
	c.pos++
	return b
}

func (c *cursor) expect(lit string) bool {
	if !strings.HasPrefix(c.s[c.pos:], lit) {
		return false
	}
	c.pos += len(lit)
	return true
}

// bits reads a marker followed by n '0'/'1' characters, least significant bit first
func (c *cursor) bits(marker string, n int) (uint8, bool) {
	if !c.expect(marker) {
		return 0, false
	}
	var v uint8
	for i := 0; i < n; i++ {
		on, ok := parseBit(c.next())
		if !ok {
			return 0, false
		}
		if on {
			v |= 1 << i
		}
	}
	return v, true
}

func (c *cursor) rest() string {
	return c.s[c.pos:]
}

func parseBit(b byte) (on bool, ok bool) {
	switch b {
	case '0':
		return false, true
	case '1':
		return true, true
	}
	return false, false
}

func parseHex(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
