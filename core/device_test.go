package core

import (
	"errors"
	"strings"
	"testing"

	"relayio/protocol"
)

const allOffLine = "S:00|C0 D0 E0 F0 G0 H0 |RGB:000|AC:00|R:000000000000000"

func bootDevice(t *testing.T) (*Device, *MockGPIODriver) {
	t.Helper()
	gpio := NewMockGPIODriver()
	d := NewDevice(gpio, testBoard())
	if err := d.Boot(); err != nil {
		t.Fatalf("Boot failed: %v", err)
	}
	return d, gpio
}

func TestDeviceBoot(t *testing.T) {
	d, gpio := bootDevice(t)

	if d.StatusLine().String() != allOffLine {
		t.Errorf("Expected '%s', got '%s'", allOffLine, d.StatusLine().String())
	}

	if len(gpio.outputs) != 11 || len(gpio.inputs) != 15 {
		t.Errorf("Expected 11 outputs and 15 inputs configured, got %d and %d", len(gpio.outputs), len(gpio.inputs))
	}
}

func TestDeviceBootWithoutGPIO(t *testing.T) {
	d := NewDevice(nil, testBoard())
	if err := d.Boot(); err != nil {
		t.Fatalf("Boot failed: %v", err)
	}
	if d.StatusLine().String() != allOffLine {
		t.Errorf("Expected '%s', got '%s'", allOffLine, d.StatusLine().String())
	}
}

func TestDeviceBootConfigureFault(t *testing.T) {
	gpio := NewMockGPIODriver()
	gpio.failPin = 10

	d := NewDevice(gpio, testBoard())
	if err := d.Boot(); !errors.Is(err, errMockPin) {
		t.Errorf("Expected errMockPin, got %v", err)
	}
}

func TestDeviceRelayC(t *testing.T) {
	d, gpio := bootDevice(t)

	d.HandleCommand([]byte("alloff"))
	if !d.HandleCommand([]byte("relaycon")) {
		t.Fatal("Expected relaycon to be applied")
	}

	prefix := "S:04|C1 D0 E0 F0 G0 H0 |RGB:000|AC:00|R:"
	if !strings.HasPrefix(d.StatusLine().String(), prefix) {
		t.Errorf("Expected prefix '%s', got '%s'", prefix, d.StatusLine().String())
	}

	if !gpio.levels[10] {
		t.Error("Expected relay C pin high")
	}
}

func TestDeviceAllOn(t *testing.T) {
	d, _ := bootDevice(t)

	d.HandleCommand([]byte("allon"))

	prefix := "S:FC|C1 D1 E1 F1 G1 H1 |RGB:111|AC:11|R:"
	if !strings.HasPrefix(d.StatusLine().String(), prefix) {
		t.Errorf("Expected prefix '%s', got '%s'", prefix, d.StatusLine().String())
	}
}

func TestDeviceUnknownRefreshesInputs(t *testing.T) {
	d, gpio := bootDevice(t)
	d.HandleCommand([]byte("rgb2on"))

	before := d.StatusLine().String()
	gpio.levels[42] = true // line 3

	if d.HandleCommand([]byte("foo")) {
		t.Error("Expected 'foo' to be rejected")
	}

	after := d.StatusLine().String()
	outputsPart := before[:strings.Index(before, "R:")]
	if !strings.HasPrefix(after, outputsPart) {
		t.Errorf("Expected output fields unchanged, got '%s' then '%s'", before, after)
	}

	if !strings.HasSuffix(after, "R:001000000000000") {
		t.Errorf("Expected line 3 high in refreshed status, got '%s'", after)
	}

	applied, rejected := d.Stats()
	if applied != 1 || rejected != 1 {
		t.Errorf("Expected stats (1, 1), got (%d, %d)", applied, rejected)
	}
}

func TestDeviceSnapshot(t *testing.T) {
	d, gpio := bootDevice(t)
	d.HandleCommand([]byte("ac2on"))
	gpio.levels[54] = true

	s := d.Snapshot()
	if s.Contactors != 0x02 || !s.Rectifiers[14] {
		t.Errorf("Unexpected snapshot: %+v", s)
	}

	parsed, err := protocol.ParseStatus(d.StatusLine().String())
	if err != nil {
		t.Fatalf("ParseStatus failed: %v", err)
	}
	if parsed.Contactors != 0x02 {
		t.Errorf("Expected parsed contactors 0x02, got %#x", parsed.Contactors)
	}
}

// transferBus plays back whole transfers: each entry is either a command
// written by the controller or nil for a read of the status block
type transferBus struct {
	transfers [][]byte
	cur       []byte
	reads     [][]byte
	pending   []byte
}

func (b *transferBus) WaitAddress() (protocol.Direction, error) {
	if len(b.transfers) == 0 {
		return 0, protocol.ErrBusClosed
	}
	next := b.transfers[0]
	b.transfers = b.transfers[1:]
	if next == nil {
		b.pending = nil
		return protocol.DirectionRead, nil
	}
	b.cur = next
	return protocol.DirectionWrite, nil
}

func (b *transferBus) ReceiveByte() (byte, bool, error) {
	if len(b.cur) == 0 {
		return 0, false, nil
	}
	c := b.cur[0]
	b.cur = b.cur[1:]
	return c, true, nil
}

func (b *transferBus) ClearStop() error { return nil }

func (b *transferBus) TransmitByte(c byte) error {
	b.pending = append(b.pending, c)
	if len(b.pending) == protocol.BufferSize {
		b.reads = append(b.reads, b.pending)
		b.pending = nil
	}
	return nil
}

func TestDeviceServe(t *testing.T) {
	d, _ := bootDevice(t)

	bus := &transferBus{transfers: [][]byte{
		[]byte("relaycon"), nil,
		[]byte("RGB1ON"), nil,
		[]byte("bogus"), nil,
	}}

	if err := d.Serve(bus); !errors.Is(err, protocol.ErrBusClosed) {
		t.Fatalf("Expected ErrBusClosed, got %v", err)
	}

	if len(bus.reads) != 3 {
		t.Fatalf("Expected 3 status reads, got %d", len(bus.reads))
	}

	expected := []string{
		"S:04|C1 D0 E0 F0 G0 H0 |RGB:000|AC:00|R:",
		"S:04|C1 D0 E0 F0 G0 H0 |RGB:100|AC:00|R:",
		"S:04|C1 D0 E0 F0 G0 H0 |RGB:100|AC:00|R:",
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(string(bus.reads[i]), prefix) {
			t.Errorf("Read %d: expected prefix '%s', got %q", i, prefix, bus.reads[i])
		}
	}
}

func TestDeviceBootBanner(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	SetDebugEnabled(true)
	defer func() {
		SetDebugEnabled(false)
		SetDebugWriter(func(string) {})
	}()

	bootDevice(t)

	if len(lines) != 1 || !strings.HasPrefix(lines[0], "relayio "+protocol.Version+" ready at 0x27") {
		t.Errorf("Unexpected boot banner: %v", lines)
	}
}
