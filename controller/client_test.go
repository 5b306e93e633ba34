package controller

import (
	"errors"
	"testing"
	"time"

	"tinygo.org/x/drivers"

	"relayio/protocol"
)

var _ drivers.I2C = (*fakeBus)(nil)

// fakeBus records writes and answers reads from a canned block
type fakeBus struct {
	writes   []string
	reads    int
	readLen  int
	block    []byte
	writeErr error
	readErr  error
	lastAddr uint16
}

func (f *fakeBus) Tx(addr uint16, w, r []byte) error {
	f.lastAddr = addr
	if len(w) > 0 {
		if f.writeErr != nil {
			return f.writeErr
		}
		f.writes = append(f.writes, string(w))
	}
	if len(r) > 0 {
		if f.readErr != nil {
			return f.readErr
		}
		f.reads++
		f.readLen = len(r)
		copy(r, f.block)
	}
	return nil
}

func statusBlock(line string) []byte {
	block := make([]byte, protocol.BufferSize)
	copy(block, line)
	return block
}

const relayCLine = "S:04|C1 D0 E0 F0 G0 H0 |RGB:000|AC:00|R:101100001111010"

func TestSendCommand(t *testing.T) {
	bus := &fakeBus{block: statusBlock(relayCLine)}

	var slept []time.Duration
	c := New(bus, WithSleep(func(d time.Duration) { slept = append(slept, d) }))

	resp, err := c.SendCommand("relaycon")
	if err != nil {
		t.Fatalf("SendCommand failed: %v", err)
	}

	if len(bus.writes) != 1 || bus.writes[0] != "relaycon" {
		t.Errorf("Expected raw write 'relaycon', got %v", bus.writes)
	}

	if bus.lastAddr != 0x27 {
		t.Errorf("Expected address 0x27, got %#x", bus.lastAddr)
	}

	if len(slept) != 1 || slept[0] != 20*time.Millisecond {
		t.Errorf("Expected one 20ms settle, got %v", slept)
	}

	if bus.readLen != protocol.BufferSize {
		t.Errorf("Expected %d byte read, got %d", protocol.BufferSize, bus.readLen)
	}

	if resp.Raw != relayCLine {
		t.Errorf("Expected raw '%s', got '%s'", relayCLine, resp.Raw)
	}

	if !resp.Found || resp.Formatted() != "1011 0000 1111 010" {
		t.Errorf("Expected formatted '1011 0000 1111 010', got '%s'", resp.Formatted())
	}

	s, err := resp.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if s.Relays != 0x04 || !s.Rectifiers[0] || s.Rectifiers[1] {
		t.Errorf("Unexpected decoded status: %+v", s)
	}
}

func TestSendCommandWriteError(t *testing.T) {
	fault := errors.New("nack")
	bus := &fakeBus{writeErr: fault}

	slept := false
	c := New(bus, WithSleep(func(time.Duration) { slept = true }))

	_, err := c.SendCommand("relaycon")

	var i2cErr *I2CError
	if !errors.As(err, &i2cErr) {
		t.Fatalf("Expected *I2CError, got %v", err)
	}
	if i2cErr.Op != OpWrite || i2cErr.Addr != 0x27 {
		t.Errorf("Unexpected error fields: %+v", i2cErr)
	}
	if !errors.Is(err, fault) {
		t.Error("Expected error to unwrap to the bus fault")
	}
	if err.Error() != "i2c write 0x27: nack" {
		t.Errorf("Unexpected message: '%s'", err.Error())
	}

	if slept || bus.reads != 0 {
		t.Error("Expected the cycle to abort before settle and read")
	}
}

func TestSendCommandReadError(t *testing.T) {
	bus := &fakeBus{readErr: errors.New("timeout")}
	c := New(bus, WithSleep(func(time.Duration) {}))

	_, err := c.SendCommand("allon")

	var i2cErr *I2CError
	if !errors.As(err, &i2cErr) || i2cErr.Op != OpRead {
		t.Errorf("Expected read I2CError, got %v", err)
	}
}

func TestSendCommandEmpty(t *testing.T) {
	bus := &fakeBus{}
	c := New(bus)

	if _, err := c.SendCommand(""); !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("Expected ErrEmptyCommand, got %v", err)
	}
	if len(bus.writes) != 0 || bus.reads != 0 {
		t.Error("Expected no bus traffic for an empty command")
	}
}

func TestReadStatusStopsAtNUL(t *testing.T) {
	block := statusBlock("S:00|R:000")
	// Garbage after the terminator must not leak into the response
	copy(block[20:], "R:111111111111111")

	c := New(&fakeBus{block: block})
	resp, err := c.ReadStatus()
	if err != nil {
		t.Fatalf("ReadStatus failed: %v", err)
	}

	if resp.Raw != "S:00|R:000" {
		t.Errorf("Expected 'S:00|R:000', got '%s'", resp.Raw)
	}
	if resp.Rectifiers != "000" {
		t.Errorf("Expected rectifiers '000', got '%s'", resp.Rectifiers)
	}
}

func TestReadStatusNoTerminator(t *testing.T) {
	block := make([]byte, protocol.BufferSize)
	for i := range block {
		block[i] = 'x'
	}

	resp, err := New(&fakeBus{block: block}).ReadStatus()
	if err != nil {
		t.Fatalf("ReadStatus failed: %v", err)
	}
	if len(resp.Raw) != protocol.BufferSize {
		t.Errorf("Expected %d bytes, got %d", protocol.BufferSize, len(resp.Raw))
	}
}

func TestReadStatusFieldNotFound(t *testing.T) {
	c := New(&fakeBus{block: statusBlock("S:00|C0 D0 E0 F0 G0 H0 |RGB:000|AC:00")})

	resp, err := c.ReadStatus()
	if err != nil {
		t.Fatalf("ReadStatus failed: %v", err)
	}
	if resp.Found {
		t.Error("Expected rectifier field not found")
	}
	if resp.Formatted() != "" {
		t.Errorf("Expected empty formatted field, got '%s'", resp.Formatted())
	}
	if _, err := resp.Status(); !errors.Is(err, protocol.ErrFieldNotFound) {
		t.Errorf("Expected ErrFieldNotFound, got %v", err)
	}
}

func TestOptions(t *testing.T) {
	bus := &fakeBus{block: statusBlock(relayCLine)}
	c := New(bus, WithAddress(0x20), WithReadSize(500), WithSettleDelay(time.Second))

	if c.Address() != 0x20 || c.readSize != protocol.BufferSize || c.settle != time.Second {
		t.Errorf("Unexpected client: addr %#x, read %d, settle %v", c.Address(), c.readSize, c.settle)
	}

	c = New(bus, WithReadSize(16))
	resp, _ := c.ReadStatus()
	if bus.readLen != 16 || resp.Raw != relayCLine[:16] {
		t.Errorf("Expected 16 byte read, got %d '%s'", bus.readLen, resp.Raw)
	}

	if New(bus, WithReadSize(0)).readSize != 1 {
		t.Error("Expected read size clamped to 1")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"relaycon", "relaycon"},
		{"  Relay C On\r\n", "relaycon"},
		{"ALL OFF", "alloff"},
		{"rgb\t1on", "rgb\t1on"},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.expected {
			t.Errorf("Normalize(%q): expected %q, got %q", tt.in, tt.expected, got)
		}
	}
}
