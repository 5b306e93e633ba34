package protocol

import (
	"errors"
	"strings"
	"testing"
)

type busEventKind uint8

const (
	evAddrWrite busEventKind = iota
	evAddrRead
	evByte
	evStop
	evError
)

type busEvent struct {
	kind busEventKind
	b    byte
}

// mockBus replays a scripted sequence of bus events and records what the
// peripheral transmits. It reports ErrBusClosed once the script runs out.
type mockBus struct {
	events      []busEvent
	transmitted []byte
	stops       int
}

var errMockBus = errors.New("mock bus fault")

func (m *mockBus) pop() (busEvent, bool) {
	if len(m.events) == 0 {
		return busEvent{}, false
	}
	ev := m.events[0]
	m.events = m.events[1:]
	return ev, true
}

func (m *mockBus) WaitAddress() (Direction, error) {
	for {
		ev, ok := m.pop()
		if !ok {
			return 0, ErrBusClosed
		}
		switch ev.kind {
		case evAddrWrite:
			return DirectionWrite, nil
		case evAddrRead:
			return DirectionRead, nil
		case evError:
			return 0, errMockBus
		}
	}
}

func (m *mockBus) ReceiveByte() (byte, bool, error) {
	ev, ok := m.pop()
	if !ok {
		return 0, false, ErrBusClosed
	}
	switch ev.kind {
	case evByte:
		return ev.b, true, nil
	case evStop:
		return 0, false, nil
	default:
		return 0, false, errMockBus
	}
}

func (m *mockBus) ClearStop() error {
	m.stops++
	return nil
}

func (m *mockBus) TransmitByte(b byte) error {
	m.transmitted = append(m.transmitted, b)
	return nil
}

// write scripts a complete write transfer carrying s
func write(s string) []busEvent {
	events := []busEvent{{kind: evAddrWrite}}
	for i := 0; i < len(s); i++ {
		events = append(events, busEvent{kind: evByte, b: s[i]})
	}
	return append(events, busEvent{kind: evStop})
}

func read() []busEvent {
	return []busEvent{{kind: evAddrRead}}
}

func script(parts ...[]busEvent) []busEvent {
	var all []busEvent
	for _, p := range parts {
		all = append(all, p...)
	}
	return all
}

func TestPeripheralWriteThenRead(t *testing.T) {
	var status LineBuffer
	status.AppendString("S:00")

	var received []string
	bus := &mockBus{events: script(write("relaycon"), read())}
	p := NewPeripheral(bus, &status, func(cmd []byte) {
		received = append(received, string(cmd))
		status.Reset()
		status.AppendString("S:04")
	})

	if err := p.Transact(); err != nil {
		t.Fatalf("Transact failed: %v", err)
	}

	if len(received) != 1 || received[0] != "relaycon" {
		t.Errorf("Expected handler to receive 'relaycon', got %v", received)
	}

	if bus.stops != 1 {
		t.Errorf("Expected stop to be cleared once, got %d", bus.stops)
	}

	if len(bus.transmitted) != BufferSize {
		t.Fatalf("Expected %d bytes transmitted, got %d", BufferSize, len(bus.transmitted))
	}

	if !strings.HasPrefix(string(bus.transmitted), "S:04\x00") {
		t.Errorf("Expected refreshed status line, got %q", bus.transmitted[:8])
	}

	for i := 4; i < BufferSize; i++ {
		if bus.transmitted[i] != 0 {
			t.Fatalf("Expected NUL padding at %d, got %d", i, bus.transmitted[i])
		}
	}

	if p.State() != StateIdle {
		t.Errorf("Expected state idle after cycle, got %s", p.State())
	}
}

func TestPeripheralZeroLengthWrite(t *testing.T) {
	var status LineBuffer
	status.AppendString("S:00")

	called := false
	bus := &mockBus{events: script(write(""), read())}
	p := NewPeripheral(bus, &status, func(cmd []byte) { called = true })

	if err := p.Transact(); err != nil {
		t.Fatalf("Transact failed: %v", err)
	}

	if called {
		t.Error("Expected no dispatch for a zero-length write")
	}

	if string(bus.transmitted[:4]) != "S:00" {
		t.Errorf("Expected unchanged status line, got %q", bus.transmitted[:4])
	}
}

func TestPeripheralReceiveOverflow(t *testing.T) {
	var status LineBuffer

	long := strings.Repeat("r", BufferSize*3) + "relaycon"
	var got []byte
	bus := &mockBus{events: script(write(long), read())}
	p := NewPeripheral(bus, &status, func(cmd []byte) {
		got = append([]byte(nil), cmd...)
	})

	if err := p.Transact(); err != nil {
		t.Fatalf("Transact failed: %v", err)
	}

	if len(got) != BufferSize-1 {
		t.Errorf("Expected %d bytes kept, got %d", BufferSize-1, len(got))
	}

	if strings.Contains(string(got), "relaycon") {
		t.Error("Expected bytes past capacity to be discarded")
	}

	// Every byte was drained, so the read phase still lines up
	if len(bus.transmitted) != BufferSize {
		t.Errorf("Expected transmit after overflowing write, got %d bytes", len(bus.transmitted))
	}

	if len(bus.events) != 0 {
		t.Errorf("Expected all scripted events consumed, %d left", len(bus.events))
	}
}

func TestPeripheralReadWhileIdle(t *testing.T) {
	var status LineBuffer
	status.AppendString("S:FC")

	called := false
	bus := &mockBus{events: read()}
	p := NewPeripheral(bus, &status, func(cmd []byte) { called = true })

	if err := p.Transact(); err != nil {
		t.Fatalf("Transact failed: %v", err)
	}

	if called {
		t.Error("Expected no dispatch for a status poll")
	}

	if string(bus.transmitted[:4]) != "S:FC" {
		t.Errorf("Expected cached status line, got %q", bus.transmitted[:4])
	}
}

func TestPeripheralWriteInsteadOfRead(t *testing.T) {
	var status LineBuffer

	var received []string
	bus := &mockBus{events: script(
		write("relaycon"),
		[]busEvent{{kind: evAddrWrite}, {kind: evByte, b: 'x'}, {kind: evStop}},
		read(),
	)}
	p := NewPeripheral(bus, &status, func(cmd []byte) {
		received = append(received, string(cmd))
	})

	if err := p.Transact(); err != nil {
		t.Fatalf("First Transact failed: %v", err)
	}
	if len(bus.transmitted) != 0 {
		t.Errorf("Expected no transmit in abandoned cycle, got %d bytes", len(bus.transmitted))
	}

	if err := p.Transact(); err != nil {
		t.Fatalf("Second Transact failed: %v", err)
	}

	if len(received) != 2 || received[1] != "x" {
		t.Errorf("Expected second write to be received, got %v", received)
	}
	if len(bus.transmitted) != BufferSize {
		t.Errorf("Expected %d bytes transmitted, got %d", BufferSize, len(bus.transmitted))
	}
}

func TestPeripheralServe(t *testing.T) {
	var status LineBuffer

	count := 0
	var errs []error
	bus := &mockBus{events: script(
		write("a"), read(),
		[]busEvent{{kind: evError}},
		write("b"), read(),
	)}
	p := NewPeripheral(bus, &status, func(cmd []byte) { count++ })
	p.SetErrorHandler(func(err error) { errs = append(errs, err) })

	err := p.Serve()
	if !errors.Is(err, ErrBusClosed) {
		t.Errorf("Expected ErrBusClosed, got %v", err)
	}

	if count != 2 {
		t.Errorf("Expected 2 commands dispatched, got %d", count)
	}

	if len(errs) != 1 || !errors.Is(errs[0], errMockBus) {
		t.Errorf("Expected one reported bus error, got %v", errs)
	}

	if len(bus.transmitted) != 2*BufferSize {
		t.Errorf("Expected %d bytes transmitted, got %d", 2*BufferSize, len(bus.transmitted))
	}
}

func TestStateString(t *testing.T) {
	if StateReceiving.String() != "receiving" {
		t.Errorf("Expected 'receiving', got '%s'", StateReceiving.String())
	}
	if State(99).String() != "unknown" {
		t.Errorf("Expected 'unknown', got '%s'", State(99).String())
	}
}
