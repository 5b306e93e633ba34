package serial

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestMonitorLines(t *testing.T) {
	input := "relayio 0.1.0 ready at 0x27\r\nI2C RX: relaycon\r\n\r\nI2C RX: foo\r\nUnknown"

	var lines []string
	err := Monitor(strings.NewReader(input), func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("Monitor failed: %v", err)
	}

	expected := []string{"relayio 0.1.0 ready at 0x27", "I2C RX: relaycon", "I2C RX: foo", "Unknown"}
	if len(lines) != len(expected) {
		t.Fatalf("Expected %d lines, got %v", len(expected), lines)
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("Line %d: expected '%s', got '%s'", i, expected[i], lines[i])
		}
	}
}

// chunkReader hands out its chunks one Read at a time, then fails
type chunkReader struct {
	chunks []string
	err    error
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, c.err
	}
	n := copy(p, c.chunks[0])
	c.chunks = c.chunks[1:]
	return n, nil
}

func TestMonitorSplitLine(t *testing.T) {
	r := &chunkReader{chunks: []string{"I2C R", "X: all", "on\r", "\n"}, err: io.EOF}

	var lines []string
	if err := Monitor(r, func(line string) { lines = append(lines, line) }); err != nil {
		t.Fatalf("Monitor failed: %v", err)
	}

	if len(lines) != 1 || lines[0] != "I2C RX: allon" {
		t.Errorf("Expected one joined line, got %v", lines)
	}
}

func TestMonitorError(t *testing.T) {
	fault := errors.New("device unplugged")
	r := &chunkReader{chunks: []string{"Unknown\r\n"}, err: fault}

	var lines []string
	err := Monitor(r, func(line string) { lines = append(lines, line) })
	if !errors.Is(err, fault) {
		t.Errorf("Expected device error, got %v", err)
	}
	if len(lines) != 1 {
		t.Errorf("Expected the line before the error, got %v", lines)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyUSB0")
	if cfg.Baud != 115200 {
		t.Errorf("Expected 115200 baud, got %d", cfg.Baud)
	}
	if _, err := Open(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}
