// Package controller is the bus-master side of the relay board protocol:
// it writes a command, waits for the board to settle, and reads back the
// fixed-size status block.
package controller

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"tinygo.org/x/drivers"

	"relayio/protocol"
)

// ErrEmptyCommand is returned when a command normalizes to nothing
var ErrEmptyCommand = errors.New("controller: empty command")

// Client talks to one relay board. It is not safe for concurrent use.
type Client struct {
	bus      drivers.I2C
	addr     uint16
	settle   time.Duration
	readSize int
	sleep    func(time.Duration)

	resp [protocol.BufferSize]byte
}

// Option configures a Client
type Option func(*Client)

// WithAddress sets the 7-bit peripheral address
func WithAddress(addr uint16) Option {
	return func(c *Client) { c.addr = addr }
}

// WithSettleDelay sets the pause between the write and the read
func WithSettleDelay(d time.Duration) Option {
	return func(c *Client) { c.settle = d }
}

// WithReadSize sets how many bytes are requested per read, clamped to the
// status block size
func WithReadSize(n int) Option {
	return func(c *Client) {
		if n < 1 {
			n = 1
		}
		if n > protocol.BufferSize {
			n = protocol.BufferSize
		}
		c.readSize = n
	}
}

// WithSleep replaces time.Sleep, for tests and cooperative schedulers
func WithSleep(fn func(time.Duration)) Option {
	return func(c *Client) { c.sleep = fn }
}

// New creates a client on bus with the board defaults
func New(bus drivers.I2C, opts ...Option) *Client {
	c := &Client{
		bus:      bus,
		addr:     protocol.DefaultAddress,
		settle:   protocol.SettleDelay,
		readSize: protocol.BufferSize,
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Address returns the peripheral address in use
func (c *Client) Address() uint16 {
	return c.addr
}

// Response is one status block as read from the board
type Response struct {
	Raw        string // bytes up to the first NUL
	Rectifiers string // the R: field, empty when not Found
	Found      bool   // whether the R: field was present
}

// Formatted returns the rectifier bits in groups of four, or "" when the
// field was not found
func (r Response) Formatted() string {
	if !r.Found {
		return ""
	}
	return protocol.FormatRectifiers(r.Rectifiers)
}

// Status decodes the full status line
func (r Response) Status() (protocol.Status, error) {
	return protocol.ParseStatus(r.Raw)
}

// SendCommand writes text as raw bytes, waits the settling delay and reads
// the refreshed status block. A failed write aborts the cycle without a read.
func (c *Client) SendCommand(text string) (Response, error) {
	if text == "" {
		return Response{}, ErrEmptyCommand
	}

	if err := c.bus.Tx(c.addr, []byte(text), nil); err != nil {
		return Response{}, &I2CError{Op: OpWrite, Addr: c.addr, Err: err}
	}

	c.sleep(c.settle)

	return c.ReadStatus()
}

// ReadStatus reads the cached status block without sending a command
func (c *Client) ReadStatus() (Response, error) {
	buf := c.resp[:c.readSize]
	for i := range buf {
		buf[i] = 0
	}

	if err := c.bus.Tx(c.addr, nil, buf); err != nil {
		return Response{}, &I2CError{Op: OpRead, Addr: c.addr, Err: err}
	}

	// The rest of the block is padding
	n := bytes.IndexByte(buf, 0)
	if n < 0 {
		n = len(buf)
	}

	raw := string(buf[:n])
	field, ok := protocol.RectifierField(raw)
	return Response{Raw: raw, Rectifiers: field, Found: ok}, nil
}

// Normalize prepares console input for the wire: surrounding whitespace is
// trimmed, letters are lowered and inner spaces removed, so "Relay C On"
// becomes "relaycon".
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	return strings.ReplaceAll(text, " ", "")
}
