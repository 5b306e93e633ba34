package protocol

// LineBuffer is a fixed-capacity, NUL-terminated byte buffer.
//
// Appends are capacity-checked: the buffer always keeps one byte for the
// terminating NUL and silently truncates whatever does not fit.
type LineBuffer struct {
	buf [BufferSize]byte
	pos int
}

// Reset clears the buffer, including the padding past the logical end
func (l *LineBuffer) Reset() {
	l.buf = [BufferSize]byte{}
	l.pos = 0
}

// Len returns the logical length (bytes before the NUL)
func (l *LineBuffer) Len() int {
	return l.pos
}

// Free returns how many more bytes fit before the terminator
func (l *LineBuffer) Free() int {
	return BufferSize - 1 - l.pos
}

// Full reports whether no more bytes can be appended
func (l *LineBuffer) Full() bool {
	return l.pos >= BufferSize-1
}

// AppendByte appends one byte if there is room. Returns false when the byte
// was dropped.
func (l *LineBuffer) AppendByte(b byte) bool {
	if l.Full() {
		return false
	}
	l.buf[l.pos] = b
	l.pos++
	l.buf[l.pos] = 0
	return true
}

// AppendString appends as much of s as fits
func (l *LineBuffer) AppendString(s string) {
	n := len(s)
	if n > l.Free() {
		n = l.Free()
	}
	copy(l.buf[l.pos:], s[:n])
	l.pos += n
	l.buf[l.pos] = 0
}

// Terminate writes the NUL at the current position
func (l *LineBuffer) Terminate() {
	l.buf[l.pos] = 0
}

// Bytes returns the logical content, without the NUL
func (l *LineBuffer) Bytes() []byte {
	return l.buf[:l.pos]
}

// String returns the logical content as a string
func (l *LineBuffer) String() string {
	return string(l.buf[:l.pos])
}

// Block returns the full fixed-size buffer, padding included. This is what
// goes on the wire during a read.
func (l *LineBuffer) Block() *[BufferSize]byte {
	return &l.buf
}
