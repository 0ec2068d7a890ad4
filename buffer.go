package keyboard

// fifo is the accumulation buffer for not-yet-resolved input bytes.
// It is a fixed-capacity array with an offset marking the end of
// buffered data; bytes beyond the offset are always zero. Removal
// shifts the remainder to index 0 and zero-fills the tail, so the
// buffer is never reallocated and never grows past its capacity.
type fifo struct {
	buf []byte
	off int
}

func newFifo(capacity int) *fifo {
	return &fifo{buf: make([]byte, capacity)}
}

func (f *fifo) len() int {
	return f.off
}

func (f *fifo) inUse() bool {
	return f.off > 0
}

// bytes returns the buffered prefix. Callers must not retain the slice
// across an append, strip, or clear.
func (f *fifo) bytes() []byte {
	return f.buf[:f.off]
}

// append adds one byte to the end of the buffer. A byte arriving when
// the buffer is full is dropped and append reports false; it is never
// written out of bounds.
func (f *fifo) append(b byte) bool {
	if f.off >= len(f.buf) {
		return false
	}
	f.buf[f.off] = b
	f.off++
	return true
}

// strip removes the first n bytes, shifting the remainder to the front
// and zero-filling the tail.
func (f *fifo) strip(n int) {
	if n <= 0 {
		return
	}
	if n >= f.off {
		f.clear()
		return
	}
	copy(f.buf, f.buf[n:f.off])
	rest := f.off - n
	for i := rest; i < f.off; i++ {
		f.buf[i] = 0
	}
	f.off = rest
}

func (f *fifo) clear() {
	for i := 0; i < f.off; i++ {
		f.buf[i] = 0
	}
	f.off = 0
}
