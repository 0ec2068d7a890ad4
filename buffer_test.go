package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFifoAppendBounded(t *testing.T) {
	f := newFifo(4)
	for i := 0; i < 4; i++ {
		assert.True(t, f.append(byte('a'+i)))
	}
	// Bytes past capacity are dropped, never written out of bounds
	assert.False(t, f.append('z'))
	assert.Equal(t, 4, f.len())
	assert.Equal(t, []byte("abcd"), f.bytes())
}

func TestFifoStrip(t *testing.T) {
	f := newFifo(8)
	for _, b := range []byte("abcdef") {
		f.append(b)
	}
	f.strip(2)
	assert.Equal(t, []byte("cdef"), f.bytes())
	// Tail is zero-filled after the shift
	assert.Equal(t, byte(0), f.buf[4])
	assert.Equal(t, byte(0), f.buf[5])

	f.strip(10)
	assert.Equal(t, 0, f.len())
	assert.False(t, f.inUse())
}

func TestFifoStripZeroIsNoop(t *testing.T) {
	f := newFifo(8)
	f.append('x')
	f.strip(0)
	f.strip(-1)
	assert.Equal(t, []byte("x"), f.bytes())
}

func TestFifoClear(t *testing.T) {
	f := newFifo(8)
	for _, b := range []byte("abc") {
		f.append(b)
	}
	f.clear()
	assert.Equal(t, 0, f.len())
	for _, b := range f.buf {
		assert.Equal(t, byte(0), b)
	}
}
