package keyboard

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 25 * time.Millisecond

// testKeyboard wires an engine to the read end of a pipe and returns
// the write end for byte injection.
func testKeyboard(t *testing.T, opts Options) (*Keyboard, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	opts.Input = r
	if opts.KeyTimeout == 0 {
		opts.KeyTimeout = testTimeout
	}
	return New(opts), w
}

// drain empties the queue, returning the dispatched keys.
func drain(kb *Keyboard) []Key {
	var keys []Key
	pressed := kb.OnKeyPressed
	kb.OnKeyPressed = func(k Key) {
		keys = append(keys, k)
		if pressed != nil {
			pressed(k)
		}
	}
	kb.ProcessQueuedInput(nil)
	kb.OnKeyPressed = pressed
	return keys
}

func feed(t *testing.T, kb *Keyboard, w *os.File, bytes []byte) {
	t.Helper()
	_, err := w.Write(bytes)
	require.NoError(t, err)
	require.True(t, kb.IsKeyPressed(50*time.Millisecond))
	kb.Fetch()
}

func TestDecodeArrowUp(t *testing.T) {
	kb, w := testKeyboard(t, Options{})
	feed(t, kb, w, []byte("\x1b[A"))

	assert.Equal(t, []Key{KeyUp}, drain(kb))
	assert.False(t, kb.HasUnprocessedInput())
}

func TestDecodePlainBytes(t *testing.T) {
	kb, w := testKeyboard(t, Options{})
	feed(t, kb, w, []byte{'h', 'i', 0x00, 0x7F, 0x09})

	assert.Equal(t,
		[]Key{Key('h'), Key('i'), KeyCtrlSpace, KeyBackspace, KeyTab},
		drain(kb))
}

func TestLoneEscapeTimeout(t *testing.T) {
	kb, w := testKeyboard(t, Options{})
	escapes := 0
	kb.OnEscapePressed = func() { escapes++ }

	feed(t, kb, w, []byte{0x1B})
	assert.True(t, kb.HasUnprocessedInput())
	assert.Empty(t, drain(kb))

	// Before the timeout the ESC stays buffered
	kb.EscapeKeyHandling()
	assert.Equal(t, 0, escapes)
	assert.True(t, kb.HasUnprocessedInput())

	time.Sleep(testTimeout + 10*time.Millisecond)
	kb.EscapeKeyHandling()
	assert.Equal(t, 1, escapes)
	assert.False(t, kb.HasUnprocessedInput())
	assert.Empty(t, drain(kb))

	// Idempotent once resolved
	kb.EscapeKeyHandling()
	assert.Equal(t, 1, escapes)
}

func TestSubstringTimeout(t *testing.T) {
	kb, w := testKeyboard(t, Options{})
	feed(t, kb, w, []byte("\x1bO"))

	// Ambiguous prefix: no key before the timeout
	assert.Empty(t, drain(kb))
	assert.Equal(t, 2, kb.fifo.len())

	time.Sleep(testTimeout + 10*time.Millisecond)
	kb.EscapeKeyHandling()
	assert.Equal(t, []Key{KeyMetaO}, drain(kb))
	assert.False(t, kb.HasUnprocessedInput())
}

func TestAmbiguousPrefixExtends(t *testing.T) {
	kb, w := testKeyboard(t, Options{})
	feed(t, kb, w, []byte("\x1bO"))
	assert.Empty(t, drain(kb))

	// The waited-for byte arrives in time and the long match wins
	feed(t, kb, w, []byte("P"))
	assert.Equal(t, []Key{KeyF1}, drain(kb))
}

func TestUTF8ByteByByte(t *testing.T) {
	kb, w := testKeyboard(t, Options{UTF8: true})

	// EURO SIGN, three bytes
	feed(t, kb, w, []byte{0xE2})
	assert.Empty(t, drain(kb))
	feed(t, kb, w, []byte{0x82})
	assert.Empty(t, drain(kb))
	feed(t, kb, w, []byte{0xAC})
	assert.Equal(t, []Key{Key(0x20AC)}, drain(kb))
	assert.False(t, kb.HasUnprocessedInput())
}

func TestUTF8FourBytes(t *testing.T) {
	kb, w := testKeyboard(t, Options{UTF8: true})
	feed(t, kb, w, []byte{0xF0, 0x9F, 0xA6, 0x8A}) // FOX FACE
	assert.Equal(t, []Key{Key(0x1F98A)}, drain(kb))
}

func TestUTF8Disabled(t *testing.T) {
	kb, w := testKeyboard(t, Options{})
	feed(t, kb, w, []byte{0xE2, 0x82, 0xAC})
	// Without UTF-8 each byte resolves on its own
	assert.Equal(t, []Key{Key(0xE2), Key(0x82), Key(0xAC)}, drain(kb))
}

func TestMalformedUTF8MakesProgress(t *testing.T) {
	kb, w := testKeyboard(t, Options{UTF8: true})
	feed(t, kb, w, []byte{0xFF, 'a'})

	// The malformed byte is consumed without dispatching anything
	assert.Equal(t, []Key{Key('a')}, drain(kb))
	assert.False(t, kb.HasUnprocessedInput())
}

func TestCapabilityTablePriority(t *testing.T) {
	kb, w := testKeyboard(t, Options{
		CapabilityKeys: []KeyEntry{{Seq: "\x1b[A", Key: KeyHome}},
	})
	// The capability catalog outranks the built-in catalog
	feed(t, kb, w, []byte("\x1b[A"))
	assert.Equal(t, []Key{KeyHome}, drain(kb))
}

func TestMouseOutranksCatalogs(t *testing.T) {
	report := "\x1b[M !!"
	var events []MouseEvent
	kb, w := testKeyboard(t, Options{
		MouseTracking:  true,
		CapabilityKeys: []KeyEntry{{Seq: report, Key: KeyF9}},
	})
	kb.OnMouseTracking = func(ev MouseEvent) {
		events = append(events, MouseEvent{Protocol: ev.Protocol, Seq: append([]byte(nil), ev.Seq...)})
	}

	feed(t, kb, w, []byte(report))
	require.Len(t, events, 1)
	assert.Equal(t, KeyX11Mouse, events[0].Protocol)
	assert.Equal(t, []byte(report), events[0].Seq)
	// The report is consumed, not enqueued
	assert.Empty(t, drain(kb))
	assert.False(t, kb.HasUnprocessedInput())
}

func TestMouseDisabledDecodesNormally(t *testing.T) {
	kb, w := testKeyboard(t, Options{})
	feed(t, kb, w, []byte("\x1b[M !!"))
	assert.Empty(t, drain(kb))

	// With tracking off nothing recognizes the report; once the
	// timeout elapses it decodes as raw bytes
	kb.timeKeypressed = time.Now().Add(-time.Second)
	var keys []Key
	for kb.fifo.inUse() {
		keys = append(keys, kb.parseKeySequence())
	}
	assert.NotContains(t, keys, KeyX11Mouse)
	assert.Equal(t, KeyEsc, keys[0])
}

func TestSGRMouse(t *testing.T) {
	var events []MouseEvent
	kb, w := testKeyboard(t, Options{MouseTracking: true})
	kb.OnMouseTracking = func(ev MouseEvent) { events = append(events, ev) }

	feed(t, kb, w, []byte("\x1b[<0;10;20M"))
	require.Len(t, events, 1)
	assert.Equal(t, KeyExtendedMouse, events[0].Protocol)
}

func TestBackpressure(t *testing.T) {
	kb, w := testKeyboard(t, Options{QueueSize: 2})
	feed(t, kb, w, []byte("abcde"))

	// Decoding halts once the queue reaches capacity
	assert.Equal(t, []Key{Key('a'), Key('b')}, drain(kb))

	// Draining resumes it
	require.True(t, kb.IsKeyPressed(50*time.Millisecond))
	kb.Fetch()
	assert.Equal(t, []Key{Key('c'), Key('d')}, drain(kb))
	kb.Fetch()
	assert.Equal(t, []Key{Key('e')}, drain(kb))
}

func TestBufferOverflowDropsBytes(t *testing.T) {
	kb, w := testKeyboard(t, Options{BufferSize: 4})
	// An unterminated SGR report cannot resolve before the timeout, so
	// bytes accumulate; past capacity they are dropped
	feed(t, kb, w, []byte("\x1b[<0;10;2"))
	assert.Equal(t, 4, kb.fifo.len())
	assert.Empty(t, drain(kb))

	// Once the timeout elapses the stuck prefix force-resolves and the
	// engine makes progress again
	kb.timeKeypressed = time.Now().Add(-time.Second)
	var keys []Key
	for kb.fifo.inUse() {
		keys = append(keys, kb.parseKeySequence())
	}
	assert.Equal(t, []Key{KeyEsc, Key('['), Key('<'), Key('0')}, keys)
}

func TestForceResolveAfterTimeout(t *testing.T) {
	kb, w := testKeyboard(t, Options{})
	feed(t, kb, w, []byte("\x1b[<0"))
	assert.Empty(t, drain(kb))
	assert.Equal(t, 4, kb.fifo.len())

	// Decode passes with the timeout elapsed must strictly shrink the
	// buffer; no permanent stall on unrecognized input
	kb.timeKeypressed = time.Now().Add(-time.Second)
	for kb.fifo.inUse() {
		before := kb.fifo.len()
		key := kb.parseKeySequence()
		require.NotEqual(t, KeyIncomplete, key)
		require.Less(t, kb.fifo.len(), before)
	}
}

func TestUTF8PartialForceResolve(t *testing.T) {
	kb, w := testKeyboard(t, Options{UTF8: true})
	feed(t, kb, w, []byte{0xE2, 0x82})
	assert.Empty(t, drain(kb))
	assert.Equal(t, 2, kb.fifo.len())

	// Past the timeout the truncated character resolves from the bytes
	// that did arrive, and the buffer drains
	kb.timeKeypressed = time.Now().Add(-time.Second)
	key := kb.parseKeySequence()
	assert.NotEqual(t, KeyIncomplete, key)
	assert.False(t, kb.HasUnprocessedInput())
}

func TestFetchReturnsOnDrainedStream(t *testing.T) {
	kb, w := testKeyboard(t, Options{})
	_, err := w.Write([]byte("ab"))
	require.NoError(t, err)
	require.True(t, kb.IsKeyPressed(50*time.Millisecond))

	// Fetch must come back once the pipe is drained, not block on
	// the next byte
	done := make(chan struct{})
	go func() {
		defer close(done)
		kb.Fetch()
		kb.Fetch()
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Fetch blocked on a drained input stream")
	}
	assert.Equal(t, []Key{Key('a'), Key('b')}, drain(kb))
}

func TestCorrectorSeesOnlyResolvedKeys(t *testing.T) {
	var seen []Key
	kb, w := testKeyboard(t, Options{
		Corrector: func(k Key) Key {
			seen = append(seen, k)
			return k
		},
	})
	// Byte-by-byte arrival runs the classifier through Incomplete
	// states the corrector must never observe
	feed(t, kb, w, []byte{0x1B})
	feed(t, kb, w, []byte{'['})
	feed(t, kb, w, []byte{'A'})

	assert.Equal(t, []Key{KeyUp}, drain(kb))
	assert.Equal(t, []Key{KeyUp}, seen)
}

func TestKeyCorrector(t *testing.T) {
	kb, w := testKeyboard(t, Options{
		Corrector: LinuxConsoleCorrector(func() ModifierState {
			return ModifierState{Shift: true}
		}),
	})
	feed(t, kb, w, []byte("\x1b[A"))
	assert.Equal(t, []Key{KeyShiftUp}, drain(kb))
}

func TestProcessQueuedInputQuit(t *testing.T) {
	kb, w := testKeyboard(t, Options{})
	feed(t, kb, w, []byte("abc"))

	var pressed, released []Key
	kb.OnKeyPressed = func(k Key) { pressed = append(pressed, k) }
	kb.OnKeyReleased = func(k Key) { released = append(released, k) }

	kb.ProcessQueuedInput(func() bool { return len(pressed) > 0 })

	// Quit stops dispatch between the press and release pair
	assert.Equal(t, []Key{Key('a')}, pressed)
	assert.Empty(t, released)
	// The rest stays queued for a later drain
	assert.True(t, kb.HasDataInQueue())
	assert.Equal(t, Key('a'), kb.LastKey())

	kb.ProcessQueuedInput(nil)
	assert.Equal(t, []Key{Key('a'), Key('b'), Key('c')}, pressed)
	assert.Equal(t, []Key{Key('b'), Key('c')}, released)
}

func TestDispatchPairsAndLastKey(t *testing.T) {
	kb, w := testKeyboard(t, Options{})
	feed(t, kb, w, []byte("x"))

	var order []string
	kb.OnKeyPressed = func(k Key) {
		order = append(order, "press:"+k.String())
		assert.Equal(t, k, kb.LastKey())
	}
	kb.OnKeyReleased = func(k Key) { order = append(order, "release:"+k.String()) }
	kb.ProcessQueuedInput(nil)

	assert.Equal(t, []string{"press:x", "release:x"}, order)
	assert.Equal(t, KeyNone, kb.LastKey())
}

func TestIsKeyPressedCachesResult(t *testing.T) {
	kb, w := testKeyboard(t, Options{})
	_, err := w.Write([]byte("x"))
	require.NoError(t, err)

	require.True(t, kb.IsKeyPressed(50*time.Millisecond))
	assert.True(t, kb.HasPendingInput())
	// Cached without another poll
	assert.True(t, kb.IsKeyPressed(0))

	kb.Fetch()
	assert.False(t, kb.HasPendingInput())
	assert.False(t, kb.IsKeyPressed(0))
}

func TestClearKeyBuffer(t *testing.T) {
	kb, w := testKeyboard(t, Options{})
	feed(t, kb, w, []byte("\x1b["))
	assert.True(t, kb.HasUnprocessedInput())

	kb.ClearKeyBuffer()
	assert.False(t, kb.HasUnprocessedInput())

	// ClearKeyBufferOnTimeout is a no-op before the deadline
	feed(t, kb, w, []byte("\x1b["))
	kb.ClearKeyBufferOnTimeout()
	assert.True(t, kb.HasUnprocessedInput())
	time.Sleep(testTimeout + 10*time.Millisecond)
	kb.ClearKeyBufferOnTimeout()
	assert.False(t, kb.HasUnprocessedInput())
}
