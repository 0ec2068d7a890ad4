// Package keyboard decodes the raw byte stream of a terminal input
// descriptor into discrete key and mouse events.
//
// The input alphabet is ambiguous by construction: a lone ESC, a
// cursor-key sequence, a function-key sequence, and a mouse report all
// share prefixes. The engine resolves them with a multi-tier,
// longest-match-with-timeout strategy: bytes accumulate in a small
// bounded buffer and are classified by a mouse sniffer, a dynamic
// terminal-capability catalog, and a built-in catalog, in that order,
// falling back to single-byte / UTF-8 decoding. Prefixes that are
// valid starts of several known sequences stay buffered until more
// bytes arrive or the keypress timeout forces a resolution.
package keyboard

import (
	"io"
	"os"
	"time"

	"golang.org/x/exp/slog"
)

// Keyboard is a terminal input decoding engine. It owns its
// accumulation buffer and event queue exclusively; all interaction
// goes through its methods. A Keyboard is not safe for concurrent use:
// it is built for a single poll-driven loop.
type Keyboard struct {
	input *os.File
	log   *slog.Logger

	fifo  *fifo
	queue *queue[Key]

	keyMap []KeyEntry // built-in catalog, sorted by length
	capMap []KeyEntry // terminal capability catalog, sorted by length

	utf8        bool
	mouse       bool
	nonBlocking bool // platform supports non-blocking input

	keyTimeout time.Duration
	pollFast   time.Duration
	pollSlow   time.Duration

	corrector KeyCorrector

	hasPending     bool
	timeKeypressed time.Time
	lastKey        Key

	// OnKeyPressed and OnKeyReleased are invoked, in that order, for
	// every key drained by ProcessQueuedInput.
	OnKeyPressed  func(Key)
	OnKeyReleased func(Key)
	// OnEscapePressed is invoked when a lone ESC ages past the key
	// timeout. No key is enqueued for it.
	OnEscapePressed func()
	// OnMouseTracking is invoked when a mouse report is recognized,
	// with the raw report bytes. The buffer is cleared afterwards.
	OnMouseTracking func(MouseEvent)
}

// New builds a Keyboard from opts. The built-in and capability
// catalogs are copied and sorted ascending by sequence length, giving
// the instance independent, deterministic state.
func New(opts Options) *Keyboard {
	opts = opts.withDefaults()
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Keyboard{
		input:       opts.Input,
		log:         logger,
		fifo:        newFifo(opts.BufferSize),
		queue:       newQueue[Key](opts.QueueSize),
		keyMap:      sortedByLength(builtinKeyMap),
		capMap:      sortedByLength(opts.CapabilityKeys),
		utf8:        opts.UTF8,
		mouse:       opts.MouseTracking,
		nonBlocking: nonBlockingSupported && !opts.DisableNonBlocking,
		keyTimeout:  opts.KeyTimeout,
		pollFast:    opts.PollFast,
		pollSlow:    opts.PollSlow,
		corrector:   opts.Corrector,
	}
}

// IsKeyPressed reports whether the input descriptor has data ready,
// waiting at most wait. A "yes" is cached until the next read so
// repeated calls don't poll redundantly. Right after a keypress the
// fast poll timeout is used instead of wait; without non-blocking
// support the poller degrades to wait on every call. A non-positive
// wait means the configured slow poll timeout.
func (kb *Keyboard) IsKeyPressed(wait time.Duration) bool {
	if kb.hasPending {
		return true
	}
	if wait <= 0 {
		wait = kb.pollSlow
	}
	if wait > 0 && kb.nonBlocking {
		ready, err := pollReady(kb.input, 0)
		if err != nil {
			kb.log.Warn("input poll failed", "error", err)
			return false
		}
		if ready {
			kb.hasPending = true
			return true
		}
	}
	timeout := wait
	if !kb.isKeypressTimeout() && kb.nonBlocking {
		timeout = kb.pollFast
	}
	ready, err := pollReady(kb.input, timeout)
	if err != nil {
		kb.log.Warn("input poll failed", "error", err)
		return false
	}
	if ready {
		kb.hasPending = true
	}
	return kb.hasPending
}

// HasPendingInput reports a cached, not-yet-consumed poll result.
func (kb *Keyboard) HasPendingInput() bool {
	return kb.hasPending
}

// HasUnprocessedInput reports whether unresolved bytes remain in the
// accumulation buffer.
func (kb *Keyboard) HasUnprocessedInput() bool {
	return kb.fifo.inUse()
}

// HasDataInQueue reports whether decoded keys await dispatch.
func (kb *Keyboard) HasDataInQueue() bool {
	return !kb.queue.empty()
}

// LastKey returns the key currently being dispatched, or KeyNone.
func (kb *Keyboard) LastKey() Key {
	return kb.lastKey
}

// Fetch reads all available input bytes and decodes them into the
// event queue. It is a no-op while the queue is full.
func (kb *Keyboard) Fetch() {
	if !kb.queue.full() {
		kb.parseKeyBuffer()
	}
}

// ClearKeyBuffer discards all unresolved buffered bytes.
func (kb *Keyboard) ClearKeyBuffer() {
	kb.fifo.clear()
	kb.lastKey = KeyNone
}

// ClearKeyBufferOnTimeout discards unresolved bytes once the keypress
// timeout has elapsed. A no-op otherwise.
func (kb *Keyboard) ClearKeyBufferOnTimeout() {
	if kb.fifo.inUse() && kb.isKeypressTimeout() {
		kb.ClearKeyBuffer()
	}
}

// EscapeKeyHandling resolves prefixes that aged out without further
// bytes arriving. A buffer holding exactly one ESC past the timeout
// invokes OnEscapePressed directly; a buffer holding ESC plus one of
// the continuation markers 'O', '[', ']' past the timeout enqueues the
// matching meta key. Both checks are no-ops unless their preconditions
// hold exactly. Call it periodically from the event loop.
func (kb *Keyboard) EscapeKeyHandling() {
	if kb.fifo.len() == 1 && kb.fifo.bytes()[0] == 0x1B && kb.isKeypressTimeout() {
		kb.fifo.clear()
		if kb.OnEscapePressed != nil {
			kb.OnEscapePressed()
		}
	}
	kb.substringKeyHandling()
}

// ProcessQueuedInput drains the event queue in arrival order. For each
// key it invokes OnKeyPressed, consults quit, invokes OnKeyReleased,
// and consults quit again; draining stops immediately when quit
// reports true, leaving remaining keys queued. A nil quit never stops.
func (kb *Keyboard) ProcessQueuedInput(quit func() bool) {
	if quit == nil {
		quit = func() bool { return false }
	}
	for !kb.queue.empty() {
		key, _ := kb.queue.pop()
		if key <= KeyNone {
			continue
		}
		kb.lastKey = key
		if kb.OnKeyPressed != nil {
			kb.OnKeyPressed(key)
		}
		if quit() {
			return
		}
		if kb.OnKeyReleased != nil {
			kb.OnKeyReleased(key)
		}
		if quit() {
			return
		}
		kb.lastKey = KeyNone
	}
}

func (kb *Keyboard) isKeypressTimeout() bool {
	return time.Since(kb.timeKeypressed) > kb.keyTimeout
}

// parseKeyBuffer is the drain loop: read one byte at a time while
// bytes are available, append to the buffer, and re-run classification
// until the buffer empties or a prefix comes back Incomplete.
func (kb *Keyboard) parseKeyBuffer() {
	for {
		b, n := kb.readKey()
		if n <= 0 {
			break
		}
		kb.timeKeypressed = time.Now()
		kb.hasPending = false

		if !kb.fifo.append(b) {
			// Never write past capacity; a hostile stream only
			// costs us its own bytes.
			kb.log.Debug("input buffer full, byte dropped", "byte", b)
		}

		key := KeyNone
		for kb.fifo.inUse() && key != KeyIncomplete {
			key = kb.parseKeySequence()

			if key == KeyX11Mouse || key == KeyExtendedMouse || key == KeyUrxvtMouse {
				kb.mouseTracking(key)
				break
			}
			if key != KeyIncomplete {
				if key == keyUnset {
					key = KeyNone
				}
				if key > KeyNone {
					key = kb.corrector(key)
				}
				kb.queue.push(key)
			}
		}

		if kb.queue.full() {
			break
		}
	}
}

// parseKeySequence classifies the buffer's current contents through
// the matcher tiers in priority order: mouse, capability catalog,
// built-in catalog, single-byte fallback. An unresolved ESC-led prefix
// stays Incomplete until the keypress timeout elapses.
func (kb *Keyboard) parseKeySequence() Key {
	if kb.fifo.bytes()[0] == 0x1B {
		if key := kb.getMouseProtocolKey(); key != keyUnset {
			return key
		}
		if key := kb.getCapabilityKey(); key != keyUnset {
			return key
		}
		if key := kb.getBuiltinKey(); key != keyUnset {
			return key
		}
		if !kb.isKeypressTimeout() {
			return KeyIncomplete
		}
	}
	return kb.getSingleKey()
}

// getMouseProtocolKey sniffs for a mouse report at the buffer front.
// Only active when mouse tracking is enabled.
func (kb *Keyboard) getMouseProtocolKey() Key {
	if !kb.mouse {
		return keyUnset
	}
	return sniffMouse(kb.fifo.bytes())
}

// getCapabilityKey matches the terminal capability catalog. An entry
// matches only when its length equals the buffered length exactly and
// every byte compares equal; prefixes never match.
func (kb *Keyboard) getCapabilityKey() Key {
	if len(kb.capMap) == 0 {
		return keyUnset
	}
	entry, ok := lookupExact(kb.capMap, kb.fifo.bytes())
	if !ok {
		return keyUnset
	}
	kb.fifo.strip(len(entry.Seq))
	return entry.Key
}

// getBuiltinKey matches the built-in catalog with the same
// exact-length rule. Two-byte hits whose second byte is 'O', '[' or
// ']' are legitimate prefixes of longer sequences and resolve to
// Incomplete until the keypress timeout elapses. The guard is
// deliberately limited to those three markers; other two-byte entries
// would not get it.
func (kb *Keyboard) getBuiltinKey() Key {
	buf := kb.fifo.bytes()
	entry, ok := lookupExact(kb.keyMap, buf)
	if !ok {
		return keyUnset
	}
	if len(entry.Seq) == 2 &&
		(buf[1] == 'O' || buf[1] == '[' || buf[1] == ']') &&
		!kb.isKeypressTimeout() {
		return KeyIncomplete
	}
	kb.fifo.strip(len(entry.Seq))
	return entry.Key
}

// getSingleKey decodes the first logical character in the buffer. With
// UTF-8 enabled, a lead byte of the form 11xxxxxx pulls in 2-4 bytes,
// waiting (Incomplete) while fewer have arrived and the timeout has
// not elapsed. The consumed bytes are always removed, so malformed
// input cannot stall the engine.
func (kb *Keyboard) getSingleKey() Key {
	buf := kb.fifo.bytes()
	first := buf[0]
	n := 1
	var key Key

	if kb.utf8 && first&0xC0 == 0xC0 {
		switch {
		case first&0xE0 == 0xC0:
			n = 2
		case first&0xF0 == 0xE0:
			n = 3
		case first&0xF8 == 0xF0:
			n = 4
		}
		if len(buf) < n {
			if !kb.isKeypressTimeout() {
				return KeyIncomplete
			}
			n = len(buf)
		}
		key = utf8Decode(buf[:n])
	} else {
		key = Key(first)
	}

	kb.fifo.strip(n)

	switch key {
	case 0: // Ctrl+Space and Ctrl+@ share a codepoint
		key = KeyCtrlSpace
	case 127:
		key = KeyBackspace
	}
	return key
}

// utf8Decode accumulates a codepoint from up to four UTF-8 bytes, six
// bits per continuation byte. A byte matching no UTF-8 pattern marks
// the result unset; the caller still consumes the bytes.
func utf8Decode(buf []byte) Key {
	var ucs Key
	for _, ch := range buf {
		switch {
		case ch&0xC0 == 0x80:
			// byte 2..4 = 10xxxxxx
			ucs = ucs<<6 | Key(ch&0x3F)
		case ch < 128:
			ucs = Key(ch)
		case ch&0xE0 == 0xC0:
			// byte 1 = 110xxxxx (2 byte mapping)
			ucs = Key(ch & 0x1F)
		case ch&0xF0 == 0xE0:
			// byte 1 = 1110xxxx (3 byte mapping)
			ucs = Key(ch & 0x0F)
		case ch&0xF8 == 0xF0:
			// byte 1 = 11110xxx (4 byte mapping)
			ucs = Key(ch & 0x07)
		default:
			ucs = keyUnset
		}
	}
	return ucs
}

// substringKeyHandling resolves the two-byte meta prefixes that are
// substrings of longer sequences and only decode after a timeout.
func (kb *Keyboard) substringKeyHandling() {
	if kb.fifo.len() != 2 || !kb.isKeypressTimeout() {
		return
	}
	buf := kb.fifo.bytes()
	if buf[0] != 0x1B {
		return
	}
	var key Key
	switch buf[1] {
	case 'O':
		key = KeyMetaO
	case '[':
		key = KeyMetaLeftBracket
	case ']':
		key = KeyMetaRightBracket
	default:
		return
	}
	kb.fifo.clear()
	kb.queue.push(key)
}

// mouseTracking hands the raw report to the mouse hook and consumes
// the buffered sequence.
func (kb *Keyboard) mouseTracking(protocol Key) {
	kb.lastKey = protocol
	if kb.OnMouseTracking != nil {
		kb.OnMouseTracking(MouseEvent{
			Protocol: protocol,
			Seq:      kb.fifo.bytes(),
		})
	}
	kb.fifo.clear()
}

// readKey performs one single-byte read with the descriptor scoped
// into non-blocking mode. The original mode is restored on every exit
// path. Returns the byte and 1, or 0 when no data is available, or -1
// on a read error.
func (kb *Keyboard) readKey() (byte, int) {
	fd, restore, err := setNonblock(kb.input)
	if err != nil {
		// Keep reading in blocking mode; the poller already
		// reported data.
		kb.log.Warn("cannot set non-blocking input", "error", err)
	}
	defer restore()
	b, n, err := readByte(fd)
	if err != nil {
		kb.log.Debug("input read failed", "error", err)
		return 0, -1
	}
	return b, n
}
