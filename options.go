package keyboard

import (
	"os"
	"time"

	"golang.org/x/exp/slog"
)

const (
	defaultBufferSize = 64
	defaultQueueSize  = 32

	defaultKeyTimeout = 100 * time.Millisecond
	defaultPollFast   = 5 * time.Millisecond
	defaultPollSlow   = 100 * time.Millisecond
)

// Options provide setup options for the keyboard engine. The zero
// value is usable: stdin input, built-in key catalog only, UTF-8 and
// mouse tracking disabled, default timings.
type Options struct {
	// Input is the descriptor the engine polls and reads from.
	// Defaults to os.Stdin. The engine never writes to it.
	Input *os.File

	// Logger is an optional slog.Logger. The engine logs using the
	// stdlib levels and discards logs by default.
	Logger *slog.Logger

	// UTF8 enables multi-byte UTF-8 decoding of non-sequence input.
	UTF8 bool

	// MouseTracking enables the mouse protocol sniffer. Without it,
	// mouse reports decode as ordinary (unrecognized) sequences.
	MouseTracking bool

	// DisableNonBlocking forces the poller to treat the platform as
	// having no non-blocking input support: the relaxed poll timeout
	// is used on every call.
	DisableNonBlocking bool

	// KeyTimeout is the elapsed time after which an ambiguous prefix
	// is force-resolved instead of awaited. Default 100ms.
	KeyTimeout time.Duration

	// PollFast and PollSlow are the poll timeouts used right after a
	// keypress and during idle, respectively. Defaults 5ms / 100ms.
	PollFast time.Duration
	PollSlow time.Duration

	// QueueSize caps the event queue; decoding stops pulling bytes
	// once the queue holds this many keys. Default 32.
	QueueSize int

	// BufferSize caps the accumulation buffer; bytes arriving when it
	// is full are dropped. Default 64.
	BufferSize int

	// CapabilityKeys is the dynamic, terminal-specific key catalog,
	// usually produced by TerminfoEntries. May be empty.
	CapabilityKeys []KeyEntry

	// Corrector post-processes every resolved key before it is
	// enqueued. Defaults to the identity. See LinuxConsoleCorrector.
	Corrector KeyCorrector
}

func (o Options) withDefaults() Options {
	if o.Input == nil {
		o.Input = os.Stdin
	}
	if o.KeyTimeout <= 0 {
		o.KeyTimeout = defaultKeyTimeout
	}
	if o.PollFast <= 0 {
		o.PollFast = defaultPollFast
	}
	if o.PollSlow <= 0 {
		o.PollSlow = defaultPollSlow
	}
	if o.QueueSize <= 0 {
		o.QueueSize = defaultQueueSize
	}
	if o.BufferSize <= 0 {
		o.BufferSize = defaultBufferSize
	}
	if o.Corrector == nil {
		o.Corrector = identityCorrector
	}
	return o
}
