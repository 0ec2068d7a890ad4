package keyboard

// KeyCorrector remaps a decoded key for platform-specific console
// quirks. It runs after every successful resolution and before the key
// is enqueued, so later stages see the corrected value. It only ever
// receives resolved keys, never Incomplete or mouse protocol markers.
type KeyCorrector func(Key) Key

func identityCorrector(k Key) Key { return k }

// ModifierState is a snapshot of the modifier keys held at the moment
// a key was decoded.
type ModifierState struct {
	Shift bool
	Ctrl  bool
}

var (
	shiftCorrections = map[Key]Key{
		KeyUp:    KeyShiftUp,
		KeyDown:  KeyShiftDown,
		KeyRight: KeyShiftRight,
		KeyLeft:  KeyShiftLeft,
	}
	ctrlCorrections = map[Key]Key{
		KeyUp:    KeyCtrlUp,
		KeyDown:  KeyCtrlDown,
		KeyRight: KeyCtrlRight,
		KeyLeft:  KeyCtrlLeft,
	}
)

// LinuxConsoleCorrector builds a corrector for the Linux virtual
// console, which reports cursor keys without encoding held modifiers.
// state supplies the console's current shift state (typically read via
// the TIOCLINUX ioctl); the corrector upgrades cursor keys to their
// modified variants accordingly. Everything else passes through.
func LinuxConsoleCorrector(state func() ModifierState) KeyCorrector {
	return func(k Key) Key {
		st := state()
		switch {
		case st.Ctrl:
			if c, ok := ctrlCorrections[k]; ok {
				return c
			}
		case st.Shift:
			if c, ok := shiftCorrections[k]; ok {
				return c
			}
		}
		return k
	}
}
