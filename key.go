package keyboard

import (
	"fmt"
	"strings"
	"unicode"
)

// Key is a decoded, semantically identified key or mouse event.
// Printable keys are their own codepoints. Named keys (cursor keys,
// function keys, and friends) live above the extended base so they can
// never collide with a codepoint.
type Key int32

const extended Key = 1 << 30

const (
	// KeyNone means no event. It is also the resolution of malformed
	// input the engine consumed to keep making progress; dispatch
	// skips it.
	KeyNone Key = 0
	// keyUnset is a matcher-tier miss. It never escapes the engine.
	keyUnset Key = -1
	// KeyIncomplete classifies a valid prefix of a longer recognized
	// sequence. It is never enqueued; the engine waits for more bytes
	// or for the keypress timeout.
	KeyIncomplete Key = -2
)

const (
	KeyUp Key = extended + 1 + iota
	KeyDown
	KeyRight
	KeyLeft
	KeyShiftUp
	KeyShiftDown
	KeyShiftRight
	KeyShiftLeft
	KeyCtrlUp
	KeyCtrlDown
	KeyCtrlRight
	KeyCtrlLeft
	KeyInsert
	KeyDelete
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDown
	KeyBackTab
	KeyBegin
	KeyBackspace
	KeyCtrlSpace
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyF13
	KeyF14
	KeyF15
	KeyF16
	KeyF17
	KeyF18
	KeyF19
	KeyF20
	KeyMetaO
	KeyMetaLeftBracket
	KeyMetaRightBracket
	KeyFocusIn
	KeyFocusOut
	KeyX11Mouse
	KeyExtendedMouse
	KeyUrxvtMouse
)

// Aliases for keys that are their own codepoints
const (
	KeyTab   Key = 0x09
	KeyEnter Key = 0x0D
	KeyEsc   Key = 0x1B
	KeySpace Key = 0x20
)

var keyNames = map[Key]string{
	KeyUp:               "up",
	KeyDown:             "down",
	KeyRight:            "right",
	KeyLeft:             "left",
	KeyShiftUp:          "s-up",
	KeyShiftDown:        "s-down",
	KeyShiftRight:       "s-right",
	KeyShiftLeft:        "s-left",
	KeyCtrlUp:           "c-up",
	KeyCtrlDown:         "c-down",
	KeyCtrlRight:        "c-right",
	KeyCtrlLeft:         "c-left",
	KeyInsert:           "insert",
	KeyDelete:           "delete",
	KeyHome:             "home",
	KeyEnd:              "end",
	KeyPgUp:             "pgup",
	KeyPgDown:           "pgdown",
	KeyBackTab:          "backtab",
	KeyBegin:            "begin",
	KeyBackspace:        "bs",
	KeyCtrlSpace:        "c-space",
	KeyF1:               "f1",
	KeyF2:               "f2",
	KeyF3:               "f3",
	KeyF4:               "f4",
	KeyF5:               "f5",
	KeyF6:               "f6",
	KeyF7:               "f7",
	KeyF8:               "f8",
	KeyF9:               "f9",
	KeyF10:              "f10",
	KeyF11:              "f11",
	KeyF12:              "f12",
	KeyF13:              "f13",
	KeyF14:              "f14",
	KeyF15:              "f15",
	KeyF16:              "f16",
	KeyF17:              "f17",
	KeyF18:              "f18",
	KeyF19:              "f19",
	KeyF20:              "f20",
	KeyMetaO:            "m-O",
	KeyMetaLeftBracket:  "m-[",
	KeyMetaRightBracket: "m-]",
	KeyFocusIn:          "focus-in",
	KeyFocusOut:         "focus-out",
	KeyX11Mouse:         "x11-mouse",
	KeyExtendedMouse:    "sgr-mouse",
	KeyUrxvtMouse:       "urxvt-mouse",
	KeyTab:              "tab",
	KeyEnter:            "enter",
	KeyEsc:              "esc",
	KeySpace:            "space",
}

var keyByName = func() map[string]Key {
	m := make(map[string]Key, len(keyNames))
	for k, name := range keyNames {
		m[name] = k
	}
	return m
}()

// String renders a readable name for the key: printable keys as
// themselves, control keys as <c-x>, named keys as <name>.
func (k Key) String() string {
	switch k {
	case KeyNone:
		return "none"
	case KeyIncomplete:
		return "incomplete"
	case keyUnset:
		return "unset"
	}
	if name, ok := keyNames[k]; ok {
		return "<" + name + ">"
	}
	switch {
	case k < 0x20:
		ch := fmt.Sprintf("%c", rune(k)+0x40)
		return fmt.Sprintf("<c-%s>", strings.ToLower(ch))
	case k <= Key(unicode.MaxRune):
		return string(rune(k))
	}
	return "<unknown>"
}

// KeyName returns the catalog name of a key, or the character itself
// for printable ASCII. Unknown keys yield an empty string.
func KeyName(k Key) string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	if k > 32 && k < 127 {
		return string(rune(k))
	}
	return ""
}

// KeyByName resolves a catalog name back to its key. Single printable
// ASCII characters resolve to themselves.
func KeyByName(name string) (Key, bool) {
	if k, ok := keyByName[name]; ok {
		return k, true
	}
	if len(name) == 1 && name[0] > 32 && name[0] < 127 {
		return Key(name[0]), true
	}
	return KeyNone, false
}
