package keyboard

import "sort"

// KeyEntry associates one terminal byte sequence with a key. Entries
// with an empty sequence are invalid and never match.
type KeyEntry struct {
	Seq string
	Key Key
}

// builtinKeyMap is the compiled-in catalog of canonical escape
// sequences. It covers the CSI and SS3 forms terminals actually send,
// plus the three two-byte meta prefixes that double as prefixes of
// longer sequences. New returns a copy sorted ascending by sequence
// length so the exact-length lookup can stop early.
var builtinKeyMap = []KeyEntry{
	// Two-byte meta prefixes. These are also the lead-in of SS3, CSI
	// and OSC sequences and get the ambiguity guard in getBuiltinKey.
	{"\x1bO", KeyMetaO},
	{"\x1b[", KeyMetaLeftBracket},
	{"\x1b]", KeyMetaRightBracket},

	// Cursor keys, CSI and SS3 forms
	{"\x1b[A", KeyUp},
	{"\x1b[B", KeyDown},
	{"\x1b[C", KeyRight},
	{"\x1b[D", KeyLeft},
	{"\x1bOA", KeyUp},
	{"\x1bOB", KeyDown},
	{"\x1bOC", KeyRight},
	{"\x1bOD", KeyLeft},

	{"\x1b[H", KeyHome},
	{"\x1b[F", KeyEnd},
	{"\x1bOH", KeyHome},
	{"\x1bOF", KeyEnd},
	{"\x1b[E", KeyBegin},
	{"\x1b[Z", KeyBackTab},
	{"\x1b[I", KeyFocusIn},
	{"\x1b[O", KeyFocusOut},

	// Edit pad, vt220 style
	{"\x1b[1~", KeyHome},
	{"\x1b[2~", KeyInsert},
	{"\x1b[3~", KeyDelete},
	{"\x1b[4~", KeyEnd},
	{"\x1b[5~", KeyPgUp},
	{"\x1b[6~", KeyPgDown},
	{"\x1b[7~", KeyHome},
	{"\x1b[8~", KeyEnd},

	// Function keys, SS3 form for F1-F4
	{"\x1bOP", KeyF1},
	{"\x1bOQ", KeyF2},
	{"\x1bOR", KeyF3},
	{"\x1bOS", KeyF4},

	// Function keys, CSI form
	{"\x1b[11~", KeyF1},
	{"\x1b[12~", KeyF2},
	{"\x1b[13~", KeyF3},
	{"\x1b[14~", KeyF4},
	{"\x1b[15~", KeyF5},
	{"\x1b[17~", KeyF6},
	{"\x1b[18~", KeyF7},
	{"\x1b[19~", KeyF8},
	{"\x1b[20~", KeyF9},
	{"\x1b[21~", KeyF10},
	{"\x1b[23~", KeyF11},
	{"\x1b[24~", KeyF12},
	{"\x1b[25~", KeyF13},
	{"\x1b[26~", KeyF14},
	{"\x1b[28~", KeyF15},
	{"\x1b[29~", KeyF16},
	{"\x1b[31~", KeyF17},
	{"\x1b[32~", KeyF18},
	{"\x1b[33~", KeyF19},
	{"\x1b[34~", KeyF20},

	// Modified cursor keys, xterm style
	{"\x1b[1;2A", KeyShiftUp},
	{"\x1b[1;2B", KeyShiftDown},
	{"\x1b[1;2C", KeyShiftRight},
	{"\x1b[1;2D", KeyShiftLeft},
	{"\x1b[1;5A", KeyCtrlUp},
	{"\x1b[1;5B", KeyCtrlDown},
	{"\x1b[1;5C", KeyCtrlRight},
	{"\x1b[1;5D", KeyCtrlLeft},
}

// sortedByLength returns a copy of entries sorted ascending by
// sequence length, dropping invalid zero-length sequences. Sorting is
// stable so same-length entries keep their catalog order.
func sortedByLength(entries []KeyEntry) []KeyEntry {
	sorted := make([]KeyEntry, 0, len(entries))
	for _, e := range entries {
		if len(e.Seq) == 0 {
			continue
		}
		sorted = append(sorted, e)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Seq) < len(sorted[j].Seq)
	})
	return sorted
}

// lookupExact finds the entry whose sequence matches buf byte for byte
// and in full length. Entries are sorted by length, so the scan stops
// once sequences get longer than the buffer.
func lookupExact(entries []KeyEntry, buf []byte) (KeyEntry, bool) {
	for _, e := range entries {
		if len(e.Seq) > len(buf) {
			break
		}
		if len(e.Seq) != len(buf) {
			continue
		}
		if string(buf) == e.Seq {
			return e, true
		}
	}
	return KeyEntry{}, false
}
