package keyboard

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// WidthMethod selects how rendered cell widths are measured. Terminals
// disagree on grapheme handling; consumers echoing decoded input
// should pick the method matching their terminal.
type WidthMethod int

const (
	// WidthWcwidth measures rune by rune, skipping variation
	// selectors. This is what legacy terminals do.
	WidthWcwidth WidthMethod = iota
	// WidthNoZWJ measures graphemes but ignores zero-width joiners.
	WidthNoZWJ
	// WidthUnicodeStd measures extended grapheme clusters per the
	// unicode standard.
	WidthUnicodeStd
)

// StringWidth returns the number of terminal cells s occupies when
// echoed, under the given method.
func StringWidth(s string, method WidthMethod) int {
	switch method {
	case WidthNoZWJ:
		s = strings.ReplaceAll(s, "‍", "")
		return uniseg.StringWidth(s)
	case WidthUnicodeStd:
		return uniseg.StringWidth(s)
	default:
		total := 0
		for _, r := range s {
			if r >= 0xFE00 && r <= 0xFE0F {
				// Variation Selectors 1 - 16
				continue
			}
			if r >= 0xE0100 && r <= 0xE01EF {
				// Variation Selectors 17-256
				continue
			}
			total += runewidth.RuneWidth(r)
		}
		return total
	}
}

// Width returns the rendered cell width of the key when echoed as
// text. Named keys and control keys occupy no cells.
func (k Key) Width(method WidthMethod) int {
	if k < 0x20 || k >= extended || k > Key(unicode.MaxRune) {
		return 0
	}
	return StringWidth(string(rune(k)), method)
}
