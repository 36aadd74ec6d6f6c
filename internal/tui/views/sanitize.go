package views

import (
	"strings"
	"unicode/utf8"
)

// sanitizeForTerminal drops codepoints that tcell/tview render badly or
// that a remote user could use to move the cursor:
// - C0 controls other than newline and tab, DEL, and C1 controls
// - skin tone modifiers (U+1F3FB..U+1F3FF)
// - zero width joiner (U+200D)
// - variation selectors (U+FE00..U+FE0F, U+E0100..U+E01EF)
// Invalid UTF-8 bytes are dropped as well.
func sanitizeForTerminal(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r != utf8.RuneError && !isProblematicRune(r) {
			b.WriteRune(r)
		}
		i += size
	}
	return b.String()
}

func isProblematicRune(r rune) bool {
	switch {
	case r == '\n' || r == '\t':
		return false
	case r < 0x20 || r == 0x7F:
		return true
	case r >= 0x80 && r <= 0x9F:
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF:
		return true
	case r == 0x200D:
		return true
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	case r >= 0xE0100 && r <= 0xE01EF:
		return true
	default:
		return false
	}
}

// singleLine sanitizes s and folds newlines and tabs into spaces, for
// table cells and titles.
func singleLine(s string) string {
	s = sanitizeForTerminal(s)
	return strings.Join(strings.Fields(s), " ")
}
