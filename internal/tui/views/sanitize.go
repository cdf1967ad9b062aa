package views

import (
	"strings"
	"unicode"
)

// sanitize prepares server text for a tview cell: it drops emoji modifiers
// that tcell measures wrongly and control characters other than newline, then
// escapes tview tags.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if dropRune(r) {
			continue
		}
		b.WriteRune(r)
	}
	return escape(b.String())
}

// sanitizeLine is sanitize with newlines and tabs flattened to spaces.
func sanitizeLine(s string) string {
	return strings.Join(strings.Fields(sanitize(s)), " ")
}

func dropRune(r rune) bool {
	switch {
	case r == '\n':
		return false
	case r == '\t':
		return false
	case unicode.IsControl(r):
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tone modifiers
		return true
	case r == 0x200D: // zero width joiner
		return true
	case r >= 0xFE00 && r <= 0xFE0F: // variation selectors
		return true
	case r >= 0xE0100 && r <= 0xE01EF:
		return true
	default:
		return false
	}
}
