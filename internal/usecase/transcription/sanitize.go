package transcription

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// decorativeGlyphs covers arrows, miscellaneous symbols and dingbats, the
// emoji blocks, the zero-width joiner and variation selector-16.
var decorativeGlyphs = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200D, Hi: 0x200D, Stride: 1},
		{Lo: 0x2190, Hi: 0x21FF, Stride: 1},
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1},
		{Lo: 0xFE0F, Hi: 0xFE0F, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1F300, Hi: 0x1F6FF, Stride: 1},
		{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1},
		{Lo: 0x1FA70, Hi: 0x1FAFF, Stride: 1},
	},
}

// StripDecorativeGlyphs removes emoji and decorative symbols and leaves every
// other rune untouched.
func StripDecorativeGlyphs(s string) string {
	if s == "" {
		return s
	}
	out, _, err := transform.String(runes.Remove(runes.In(decorativeGlyphs)), s)
	if err != nil {
		return s
	}
	return out
}

// sanitizeAll strips every item in place order and returns a new slice.
func sanitizeAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, StripDecorativeGlyphs(item))
	}
	return out
}
