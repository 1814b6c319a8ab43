package exports

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// The core PDF fonts only carry the Windows-1252 repertoire.
var winAnsi = charmap.Windows1252

// asciiFallbacks maps glyphs that models like to emit onto printable look-alikes.
var asciiFallbacks = map[rune]string{
	'\u2010': "-", '\u2011': "-", '\u2012': "-", '\u2015': "-", '\u2212': "-",
	'\u2032': "'", '\u2033': "\"", '\u2043': "-", '\u2023': ">",
	'\u2190': "<-", '\u2192': "->", '\u2194': "<->", '\u21D2': "=>",
	'\u2264': "<=", '\u2265': ">=", '\u2248': "~", '\u2260': "!=",
	'\u2713': "v", '\u2714': "v", '\u2705': "[x]", '\u2610': "[ ]", '\u2611': "[x]",
	'\u25CF': "*", '\u25CB': "o", '\u25AA': "*", '\u25E6': "o",
	'\u2002': " ", '\u2003': " ", '\u2009': " ", '\u200A': " ", '\u202F': " ",
	'\u200B': "", '\u200C': "", '\u200D': "", '\uFE0F': "", '\uFEFF': "",
}

// encodeResult is one line converted to the font encoding.
type encodeResult struct {
	text     string
	replaced int
	// first is the first rune that had no faithful encoding.
	first rune
}

// encodeLine converts UTF-8 text to Windows-1252 bytes. Runes outside the code page use an
// ASCII fallback when one exists and become '?' otherwise.
func encodeLine(line string) encodeResult {
	var b strings.Builder
	b.Grow(len(line))
	res := encodeResult{first: -1}
	for _, r := range line {
		if r == '\t' {
			b.WriteString("    ")
			continue
		}
		if r == utf8.RuneError {
			res.note(r)
			b.WriteByte('?')
			continue
		}
		if c, ok := winAnsi.EncodeRune(r); ok {
			b.WriteByte(c)
			continue
		}
		res.note(r)
		if fb, ok := asciiFallbacks[r]; ok {
			b.WriteString(fb)
			continue
		}
		b.WriteByte('?')
	}
	res.text = b.String()
	return res
}

func (r *encodeResult) note(ch rune) {
	if r.first < 0 {
		r.first = ch
	}
	r.replaced++
}

func runeLabel(r rune) string {
	return fmt.Sprintf("U+%04X", r)
}
