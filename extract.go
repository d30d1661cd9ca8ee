// FILE: nofus/extract.go
package nofus

import (
	"strings"
	"unicode/utf8"
)

// ExtractValue returns the value assigned on line. The second result is false
// when the line is not an assignment.
func ExtractValue(line string, r *Rules) (Value, bool) {
	line = trimLineEnding(line)
	cl := Classify(line, r)
	if cl.Kind != LineAssignment {
		return Value{}, false
	}
	return extractClassified(line, cl, r), true
}

func extractClassified(line string, cl Line, r *Rules) Value {
	if !cl.HasDelimiter {
		return Flag()
	}
	vs := scanValue(line[cl.ValueStart:], r)
	return Text(Unescape(vs.raw, r.Escape))
}

// Unescape replaces every escape character and the character after it with
// that character alone. A trailing escape with nothing after it is kept.
func Unescape(s string, esc rune) string {
	if !strings.ContainsRune(s, esc) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		ch, size := utf8.DecodeRuneInString(s[i:])
		if ch == esc && i+size < len(s) {
			next, nsize := utf8.DecodeRuneInString(s[i+size:])
			b.WriteRune(next)
			i += size + nsize
			continue
		}
		b.WriteRune(ch)
		i += size
	}
	return b.String()
}

// Quote renders s as a quoted value that ExtractValue reads back unchanged.
func Quote(s string, r *Rules) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteRune(r.Quote)
	for _, ch := range s {
		if ch == r.Quote || ch == r.Escape {
			b.WriteRune(r.Escape)
		}
		b.WriteRune(ch)
	}
	b.WriteRune(r.Quote)
	return b.String()
}
