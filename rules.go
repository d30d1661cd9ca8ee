// FILE: nofus/rules.go
package nofus

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultCharClass is the character class used for variable names and scope
// segments unless overridden.
const DefaultCharClass = `a-zA-Z0-9_\-`

// Rules holds the lexical tokens of the grammar.
// Changing them is allowed before the first load; unusual combinations (a
// comment marker that is also a name character, identical delimiters) are not
// rejected and may break classification.
type Rules struct {
	// CommentStarts lists line comment markers; the earliest one in a line wins.
	CommentStarts []string

	// AssignDelimiter separates a variable name from its value.
	AssignDelimiter string

	// ScopeDelimiter joins scope segments, inline and inside brackets.
	ScopeDelimiter string

	// Quote opens and closes a quoted value.
	Quote rune

	// Escape makes the following character literal.
	Escape rune

	// NameChars is the character class of variable name segments.
	NameChars CharClass

	// ScopeChars is the character class of bracketed scope segments.
	ScopeChars CharClass
}

// DefaultRules returns the standard token set: `#` and `//` comments, `=`
// assignment, `.` scopes, `"` quotes, `\` escapes.
func DefaultRules() Rules {
	class := MustCharClass(DefaultCharClass)
	return Rules{
		CommentStarts:   []string{"#", "//"},
		AssignDelimiter: "=",
		ScopeDelimiter:  ".",
		Quote:           '"',
		Escape:          '\\',
		NameChars:       class,
		ScopeChars:      class,
	}
}

// Validate checks that no token is empty.
func (r *Rules) Validate() error {
	for i, c := range r.CommentStarts {
		if c == "" {
			return fmt.Errorf("%w: comment marker %d is empty", ErrInvalidRules, i)
		}
	}
	if r.AssignDelimiter == "" {
		return fmt.Errorf("%w: assignment delimiter is empty", ErrInvalidRules)
	}
	if r.ScopeDelimiter == "" {
		return fmt.Errorf("%w: scope delimiter is empty", ErrInvalidRules)
	}
	if r.Quote == 0 || r.Escape == 0 {
		return fmt.Errorf("%w: quote and escape characters must be set", ErrInvalidRules)
	}
	if r.NameChars.IsEmpty() || r.ScopeChars.IsEmpty() {
		return fmt.Errorf("%w: character classes must not be empty", ErrInvalidRules)
	}
	return nil
}

// clone returns a copy that shares nothing mutable with r.
func (r Rules) clone() Rules {
	r.CommentStarts = append([]string(nil), r.CommentStarts...)
	return r
}

// commentAt reports whether a comment marker starts at byte offset i.
func (r *Rules) commentAt(s string, i int) bool {
	for _, c := range r.CommentStarts {
		if strings.HasPrefix(s[i:], c) {
			return true
		}
	}
	return false
}

// findComment returns the earliest comment marker offset at or after from, or -1.
func (r *Rules) findComment(s string, from int) int {
	pos := -1
	for _, c := range r.CommentStarts {
		idx := strings.Index(s[from:], c)
		if idx >= 0 && (pos < 0 || from+idx < pos) {
			pos = from + idx
		}
	}
	return pos
}

// SplitKey splits a dotted key into segments. It fails on an empty segment or
// on a character outside the name class.
func (r *Rules) SplitKey(key string) ([]string, bool) {
	return splitSegments(key, r.ScopeDelimiter, r.NameChars)
}

// JoinKey joins segments with the scope delimiter.
func (r *Rules) JoinKey(segments ...string) string {
	return strings.Join(segments, r.ScopeDelimiter)
}

func splitSegments(s, delim string, class CharClass) ([]string, bool) {
	if s == "" {
		return nil, false
	}
	segments := strings.Split(s, delim)
	for _, seg := range segments {
		if !class.Matches(seg) {
			return nil, false
		}
	}
	return segments, true
}

// CharClass is a set of characters described the way a bracket expression
// is written: single characters and `a-z` ranges, `\` escaping the next one.
type CharClass struct {
	spec   string
	ranges []runeRange
}

type runeRange struct {
	lo, hi rune
}

// NewCharClass parses a class specification such as `a-zA-Z0-9_\-`.
// A dash at either end of the specification is literal.
func NewCharClass(spec string) (CharClass, error) {
	var items []rune
	var literal []bool
	for i := 0; i < len(spec); {
		r, size := utf8.DecodeRuneInString(spec[i:])
		if r == '\\' {
			if i+size >= len(spec) {
				return CharClass{}, fmt.Errorf("%w: dangling escape in character class %q", ErrInvalidRules, spec)
			}
			next, nsize := utf8.DecodeRuneInString(spec[i+size:])
			items = append(items, next)
			literal = append(literal, true)
			i += size + nsize
			continue
		}
		items = append(items, r)
		literal = append(literal, false)
		i += size
	}

	cc := CharClass{spec: spec}
	for i := 0; i < len(items); i++ {
		if i+2 < len(items) && items[i+1] == '-' && !literal[i+1] {
			lo, hi := items[i], items[i+2]
			if lo > hi {
				return CharClass{}, fmt.Errorf("%w: reversed range %c-%c in character class %q", ErrInvalidRules, lo, hi, spec)
			}
			cc.ranges = append(cc.ranges, runeRange{lo: lo, hi: hi})
			i += 2
			continue
		}
		cc.ranges = append(cc.ranges, runeRange{lo: items[i], hi: items[i]})
	}
	return cc, nil
}

// MustCharClass is like NewCharClass but panics on error.
func MustCharClass(spec string) CharClass {
	cc, err := NewCharClass(spec)
	if err != nil {
		panic(err)
	}
	return cc
}

// Contains reports whether r belongs to the class.
func (c CharClass) Contains(r rune) bool {
	for _, rr := range c.ranges {
		if r >= rr.lo && r <= rr.hi {
			return true
		}
	}
	return false
}

// Matches reports whether s is non-empty and made only of class characters.
func (c CharClass) Matches(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !c.Contains(r) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the class holds no character.
func (c CharClass) IsEmpty() bool {
	return len(c.ranges) == 0
}

func (c CharClass) String() string {
	return c.spec
}
