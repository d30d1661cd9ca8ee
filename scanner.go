// FILE: nofus/scanner.go
package nofus

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// scanState names the position of the cursor inside a line.
type scanState int

const (
	stateStart scanState = iota
	stateInName
	stateAfterName
	stateAfterDelimiter
	stateInQuote
	stateAfterQuote
	stateInComment
	stateDone
	stateFailed
)

var stateNames = [...]string{
	stateStart:          "Start",
	stateInName:         "InName",
	stateAfterName:      "AfterName",
	stateAfterDelimiter: "AfterDelimiter",
	stateInQuote:        "InQuote",
	stateAfterQuote:     "AfterQuote",
	stateInComment:      "InComment",
	stateDone:           "Done",
	stateFailed:         "Failed",
}

func (s scanState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("scanState(%d)", int(s))
}

// cursor walks a single line rune by rune.
type cursor struct {
	rules *Rules
	s     string
	pos   int
}

func (c *cursor) done() bool {
	return c.pos >= len(c.s)
}

func (c *cursor) peek() (rune, int) {
	return utf8.DecodeRuneInString(c.s[c.pos:])
}

func (c *cursor) advance() {
	_, size := c.peek()
	c.pos += size
}

func (c *cursor) hasPrefix(tok string) bool {
	return strings.HasPrefix(c.s[c.pos:], tok)
}

func (c *cursor) atComment() bool {
	return !c.done() && c.rules.commentAt(c.s, c.pos)
}

func (c *cursor) skipSpace() {
	for !c.done() {
		r, size := c.peek()
		if !unicode.IsSpace(r) {
			return
		}
		c.pos += size
	}
}

// nameScan is the outcome of scanning the name part of an assignment line.
type nameScan struct {
	state      scanState
	name       string
	hasDelim   bool
	valueStart int
	reason     string
}

// scanName runs Start -> InName -> AfterName and stops either on the
// assignment delimiter (AfterDelimiter), on a comment or line end (InComment /
// Done), or on an unexpected character (Failed).
func scanName(line string, r *Rules) nameScan {
	c := &cursor{rules: r, s: line}
	st := stateStart
	nameStart, nameEnd := 0, 0

	for {
		switch st {
		case stateStart:
			c.skipSpace()
			nameStart = c.pos
			st = stateInName

		case stateInName:
			switch {
			case c.done():
				nameEnd = c.pos
				st = stateDone
			case c.atComment():
				nameEnd = c.pos
				st = stateInComment
			case c.hasPrefix(r.AssignDelimiter):
				nameEnd = c.pos
				c.pos += len(r.AssignDelimiter)
				st = stateAfterDelimiter
			case c.hasPrefix(r.ScopeDelimiter):
				c.pos += len(r.ScopeDelimiter)
			default:
				ch, _ := c.peek()
				if r.NameChars.Contains(ch) {
					c.advance()
					continue
				}
				nameEnd = c.pos
				st = stateAfterName
			}

		case stateAfterName:
			c.skipSpace()
			switch {
			case c.done():
				st = stateDone
			case c.atComment():
				st = stateInComment
			case c.hasPrefix(r.AssignDelimiter):
				c.pos += len(r.AssignDelimiter)
				st = stateAfterDelimiter
			default:
				ch, _ := c.peek()
				ns := nameScan{state: stateFailed, name: line[nameStart:nameEnd]}
				if nameEnd == nameStart {
					ns.reason = fmt.Sprintf("invalid character %q at start of variable name", ch)
				} else {
					ns.reason = fmt.Sprintf("unexpected character %q after variable name %q", ch, ns.name)
				}
				return ns
			}

		case stateAfterDelimiter:
			return nameScan{
				state:      stateAfterDelimiter,
				name:       line[nameStart:nameEnd],
				hasDelim:   true,
				valueStart: c.pos,
			}

		case stateInComment, stateDone:
			return nameScan{state: st, name: line[nameStart:nameEnd]}
		}
	}
}

// valueScan is the outcome of scanning the text after an assignment delimiter.
type valueScan struct {
	raw    string
	quoted bool
}

// scanValue runs AfterDelimiter -> InQuote -> AfterQuote on the text that
// follows the delimiter. A value is quoted only when the opening quote has an
// unescaped partner followed by nothing but whitespace or a comment; in every
// other case the whole remainder is read as an unquoted value.
func scanValue(text string, r *Rules) valueScan {
	c := &cursor{rules: r, s: text}
	st := stateAfterDelimiter
	var rest string
	open, closing := 0, -1

	for {
		switch st {
		case stateAfterDelimiter:
			c.skipSpace()
			rest = c.s[c.pos:]
			if ch, _ := c.peek(); !c.done() && ch == r.Quote {
				open = c.pos
				c.advance()
				st = stateInQuote
				continue
			}
			return unquotedValue(rest, r)

		case stateInQuote:
			if c.done() {
				return unquotedValue(rest, r)
			}
			ch, _ := c.peek()
			switch ch {
			case r.Escape:
				c.advance()
				if !c.done() {
					c.advance()
				}
			case r.Quote:
				closing = c.pos
				c.advance()
				st = stateAfterQuote
			default:
				c.advance()
			}

		case stateAfterQuote:
			c.skipSpace()
			if c.done() || c.atComment() {
				st = stateInComment
				continue
			}
			return unquotedValue(rest, r)

		case stateInComment:
			_, qsize := utf8.DecodeRuneInString(c.s[open:])
			return valueScan{raw: c.s[open+qsize : closing], quoted: true}
		}
	}
}

// unquotedValue cuts text at the first comment marker (quotes are ordinary
// characters here) and trims trailing whitespace.
func unquotedValue(text string, r *Rules) valueScan {
	if idx := r.findComment(text, 0); idx >= 0 {
		text = text[:idx]
	}
	return valueScan{raw: strings.TrimRightFunc(text, unicode.IsSpace)}
}

// trimLineEnding removes trailing carriage returns and newlines only.
func trimLineEnding(line string) string {
	return strings.TrimRight(line, "\r\n")
}
