// FILE: nofus/classify.go
package nofus

import (
	"fmt"
)

// LineKind is the category assigned to a line by Classify.
type LineKind int

const (
	// LineBlank is an empty, whitespace-only or comment-only line.
	LineBlank LineKind = iota
	// LineScope is a bracketed scope declaration such as `[sql.maria]`.
	LineScope
	// LineAssignment binds a name to a value, or to true when there is no delimiter.
	LineAssignment
	// LineMalformed is any line the grammar rejects.
	LineMalformed
)

func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineScope:
		return "scope"
	case LineAssignment:
		return "assignment"
	case LineMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("LineKind(%d)", int(k))
	}
}

// Line is the classification of a single line.
type Line struct {
	Kind LineKind

	// Segments holds the declared scope for LineScope (empty for `[]`) or the
	// name segments for LineAssignment.
	Segments []string

	// HasDelimiter is false for boolean flag assignments.
	HasDelimiter bool

	// ValueStart is the byte offset just past the assignment delimiter.
	ValueStart int

	// Reason and Err describe a LineMalformed result.
	Reason string
	Err    error
}

// Classify decides whether line is blank, a scope declaration, an assignment
// or malformed. Only trailing line-ending characters are removed beforehand.
func Classify(line string, r *Rules) Line {
	line = trimLineEnding(line)
	c := &cursor{rules: r, s: line}
	c.skipSpace()
	if c.done() || c.atComment() {
		return Line{Kind: LineBlank}
	}
	if c.hasPrefix("[") {
		return classifyScope(c)
	}
	return classifyAssignment(line, r)
}

func malformed(kind error, format string, args ...any) Line {
	return Line{Kind: LineMalformed, Err: kind, Reason: fmt.Sprintf(format, args...)}
}

// classifyScope reads `[ seg(.seg)* ]` followed by whitespace and an optional
// comment. The cursor sits on the opening bracket.
func classifyScope(c *cursor) Line {
	r := c.rules
	c.pos++ // [
	c.skipSpace()

	segments := []string{}
	for {
		start := c.pos
		for !c.done() && !c.hasPrefix(r.ScopeDelimiter) {
			ch, _ := c.peek()
			if !r.ScopeChars.Contains(ch) {
				break
			}
			c.advance()
		}
		seg := c.s[start:c.pos]

		if seg == "" {
			if len(segments) > 0 || c.hasPrefix(r.ScopeDelimiter) {
				return malformed(ErrInvalidScope, "empty segment in scope declaration")
			}
			break
		}
		segments = append(segments, seg)

		if !c.hasPrefix(r.ScopeDelimiter) {
			break
		}
		c.pos += len(r.ScopeDelimiter)
	}

	c.skipSpace()
	if c.done() {
		return malformed(ErrInvalidScope, "missing closing bracket in scope declaration")
	}
	if ch, _ := c.peek(); ch != ']' {
		return malformed(ErrInvalidScope, "invalid character %q in scope declaration", ch)
	}
	c.pos++ // ]

	c.skipSpace()
	if !c.done() && !c.atComment() {
		ch, _ := c.peek()
		return malformed(ErrInvalidScope, "unexpected character %q after scope declaration", ch)
	}
	return Line{Kind: LineScope, Segments: segments}
}

func classifyAssignment(line string, r *Rules) Line {
	ns := scanName(line, r)
	if ns.state == stateFailed {
		return malformed(ErrMalformedLine, "%s", ns.reason)
	}
	if ns.name == "" {
		return malformed(ErrMalformedLine, "missing variable name")
	}
	segments, ok := r.SplitKey(ns.name)
	if !ok {
		return malformed(ErrMalformedLine, "invalid variable name %q", ns.name)
	}
	return Line{
		Kind:         LineAssignment,
		Segments:     segments,
		HasDelimiter: ns.hasDelim,
		ValueStart:   ns.valueStart,
	}
}
