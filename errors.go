// FILE: nofus/errors.go
package nofus

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedLine is reported for a line the classifier could not read
	// as blank, scope declaration or assignment.
	ErrMalformedLine = errors.New("malformed line")

	// ErrInvalidScope is reported for a bracketed line whose content breaks the
	// scope character class or has an empty segment.
	ErrInvalidScope = errors.New("invalid scope declaration")

	// ErrFileUnreadable is returned when the backing file cannot be opened or read.
	ErrFileUnreadable = errors.New("config file unreadable")

	// ErrNoFileGiven is returned by Load on a ConfigFile created without a path.
	ErrNoFileGiven = errors.New("no file was given")

	// ErrAlreadyLoaded is returned when rules are changed after a successful load.
	ErrAlreadyLoaded = errors.New("config file already loaded")

	// ErrInvalidRules is returned when a rule set has an empty token.
	ErrInvalidRules = errors.New("invalid rule set")

	// ErrUnsupportedFormat is returned for an unknown defaults or export format.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrUnsavableValue is returned when a value cannot be written in the
	// line-oriented grammar.
	ErrUnsavableValue = errors.New("value cannot be saved")
)

// ParseError describes one rejected line. Line is 1-based; a file that could
// not be read at all is reported with Line 0 and Kind ErrFileUnreadable.
type ParseError struct {
	Line   int
	Text   string
	Reason string
	Kind   error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return e.Reason
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Unwrap exposes the error kind for errors.Is.
func (e *ParseError) Unwrap() error {
	return e.Kind
}

// LoadError collects every ParseError of a single load pass.
type LoadError struct {
	Path   string
	Errors []*ParseError
}

func (e *LoadError) Error() string {
	var b strings.Builder
	name := e.Path
	if name == "" {
		name = "<input>"
	}
	fmt.Fprintf(&b, "failed to load %s: %d error(s)", name, len(e.Errors))
	for _, pe := range e.Errors {
		b.WriteString("\n  ")
		b.WriteString(pe.Error())
	}
	return b.String()
}

// Unwrap allows errors.Is and errors.As to reach the individual parse errors.
func (e *LoadError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, pe := range e.Errors {
		errs[i] = pe
	}
	return errs
}
