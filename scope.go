// FILE: nofus/scope.go
package nofus

// scopeTracker holds the section prefix active while a file is parsed.
// The root scope is the empty prefix.
type scopeTracker struct {
	current []string
}

// enter replaces the active scope; `[]` passes no segments and returns to root.
func (s *scopeTracker) enter(segments []string) {
	s.current = append(s.current[:0:0], segments...)
}

// qualify prefixes an assignment's own segments with the active scope.
func (s *scopeTracker) qualify(name []string) []string {
	full := make([]string, 0, len(s.current)+len(name))
	full = append(full, s.current...)
	return append(full, name...)
}
