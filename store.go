// FILE: nofus/store.go
package nofus

import "strings"

// Store is an ordered multi-map from fully qualified key to recorded values.
// Values parsed from a file and preloaded defaults live in separate layers so a
// default never shadows a parsed value, whichever is loaded first.
// Store does no locking of its own; ConfigFile guards it.
type Store struct {
	delim string

	order  []string
	values map[string][]Value

	defaultOrder []string
	defaults     map[string][]Value
}

// NewStore creates an empty store whose keys are joined by delim.
func NewStore(delim string) *Store {
	return &Store{
		delim:    delim,
		values:   make(map[string][]Value),
		defaults: make(map[string][]Value),
	}
}

// Record appends v to the values of key.
func (s *Store) Record(key string, v Value) {
	if _, exists := s.values[key]; !exists {
		s.order = append(s.order, key)
	}
	s.values[key] = append(s.values[key], v)
}

// Preload seeds key with values when the key is absent from both layers.
// It reports whether the default was stored.
func (s *Store) Preload(key string, values ...Value) bool {
	if s.Has(key) {
		return false
	}
	s.defaultOrder = append(s.defaultOrder, key)
	s.defaults[key] = append([]Value{}, values...)
	return true
}

func (s *Store) lookup(key string) ([]Value, bool) {
	if vals, ok := s.values[key]; ok {
		return vals, true
	}
	vals, ok := s.defaults[key]
	return vals, ok
}

// Get returns the last value recorded for key.
func (s *Store) Get(key string) (Value, bool) {
	vals, ok := s.lookup(key)
	if !ok || len(vals) == 0 {
		return Value{}, false
	}
	return vals[len(vals)-1], true
}

// GetArray returns a copy of every value of key, or an empty slice.
func (s *Store) GetArray(key string) []Value {
	vals, _ := s.lookup(key)
	return append([]Value{}, vals...)
}

// Has reports whether key exists in either layer.
func (s *Store) Has(key string) bool {
	_, ok := s.lookup(key)
	return ok
}

// Keys lists parsed keys in insertion order followed by default-only keys.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.order)+len(s.defaultOrder))
	keys = append(keys, s.order...)
	for _, k := range s.defaultOrder {
		if _, parsed := s.values[k]; !parsed {
			keys = append(keys, k)
		}
	}
	return keys
}

// Len returns the number of distinct keys.
func (s *Store) Len() int {
	return len(s.Keys())
}

// scopePrefix returns the string every descendant key of prefix starts with.
func (s *Store) scopePrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	return prefix + s.delim
}

// HasScope reports whether at least one key lives below prefix.
func (s *Store) HasScope(prefix string) bool {
	p := s.scopePrefix(prefix)
	for _, k := range s.Keys() {
		if strings.HasPrefix(k, p) && len(k) > len(p) {
			return true
		}
	}
	return false
}

// EnumerateScope returns the distinct segment names one level below prefix,
// in first-seen order. An empty prefix enumerates the root.
func (s *Store) EnumerateScope(prefix string) []string {
	p := s.scopePrefix(prefix)
	seen := make(map[string]bool)
	children := []string{}
	for _, k := range s.Keys() {
		if !strings.HasPrefix(k, p) || len(k) == len(p) {
			continue
		}
		child := k[len(p):]
		if idx := strings.Index(child, s.delim); idx >= 0 {
			child = child[:idx]
		}
		if child != "" && !seen[child] {
			seen[child] = true
			children = append(children, child)
		}
	}
	return children
}

// ResetParsed drops parsed values and keeps defaults.
func (s *Store) ResetParsed() {
	s.order = nil
	s.values = make(map[string][]Value)
}

// Reset drops everything.
func (s *Store) Reset() {
	s.ResetParsed()
	s.defaultOrder = nil
	s.defaults = make(map[string][]Value)
}

// snapshot copies the effective values of every key.
func (s *Store) snapshot() map[string][]Value {
	snap := make(map[string][]Value, len(s.values)+len(s.defaults))
	for _, k := range s.Keys() {
		snap[k] = s.GetArray(k)
	}
	return snap
}

// clone returns a deep copy.
func (s *Store) clone() *Store {
	c := NewStore(s.delim)
	for _, k := range s.order {
		c.order = append(c.order, k)
		c.values[k] = append([]Value{}, s.values[k]...)
	}
	for _, k := range s.defaultOrder {
		c.defaultOrder = append(c.defaultOrder, k)
		c.defaults[k] = append([]Value{}, s.defaults[k]...)
	}
	return c
}
