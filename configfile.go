// FILE: nofus/configfile.go
package nofus

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
)

// ConfigFile is a configuration file and the values parsed from it.
type ConfigFile struct {
	path   string
	rules  Rules
	store  *Store
	loaded bool
	errors []*ParseError
	logger *slog.Logger

	watcher *watcher
	mutex   sync.RWMutex
}

// Option configures a ConfigFile at construction.
type Option func(*ConfigFile)

// WithRules replaces the default lexical rules.
func WithRules(r Rules) Option {
	return func(c *ConfigFile) {
		c.rules = r.clone()
	}
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *ConfigFile) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a ConfigFile for path. Nothing is read until Load.
// An empty path is allowed; Load then fails with ErrNoFileGiven.
func New(path string, opts ...Option) *ConfigFile {
	c := &ConfigFile{
		path:   path,
		rules:  DefaultRules(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.store = NewStore(c.rules.ScopeDelimiter)
	return c
}

// Path returns the backing file path.
func (c *ConfigFile) Path() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.path
}

// Rules returns a copy of the active rules.
func (c *ConfigFile) Rules() Rules {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.rules.clone()
}

// SetRules replaces the lexical rules. It fails once a load has succeeded.
func (c *ConfigFile) SetRules(r Rules) error {
	if err := r.Validate(); err != nil {
		return err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.loaded {
		return ErrAlreadyLoaded
	}
	c.rules = r.clone()
	c.store.delim = r.ScopeDelimiter
	return nil
}

// Load reads and parses the backing file. Every malformed line is collected
// and parsing continues; if any line failed a *LoadError is returned while the
// well-formed lines stay queryable. A file that cannot be read aborts the pass.
// Load after a successful load is a no-op.
func (c *ConfigFile) Load() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.loaded {
		return nil
	}
	if c.path == "" {
		return ErrNoFileGiven
	}
	if err := c.rules.Validate(); err != nil {
		return err
	}

	lines, err := readLines(c.path)
	if err != nil {
		c.logger.Error("Cannot load config file", "path", c.path, "error", err)
		c.recordReadFailure(err)
		return err
	}
	return c.parseLocked(lines)
}

// LoadReader parses lines from r instead of the backing file. The result
// replaces previously parsed values; preloaded defaults are kept.
func (c *ConfigFile) LoadReader(r io.Reader) error {
	lines, err := scanLines(r)

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrFileUnreadable, err)
		c.loaded = false
		c.recordReadFailure(err)
		return err
	}
	if err := c.rules.Validate(); err != nil {
		return err
	}
	c.loaded = false
	return c.parseLocked(lines)
}

// recordReadFailure replaces the errors of the previous pass with the single
// read failure of this one. Values from the previous pass are kept.
func (c *ConfigFile) recordReadFailure(err error) {
	c.errors = []*ParseError{{Reason: err.Error(), Kind: ErrFileUnreadable}}
}

// reload re-reads the backing file even after a successful load.
func (c *ConfigFile) reload() error {
	c.mutex.Lock()
	c.loaded = false
	c.mutex.Unlock()
	return c.Load()
}

func (c *ConfigFile) parseLocked(lines []string) error {
	c.store.ResetParsed()
	c.errors = nil

	errs := newParser(&c.rules, c.store).parseLines(lines)
	for _, pe := range errs {
		c.logger.Debug("Rejected config line", "path", c.path, "line", pe.Line, "reason", pe.Reason)
	}
	c.errors = errs

	if len(errs) > 0 {
		c.logger.Warn("Config file loaded with errors", "path", c.path, "lines", len(lines), "errors", len(errs))
		return &LoadError{Path: c.path, Errors: errs}
	}

	c.loaded = true
	c.logger.Info("Config file loaded", "path", c.path, "lines", len(lines), "keys", len(c.store.order))
	return nil
}

// Loaded reports whether the last load succeeded.
func (c *ConfigFile) Loaded() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.loaded
}

// Errors returns the parse errors of the last load pass, or the single read
// failure when the file could not be read.
func (c *ConfigFile) Errors() []*ParseError {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return append([]*ParseError(nil), c.errors...)
}

// Reset unloads everything, defaults included, so the file can be loaded again.
// Views obtained earlier see the emptied store.
func (c *ConfigFile) Reset() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.loaded = false
	c.errors = nil
	c.store.Reset()
}

// Preload seeds default values. A key that already exists, from the file or
// an earlier preload, is left untouched. Values may be scalars, slices of
// scalars, or nested maps whose keys extend the dotted path.
func (c *ConfigFile) Preload(defaults map[string]any) error {
	flat := flattenMap(defaults, "", c.scopeDelimiter())

	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	var errs []error
	for _, p := range paths {
		if _, ok := c.rules.SplitKey(p); !ok {
			errs = append(errs, fmt.Errorf("invalid default key %q", p))
			continue
		}
		c.store.Preload(p, valuesOf(flat[p])...)
	}
	return errors.Join(errs...)
}

// Get returns the last value of key as text; a flag reads "true".
func (c *ConfigFile) Get(key string) (string, bool) {
	v, ok := c.Value(key)
	if !ok {
		return "", false
	}
	return v.String(), true
}

// GetOr returns the last value of key, or def when the key was never set.
func (c *ConfigFile) GetOr(key, def string) string {
	if s, ok := c.Get(key); ok {
		return s
	}
	return def
}

// Value returns the last recorded Value of key.
func (c *ConfigFile) Value(key string) (Value, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.store.Get(key)
}

// GetArray returns every value of key in file order. It is never nil.
func (c *ConfigFile) GetArray(key string) []Value {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.store.GetArray(key)
}

// Strings is GetArray formatted as text.
func (c *ConfigFile) Strings(key string) []string {
	return stringsOf(c.GetArray(key))
}

// Has reports whether key holds at least one value.
func (c *ConfigFile) Has(key string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.store.Has(key)
}

// Keys lists every key, parsed ones first in file order.
func (c *ConfigFile) Keys() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.store.Keys()
}

// Scope returns a read-only view of the keys below prefix, or nil when no key
// lives there.
func (c *ConfigFile) Scope(prefix string) *View {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if !c.store.HasScope(prefix) {
		return nil
	}
	return &View{parent: c, prefix: prefix}
}

// EnumerateScope returns the names one level below prefix ("" for the root).
func (c *ConfigFile) EnumerateScope(prefix string) []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.store.EnumerateScope(prefix)
}

// scopeDelimiter returns the active scope delimiter.
func (c *ConfigFile) scopeDelimiter() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.rules.ScopeDelimiter
}
