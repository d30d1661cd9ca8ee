// File: nofus/builder.go
package nofus

import (
	"errors"
	"fmt"
	"log/slog"
)

// ValidatorFunc defines the signature for a function that can validate a ConfigFile.
// It receives the loaded *ConfigFile and should return an error if validation fails.
type ValidatorFunc func(c *ConfigFile) error

// structDefaults is a defaults struct and the scope it is preloaded under.
type structDefaults struct {
	prefix string
	value  any
}

// Builder provides a fluent interface for building a ConfigFile
type Builder struct {
	rules        Rules
	file         string
	args         []string
	logger       *slog.Logger
	defaults     []map[string]any
	defaultFiles []string
	structs      []structDefaults
	prefix       string
	err          error
	validators   []ValidatorFunc
}

// NewBuilder creates a new builder with the default rules
func NewBuilder() *Builder {
	return &Builder{
		rules:      DefaultRules(),
		validators: make([]ValidatorFunc, 0),
	}
}

// WithFile sets the configuration file path
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithArgs sets the command-line arguments searched by WithFileDiscovery
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithRules replaces the whole rule set
func (b *Builder) WithRules(r Rules) *Builder {
	b.rules = r.clone()
	return b
}

// WithCommentStarts sets the comment markers
func (b *Builder) WithCommentStarts(markers ...string) *Builder {
	b.rules.CommentStarts = append([]string(nil), markers...)
	return b
}

// WithAssignDelimiter sets the token between a name and its value
func (b *Builder) WithAssignDelimiter(delim string) *Builder {
	b.rules.AssignDelimiter = delim
	return b
}

// WithScopeDelimiter sets the token joining scope segments
func (b *Builder) WithScopeDelimiter(delim string) *Builder {
	b.rules.ScopeDelimiter = delim
	return b
}

// WithQuote sets the quote character
func (b *Builder) WithQuote(q rune) *Builder {
	b.rules.Quote = q
	return b
}

// WithEscape sets the escape character
func (b *Builder) WithEscape(esc rune) *Builder {
	b.rules.Escape = esc
	return b
}

// WithNameChars sets the characters allowed in variable name segments
func (b *Builder) WithNameChars(spec string) *Builder {
	class, err := NewCharClass(spec)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	b.rules.NameChars = class
	return b
}

// WithScopeChars sets the characters allowed in scope declaration segments
func (b *Builder) WithScopeChars(spec string) *Builder {
	class, err := NewCharClass(spec)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	b.rules.ScopeChars = class
	return b
}

// WithDefaults adds a map of default values; it can be called repeatedly
func (b *Builder) WithDefaults(defaults map[string]any) *Builder {
	if defaults != nil {
		b.defaults = append(b.defaults, defaults)
	}
	return b
}

// WithDefaultsFile adds a TOML, JSON or YAML file of default values
func (b *Builder) WithDefaultsFile(path string) *Builder {
	b.defaultFiles = append(b.defaultFiles, path)
	return b
}

// WithDefaultsStruct adds defaults from a struct rooted at prefix. The last
// prefix given is also the base path used by BuildAndScan.
func (b *Builder) WithDefaultsStruct(prefix string, defaults any) *Builder {
	b.prefix = prefix
	if defaults != nil {
		b.structs = append(b.structs, structDefaults{prefix: prefix, value: defaults})
	}
	return b
}

// WithLogger sets the logger for load diagnostics
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build creates the ConfigFile, preloads every default source and loads the file.
// A missing file path yields ErrNoFileGiven and a file with malformed lines a
// *LoadError; both are returned alongside a usable ConfigFile. Unreadable
// files, bad rules and failed validators return a nil ConfigFile.
func (b *Builder) Build() (*ConfigFile, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.rules.Validate(); err != nil {
		return nil, err
	}

	opts := []Option{WithRules(b.rules)}
	if b.logger != nil {
		opts = append(opts, WithLogger(b.logger))
	}
	cfg := New(b.file, opts...)

	for _, defaults := range b.defaults {
		if err := cfg.Preload(defaults); err != nil {
			return nil, fmt.Errorf("failed to preload defaults: %w", err)
		}
	}
	for _, path := range b.defaultFiles {
		if err := cfg.LoadDefaultsFile(path); err != nil {
			return nil, err
		}
	}
	for _, s := range b.structs {
		if err := cfg.PreloadStruct(s.prefix, s.value); err != nil {
			return nil, fmt.Errorf("failed to preload struct defaults: %w", err)
		}
	}

	loadErr := cfg.Load()
	if loadErr != nil && !isRecoverable(loadErr) {
		return nil, loadErr
	}

	for _, validator := range b.validators {
		if err := validator(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return cfg, loadErr
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *ConfigFile {
	cfg, err := b.Build()
	if err != nil && !errors.Is(err, ErrNoFileGiven) {
		panic(fmt.Sprintf("config build failed: %v", err))
	}
	return cfg
}

// BuildAndScan builds the ConfigFile and decodes it into target, starting at
// the prefix given to WithDefaultsStruct.
func (b *Builder) BuildAndScan(target any) error {
	cfg, err := b.Build()
	if cfg == nil {
		return err
	}

	if scanErr := cfg.Scan(b.prefix, target); scanErr != nil {
		return fmt.Errorf("failed to scan final config into target: %w", scanErr)
	}
	return err
}

// isRecoverable reports load errors that still leave a usable ConfigFile.
func isRecoverable(err error) bool {
	var loadErr *LoadError
	return errors.Is(err, ErrNoFileGiven) || errors.As(err, &loadErr)
}
