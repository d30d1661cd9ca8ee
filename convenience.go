// File: nofus/convenience.go
package nofus

import (
	"errors"
	"fmt"
	"strings"
)

// Quick loads path with the given defaults preloaded in a single call.
// Malformed lines still yield a usable ConfigFile alongside the *LoadError.
func Quick(path string, defaults map[string]any) (*ConfigFile, error) {
	return NewBuilder().WithFile(path).WithDefaults(defaults).Build()
}

// MustQuick is like Quick but panics on any error
func MustQuick(path string, defaults map[string]any) *ConfigFile {
	cfg, err := Quick(path, defaults)
	if err != nil {
		panic(fmt.Sprintf("config initialization failed: %v", err))
	}
	return cfg
}

// Validate checks that every required key holds at least one value
func (c *ConfigFile) Validate(required ...string) error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var missing []string
	for _, key := range required {
		if !c.store.Has(key) {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Debug returns a formatted string showing every key, its values and whether
// they came from the file or from defaults
func (c *ConfigFile) Debug() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var b strings.Builder
	b.WriteString("Configuration Debug Info:\n")
	fmt.Fprintf(&b, "File: %s (loaded: %t, errors: %d)\n", c.path, c.loaded, len(c.errors))
	b.WriteString("Current values:\n")

	for _, key := range c.store.Keys() {
		source := "file"
		if _, parsed := c.store.values[key]; !parsed {
			source = "default"
		}
		fmt.Fprintf(&b, "  %s (%s):\n", key, source)
		for _, v := range c.store.GetArray(key) {
			if v.Flag {
				b.WriteString("    <flag>\n")
				continue
			}
			fmt.Fprintf(&b, "    %q\n", v.Text)
		}
	}
	for _, pe := range c.errors {
		fmt.Fprintf(&b, "  ! %s\n", pe.Error())
	}

	return b.String()
}

// Clone creates a deep copy of the configuration. The copy has no watcher.
func (c *ConfigFile) Clone() *ConfigFile {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return &ConfigFile{
		path:   c.path,
		rules:  c.rules.clone(),
		store:  c.store.clone(),
		loaded: c.loaded,
		errors: append([]*ParseError(nil), c.errors...),
		logger: c.logger,
	}
}

// ParseErrors returns the rejected lines carried by err when it is a *LoadError.
func ParseErrors(err error) []*ParseError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Errors
	}
	return nil
}
