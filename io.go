// File: nofus/io.go
package nofus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Save writes every key, defaults included, to path in the config file
// grammar. The write is atomic: a temporary file is renamed over path.
// Loading the saved file yields the same keys and values. A text value with
// a line break cannot be expressed on one line; Save fails with
// ErrUnsavableValue and leaves path untouched.
func (c *ConfigFile) Save(path string) error {
	var buf bytes.Buffer
	if err := c.Dump(&buf, FormatConf); err != nil {
		return err
	}
	return atomicWriteFile(path, buf.Bytes())
}

// Dump writes the current values to w in one of FormatConf, FormatTOML,
// FormatJSON or FormatYAML. The nested formats cannot hold a key that is also
// a scope (`a` next to `a.b`); such keys are left out with a warning.
func (c *ConfigFile) Dump(w io.Writer, format string) error {
	c.mutex.RLock()
	rules := c.rules.clone()
	snapshot := c.store.clone()
	c.mutex.RUnlock()

	if format == FormatTOML || format == FormatJSON || format == FormatYAML {
		for _, key := range shadowedKeys(snapshot) {
			c.logger.Warn("Key is also a scope, omitted from dump", "key", key, "format", format)
		}
	}

	switch format {
	case FormatConf:
		return writeConf(w, snapshot, &rules)
	case FormatTOML:
		encoder := toml.NewEncoder(w)
		if err := encoder.Encode(buildNestedMap(snapshot, rules.ScopeDelimiter)); err != nil {
			return fmt.Errorf("failed to marshal config data to TOML: %w", err)
		}
		return nil
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(buildNestedMap(snapshot, rules.ScopeDelimiter)); err != nil {
			return fmt.Errorf("failed to marshal config data to JSON: %w", err)
		}
		return nil
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(buildNestedMap(snapshot, rules.ScopeDelimiter)); err != nil {
			return fmt.Errorf("failed to marshal config data to YAML: %w", err)
		}
		return encoder.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// writeConf renders one assignment line per value; flags are written as a
// bare name and text is always quoted.
func writeConf(w io.Writer, s *Store, r *Rules) error {
	for _, key := range s.Keys() {
		for _, v := range s.GetArray(key) {
			if strings.ContainsAny(v.Text, "\r\n") {
				return fmt.Errorf("%w: value of %q contains a line break", ErrUnsavableValue, key)
			}
		}
	}

	bw := bufio.NewWriter(w)
	for _, key := range s.Keys() {
		for _, v := range s.GetArray(key) {
			if v.Flag {
				fmt.Fprintln(bw, key)
				continue
			}
			fmt.Fprintf(bw, "%s %s %s\n", key, r.AssignDelimiter, Quote(v.Text, r))
		}
	}
	return bw.Flush()
}

// atomicWriteFile performs atomic file write
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // Clean up on any error

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
