// FILE: nofus/loader.go
package nofus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	// MaxFileSize bounds the size of a config or defaults file.
	MaxFileSize = 16 << 20
	// MaxLineSize bounds the length of a single config line.
	MaxLineSize = 1 << 20
)

// Defaults file formats understood by LoadDefaultsFile and Dump.
const (
	FormatConf = "conf"
	FormatTOML = "toml"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// readLines reads the file at path into lines with line endings removed.
// Any failure is reported as a single ErrFileUnreadable error.
func readLines(path string) ([]string, error) {
	data, err := readFileLimited(path)
	if err != nil {
		return nil, err
	}
	lines, err := scanLines(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file '%s': %w", ErrFileUnreadable, path, err)
	}
	return lines, nil
}

func readFileLimited(path string) ([]byte, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: file '%s' does not exist", ErrFileUnreadable, path)
		}
		return nil, fmt.Errorf("%w: failed to stat file '%s': %w", ErrFileUnreadable, path, err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%w: '%s' is a directory", ErrFileUnreadable, path)
	}
	if fileInfo.Size() > MaxFileSize {
		return nil, fmt.Errorf("%w: file '%s' exceeds maximum size %d bytes", ErrFileUnreadable, path, MaxFileSize)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open file '%s': %w", ErrFileUnreadable, path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read file '%s': %w", ErrFileUnreadable, path, err)
	}
	return data, nil
}

// scanLines splits r into lines; bufio.ScanLines already drops "\r\n" and "\n".
func scanLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// LoadDefaultsFile preloads defaults from a TOML, JSON or YAML file. The
// format comes from the extension, falling back to content detection.
// Existing keys are never overwritten.
func (c *ConfigFile) LoadDefaultsFile(path string) error {
	data, err := readFileLimited(path)
	if err != nil {
		return err
	}

	format := detectFileFormat(path)
	if format == "" {
		format = detectFormatFromContent(data)
	}
	if format == "" {
		return fmt.Errorf("%w: unable to determine format of defaults file '%s'", ErrUnsupportedFormat, path)
	}

	if err := c.PreloadFrom(bytes.NewReader(data), format); err != nil {
		return fmt.Errorf("failed to preload defaults from '%s': %w", path, err)
	}
	return nil
}

// PreloadFrom decodes defaults in the given format from r and preloads them.
func (c *ConfigFile) PreloadFrom(r io.Reader, format string) error {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize))
	if err != nil {
		return fmt.Errorf("failed to read defaults: %w", err)
	}

	defaults := make(map[string]any)
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &defaults); err != nil {
			return fmt.Errorf("failed to parse TOML defaults: %w", err)
		}
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Preserve number text
		if err := decoder.Decode(&defaults); err != nil {
			return fmt.Errorf("failed to parse JSON defaults: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &defaults); err != nil {
			return fmt.Errorf("failed to parse YAML defaults: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	return c.Preload(defaults)
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return FormatTOML
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// Try JSON first (strict format)
	var jsonTest map[string]any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return FormatJSON
	}

	// TOML before YAML: plain `key = value` lines are valid TOML but YAML
	// would read them as a single scalar string.
	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return FormatTOML
	}

	var yamlTest map[string]any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return FormatYAML
	}

	return ""
}
