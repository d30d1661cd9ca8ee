// FILE: nofus/decode.go
package nofus

import (
	"fmt"
	"net"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// TagName is the struct tag read by Scan and PreloadStruct.
const TagName = "nofus"

// Scan decodes the keys below basePath into target, a non-nil pointer to a
// struct or map. Text is converted to the target field types on the way; a
// key with several values decodes into a slice. An empty basePath scans the
// whole file. A key that is also a scope (`a` next to `a.b`) is not visible.
func (c *ConfigFile) Scan(basePath string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("scan target must be non-nil pointer, got %T", target)
	}

	c.mutex.RLock()
	delim := c.rules.ScopeDelimiter
	nested := buildNestedMap(c.store, delim)
	shadowed := shadowedKeys(c.store)
	c.mutex.RUnlock()

	for _, key := range shadowed {
		c.logger.Debug("Key is also a scope, not visible to Scan", "key", key)
	}

	section, ok := navigateToPath(nested, basePath, delim).(map[string]any)
	if !ok {
		section = make(map[string]any) // Missing or non-scope path decodes nothing
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          TagName,
		WeaklyTypedInput: true,
		DecodeHook:       decodeHook(),
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(section); err != nil {
		return fmt.Errorf("decode failed for path %q: %w", basePath, err)
	}
	return nil
}

// Scan decodes the keys below the view into target.
func (v *View) Scan(target any) error {
	return v.parent.Scan(v.prefix, target)
}

// buildNestedMap turns the store into nested maps keyed by segment. Keys
// with one value map to that value, multi-valued keys to a []any. A key that
// is also a scope is dropped in favour of the scope; see shadowedKeys.
func buildNestedMap(s *Store, delim string) map[string]any {
	nested := make(map[string]any)
	for _, key := range s.Keys() {
		values := s.GetArray(key)
		var leaf any
		if len(values) == 1 {
			leaf = values[0].Any()
		} else {
			items := make([]any, len(values))
			for i, v := range values {
				items[i] = v.Any()
			}
			leaf = items
		}
		setNestedValue(nested, strings.Split(key, delim), leaf)
	}
	return nested
}

// shadowedKeys lists keys that buildNestedMap drops because other keys
// live below them.
func shadowedKeys(s *Store) []string {
	var keys []string
	for _, key := range s.Keys() {
		if s.HasScope(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		stringToNetIPHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// stringToNetIPHookFunc handles net.IP conversion
func stringToNetIPHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(net.IP{}) {
			return data, nil
		}
		ip := net.ParseIP(data.(string))
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address: %s", data)
		}
		return ip, nil
	}
}

// navigateToPath walks nested maps down the segments of path.
func navigateToPath(nested map[string]any, path, delim string) any {
	if path == "" {
		return nested
	}

	current := any(nested)
	for _, segment := range strings.Split(path, delim) {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		value, exists := currentMap[segment]
		if !exists {
			return nil
		}
		current = value
	}
	return current
}
