package nofus

import (
	"fmt"
	"reflect"
	"strings"
)

// PreloadStruct preloads defaults from the exported fields of a struct.
// Field paths come from the `nofus` tag or the field name; nested structs
// extend the path with the scope delimiter. prefix may be empty.
// Zero-valued fields are preloaded too, since they are the declared default.
func (c *ConfigFile) PreloadStruct(prefix string, structWithDefaults any) error {
	v := reflect.ValueOf(structWithDefaults)

	// Handle pointer or direct struct value
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return fmt.Errorf("PreloadStruct requires a non-nil struct pointer or value")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("PreloadStruct requires a struct or struct pointer, got %T", structWithDefaults)
	}

	defaults := make(map[string]any)
	collectFields(v, defaults)

	if prefix != "" {
		defaults = map[string]any{prefix: defaults}
	}
	return c.Preload(defaults)
}

// collectFields fills out with one entry per exported field, recursing into
// nested structs as nested maps.
func collectFields(v reflect.Value, out map[string]any) {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get(TagName)
		if tag == "-" {
			continue
		}
		key := field.Name
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			key = name
		}

		// Dereference pointers to structs; nil ones carry no defaults
		if fieldValue.Kind() == reflect.Ptr && fieldValue.Type().Elem().Kind() == reflect.Struct {
			if fieldValue.IsNil() {
				continue
			}
			fieldValue = fieldValue.Elem()
		}

		if fieldValue.Kind() == reflect.Struct && !isScalarStruct(fieldValue.Type()) {
			sub := make(map[string]any)
			collectFields(fieldValue, sub)
			out[key] = sub
			continue
		}

		out[key] = fieldDefault(fieldValue)
	}
}

// isScalarStruct reports struct types that print as a single value.
func isScalarStruct(t reflect.Type) bool {
	return t.Implements(reflect.TypeOf((*fmt.Stringer)(nil)).Elem())
}

// fieldDefault converts slices to []any so every element becomes one value.
func fieldDefault(v reflect.Value) any {
	if v.Kind() == reflect.Slice && v.Type().Elem().Kind() != reflect.Uint8 {
		items := make([]any, v.Len())
		for i := range items {
			items[i] = v.Index(i).Interface()
		}
		return items
	}
	return v.Interface()
}
