// FILE: nofus/value.go
package nofus

import (
	"fmt"
	"reflect"
	"strconv"
)

// Value is one recorded value: either text (possibly empty) or the boolean
// presence flag produced by a name declared without a delimiter.
type Value struct {
	Text string
	Flag bool
}

// Text returns a text value.
func Text(s string) Value {
	return Value{Text: s}
}

// Flag returns the boolean presence value.
func Flag() Value {
	return Value{Flag: true}
}

// String formats the value; a flag prints as "true".
func (v Value) String() string {
	if v.Flag {
		return "true"
	}
	return v.Text
}

// Any returns true for a flag and the text otherwise.
func (v Value) Any() any {
	if v.Flag {
		return true
	}
	return v.Text
}

// valueOf converts a preload default into a Value. A true bool becomes a flag;
// every other scalar is recorded as its textual form.
func valueOf(x any) Value {
	switch v := x.(type) {
	case Value:
		return v
	case string:
		return Text(v)
	case bool:
		if v {
			return Flag()
		}
		return Text(strconv.FormatBool(v))
	case fmt.Stringer:
		return Text(v.String())
	case nil:
		return Text("")
	default:
		return Text(fmt.Sprintf("%v", v))
	}
}

// valuesOf converts a scalar or a slice default into an ordered value list.
func valuesOf(x any) []Value {
	switch v := x.(type) {
	case []Value:
		return append([]Value(nil), v...)
	case []string:
		out := make([]Value, len(v))
		for i, s := range v {
			out[i] = Text(s)
		}
		return out
	case []any:
		out := make([]Value, len(v))
		for i, e := range v {
			out[i] = valueOf(e)
		}
		return out
	default:
		rv := reflect.ValueOf(x)
		if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
			out := make([]Value, rv.Len())
			for i := range out {
				out[i] = valueOf(rv.Index(i).Interface())
			}
			return out
		}
		return []Value{valueOf(x)}
	}
}

func stringsOf(values []Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
