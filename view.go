// FILE: nofus/view.go
package nofus

// Reader is the query surface shared by a ConfigFile and its scoped views.
type Reader interface {
	Get(key string) (string, bool)
	GetOr(key, def string) string
	Value(key string) (Value, bool)
	GetArray(key string) []Value
	Strings(key string) []string
	Has(key string) bool
	EnumerateScope(prefix string) []string
	Scope(prefix string) *View
}

var (
	_ Reader = (*ConfigFile)(nil)
	_ Reader = (*View)(nil)
)

// View is a read-only projection of a ConfigFile rooted at a key prefix.
// It holds no data of its own: every query goes to the parent, so a view
// follows reloads and resets of the parent.
type View struct {
	parent *ConfigFile
	prefix string
}

// Prefix returns the full prefix the view is rooted at.
func (v *View) Prefix() string {
	return v.prefix
}

func (v *View) qualify(key string) string {
	if key == "" {
		return v.prefix
	}
	if v.prefix == "" {
		return key
	}
	return v.prefix + v.parent.scopeDelimiter() + key
}

// Get returns the last value of key relative to the view.
func (v *View) Get(key string) (string, bool) {
	return v.parent.Get(v.qualify(key))
}

// GetOr returns the last value of key, or def.
func (v *View) GetOr(key, def string) string {
	return v.parent.GetOr(v.qualify(key), def)
}

// Value returns the last recorded Value of key.
func (v *View) Value(key string) (Value, bool) {
	return v.parent.Value(v.qualify(key))
}

// GetArray returns every value of key, never nil.
func (v *View) GetArray(key string) []Value {
	return v.parent.GetArray(v.qualify(key))
}

// Strings is GetArray formatted as text.
func (v *View) Strings(key string) []string {
	return v.parent.Strings(v.qualify(key))
}

// Has reports whether key holds a value.
func (v *View) Has(key string) bool {
	return v.parent.Has(v.qualify(key))
}

// EnumerateScope lists the names one level below prefix; "" lists the
// view's own children.
func (v *View) EnumerateScope(prefix string) []string {
	return v.parent.EnumerateScope(v.qualify(prefix))
}

// Scope narrows the view further, or returns nil.
func (v *View) Scope(prefix string) *View {
	return v.parent.Scope(v.qualify(prefix))
}

// Keys lists the keys below the view with the prefix stripped.
func (v *View) Keys() []string {
	if v.prefix == "" {
		return v.parent.Keys()
	}
	p := v.prefix + v.parent.scopeDelimiter()
	var keys []string
	for _, k := range v.parent.Keys() {
		if len(k) > len(p) && k[:len(p)] == p {
			keys = append(keys, k[len(p):])
		}
	}
	return keys
}
