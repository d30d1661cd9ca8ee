// FILE: nofus/configfile_test.go
package nofus

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePath = "testdata/sample.conf"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func loadSample(t *testing.T) *ConfigFile {
	t.Helper()
	cfg := New(samplePath)
	require.NoError(t, cfg.Load())
	return cfg
}

// TestLoadSample reads a file that exercises every part of the grammar
func TestLoadSample(t *testing.T) {
	cfg := New(samplePath)
	err := cfg.Load()
	require.NoError(t, err, "errors: %v", cfg.Errors())
	assert.True(t, cfg.Loaded())
	assert.Empty(t, cfg.Errors())

	t.Run("CommentedOut", func(t *testing.T) {
		assert.False(t, cfg.Has("badvar1"))
		assert.False(t, cfg.Has("badvar2"))
		assert.Equal(t, "default val", cfg.GetOr("invalid.var", "default val"))
	})

	t.Run("Values", func(t *testing.T) {
		expected := map[string]string{
			"var1":                  "42",
			"var2":                  "92",
			"var_3":                 "a string",
			"VAR-4":                 "quoted string",
			"_VAR5_":                `Mis "quoted" string`,
			"-":                     "techinally valid var name",
			"_":                     "also valid var name",
			"99":                    "Yet another  valid name",
			"var6":                  "  spaced val  ",
			"var7":                  `"quoted quotes"`,
			"var8":                  "quoted string # in value",
			"var9":                  `"start quoted" but not ended`,
			"var10":                 `special chars # \\ = inside string`,
			"var11":                 "",
			"var14":                 `non quoted start with "quoted end"`,
			"var15":                 "a thing",
			"var16":                 "white space before var",
			"marbles.green":         "2",
			"marbles.white":         "6",
			"marbles.yellow":        "1",
			"marbles.blue":          "4",
			"sql.maria.auth.server": "sql.example.com",
			"sql.maria.auth.pw":     "secure",
		}
		for key, want := range expected {
			got, ok := cfg.Get(key)
			assert.True(t, ok, "key %q missing", key)
			assert.Equal(t, want, got, "key %q", key)
		}
	})

	t.Run("Flag", func(t *testing.T) {
		v, ok := cfg.Value("var12")
		require.True(t, ok)
		assert.True(t, v.Flag)
		s, _ := cfg.Get("var12")
		assert.Equal(t, "true", s)
	})

	t.Run("MultiValue", func(t *testing.T) {
		assert.Equal(t, []string{"92"}, cfg.Strings("var2"))
		assert.Equal(t, []string{"abc", "pqr", "xyz"}, cfg.Strings("multi-var13"))
		got, _ := cfg.Get("multi-var13")
		assert.Equal(t, "xyz", got)
	})

	t.Run("MissingArrayIsEmpty", func(t *testing.T) {
		arr := cfg.GetArray("invalid.name")
		assert.NotNil(t, arr)
		assert.Empty(t, arr)
	})

	t.Run("Scopes", func(t *testing.T) {
		marbles := cfg.Scope("marbles")
		require.NotNil(t, marbles)
		assert.Equal(t, "4", marbles.GetOr("blue", ""))
		assert.Equal(t, "3", marbles.GetOr("red", ""))
		assert.Equal(t, "8", marbles.GetOr("clear", ""))
		assert.Equal(t, "2", marbles.GetOr("green", ""))

		assert.Nil(t, cfg.Scope("scope"))
		assert.Nil(t, cfg.Scope("same"))
		assert.Nil(t, cfg.Scope("var1"))

		assert.Equal(t, []string{"server", "user", "pw", "db"}, cfg.EnumerateScope("sql.maria.auth"))

		auth := cfg.Scope("sql.maria.auth")
		require.NotNil(t, auth)
		assert.Equal(t, []string{"server", "user", "pw", "db"}, auth.EnumerateScope(""))
		assert.Equal(t, "sql.example.com", auth.GetOr("server", ""))
		assert.Equal(t, "apache", auth.GetOr("user", ""))

		maria := cfg.Scope("sql.maria")
		require.NotNil(t, maria)
		assert.Equal(t, "website", maria.GetOr("auth.db", ""))
		assert.Equal(t, "sql.maria", maria.Prefix())

		nested := maria.Scope("auth")
		require.NotNil(t, nested)
		assert.Equal(t, "sql.maria.auth", nested.Prefix())
		assert.Equal(t, "secure", nested.GetOr("pw", ""))
	})

	t.Run("RootEnumeration", func(t *testing.T) {
		root := cfg.EnumerateScope("")
		assert.Equal(t, "var1", root[0])
		assert.Contains(t, root, "marbles")
		assert.Contains(t, root, "sql")
		assert.Equal(t, "var16", root[len(root)-1])
		assert.Len(t, cfg.Keys(), 29)
	})
}

func TestLoadMalformed(t *testing.T) {
	cfg := New("testdata/malformed.conf")
	err := cfg.Load()
	require.Error(t, err)
	assert.False(t, cfg.Loaded())

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "testdata/malformed.conf", loadErr.Path)

	lines := make([]int, 0, len(loadErr.Errors))
	for _, pe := range loadErr.Errors {
		lines = append(lines, pe.Line)
	}
	assert.Equal(t, []int{2, 3, 4, 5, 6, 8}, lines)
	assert.Equal(t, loadErr.Errors, cfg.Errors())
	assert.Equal(t, loadErr.Errors, ParseErrors(err))

	assert.ErrorIs(t, err, ErrMalformedLine)
	assert.ErrorIs(t, err, ErrInvalidScope)
	assert.Equal(t, "my var = my val", loadErr.Errors[0].Text)
	assert.Contains(t, err.Error(), "line 2: ")

	// Well-formed lines stay queryable
	assert.Equal(t, "first", cfg.GetOr("good1", ""))
	assert.Equal(t, "second", cfg.GetOr("good2", ""))
	assert.Equal(t, "third", cfg.GetOr("inner.good3", ""))
	assert.False(t, cfg.Has("my"))
	assert.False(t, cfg.Has("a..b"))
	assert.Nil(t, cfg.Scope("my"))
}

func TestLoadErrors(t *testing.T) {
	t.Run("NoFileGiven", func(t *testing.T) {
		cfg := New("")
		err := cfg.Load()
		assert.ErrorIs(t, err, ErrNoFileGiven)
		assert.False(t, cfg.Loaded())
		assert.Empty(t, cfg.Errors())
	})

	t.Run("MissingFile", func(t *testing.T) {
		cfg := New(filepath.Join(t.TempDir(), "missing.conf"))
		err := cfg.Load()
		assert.ErrorIs(t, err, ErrFileUnreadable)
		assert.False(t, cfg.Loaded())

		errs := cfg.Errors()
		require.Len(t, errs, 1)
		assert.Zero(t, errs[0].Line)
		assert.ErrorIs(t, errs[0], ErrFileUnreadable)
		assert.Equal(t, err.Error(), errs[0].Error())
	})

	t.Run("ReadFailureReplacesParseErrors", func(t *testing.T) {
		path := writeFile(t, "app.conf", "good = 1\nmy var = x\n")
		cfg := New(path)
		require.Error(t, cfg.Load())
		require.Len(t, cfg.Errors(), 1)
		assert.Equal(t, 2, cfg.Errors()[0].Line)

		require.NoError(t, os.Remove(path))
		err := cfg.Load()
		assert.ErrorIs(t, err, ErrFileUnreadable)

		errs := cfg.Errors()
		require.Len(t, errs, 1)
		assert.Zero(t, errs[0].Line)
		assert.ErrorIs(t, errs[0], ErrFileUnreadable)
		assert.NotErrorIs(t, errs[0], ErrMalformedLine)
		assert.Equal(t, "1", cfg.GetOr("good", ""), "values of the previous pass are kept")
	})

	t.Run("ReaderFailure", func(t *testing.T) {
		cfg := New("")
		err := cfg.LoadReader(iotest.ErrReader(errors.New("boom")))
		assert.ErrorIs(t, err, ErrFileUnreadable)
		require.Len(t, cfg.Errors(), 1)
		assert.ErrorIs(t, cfg.Errors()[0], ErrFileUnreadable)
	})

	t.Run("Directory", func(t *testing.T) {
		cfg := New(t.TempDir())
		assert.ErrorIs(t, cfg.Load(), ErrFileUnreadable)
	})

	t.Run("LineTooLong", func(t *testing.T) {
		path := writeFile(t, "long.conf", "key = "+strings.Repeat("x", MaxLineSize+1)+"\n")
		cfg := New(path)
		assert.ErrorIs(t, cfg.Load(), ErrFileUnreadable)
		assert.Empty(t, cfg.Keys())
	})
}

func TestLoadIdempotence(t *testing.T) {
	path := writeFile(t, "app.conf", "a = 1\n")
	cfg := New(path)
	require.NoError(t, cfg.Load())

	// A second load after success does nothing
	require.NoError(t, os.WriteFile(path, []byte("a = 2\n"), 0644))
	require.NoError(t, cfg.Load())
	assert.Equal(t, "1", cfg.GetOr("a", ""))
	assert.Equal(t, []string{"1"}, cfg.Strings("a"))

	// Reset allows loading again
	cfg.Reset()
	assert.False(t, cfg.Loaded())
	assert.False(t, cfg.Has("a"))
	require.NoError(t, cfg.Load())
	assert.Equal(t, "2", cfg.GetOr("a", ""))
}

func TestLoadRetryAfterFailure(t *testing.T) {
	path := writeFile(t, "app.conf", "a = 1\nbad line here\n")
	cfg := New(path)
	require.NoError(t, cfg.Preload(map[string]any{"d": "default"}))

	require.Error(t, cfg.Load())
	assert.Equal(t, "1", cfg.GetOr("a", ""))

	require.NoError(t, os.WriteFile(path, []byte("a = 3\n"), 0644))
	require.NoError(t, cfg.Load())
	assert.Equal(t, []string{"3"}, cfg.Strings("a"), "values are not duplicated by a second pass")
	assert.Equal(t, "default", cfg.GetOr("d", ""))
	assert.Empty(t, cfg.Errors())
}

func TestPreload(t *testing.T) {
	content := "var1 = from file\nmulti = a\nmulti = b\n"

	t.Run("BeforeLoad", func(t *testing.T) {
		cfg := New(writeFile(t, "a.conf", content))
		require.NoError(t, cfg.Preload(map[string]any{"var1": "default", "other": "x"}))
		require.NoError(t, cfg.Load())

		assert.Equal(t, "from file", cfg.GetOr("var1", ""))
		assert.Equal(t, []string{"from file"}, cfg.Strings("var1"))
		assert.Equal(t, "x", cfg.GetOr("other", ""))
	})

	t.Run("AfterLoad", func(t *testing.T) {
		cfg := New(writeFile(t, "a.conf", content))
		require.NoError(t, cfg.Load())
		require.NoError(t, cfg.Preload(map[string]any{"var1": "default", "multi": []string{"z"}, "other": "x"}))

		assert.Equal(t, "from file", cfg.GetOr("var1", ""))
		assert.Equal(t, []string{"a", "b"}, cfg.Strings("multi"))
		assert.Equal(t, "x", cfg.GetOr("other", ""))
	})

	t.Run("ValueConversion", func(t *testing.T) {
		cfg := New("")
		require.NoError(t, cfg.Preload(map[string]any{
			"flag":  true,
			"off":   false,
			"port":  8080,
			"ratio": 0.5,
			"list":  []any{"a", 1, true},
			"none":  nil,
			"sql": map[string]any{
				"maria": map[string]any{"user": "apache"},
			},
		}))

		v, _ := cfg.Value("flag")
		assert.True(t, v.Flag)
		assert.Equal(t, "false", cfg.GetOr("off", ""))
		assert.Equal(t, "8080", cfg.GetOr("port", ""))
		assert.Equal(t, "0.5", cfg.GetOr("ratio", ""))
		assert.Equal(t, []Value{Text("a"), Text("1"), Flag()}, cfg.GetArray("list"))
		assert.True(t, cfg.Has("none"))
		assert.Equal(t, "apache", cfg.GetOr("sql.maria.user", ""))
		assert.Equal(t, []string{"maria"}, cfg.EnumerateScope("sql"))
	})

	t.Run("TypedSlices", func(t *testing.T) {
		cfg := New("")
		require.NoError(t, cfg.Preload(map[string]any{
			"ports":  []int{80, 443},
			"ratios": []float64{0.5, 1.25},
			"flags":  [2]bool{true, false},
			"raw":    []byte("ab"),
		}))

		assert.Equal(t, []string{"80", "443"}, cfg.Strings("ports"))
		assert.Equal(t, "443", cfg.GetOr("ports", ""))
		assert.Equal(t, []string{"0.5", "1.25"}, cfg.Strings("ratios"))
		assert.Equal(t, []Value{Flag(), Text("false")}, cfg.GetArray("flags"))
		assert.Len(t, cfg.GetArray("raw"), 1)
	})

	t.Run("InvalidKeys", func(t *testing.T) {
		cfg := New("")
		err := cfg.Preload(map[string]any{"bad key": 1, "ok": 2, "a..b": 3})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"bad key"`)
		assert.Contains(t, err.Error(), `"a..b"`)
		assert.Equal(t, "2", cfg.GetOr("ok", ""))
	})
}

func TestGetIdentity(t *testing.T) {
	cfg := loadSample(t)

	for _, key := range cfg.Keys() {
		values := cfg.GetArray(key)
		require.NotEmpty(t, values, key)
		v, ok := cfg.Value(key)
		require.True(t, ok)
		assert.Equal(t, values[len(values)-1], v, "Get must return the last value of %q", key)
	}
}

func TestScopePrecedence(t *testing.T) {
	path := writeFile(t, "p.conf", "db = flat\ndb.host = nested\n")
	cfg := New(path)
	require.NoError(t, cfg.Load())

	assert.Equal(t, "flat", cfg.GetOr("db", ""))
	view := cfg.Scope("db")
	require.NotNil(t, view)
	assert.Equal(t, "nested", view.GetOr("host", ""))
	assert.Equal(t, []string{"db"}, cfg.EnumerateScope(""))
}

func TestViewFollowsParent(t *testing.T) {
	cfg := loadSample(t)
	view := cfg.Scope("marbles")
	require.NotNil(t, view)

	assert.Equal(t, []string{"green", "white", "yellow", "blue", "red", "clear"}, view.Keys())

	cfg.Reset()
	assert.False(t, view.Has("green"))
	assert.Empty(t, view.Keys())
	assert.Empty(t, view.EnumerateScope(""))
}

func TestSetRules(t *testing.T) {
	path := writeFile(t, "custom.conf", "; ini-style comment\n[net/http]\nport: 8080\nname: 'a ^'b^''\n")

	r := DefaultRules()
	r.CommentStarts = []string{";"}
	r.AssignDelimiter = ":"
	r.ScopeDelimiter = "/"
	r.Quote = '\''
	r.Escape = '^'

	cfg := New(path)
	require.NoError(t, cfg.SetRules(r))
	require.NoError(t, cfg.Load())

	assert.Equal(t, "8080", cfg.GetOr("net/http/port", ""))
	assert.Equal(t, "a 'b'", cfg.GetOr("net/http/name", ""))
	assert.Equal(t, []string{"http"}, cfg.EnumerateScope("net"))
	require.NotNil(t, cfg.Scope("net/http"))

	assert.ErrorIs(t, cfg.SetRules(DefaultRules()), ErrAlreadyLoaded)
	assert.Equal(t, ":", cfg.Rules().AssignDelimiter)

	bad := DefaultRules()
	bad.AssignDelimiter = ""
	assert.ErrorIs(t, New(path).SetRules(bad), ErrInvalidRules)
}

func TestWithRulesOption(t *testing.T) {
	r := DefaultRules()
	r.CommentStarts = []string{"--"}

	cfg := New("", WithRules(r))
	err := cfg.LoadReader(strings.NewReader("a = 1 -- note\n# b = 2\n"))
	require.Error(t, err)
	assert.Equal(t, "1", cfg.GetOr("a", ""))

	errs := cfg.Errors()
	require.Len(t, errs, 1, "'#' is not a comment marker under these rules")
	assert.Equal(t, 2, errs[0].Line)
	assert.ErrorIs(t, errs[0], ErrMalformedLine)
}

func TestLoadReader(t *testing.T) {
	cfg := New("")
	require.NoError(t, cfg.Preload(map[string]any{"d": 1}))

	require.NoError(t, cfg.LoadReader(strings.NewReader("a = 1\r\nb = 2\r\n")))
	assert.Equal(t, "1", cfg.GetOr("a", ""))
	assert.Equal(t, "2", cfg.GetOr("b", ""))

	err := cfg.LoadReader(strings.NewReader("c = 3\nbroken line x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "<input>")
	assert.False(t, cfg.Has("a"), "a new reader replaces parsed values")
	assert.Equal(t, "3", cfg.GetOr("c", ""))
	assert.Equal(t, "1", cfg.GetOr("d", ""))
}

func TestConcurrentAccess(t *testing.T) {
	cfg := loadSample(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cfg.GetOr("var1", "")
				cfg.EnumerateScope("sql.maria.auth")
				if v := cfg.Scope("marbles"); v != nil {
					v.GetArray("green")
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			_ = cfg.Preload(map[string]any{"extra": j})
		}
	}()
	wg.Wait()

	assert.Equal(t, "0", cfg.GetOr("extra", ""))
}
