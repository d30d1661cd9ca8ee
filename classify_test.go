// FILE: nofus/classify_test.go
package nofus

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	r := DefaultRules()

	tests := []struct {
		name string
		line string
		want Line
	}{
		{"Empty", "", Line{Kind: LineBlank}},
		{"Whitespace", " \t  ", Line{Kind: LineBlank}},
		{"HashComment", "# var = x", Line{Kind: LineBlank}},
		{"SlashComment", "   // var = x", Line{Kind: LineBlank}},
		{"CRLF", "\r\n", Line{Kind: LineBlank}},

		{"Scope", "[sql.maria]", Line{Kind: LineScope, Segments: []string{"sql", "maria"}}},
		{"ScopeSpaced", "  [ sql.maria ]  ", Line{Kind: LineScope, Segments: []string{"sql", "maria"}}},
		{"ScopeComment", "[marbles] # section", Line{Kind: LineScope, Segments: []string{"marbles"}}},
		{"ScopeCRLF", "[marbles]\r\n", Line{Kind: LineScope, Segments: []string{"marbles"}}},
		{"RootScope", "[]", Line{Kind: LineScope, Segments: []string{}}},
		{"RootScopeSpaced", "[  ]", Line{Kind: LineScope, Segments: []string{}}},
		{"RootScopeTrailingComment", "[]#.$ = something", Line{Kind: LineScope, Segments: []string{}}},

		{"ScopeEmptySegment", "[sql..maria]", Line{Kind: LineMalformed, Err: ErrInvalidScope}},
		{"ScopeLeadingDelimiter", "[.sql]", Line{Kind: LineMalformed, Err: ErrInvalidScope}},
		{"ScopeTrailingDelimiter", "[sql.]", Line{Kind: LineMalformed, Err: ErrInvalidScope}},
		{"ScopeUnclosed", "[sql", Line{Kind: LineMalformed, Err: ErrInvalidScope}},
		{"ScopeSpaceInside", "[bad scope]", Line{Kind: LineMalformed, Err: ErrInvalidScope}},
		{"ScopeBadChar", "[bad$]", Line{Kind: LineMalformed, Err: ErrInvalidScope}},
		{"ScopeWithValue", "[my.scope] = val", Line{Kind: LineMalformed, Err: ErrInvalidScope}},

		{"Assignment", "var1 = 42", Line{Kind: LineAssignment, Segments: []string{"var1"}, HasDelimiter: true, ValueStart: 6}},
		{"AssignmentTight", "var1=42", Line{Kind: LineAssignment, Segments: []string{"var1"}, HasDelimiter: true, ValueStart: 5}},
		{"AssignmentIndented", "    var16 = x", Line{Kind: LineAssignment, Segments: []string{"var16"}, HasDelimiter: true, ValueStart: 11}},
		{"AssignmentDotted", "auth.user = apache", Line{Kind: LineAssignment, Segments: []string{"auth", "user"}, HasDelimiter: true, ValueStart: 11}},
		{"AssignmentDashName", "- = x", Line{Kind: LineAssignment, Segments: []string{"-"}, HasDelimiter: true, ValueStart: 3}},
		{"AssignmentDigits", "99 = x", Line{Kind: LineAssignment, Segments: []string{"99"}, HasDelimiter: true, ValueStart: 4}},
		{"AssignmentEmptyValue", "var11 =", Line{Kind: LineAssignment, Segments: []string{"var11"}, HasDelimiter: true, ValueStart: 7}},
		{"Flag", "enable_keys", Line{Kind: LineAssignment, Segments: []string{"enable_keys"}}},
		{"FlagSpaced", "  enable_keys   ", Line{Kind: LineAssignment, Segments: []string{"enable_keys"}}},
		{"FlagComment", "enable_keys # on", Line{Kind: LineAssignment, Segments: []string{"enable_keys"}}},
		{"FlagTightComment", "enable_keys//on", Line{Kind: LineAssignment, Segments: []string{"enable_keys"}}},
		{"FlagDotted", "marbles.shiny", Line{Kind: LineAssignment, Segments: []string{"marbles", "shiny"}}},

		{"SpaceInName", "my var = my val", Line{Kind: LineMalformed, Err: ErrMalformedLine}},
		{"EmptySegment", "a..b = c", Line{Kind: LineMalformed, Err: ErrMalformedLine}},
		{"LeadingTrailingDelimiter", ".d. = e", Line{Kind: LineMalformed, Err: ErrMalformedLine}},
		{"MissingName", "= value", Line{Kind: LineMalformed, Err: ErrMalformedLine}},
		{"BadStartChar", "$var = x", Line{Kind: LineMalformed, Err: ErrMalformedLine}},
		{"BadCharInName", "va$r = x", Line{Kind: LineMalformed, Err: ErrMalformedLine}},
		{"FlagWithJunk", "enable_keys now", Line{Kind: LineMalformed, Err: ErrMalformedLine}},
	}

	opts := cmp.Options{
		cmpopts.EquateErrors(),
		cmpopts.IgnoreFields(Line{}, "Reason"),
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.line, &r)
			if diff := cmp.Diff(tt.want, got, opts); diff != "" {
				t.Errorf("Classify(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
			if got.Kind == LineMalformed {
				assert.NotEmpty(t, got.Reason)
			}
		})
	}
}

func TestClassifyReasons(t *testing.T) {
	r := DefaultRules()

	tests := []struct {
		line   string
		reason string
	}{
		{"my var = my val", `unexpected character 'v' after variable name "my"`},
		{"$var = x", `invalid character '$' at start of variable name`},
		{"a..b = c", `invalid variable name "a..b"`},
		{"= value", "missing variable name"},
		{"[sql..maria]", "empty segment in scope declaration"},
		{"[sql", "missing closing bracket in scope declaration"},
		{"[bad scope]", `invalid character 's' in scope declaration`},
		{"[ok] extra", `unexpected character 'e' after scope declaration`},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.reason, Classify(tt.line, &r).Reason)
		})
	}
}

func TestClassifyCustomRules(t *testing.T) {
	r := DefaultRules()
	r.CommentStarts = []string{";"}
	r.AssignDelimiter = ":"
	r.ScopeDelimiter = "/"

	cases := map[string]Line{
		"; note":          {Kind: LineBlank},
		"# not a comment": {Kind: LineMalformed, Err: ErrMalformedLine},
		"[a/b]":           {Kind: LineScope, Segments: []string{"a", "b"}},
		"a/b: value":      {Kind: LineAssignment, Segments: []string{"a", "b"}, HasDelimiter: true, ValueStart: 4},
		"a.b: value":      {Kind: LineMalformed, Err: ErrMalformedLine},
	}

	for line, want := range cases {
		got := Classify(line, &r)
		if diff := cmp.Diff(want, got, cmpopts.EquateErrors(), cmpopts.IgnoreFields(Line{}, "Reason")); diff != "" {
			t.Errorf("Classify(%q) mismatch (-want +got):\n%s", line, diff)
		}
	}
}

func TestLineKindString(t *testing.T) {
	assert.Equal(t, "blank", LineBlank.String())
	assert.Equal(t, "scope", LineScope.String())
	assert.Equal(t, "assignment", LineAssignment.String())
	assert.Equal(t, "malformed", LineMalformed.String())
	assert.Equal(t, "LineKind(9)", LineKind(9).String())
}

func TestScanStateString(t *testing.T) {
	assert.Equal(t, "InQuote", stateInQuote.String())
	assert.Equal(t, "Failed", stateFailed.String())
	assert.Equal(t, "scanState(42)", scanState(42).String())
}
