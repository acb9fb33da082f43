package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplaceFirstOccurrence(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		anchor      string
		replacement string
		want        string
		wantOK      bool
	}{
		{"single match", "var x = 1;", "var x = 1;", "const x = 1;", "const x = 1;", true},
		{"only first of many", "a\na\na", "a", "b", "b\na\na", true},
		{"anchor absent", "let y = 2;", "var x = 1;", "const x = 1;", "let y = 2;", false},
		{"empty anchor", "abc", "", "z", "abc", false},
		{"empty replacement deletes", "keep drop keep", " drop", "", "keep keep", true},
		{"multi-line anchor", "a {\n  color: red;\n}", "{\n  color: red;\n}", "{}", "a {}", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ReplaceFirstOccurrence{}.Apply(tc.content, tc.anchor, tc.replacement)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReplaceFirstOccurrence_LengthLaw(t *testing.T) {
	content := "header\nvar x = 1;\nfooter"
	anchor := "var x = 1;"
	replacement := "const x = 1;"

	got, ok := ReplaceFirstOccurrence{}.Apply(content, anchor, replacement)

	assert.True(t, ok)
	assert.Len(t, got, len(content)-len(anchor)+len(replacement))
}

func TestReplaceFirstOccurrence_ApplyThenUndoRoundTrips(t *testing.T) {
	content := "header\nvar x = 1;\nfooter"
	s := ReplaceFirstOccurrence{}

	applied, ok := s.Apply(content, "var x = 1;", "const x = 1;")
	assert.True(t, ok)

	restored, ok := s.Apply(applied, "const x = 1;", "var x = 1;")
	assert.True(t, ok)
	assert.Equal(t, content, restored)
}
