package application_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/codesuggest/internal/application"
	"github.com/ericfisherdev/codesuggest/internal/domain/model"
)

const twoSuggestions = `{
  "suggestions": [
    {"originalCode": "var a = 1;", "suggestedCode": "const a = 1;", "explanation": "a is never reassigned", "scope": "single_line"},
    {"originalCode": "a {\n  color: red;\n}", "suggestedCode": "a { color: red; }", "explanation": "collapse", "scope": "multi_line"}
  ]
}`

func requireParsed(t *testing.T, result application.ParseResult) []application.AISuggestion {
	t.Helper()
	parsed, ok := result.(application.ParsedSuggestions)
	require.True(t, ok, "expected ParsedSuggestions, got %#v", result)
	return parsed.Suggestions
}

func TestParseCompletion_StripsFences(t *testing.T) {
	for name, raw := range map[string]string{
		"plain":         twoSuggestions,
		"json fence":    "```json\n" + twoSuggestions + "\n```",
		"bare fence":    "```\n" + twoSuggestions + "\n```",
		"padded":        "\n\n  ```JSON\n" + twoSuggestions + "\n```  \n",
		"one-line body": "```{\"suggestions\": []}```",
	} {
		t.Run(name, func(t *testing.T) {
			got := requireParsed(t, application.ParseCompletion(raw, "shop", 5))
			if name == "one-line body" {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 2)
			assert.Equal(t, "var a = 1;", got[0].OriginalCode)
			assert.Equal(t, model.ScopeMultiLine, got[1].Scope)
		})
	}
}

func TestParseCompletion_StampsProjectID(t *testing.T) {
	got := requireParsed(t, application.ParseCompletion(twoSuggestions, "shop-42", 5))

	for _, s := range got {
		assert.Equal(t, "shop-42", s.ProjectID)
	}
}

func TestParseCompletion_DiscardsIncompleteEntries(t *testing.T) {
	raw := `{"suggestions": [
		{"suggestedCode": "x", "explanation": "missing original"},
		{"originalCode": "a", "explanation": "missing suggested"},
		{"originalCode": "a", "suggestedCode": "b"},
		{"originalCode": 7, "suggestedCode": "b", "explanation": "not a string"},
		{"originalCode": "   ", "suggestedCode": "b", "explanation": "blank"},
		{"originalCode": "a", "suggestedCode": null, "explanation": "null suggested"},
		{"originalCode": "a", "suggestedCode": 3, "explanation": "numeric suggested"},
		"not an object",
		{"originalCode": "keep", "suggestedCode": "kept", "explanation": "complete"}
	]}`

	got := requireParsed(t, application.ParseCompletion(raw, "p", 5))

	require.Len(t, got, 1)
	assert.Equal(t, "keep", got[0].OriginalCode)
}

func TestParseCompletion_KeepsDeletions(t *testing.T) {
	raw := `{"suggestions": [
		{"originalCode": "console.log(total);", "suggestedCode": "", "explanation": "debug output left in"},
		{"originalCode": "", "suggestedCode": "x", "explanation": "nothing to anchor on"}
	]}`

	got := requireParsed(t, application.ParseCompletion(raw, "p", 5))

	require.Len(t, got, 1)
	assert.Equal(t, "console.log(total);", got[0].OriginalCode)
	assert.Equal(t, "", got[0].SuggestedCode)
}

func TestParseCompletion_CoercesScope(t *testing.T) {
	raw := `{"suggestions": [
		{"originalCode": "a", "suggestedCode": "b", "explanation": "e", "scope": "whole_repo"},
		{"originalCode": "a", "suggestedCode": "b", "explanation": "e"},
		{"originalCode": "a", "suggestedCode": "b", "explanation": "e", "scope": 3},
		{"originalCode": "a", "suggestedCode": "b", "explanation": "e", "scope": "multi_file", "filePaths": ["x.js", " ", "y.js"]}
	]}`

	got := requireParsed(t, application.ParseCompletion(raw, "p", 5))

	require.Len(t, got, 4)
	assert.Equal(t, model.ScopeSingleLine, got[0].Scope)
	assert.Equal(t, model.ScopeSingleLine, got[1].Scope)
	assert.Equal(t, model.ScopeSingleLine, got[2].Scope)
	assert.Equal(t, model.ScopeMultiFile, got[3].Scope)
	assert.Equal(t, []string{"x.js", "y.js"}, got[3].FilePaths)
}

func TestParseCompletion_CapsEntries(t *testing.T) {
	raw := `{"suggestions": [
		{"originalCode": "1", "suggestedCode": "x", "explanation": "e"},
		{"originalCode": "2", "suggestedCode": "x", "explanation": "e"},
		{"originalCode": "bad"},
		{"originalCode": "3", "suggestedCode": "x", "explanation": "e"},
		{"originalCode": "4", "suggestedCode": "x", "explanation": "e"},
		{"originalCode": "5", "suggestedCode": "x", "explanation": "e"},
		{"originalCode": "6", "suggestedCode": "x", "explanation": "e"}
	]}`

	got := requireParsed(t, application.ParseCompletion(raw, "p", 5))

	require.Len(t, got, 5)
	assert.Equal(t, "5", got[4].OriginalCode)
}

func TestParseCompletion_Errors(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":          "   ",
		"prose":          "Here are my suggestions: none!",
		"truncated JSON": `{"suggestions": [{"originalCode": "a"`,
		"no array":       `{"changes": []}`,
		"wrong type":     `{"suggestions": "none"}`,
		"top-level list": `[{"originalCode": "a", "suggestedCode": "b", "explanation": "c"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			result := application.ParseCompletion(raw, "p", 5)

			parseErr, ok := result.(*application.ParseError)
			require.True(t, ok, "expected *ParseError, got %#v", result)
			assert.NotEmpty(t, parseErr.Error())

			var target *application.ParseError
			assert.True(t, errors.As(error(parseErr), &target))
		})
	}
}
