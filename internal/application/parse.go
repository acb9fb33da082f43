package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
)

// AISuggestion is one validated entry from a model response, or one finding
// of the local heuristic fallback.
type AISuggestion struct {
	OriginalCode  string
	SuggestedCode string
	Explanation   string
	Scope         model.SuggestionScope
	FilePaths     []string // Optional; the Builder falls back to its default.
	ProjectID     string
}

// AIResult is the output of either Generator entry point. An empty result
// means nothing to suggest or that generation failed; callers cannot and
// need not tell the two apart.
type AIResult struct {
	Source      model.SuggestionSource
	Suggestions []AISuggestion
}

// ParseResult is the outcome of decoding a model response: exactly one of
// ParsedSuggestions or *ParseError.
type ParseResult interface {
	isParseResult()
}

// ParsedSuggestions is a successful decode. Suggestions may be empty when
// the model found nothing or every entry was discarded.
type ParsedSuggestions struct {
	Suggestions []AISuggestion
}

// ParseError is a response that could not be decoded at all.
type ParseError struct {
	Reason string
	Err    error
}

func (ParsedSuggestions) isParseResult() {}
func (*ParseError) isParseResult()       {}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	errNotString  = errors.New("not a non-empty string")
	errStringType = errors.New("not a string")
)

// ParseCompletion decodes a model response into validated suggestions.
// Markdown code fences are stripped first. Entries missing any of
// originalCode, suggestedCode or explanation are discarded; only
// suggestedCode may be empty, which proposes deleting originalCode. An invalid or
// absent scope becomes single_line. At most limit entries are kept (limit <= 0
// keeps all) and each entry is stamped with projectID.
func ParseCompletion(raw, projectID string, limit int) ParseResult {
	text := stripCodeFences(raw)
	if text == "" {
		return &ParseError{Reason: "empty response"}
	}

	var envelope struct {
		Suggestions []json.RawMessage `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return &ParseError{Reason: fmt.Sprintf("invalid JSON (response was: %.200s)", text), Err: err}
	}
	if envelope.Suggestions == nil {
		return &ParseError{Reason: "response has no suggestions array"}
	}

	suggestions := make([]AISuggestion, 0, len(envelope.Suggestions))
	for _, entry := range envelope.Suggestions {
		s, err := decodeEntry(entry)
		if err != nil {
			continue
		}
		s.ProjectID = projectID
		suggestions = append(suggestions, s)
		if limit > 0 && len(suggestions) == limit {
			break
		}
	}

	return ParsedSuggestions{Suggestions: suggestions}
}

// decodeEntry validates one element of the suggestions array.
func decodeEntry(raw json.RawMessage) (AISuggestion, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return AISuggestion{}, err
	}

	var s AISuggestion
	var err error
	if s.OriginalCode, err = requiredString(fields, "originalCode"); err != nil {
		return AISuggestion{}, err
	}
	if s.SuggestedCode, err = stringField(fields, "suggestedCode"); err != nil {
		return AISuggestion{}, err
	}
	if s.Explanation, err = requiredString(fields, "explanation"); err != nil {
		return AISuggestion{}, err
	}

	s.Scope = model.ScopeSingleLine
	var scope string
	if v, ok := fields["scope"]; ok && json.Unmarshal(v, &scope) == nil {
		if candidate := model.SuggestionScope(scope); candidate.IsValid() {
			s.Scope = candidate
		}
	}

	var paths []string
	if v, ok := fields["filePaths"]; ok && json.Unmarshal(v, &paths) == nil {
		for _, p := range paths {
			if p = strings.TrimSpace(p); p != "" {
				s.FilePaths = append(s.FilePaths, p)
			}
		}
	}

	return s, nil
}

func requiredString(fields map[string]json.RawMessage, key string) (string, error) {
	s, err := stringField(fields, key)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%s: %w", key, errNotString)
	}
	return s, nil
}

// stringField requires key to be present as a JSON string, possibly empty.
func stringField(fields map[string]json.RawMessage, key string) (string, error) {
	v, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%s: missing", key)
	}
	var s *string
	if err := json.Unmarshal(v, &s); err != nil || s == nil {
		return "", fmt.Errorf("%s: %w", key, errStringType)
	}
	return *s, nil
}

// stripCodeFences removes a surrounding ``` or ```json fence.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	// Drop the info string ("json", "JSON", ...) up to the first newline.
	if i := strings.IndexByte(text, '\n'); i >= 0 && !strings.ContainsAny(text[:i], "{[") {
		text = text[i+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
