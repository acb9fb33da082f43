package model

// SuggestionSource identifies which detection path produced a suggestion.
type SuggestionSource string

const (
	SourceAIModel    SuggestionSource = "ai_model"
	SourceStaticRule SuggestionSource = "static_rule"
	SourceHybrid     SuggestionSource = "hybrid" // Same anchor flagged by both paths.
)

// SuggestionScope describes how much code a suggestion claims to touch.
type SuggestionScope string

const (
	ScopeSingleLine SuggestionScope = "single_line"
	ScopeMultiLine  SuggestionScope = "multi_line"
	ScopeMultiFile  SuggestionScope = "multi_file"
)

// IsValid reports whether s is one of the known scopes.
func (s SuggestionScope) IsValid() bool {
	switch s {
	case ScopeSingleLine, ScopeMultiLine, ScopeMultiFile:
		return true
	}
	return false
}

// SuggestionStatus is a position in the suggestion approval lifecycle.
type SuggestionStatus string

const (
	StatusPending  SuggestionStatus = "pending"
	StatusApplied  SuggestionStatus = "applied"
	StatusRejected SuggestionStatus = "rejected"
	StatusEdited   SuggestionStatus = "edited" // Applied with user-modified code.
	StatusUndone   SuggestionStatus = "undone"
)

// IsValid reports whether s is one of the known statuses.
func (s SuggestionStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApplied, StatusRejected, StatusEdited, StatusUndone:
		return true
	}
	return false
}

// IsTerminal reports whether no transition is defined out of s.
func (s SuggestionStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusUndone
}

// Severity ranks a rule violation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// FileCategory is the language family a file is analyzed as.
type FileCategory string

const (
	CategoryJavaScript FileCategory = "javascript"
	CategoryCSS        FileCategory = "css"
	CategoryLiquid     FileCategory = "liquid"
	CategoryUnknown    FileCategory = "unknown"
)
