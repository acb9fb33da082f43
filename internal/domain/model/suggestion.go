package model

import "time"

// Suggestion is the persisted, user-facing unit of a proposed code change.
// A suggestion moves through its lifecycle at most once per branch:
// pending -> applied|edited -> undone, or pending -> rejected.
type Suggestion struct {
	ID            string
	ProjectID     string
	UserID        string
	Source        SuggestionSource
	Scope         SuggestionScope
	Status        SuggestionStatus
	FilePaths     []string // Never empty; only FilePaths[0] is mutated on apply.
	OriginalCode  string   // Anchor text expected verbatim in the target file.
	SuggestedCode string
	AppliedCode   *string // Nil until applied; retained after undo.
	Explanation   string
	CreatedAt     time.Time
	AppliedAt     *time.Time
	RejectedAt    *time.Time
}

// TargetPath returns the single file path that lifecycle transitions mutate.
func (s Suggestion) TargetPath() string {
	if len(s.FilePaths) == 0 {
		return ""
	}
	return s.FilePaths[0]
}

// AnchorForUndo returns the text an undo must locate in the current file:
// the code that was actually applied, falling back to the suggested code.
func (s Suggestion) AnchorForUndo() string {
	if s.AppliedCode != nil {
		return *s.AppliedCode
	}
	return s.SuggestedCode
}

// SuggestionFilter narrows a suggestion listing. Zero values mean "no filter";
// Limit <= 0 means no limit.
type SuggestionFilter struct {
	ProjectID string
	Status    SuggestionStatus
	Limit     int
	Offset    int
}
