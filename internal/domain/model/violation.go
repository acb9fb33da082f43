package model

// RuleViolation is a transient finding from a deterministic detector. It is
// never persisted as-is; the builder turns each one into a Suggestion draft.
type RuleViolation struct {
	Line          int // 1-based.
	Column        int // 1-based.
	Rule          string
	Message       string
	OriginalCode  string
	SuggestedCode string
	Severity      Severity
}
