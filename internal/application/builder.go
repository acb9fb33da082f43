package application

import (
	"fmt"
	"time"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
)

// Builder normalizes Rule Engine and Generator output into pending
// suggestion drafts. It performs no I/O.
type Builder struct {
	now func() time.Time
}

// NewBuilder creates a Builder stamping drafts with the current UTC time.
func NewBuilder() *Builder {
	return &Builder{now: func() time.Time { return time.Now().UTC() }}
}

// FromAIResult creates one draft per entry. An entry's own file paths win
// over defaultPaths; entries left with no path at all are dropped because a
// suggestion must target at least one file.
func (b *Builder) FromAIResult(result AIResult, userID, projectID string, defaultPaths []string) []model.Suggestion {
	source := result.Source
	if source == "" {
		source = model.SourceAIModel
	}

	drafts := make([]model.Suggestion, 0, len(result.Suggestions))
	for _, entry := range result.Suggestions {
		paths := entry.FilePaths
		if len(paths) == 0 {
			paths = defaultPaths
		}
		if len(paths) == 0 {
			continue
		}

		scope := entry.Scope
		if !scope.IsValid() {
			scope = model.ScopeSingleLine
		}

		drafts = append(drafts, model.Suggestion{
			ProjectID:     projectID,
			UserID:        userID,
			Source:        source,
			Scope:         scope,
			Status:        model.StatusPending,
			FilePaths:     append([]string(nil), paths...),
			OriginalCode:  entry.OriginalCode,
			SuggestedCode: entry.SuggestedCode,
			Explanation:   entry.Explanation,
			CreatedAt:     b.now(),
		})
	}
	return drafts
}

// FromRuleViolation creates the draft for one violation. A line-anchored
// detector cannot claim a wider scope than single_line.
func (b *Builder) FromRuleViolation(v model.RuleViolation, userID, projectID, filePath string) model.Suggestion {
	return model.Suggestion{
		ProjectID:     projectID,
		UserID:        userID,
		Source:        model.SourceStaticRule,
		Scope:         model.ScopeSingleLine,
		Status:        model.StatusPending,
		FilePaths:     []string{filePath},
		OriginalCode:  v.OriginalCode,
		SuggestedCode: v.SuggestedCode,
		Explanation:   ruleExplanation(v),
		CreatedAt:     b.now(),
	}
}

// ruleExplanation keeps the originating rule traceable after persistence.
func ruleExplanation(v model.RuleViolation) string {
	return fmt.Sprintf("[%s] %s", v.Rule, v.Message)
}
