package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
	"github.com/ericfisherdev/codesuggest/internal/domain/patch"
	"github.com/ericfisherdev/codesuggest/internal/domain/port/driven"
)

// Conflict describes an apply or undo that could not locate its anchor in
// the current file content. Nothing was mutated.
type Conflict struct {
	CurrentContent   string
	SuggestedContent string
}

// LifecycleResult is the outcome of an apply or undo. Exactly one of
// Success and Conflict is set; hard failures are returned as errors instead.
type LifecycleResult struct {
	Success    bool
	Conflict   *Conflict
	Suggestion model.Suggestion
}

// SuggestionService owns the suggestion state machine. It is the only
// component that mutates file content or suggestion status.
type SuggestionService struct {
	suggestions driven.SuggestionStore
	tx          driven.Transactor
	patcher     patch.Strategy
	now         func() time.Time
}

// NewSuggestionService creates a SuggestionService. Reads go through
// suggestions; every transition runs inside tx.
func NewSuggestionService(suggestions driven.SuggestionStore, tx driven.Transactor, patcher patch.Strategy) *SuggestionService {
	return &SuggestionService{
		suggestions: suggestions,
		tx:          tx,
		patcher:     patcher,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ApplySuggestion replaces the first occurrence of the suggestion's original
// code in its target file with editedCode, or with the suggested code when
// editedCode is nil. If the original code is no longer present the result
// carries a Conflict and nothing is written. The file is written before the
// suggestion status. A blank editedCode is rejected with ErrInvalidInput
// because the resulting deletion could never be undone.
func (s *SuggestionService) ApplySuggestion(ctx context.Context, id string, editedCode *string) (LifecycleResult, error) {
	if editedCode != nil && strings.TrimSpace(*editedCode) == "" {
		return LifecycleResult{}, fmt.Errorf("apply suggestion %s: edited code is blank: %w", id, ErrInvalidInput)
	}

	var result LifecycleResult

	err := s.tx.WithinTx(ctx, func(ctx context.Context, files driven.FileStore, suggestions driven.SuggestionStore) error {
		sug, err := loadSuggestion(ctx, suggestions, id)
		if err != nil {
			return err
		}
		if sug.Status != model.StatusPending {
			return fmt.Errorf("apply suggestion %s in status %s: %w", id, sug.Status, ErrInvalidState)
		}

		file, err := s.targetFile(ctx, files, sug)
		if err != nil {
			return err
		}

		code, status := sug.SuggestedCode, model.StatusApplied
		if editedCode != nil {
			code, status = *editedCode, model.StatusEdited
		}

		patched, ok := s.patcher.Apply(file.Content, sug.OriginalCode, code)
		if !ok {
			slog.Info("suggestion conflicts with current file", "suggestion_id", id, "file", file.Path)
			result = LifecycleResult{
				Conflict:   &Conflict{CurrentContent: file.Content, SuggestedContent: code},
				Suggestion: sug,
			}
			return nil
		}

		if err := files.UpdateContent(ctx, file.ID, patched); err != nil {
			return fmt.Errorf("write file %s: %w", file.Path, err)
		}

		appliedAt := s.now()
		sug.Status = status
		sug.AppliedCode = &code
		sug.AppliedAt = &appliedAt
		if err := transition(ctx, suggestions, sug, model.StatusPending); err != nil {
			return err
		}

		slog.Info("suggestion applied", "suggestion_id", id, "file", file.Path, "status", status)
		result = LifecycleResult{Success: true, Suggestion: sug}
		return nil
	})
	if err != nil {
		return LifecycleResult{}, err
	}
	return result, nil
}

// RejectSuggestion marks a pending suggestion rejected. File content is
// never touched.
func (s *SuggestionService) RejectSuggestion(ctx context.Context, id string) (model.Suggestion, error) {
	var rejected model.Suggestion

	err := s.tx.WithinTx(ctx, func(ctx context.Context, _ driven.FileStore, suggestions driven.SuggestionStore) error {
		sug, err := loadSuggestion(ctx, suggestions, id)
		if err != nil {
			return err
		}
		if sug.Status != model.StatusPending {
			return fmt.Errorf("reject suggestion %s in status %s: %w", id, sug.Status, ErrInvalidState)
		}

		rejectedAt := s.now()
		sug.Status = model.StatusRejected
		sug.RejectedAt = &rejectedAt
		if err := transition(ctx, suggestions, sug, model.StatusPending); err != nil {
			return err
		}

		rejected = sug
		return nil
	})
	if err != nil {
		return model.Suggestion{}, err
	}

	slog.Info("suggestion rejected", "suggestion_id", id)
	return rejected, nil
}

// UndoSuggestion reverts an applied or edited suggestion by replacing the
// first occurrence of the applied code with the original code. AppliedAt and
// AppliedCode are kept as history. If the applied code is no longer present
// the result carries a Conflict and nothing is written.
func (s *SuggestionService) UndoSuggestion(ctx context.Context, id string) (LifecycleResult, error) {
	var result LifecycleResult

	err := s.tx.WithinTx(ctx, func(ctx context.Context, files driven.FileStore, suggestions driven.SuggestionStore) error {
		sug, err := loadSuggestion(ctx, suggestions, id)
		if err != nil {
			return err
		}
		if sug.Status != model.StatusApplied && sug.Status != model.StatusEdited {
			return fmt.Errorf("undo suggestion %s in status %s: %w", id, sug.Status, ErrInvalidState)
		}

		file, err := s.targetFile(ctx, files, sug)
		if err != nil {
			return err
		}

		restored, ok := s.patcher.Apply(file.Content, sug.AnchorForUndo(), sug.OriginalCode)
		if !ok {
			slog.Info("undo conflicts with current file", "suggestion_id", id, "file", file.Path)
			result = LifecycleResult{
				Conflict:   &Conflict{CurrentContent: file.Content, SuggestedContent: sug.OriginalCode},
				Suggestion: sug,
			}
			return nil
		}

		if err := files.UpdateContent(ctx, file.ID, restored); err != nil {
			return fmt.Errorf("write file %s: %w", file.Path, err)
		}

		from := sug.Status
		sug.Status = model.StatusUndone
		if err := transition(ctx, suggestions, sug, from); err != nil {
			return err
		}

		slog.Info("suggestion undone", "suggestion_id", id, "file", file.Path)
		result = LifecycleResult{Success: true, Suggestion: sug}
		return nil
	})
	if err != nil {
		return LifecycleResult{}, err
	}
	return result, nil
}

// GetSuggestion returns one suggestion by ID.
func (s *SuggestionService) GetSuggestion(ctx context.Context, id string) (model.Suggestion, error) {
	return loadSuggestion(ctx, s.suggestions, id)
}

// ListSuggestions returns suggestions matching filter, newest first.
func (s *SuggestionService) ListSuggestions(ctx context.Context, filter model.SuggestionFilter) ([]model.Suggestion, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("status %q: %w", filter.Status, ErrInvalidInput)
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, fmt.Errorf("negative limit or offset: %w", ErrInvalidInput)
	}

	list, err := s.suggestions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	return list, nil
}

// transition persists sug's new lifecycle fields provided the stored status
// is still from. A status moved by a concurrent transition is ErrInvalidState.
func transition(ctx context.Context, store driven.SuggestionStore, sug model.Suggestion, from model.SuggestionStatus) error {
	err := store.UpdateLifecycle(ctx, sug, from)
	if errors.Is(err, driven.ErrStatusChanged) {
		return fmt.Errorf("suggestion %s left status %s: %w", sug.ID, from, ErrInvalidState)
	}
	if err != nil {
		return fmt.Errorf("update suggestion %s: %w", sug.ID, err)
	}
	return nil
}

func loadSuggestion(ctx context.Context, store driven.SuggestionStore, id string) (model.Suggestion, error) {
	sug, err := store.GetByID(ctx, id)
	if err != nil {
		return model.Suggestion{}, fmt.Errorf("get suggestion %s: %w", id, err)
	}
	if sug == nil {
		return model.Suggestion{}, fmt.Errorf("suggestion %s: %w", id, ErrSuggestionNotFound)
	}
	return *sug, nil
}

// targetFile resolves the one file a transition mutates. Only FilePaths[0]
// is touched; any further paths of a multi_file suggestion are reported and
// left alone.
func (s *SuggestionService) targetFile(ctx context.Context, files driven.FileStore, sug model.Suggestion) (*model.ProjectFile, error) {
	if len(sug.FilePaths) > 1 {
		slog.Warn("multi-file suggestion mutates only its first path",
			"suggestion_id", sug.ID, "target", sug.FilePaths[0], "ignored", sug.FilePaths[1:])
	}

	path := sug.TargetPath()
	file, err := files.GetByPath(ctx, sug.ProjectID, path)
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", path, err)
	}
	if file == nil {
		return nil, fmt.Errorf("file %s: %w", path, ErrFileNotFound)
	}
	return file, nil
}
