package application

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
	"github.com/ericfisherdev/codesuggest/internal/domain/port/driven"
	"github.com/ericfisherdev/codesuggest/internal/domain/rules"
)

// AnalyzeRequest asks for one stored file to be analyzed.
type AnalyzeRequest struct {
	UserID string
	FileID int64
	UseAI  bool
}

// AnalysisService runs both detection paths over a stored file and persists
// the resulting drafts as pending suggestions.
type AnalysisService struct {
	files     driven.FileStore
	tx        driven.Transactor
	engine    *rules.Engine
	generator *Generator
	builder   *Builder
}

// NewAnalysisService creates an AnalysisService.
func NewAnalysisService(
	files driven.FileStore,
	tx driven.Transactor,
	engine *rules.Engine,
	generator *Generator,
	builder *Builder,
) *AnalysisService {
	return &AnalysisService{
		files:     files,
		tx:        tx,
		engine:    engine,
		generator: generator,
		builder:   builder,
	}
}

// ruleDraft pairs a draft with the rule that produced it, for merging.
type ruleDraft struct {
	rule       string
	suggestion model.Suggestion
}

type anchorKey struct {
	path         string
	originalCode string
}

// AnalyzeFile runs the Rule Engine and, when requested, the AI Generator
// concurrently over the file's current content. A rule draft and an AI draft
// with the same anchor are merged into one hybrid suggestion. All drafts are
// persisted together and returned with their IDs.
func (s *AnalysisService) AnalyzeFile(ctx context.Context, req AnalyzeRequest) ([]model.Suggestion, error) {
	file, err := s.files.GetByID(ctx, req.FileID)
	if err != nil {
		return nil, fmt.Errorf("get file %d: %w", req.FileID, err)
	}
	if file == nil {
		return nil, fmt.Errorf("file %d: %w", req.FileID, ErrFileNotFound)
	}

	var (
		violations []model.RuleViolation
		aiResult   AIResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		violations = s.engine.AnalyzeFile(file.Content, file.FileType, file.Path)
		return nil
	})
	if req.UseAI {
		g.Go(func() error {
			aiResult = s.generator.GenerateSuggestions(gctx, file.Path, file.Content, file.FileType, file.ProjectID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ruleDrafts := make([]ruleDraft, 0, len(violations))
	for _, v := range violations {
		ruleDrafts = append(ruleDrafts, ruleDraft{
			rule:       v.Rule,
			suggestion: s.builder.FromRuleViolation(v, req.UserID, file.ProjectID, file.Path),
		})
	}
	aiDrafts := s.builder.FromAIResult(aiResult, req.UserID, file.ProjectID, []string{file.Path})

	drafts := mergeDrafts(ruleDrafts, aiDrafts)

	persisted := make([]model.Suggestion, 0, len(drafts))
	err = s.tx.WithinTx(ctx, func(ctx context.Context, _ driven.FileStore, suggestions driven.SuggestionStore) error {
		for _, d := range drafts {
			created, err := suggestions.Create(ctx, d)
			if err != nil {
				return fmt.Errorf("create suggestion: %w", err)
			}
			persisted = append(persisted, created)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("file analyzed",
		"file", file.Path,
		"project_id", file.ProjectID,
		"rule_findings", len(ruleDrafts),
		"ai_findings", len(aiDrafts),
		"persisted", len(persisted),
	)

	return persisted, nil
}

// mergeDrafts returns rule drafts in line order followed by AI drafts that
// matched no rule draft. A matched pair becomes one hybrid draft carrying the
// AI code and explanation, prefixed with the rule id.
func mergeDrafts(ruleDrafts []ruleDraft, aiDrafts []model.Suggestion) []model.Suggestion {
	byAnchor := make(map[anchorKey]int, len(ruleDrafts))
	for i, rd := range ruleDrafts {
		key := anchorKey{path: rd.suggestion.TargetPath(), originalCode: rd.suggestion.OriginalCode}
		if _, seen := byAnchor[key]; !seen {
			byAnchor[key] = i
		}
	}

	merged := make([]model.Suggestion, 0, len(ruleDrafts)+len(aiDrafts))
	for _, rd := range ruleDrafts {
		merged = append(merged, rd.suggestion)
	}

	for _, ai := range aiDrafts {
		key := anchorKey{path: ai.TargetPath(), originalCode: ai.OriginalCode}
		i, ok := byAnchor[key]
		if !ok {
			merged = append(merged, ai)
			continue
		}
		delete(byAnchor, key)

		hybrid := merged[i]
		hybrid.Source = model.SourceHybrid
		hybrid.Scope = ai.Scope
		hybrid.FilePaths = ai.FilePaths
		hybrid.SuggestedCode = ai.SuggestedCode
		hybrid.Explanation = fmt.Sprintf("[%s] %s", ruleDrafts[i].rule, ai.Explanation)
		merged[i] = hybrid
	}

	return merged
}
