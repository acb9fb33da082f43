package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
	"github.com/ericfisherdev/codesuggest/internal/domain/port/driven"
	"github.com/ericfisherdev/codesuggest/internal/domain/rules"
)

// ImportService copies analyzable files from a hosted repository into a
// project.
type ImportService struct {
	source driven.RepoFileSource
	files  driven.FileStore
}

// NewImportService creates an ImportService.
func NewImportService(source driven.RepoFileSource, files driven.FileStore) *ImportService {
	return &ImportService{source: source, files: files}
}

// Import fetches every javascript, css and liquid file below dir at ref and
// upserts it into projectID by path. Files whose stored content already
// matches are counted as skipped.
func (s *ImportService) Import(ctx context.Context, projectID, repoFullName, ref, dir string) (model.ImportResult, error) {
	if strings.TrimSpace(projectID) == "" {
		return model.ImportResult{}, fmt.Errorf("project is required: %w", ErrInvalidInput)
	}
	parts := strings.Split(repoFullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return model.ImportResult{}, fmt.Errorf("repository must be in owner/repo format: %w", ErrInvalidInput)
	}

	fetched, err := s.source.FetchFiles(ctx, repoFullName, ref, strings.Trim(dir, "/"), rules.IsSupported)
	if err != nil {
		return model.ImportResult{}, fmt.Errorf("fetch %s: %w", repoFullName, err)
	}

	result := model.ImportResult{Repository: repoFullName, Ref: ref, Paths: []string{}}
	for _, f := range fetched {
		existing, err := s.files.GetByPath(ctx, projectID, f.Path)
		if err != nil {
			return result, fmt.Errorf("get file %s: %w", f.Path, err)
		}
		if existing != nil && existing.Content == f.Content {
			result.Skipped++
			continue
		}

		_, err = s.files.Upsert(ctx, model.ProjectFile{
			ProjectID: projectID,
			Path:      f.Path,
			FileType:  string(rules.ResolveCategory("", f.Path)),
			Content:   f.Content,
		})
		if err != nil {
			return result, fmt.Errorf("upsert file %s: %w", f.Path, err)
		}
		result.Imported++
		result.Paths = append(result.Paths, f.Path)
	}

	slog.Info("repository imported",
		"repo", repoFullName, "ref", ref, "project_id", projectID,
		"imported", result.Imported, "skipped", result.Skipped)

	return result, nil
}
