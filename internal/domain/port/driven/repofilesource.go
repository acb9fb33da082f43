package driven

import (
	"context"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
)

// RepoFileSource defines the driven port for reading files out of a hosted
// git repository.
type RepoFileSource interface {
	// FetchFiles returns every file below dir (recursively) at ref for which
	// keep returns true. An empty ref means the default branch.
	FetchFiles(ctx context.Context, repoFullName, ref, dir string, keep func(path string) bool) ([]model.SourceFile, error)
}
