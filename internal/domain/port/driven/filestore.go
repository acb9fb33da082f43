package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
)

// Sentinel errors returned by FileStore implementations.
var (
	// ErrFileAlreadyExists indicates the project already has a file at that path.
	ErrFileAlreadyExists = errors.New("file already exists")

	// ErrFileNotFound indicates the file to update does not exist.
	ErrFileNotFound = errors.New("file not found")
)

// FileStore defines the driven port for project file persistence.
// Create returns ErrFileAlreadyExists for a duplicate (project, path).
// Get methods return nil, nil when the file does not exist.
type FileStore interface {
	Create(ctx context.Context, file model.ProjectFile) (model.ProjectFile, error)
	// Upsert creates the file or replaces its content when (project, path) exists.
	Upsert(ctx context.Context, file model.ProjectFile) (model.ProjectFile, error)
	GetByID(ctx context.Context, id int64) (*model.ProjectFile, error)
	GetByPath(ctx context.Context, projectID, path string) (*model.ProjectFile, error)
	ListByProject(ctx context.Context, projectID string) ([]model.ProjectFile, error)
	// UpdateContent replaces the file body. Returns ErrFileNotFound if the file does not exist.
	UpdateContent(ctx context.Context, id int64, content string) error
}
