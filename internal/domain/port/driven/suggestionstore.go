package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
)

// ErrStatusChanged is returned by UpdateLifecycle when the stored status no
// longer matches the status the caller read.
var ErrStatusChanged = errors.New("suggestion status changed")

// SuggestionStore defines the driven port for suggestion records.
type SuggestionStore interface {
	// Create persists a draft and returns it with its assigned ID.
	Create(ctx context.Context, s model.Suggestion) (model.Suggestion, error)
	// GetByID returns nil, nil when no suggestion has the given ID.
	GetByID(ctx context.Context, id string) (*model.Suggestion, error)
	// List returns suggestions matching filter, newest first.
	List(ctx context.Context, filter model.SuggestionFilter) ([]model.Suggestion, error)
	// UpdateLifecycle persists Status, AppliedCode, AppliedAt and RejectedAt
	// only if the stored status still equals from. Otherwise it returns
	// ErrStatusChanged and writes nothing.
	UpdateLifecycle(ctx context.Context, s model.Suggestion, from model.SuggestionStatus) error
}
