package driven

import (
	"context"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
)

// ModelProvider defines the driven port for a generative model. Swapping
// providers requires nothing beyond implementing this method.
type ModelProvider interface {
	Complete(ctx context.Context, messages []model.ChatMessage, opts model.CompletionOptions) (model.Completion, error)
}
