package driven

import "context"

// Transactor runs fn with file and suggestion stores bound to one unit of
// work. Adapters that cannot provide atomicity may run fn directly against
// their plain stores; fn's writes are then committed one by one.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, files FileStore, suggestions SuggestionStore) error) error
}
