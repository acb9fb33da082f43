package application

import (
	"sync"

	"github.com/ericfisherdev/codesuggest/internal/domain/port/driven"
)

// ProviderHolder enables runtime hot-swap of the model provider. It holds a
// mutex-protected reference to the current driven.ModelProvider and the name
// it was configured under, so a credential update takes effect without a
// restart.
type ProviderHolder struct {
	mu       sync.RWMutex
	provider driven.ModelProvider
	name     string
}

// NewProviderHolder creates a holder with the given initial provider.
// provider may be nil when no AI provider is configured at startup.
func NewProviderHolder(provider driven.ModelProvider, name string) *ProviderHolder {
	return &ProviderHolder{
		provider: provider,
		name:     name,
	}
}

// Get returns the current provider, or nil when AI generation is disabled.
func (h *ProviderHolder) Get() driven.ModelProvider {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.provider
}

// Name returns the name of the current provider ("anthropic", "gemini"), or
// "" when none is configured.
func (h *ProviderHolder) Name() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.name
}

// Replace swaps the current provider. The next Get returns the new value.
func (h *ProviderHolder) Replace(provider driven.ModelProvider, name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.provider = provider
	h.name = name
}

// HasProvider returns true if a non-nil provider is currently held.
func (h *ProviderHolder) HasProvider() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.provider != nil
}
