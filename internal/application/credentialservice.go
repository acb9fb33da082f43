package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ericfisherdev/codesuggest/internal/domain/port/driven"
)

// ProviderFactory builds a model provider for a named backend and API key.
// It returns an error for unknown provider names.
type ProviderFactory func(ctx context.Context, provider, apiKey string) (driven.ModelProvider, error)

// CredentialService stores provider API keys and swaps the live provider
// when a key changes.
type CredentialService struct {
	store   driven.CredentialStore
	holder  *ProviderHolder
	factory ProviderFactory
}

// NewCredentialService creates a CredentialService.
func NewCredentialService(store driven.CredentialStore, holder *ProviderHolder, factory ProviderFactory) *CredentialService {
	return &CredentialService{store: store, holder: holder, factory: factory}
}

// SetProviderKey validates the key by building a provider from it, stores it
// encrypted and makes that provider live.
func (s *CredentialService) SetProviderKey(ctx context.Context, provider, apiKey string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("api key is required: %w", ErrInvalidInput)
	}

	p, err := s.factory(ctx, provider, apiKey)
	if err != nil {
		return fmt.Errorf("provider %q: %w: %w", provider, ErrInvalidInput, err)
	}

	if err := s.store.Set(ctx, provider, apiKey); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}

	s.holder.Replace(p, provider)
	slog.Info("model provider replaced", "provider", provider)
	return nil
}

// RestoreProvider makes the stored key for provider live. It is a no-op when
// no key is stored, so startup never fails because of a missing credential.
func (s *CredentialService) RestoreProvider(ctx context.Context, provider string) error {
	apiKey, err := s.store.Get(ctx, provider)
	if err != nil {
		return fmt.Errorf("load credential %s: %w", provider, err)
	}
	if apiKey == "" {
		return nil
	}

	p, err := s.factory(ctx, provider, apiKey)
	if err != nil {
		return fmt.Errorf("build provider %s: %w", provider, err)
	}

	s.holder.Replace(p, provider)
	slog.Info("model provider restored from stored credential", "provider", provider)
	return nil
}

// CredentialStatus reports which provider keys are stored and which provider
// is live. Key values are never included.
type CredentialStatus struct {
	ActiveProvider string
	StoredServices []string
}

// Status lists stored credential names, sorted, and the live provider.
func (s *CredentialService) Status(ctx context.Context) (CredentialStatus, error) {
	creds, err := s.store.List(ctx)
	if err != nil {
		return CredentialStatus{}, fmt.Errorf("list credentials: %w", err)
	}

	services := make([]string, 0, len(creds))
	for _, c := range creds {
		services = append(services, c.Service)
	}
	sort.Strings(services)

	return CredentialStatus{ActiveProvider: s.holder.Name(), StoredServices: services}, nil
}

// RemoveProviderKey deletes the stored key. When provider is the live one,
// AI generation is disabled until another key is set.
func (s *CredentialService) RemoveProviderKey(ctx context.Context, provider string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return fmt.Errorf("provider is required: %w", ErrInvalidInput)
	}

	if err := s.store.Delete(ctx, provider); err != nil {
		return fmt.Errorf("delete credential %s: %w", provider, err)
	}

	if s.holder.Name() == provider {
		s.holder.Replace(nil, "")
		slog.Info("model provider disabled", "provider", provider)
	}
	return nil
}
