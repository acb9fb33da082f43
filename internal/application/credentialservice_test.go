package application_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/codesuggest/internal/application"
	"github.com/ericfisherdev/codesuggest/internal/domain/model"
	"github.com/ericfisherdev/codesuggest/internal/domain/port/driven"
)

type mockCredentialStore struct {
	values map[string]string
	setErr error
}

func newMockCredentialStore() *mockCredentialStore {
	return &mockCredentialStore{values: make(map[string]string)}
}

func (m *mockCredentialStore) Set(_ context.Context, service, plaintext string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[service] = plaintext
	return nil
}

func (m *mockCredentialStore) Get(_ context.Context, service string) (string, error) {
	return m.values[service], nil
}

func (m *mockCredentialStore) List(_ context.Context) ([]model.Credential, error) {
	var out []model.Credential
	for k, v := range m.values {
		out = append(out, model.Credential{Service: k, Value: v})
	}
	return out, nil
}

func (m *mockCredentialStore) Delete(_ context.Context, service string) error {
	delete(m.values, service)
	return nil
}

// stubFactory knows "anthropic" and "gemini" and records the key it was given.
func stubFactory(keys *[]string) application.ProviderFactory {
	return func(_ context.Context, provider, apiKey string) (driven.ModelProvider, error) {
		switch provider {
		case "anthropic", "gemini":
			*keys = append(*keys, apiKey)
			return respondWith(`{"suggestions": []}`), nil
		default:
			return nil, fmt.Errorf("unknown provider %q", provider)
		}
	}
}

func TestSetProviderKey_StoresAndSwaps(t *testing.T) {
	var keys []string
	store := newMockCredentialStore()
	holder := application.NewProviderHolder(nil, "")
	svc := application.NewCredentialService(store, holder, stubFactory(&keys))

	err := svc.SetProviderKey(context.Background(), " Anthropic ", " sk-test ")
	require.NoError(t, err)

	assert.Equal(t, "sk-test", store.values["anthropic"])
	assert.Equal(t, []string{"sk-test"}, keys)
	assert.True(t, holder.HasProvider())
	assert.Equal(t, "anthropic", holder.Name())
}

func TestSetProviderKey_RejectsBadInput(t *testing.T) {
	var keys []string
	store := newMockCredentialStore()
	holder := application.NewProviderHolder(nil, "")
	svc := application.NewCredentialService(store, holder, stubFactory(&keys))

	require.ErrorIs(t, svc.SetProviderKey(context.Background(), "anthropic", "  "), application.ErrInvalidInput)
	require.ErrorIs(t, svc.SetProviderKey(context.Background(), "openai", "sk"), application.ErrInvalidInput)

	assert.Empty(t, store.values)
	assert.False(t, holder.HasProvider())
}

func TestSetProviderKey_StoreFailureKeepsOldProvider(t *testing.T) {
	var keys []string
	store := newMockCredentialStore()
	store.setErr = driven.ErrEncryptionKeyNotSet
	original := respondWith("{}")
	holder := application.NewProviderHolder(original, "gemini")
	svc := application.NewCredentialService(store, holder, stubFactory(&keys))

	err := svc.SetProviderKey(context.Background(), "anthropic", "sk")

	require.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)
	assert.Same(t, original, holder.Get())
	assert.Equal(t, "gemini", holder.Name())
}

func TestRestoreProvider(t *testing.T) {
	var keys []string
	store := newMockCredentialStore()
	holder := application.NewProviderHolder(nil, "")
	svc := application.NewCredentialService(store, holder, stubFactory(&keys))

	require.NoError(t, svc.RestoreProvider(context.Background(), "gemini"))
	assert.False(t, holder.HasProvider(), "no stored key is a no-op")

	store.values["gemini"] = "g-key"
	require.NoError(t, svc.RestoreProvider(context.Background(), "gemini"))
	assert.True(t, holder.HasProvider())
	assert.Equal(t, []string{"g-key"}, keys)
}

func TestCredentialStatus_ListsNamesOnly(t *testing.T) {
	var keys []string
	store := newMockCredentialStore()
	store.values["gemini"] = "g-key"
	store.values["anthropic"] = "a-key"
	holder := application.NewProviderHolder(respondWith("{}"), "gemini")
	svc := application.NewCredentialService(store, holder, stubFactory(&keys))

	status, err := svc.Status(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "gemini", status.ActiveProvider)
	assert.Equal(t, []string{"anthropic", "gemini"}, status.StoredServices)
}

func TestRemoveProviderKey(t *testing.T) {
	t.Run("live provider is disabled", func(t *testing.T) {
		var keys []string
		store := newMockCredentialStore()
		store.values["anthropic"] = "a-key"
		holder := application.NewProviderHolder(respondWith("{}"), "anthropic")
		svc := application.NewCredentialService(store, holder, stubFactory(&keys))

		require.NoError(t, svc.RemoveProviderKey(context.Background(), "Anthropic"))

		assert.NotContains(t, store.values, "anthropic")
		assert.False(t, holder.HasProvider())
		assert.Empty(t, holder.Name())
	})

	t.Run("other provider stays live", func(t *testing.T) {
		var keys []string
		store := newMockCredentialStore()
		store.values["anthropic"] = "a-key"
		original := respondWith("{}")
		holder := application.NewProviderHolder(original, "gemini")
		svc := application.NewCredentialService(store, holder, stubFactory(&keys))

		require.NoError(t, svc.RemoveProviderKey(context.Background(), "anthropic"))

		assert.Same(t, original, holder.Get())
	})

	t.Run("blank provider", func(t *testing.T) {
		var keys []string
		svc := application.NewCredentialService(newMockCredentialStore(), application.NewProviderHolder(nil, ""), stubFactory(&keys))

		err := svc.RemoveProviderKey(context.Background(), " ")
		require.ErrorIs(t, err, application.ErrInvalidInput)
	})
}
