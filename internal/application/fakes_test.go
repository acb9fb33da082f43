package application_test

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
	"github.com/ericfisherdev/codesuggest/internal/domain/port/driven"
)

// --- In-memory fakes for the driven ports ---

type memFileStore struct {
	mu      sync.Mutex
	nextID  int64
	files   map[int64]model.ProjectFile
	updates int
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: make(map[int64]model.ProjectFile)}
}

func (m *memFileStore) Create(_ context.Context, f model.ProjectFile) (model.ProjectFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	f.ID = m.nextID
	m.files[f.ID] = f
	return f, nil
}

func (m *memFileStore) Upsert(ctx context.Context, f model.ProjectFile) (model.ProjectFile, error) {
	existing, _ := m.GetByPath(ctx, f.ProjectID, f.Path)
	if existing == nil {
		return m.Create(ctx, f)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = existing.ID
	m.files[f.ID] = f
	return f, nil
}

func (m *memFileStore) GetByID(_ context.Context, id int64) (*model.ProjectFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (m *memFileStore) GetByPath(_ context.Context, projectID, path string) (*model.ProjectFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.files {
		if f.ProjectID == projectID && f.Path == path {
			return &f, nil
		}
	}
	return nil, nil
}

func (m *memFileStore) ListByProject(_ context.Context, projectID string) ([]model.ProjectFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ProjectFile
	for _, f := range m.files {
		if f.ProjectID == projectID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (m *memFileStore) UpdateContent(_ context.Context, id int64, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok {
		return fmt.Errorf("file %d does not exist", id)
	}
	f.Content = content
	m.files[id] = f
	m.updates++
	return nil
}

func (m *memFileStore) content(id int64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files[id].Content
}

type memSuggestionStore struct {
	mu          sync.Mutex
	nextID      int
	suggestions map[string]model.Suggestion
	order       []string
	updates     int

	// afterGet, when set, runs after every GetByID with the lock released.
	afterGet func(id string)
}

func newMemSuggestionStore() *memSuggestionStore {
	return &memSuggestionStore{suggestions: make(map[string]model.Suggestion)}
}

func (m *memSuggestionStore) Create(_ context.Context, s model.Suggestion) (model.Suggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		m.nextID++
		s.ID = "sug-" + strconv.Itoa(m.nextID)
	}
	m.suggestions[s.ID] = s
	m.order = append(m.order, s.ID)
	return s, nil
}

func (m *memSuggestionStore) GetByID(_ context.Context, id string) (*model.Suggestion, error) {
	m.mu.Lock()
	s, ok := m.suggestions[id]
	hook := m.afterGet
	m.mu.Unlock()

	if hook != nil {
		hook(id)
	}
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memSuggestionStore) List(_ context.Context, filter model.SuggestionFilter) ([]model.Suggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Suggestion{}
	for i := len(m.order) - 1; i >= 0; i-- {
		s := m.suggestions[m.order[i]]
		if filter.ProjectID != "" && s.ProjectID != filter.ProjectID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, s)
	}
	if filter.Offset >= len(out) {
		return []model.Suggestion{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memSuggestionStore) UpdateLifecycle(_ context.Context, s model.Suggestion, from model.SuggestionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.suggestions[s.ID]
	if !ok {
		return fmt.Errorf("suggestion %s does not exist", s.ID)
	}
	if stored.Status != from {
		return fmt.Errorf("suggestion %s is %s: %w", s.ID, stored.Status, driven.ErrStatusChanged)
	}
	m.suggestions[s.ID] = s
	m.updates++
	return nil
}

func (m *memSuggestionStore) seed(s model.Suggestion) model.Suggestion {
	created, _ := m.Create(context.Background(), s)
	return created
}

// memTransactor runs fn directly against the in-memory stores.
type memTransactor struct {
	files       *memFileStore
	suggestions *memSuggestionStore
	calls       int
}

func (m *memTransactor) WithinTx(ctx context.Context, fn func(context.Context, driven.FileStore, driven.SuggestionStore) error) error {
	m.calls++
	return fn(ctx, m.files, m.suggestions)
}

// mockProvider is a driven.ModelProvider driven by a func.
type mockProvider struct {
	mu       sync.Mutex
	complete func(ctx context.Context, messages []model.ChatMessage, opts model.CompletionOptions) (model.Completion, error)
	calls    int
}

func (m *mockProvider) Complete(ctx context.Context, messages []model.ChatMessage, opts model.CompletionOptions) (model.Completion, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.complete(ctx, messages, opts)
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func respondWith(content string) *mockProvider {
	return &mockProvider{
		complete: func(context.Context, []model.ChatMessage, model.CompletionOptions) (model.Completion, error) {
			return model.Completion{Content: content}, nil
		},
	}
}

// blockingProvider never answers on its own; it returns once ctx is done.
func blockingProvider() *mockProvider {
	return &mockProvider{
		complete: func(ctx context.Context, _ []model.ChatMessage, _ model.CompletionOptions) (model.Completion, error) {
			<-ctx.Done()
			return model.Completion{}, ctx.Err()
		},
	}
}

func ptr[T any](v T) *T { return &v }

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
