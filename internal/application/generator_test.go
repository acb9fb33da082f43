package application_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ericfisherdev/codesuggest/internal/application"
	"github.com/ericfisherdev/codesuggest/internal/domain/model"
)

func suggestionsJSON(n int) string {
	entries := make([]string, n)
	for i := range entries {
		entries[i] = fmt.Sprintf(`{"originalCode": "var v%d = 1;", "suggestedCode": "const v%d = 1;", "explanation": "never reassigned", "scope": "single_line"}`, i, i)
	}
	return `{"suggestions": [` + strings.Join(entries, ",") + `]}`
}

func newTestGenerator(provider *mockProvider, cache *application.ResultCache, timeout time.Duration) *application.Generator {
	var holder *application.ProviderHolder
	if provider == nil {
		holder = application.NewProviderHolder(nil, "")
	} else {
		holder = application.NewProviderHolder(provider, "mock")
	}
	return application.NewGenerator(holder, cache, application.GeneratorConfig{Timeout: timeout})
}

func TestGenerateSuggestions_NoProviderReturnsEmpty(t *testing.T) {
	gen := newTestGenerator(nil, nil, 0)

	result := gen.GenerateSuggestions(context.Background(), "app.js", "var x = 1;", "javascript", "shop")

	assert.Equal(t, model.SourceAIModel, result.Source)
	require.NotNil(t, result.Suggestions)
	assert.Empty(t, result.Suggestions)
}

func TestGenerateSuggestions_ParsesAndCapsResponse(t *testing.T) {
	var gotMessages []model.ChatMessage
	var gotOpts model.CompletionOptions
	provider := &mockProvider{
		complete: func(_ context.Context, messages []model.ChatMessage, opts model.CompletionOptions) (model.Completion, error) {
			gotMessages, gotOpts = messages, opts
			return model.Completion{Content: "```json\n" + suggestionsJSON(7) + "\n```"}, nil
		},
	}
	gen := newTestGenerator(provider, nil, 0)

	result := gen.GenerateSuggestions(context.Background(), "assets/app.js", "var v0 = 1;", "javascript", "shop")

	assert.Equal(t, model.SourceAIModel, result.Source)
	require.Len(t, result.Suggestions, application.DefaultMaxAISuggestions)
	for _, s := range result.Suggestions {
		assert.Equal(t, "shop", s.ProjectID)
	}

	require.Len(t, gotMessages, 2)
	assert.Equal(t, model.RoleSystem, gotMessages[0].Role)
	assert.Contains(t, gotMessages[0].Content, `"suggestions"`)
	assert.Contains(t, gotMessages[0].Content, "at most 5")
	assert.Equal(t, model.RoleUser, gotMessages[1].Role)
	assert.Contains(t, gotMessages[1].Content, "assets/app.js")
	assert.Contains(t, gotMessages[1].Content, "javascript")
	assert.Contains(t, gotMessages[1].Content, "var v0 = 1;")
	assert.True(t, gotOpts.JSONOutput)
}

func TestGenerateSuggestions_FailuresResolveToEmpty(t *testing.T) {
	tests := map[string]*mockProvider{
		"provider error": {
			complete: func(context.Context, []model.ChatMessage, model.CompletionOptions) (model.Completion, error) {
				return model.Completion{}, errors.New("rate limited")
			},
		},
		"malformed JSON":   respondWith(`{"suggestions": [`),
		"missing array":    respondWith(`{"result": "ok"}`),
		"all incomplete":   respondWith(`{"suggestions": [{"originalCode": "a"}]}`),
		"prose not JSON":   respondWith("I could not find anything to improve."),
		"empty completion": respondWith(""),
	}

	for name, provider := range tests {
		t.Run(name, func(t *testing.T) {
			gen := newTestGenerator(provider, nil, 0)

			result := gen.GenerateSuggestions(context.Background(), "a.css", "a{}", "css", "shop")

			require.NotNil(t, result.Suggestions)
			assert.Empty(t, result.Suggestions)
			assert.Equal(t, 1, provider.callCount())
		})
	}
}

func TestGenerateSuggestions_TimeoutResolvesEmptyWithoutLeaking(t *testing.T) {
	defer goleak.VerifyNone(t)

	gen := newTestGenerator(blockingProvider(), nil, 50*time.Millisecond)

	start := time.Now()
	result := gen.GenerateSuggestions(context.Background(), "a.js", "var a;", "javascript", "shop")
	elapsed := time.Since(start)

	assert.Empty(t, result.Suggestions)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestGenerateSuggestions_CallerCancellationResolvesEmpty(t *testing.T) {
	defer goleak.VerifyNone(t)

	gen := newTestGenerator(blockingProvider(), nil, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := gen.GenerateSuggestions(ctx, "a.js", "var a;", "javascript", "shop")

	assert.Empty(t, result.Suggestions)
}

func TestGenerator_DefaultTimeoutIsTenSeconds(t *testing.T) {
	assert.Equal(t, 10*time.Second, application.DefaultAITimeout)
}

func TestGenerateSuggestions_CachesNonEmptyResults(t *testing.T) {
	provider := respondWith(suggestionsJSON(2))
	cache := application.NewResultCache(10)
	gen := newTestGenerator(provider, cache, 0)
	ctx := context.Background()

	first := gen.GenerateSuggestions(ctx, "a.js", "var v0 = 1;", "javascript", "shop")
	second := gen.GenerateSuggestions(ctx, "a.js", "var v0 = 1;", "javascript", "shop")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.callCount())
	assert.Equal(t, 1, cache.Len())

	gen.GenerateSuggestions(ctx, "a.js", "var v0 = 2;", "javascript", "shop")
	gen.GenerateSuggestions(ctx, "a.js", "var v0 = 1;", "javascript", "other-shop")
	assert.Equal(t, 3, provider.callCount())
}

func TestGenerateSuggestions_EmptyResultsAreNotCached(t *testing.T) {
	provider := respondWith(`{"suggestions": []}`)
	cache := application.NewResultCache(10)
	gen := newTestGenerator(provider, cache, 0)

	gen.GenerateSuggestions(context.Background(), "a.js", "x", "javascript", "shop")
	gen.GenerateSuggestions(context.Background(), "a.js", "x", "javascript", "shop")

	assert.Equal(t, 2, provider.callCount())
	assert.Zero(t, cache.Len())
}

func TestGenerateSuggestions_UsesReplacedProvider(t *testing.T) {
	holder := application.NewProviderHolder(nil, "")
	gen := application.NewGenerator(holder, nil, application.GeneratorConfig{})

	assert.Empty(t, gen.GenerateSuggestions(context.Background(), "a.js", "x", "javascript", "p").Suggestions)

	holder.Replace(respondWith(suggestionsJSON(1)), "mock")

	assert.Len(t, gen.GenerateSuggestions(context.Background(), "a.js", "x", "javascript", "p").Suggestions, 1)
}

func TestAnalyzeFileContent_LocalFallback(t *testing.T) {
	gen := newTestGenerator(nil, nil, 0)

	script := gen.AnalyzeFileContent("var x = 1;\nconsole.log(x);", "javascript")
	assert.Equal(t, model.SourceStaticRule, script.Source)
	require.Len(t, script.Suggestions, 2)
	assert.True(t, strings.HasPrefix(script.Suggestions[0].Explanation, "[js/no-var] "))
	assert.Equal(t, "const x = 1;", script.Suggestions[0].SuggestedCode)
	assert.Equal(t, model.ScopeSingleLine, script.Suggestions[1].Scope)

	css := gen.AnalyzeFileContent("* { color: red !important; color: blue; }", "css")
	require.Len(t, css.Suggestions, 1)
	assert.True(t, strings.HasPrefix(css.Suggestions[0].Explanation, "[css/no-important] "))

	unknown := gen.AnalyzeFileContent("var x = 1;", "python")
	require.NotNil(t, unknown.Suggestions)
	assert.Empty(t, unknown.Suggestions)
}
