package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
	"github.com/ericfisherdev/codesuggest/internal/domain/rules"
)

const (
	// DefaultAITimeout bounds a single provider round trip.
	DefaultAITimeout = 10 * time.Second

	// DefaultMaxAISuggestions caps the entries accepted from one response.
	DefaultMaxAISuggestions = 5

	defaultMaxTokens = 2048
)

const systemPrompt = `You are a senior front-end reviewer for storefront themes written in JavaScript, CSS and Liquid.

Review the file the user sends and propose concrete, minimal fixes for code-quality, correctness, performance and accessibility problems.

Respond with ONLY a JSON object, no prose and no markdown fences, in exactly this shape:

{
  "suggestions": [
    {
      "originalCode": "exact text copied verbatim from the file",
      "suggestedCode": "the replacement text",
      "explanation": "one or two sentences explaining why",
      "scope": "single_line | multi_line | multi_file"
    }
  ]
}

Rules:
- Return at most 5 suggestions, most important first.
- originalCode must appear verbatim in the file exactly once; include enough surrounding text to make it unique.
- suggestedCode replaces originalCode as-is, preserving indentation. Use an empty suggestedCode to delete originalCode.
- Return {"suggestions": []} if there is nothing worth changing.`

// GeneratorConfig tunes the AI Suggestion Generator. Zero values select the
// defaults.
type GeneratorConfig struct {
	Timeout        time.Duration
	MaxSuggestions int
	Model          string
	MaxTokens      int
}

// Generator produces suggestions from a generative model, with a local
// rule-based fallback that needs no network.
type Generator struct {
	providers      *ProviderHolder
	cache          *ResultCache
	quick          *rules.Engine
	timeout        time.Duration
	maxSuggestions int
	model          string
	maxTokens      int
}

// NewGenerator creates a Generator. cache may be nil to disable memoization.
func NewGenerator(providers *ProviderHolder, cache *ResultCache, cfg GeneratorConfig) *Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultAITimeout
	}
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = DefaultMaxAISuggestions
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	return &Generator{
		providers:      providers,
		cache:          cache,
		quick:          rules.NewQuickEngine(),
		timeout:        cfg.Timeout,
		maxSuggestions: cfg.MaxSuggestions,
		model:          cfg.Model,
		maxTokens:      cfg.MaxTokens,
	}
}

// completionOutcome carries a provider response across the race in
// GenerateSuggestions.
type completionOutcome struct {
	completion model.Completion
	err        error
}

// GenerateSuggestions asks the current model provider for suggestions on one
// file. It never fails: a missing provider, a timeout, a provider error or an
// unparsable response all yield an empty result, logged at Warn.
func (g *Generator) GenerateSuggestions(ctx context.Context, fileName, content, fileType, projectID string) AIResult {
	empty := AIResult{Source: model.SourceAIModel, Suggestions: []AISuggestion{}}

	provider := g.providers.Get()
	if provider == nil {
		slog.Debug("ai generation skipped: no provider configured", "file", fileName, "project_id", projectID)
		return empty
	}

	key := CacheKey(fileType, fileName, content, projectID)
	if g.cache != nil {
		if cached, ok := g.cache.Get(key); ok {
			slog.Debug("ai generation served from cache", "file", fileName, "project_id", projectID)
			return AIResult{Source: model.SourceAIModel, Suggestions: cached}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	messages := []model.ChatMessage{
		{Role: model.RoleSystem, Content: systemPrompt},
		{Role: model.RoleUser, Content: userPrompt(fileName, fileType, content)},
	}
	opts := model.CompletionOptions{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: 0.2,
		JSONOutput:  true,
	}

	// Buffered so the provider goroutine can always deliver and exit, even
	// after the race below has been lost to the timeout.
	done := make(chan completionOutcome, 1)
	go func() {
		c, err := provider.Complete(ctx, messages, opts)
		done <- completionOutcome{completion: c, err: err}
	}()

	var out completionOutcome
	select {
	case <-ctx.Done():
		slog.Warn("ai generation abandoned", "file", fileName, "project_id", projectID, "reason", ctx.Err())
		return empty
	case out = <-done:
	}

	if out.err != nil {
		slog.Warn("ai generation failed", "file", fileName, "project_id", projectID, "reason", out.err)
		return empty
	}

	switch parsed := ParseCompletion(out.completion.Content, projectID, g.maxSuggestions).(type) {
	case *ParseError:
		slog.Warn("ai response rejected", "file", fileName, "project_id", projectID, "reason", parsed)
		return empty
	case ParsedSuggestions:
		if g.cache != nil && len(parsed.Suggestions) > 0 {
			g.cache.Add(key, parsed.Suggestions)
		}
		slog.Info("ai generation complete", "file", fileName, "project_id", projectID, "suggestions", len(parsed.Suggestions))
		return AIResult{Source: model.SourceAIModel, Suggestions: parsed.Suggestions}
	}

	return empty
}

// AnalyzeFileContent runs the reduced local check set synchronously with no
// network call. Results are tagged static_rule.
func (g *Generator) AnalyzeFileContent(content, fileType string) AIResult {
	violations := g.quick.AnalyzeFile(content, fileType, "")

	suggestions := make([]AISuggestion, 0, len(violations))
	for _, v := range violations {
		suggestions = append(suggestions, AISuggestion{
			OriginalCode:  v.OriginalCode,
			SuggestedCode: v.SuggestedCode,
			Explanation:   ruleExplanation(v),
			Scope:         model.ScopeSingleLine,
		})
	}
	return AIResult{Source: model.SourceStaticRule, Suggestions: suggestions}
}

func userPrompt(fileName, fileType, content string) string {
	if fileType == "" {
		fileType = "unknown"
	}
	return fmt.Sprintf("File: %s\nType: %s\n\n<file>\n%s\n</file>", fileName, fileType, content)
}
