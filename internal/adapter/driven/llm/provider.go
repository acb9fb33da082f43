// Package llm adapts hosted generative model APIs to the driven.ModelProvider port.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
	"github.com/ericfisherdev/codesuggest/internal/domain/port/driven"
)

// Supported provider names.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// NewProvider builds the named provider. modelName may be empty to use the
// provider's default model.
func NewProvider(ctx context.Context, name, apiKey, modelName string) (driven.ModelProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%s: api key is required", name)
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProviderAnthropic:
		return NewAnthropicProvider(AnthropicConfig{APIKey: apiKey, Model: modelName}), nil
	case ProviderGemini:
		return NewGeminiProvider(ctx, GeminiConfig{APIKey: apiKey, Model: modelName})
	default:
		return nil, fmt.Errorf("unknown model provider %q (want %s or %s)", name, ProviderAnthropic, ProviderGemini)
	}
}

// splitSystem separates system messages, joined in order, from the
// conversation turns.
func splitSystem(messages []model.ChatMessage) (string, []model.ChatMessage) {
	var system []string
	turns := make([]model.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == model.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	return strings.Join(system, "\n\n"), turns
}
