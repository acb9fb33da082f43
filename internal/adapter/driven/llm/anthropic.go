package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
	"github.com/ericfisherdev/codesuggest/internal/domain/port/driven"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com/v1"
	anthropicDefaultModel   = "claude-sonnet-4-5"
	anthropicAPIVersion     = "2023-06-01"
	anthropicMaxTokens      = 2048
)

// Compile-time interface satisfaction check.
var _ driven.ModelProvider = (*AnthropicProvider)(nil)

// AnthropicConfig configures an AnthropicProvider. Empty fields select defaults.
type AnthropicConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// AnthropicProvider calls the Anthropic Messages API over plain net/http.
type AnthropicProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewAnthropicProvider creates an AnthropicProvider.
func NewAnthropicProvider(cfg AnthropicConfig) *AnthropicProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = anthropicDefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = anthropicDefaultModel
	}
	if cfg.HTTPClient == nil {
		// The caller's context carries the real deadline; this only bounds a
		// context without one.
		cfg.HTTPClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &AnthropicProvider{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: cfg.HTTPClient,
	}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Temperature *float64           `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends one Messages API request and returns the concatenated text
// blocks of the reply.
func (p *AnthropicProvider) Complete(ctx context.Context, messages []model.ChatMessage, opts model.CompletionOptions) (model.Completion, error) {
	system, turns := splitSystem(messages)
	if len(turns) == 0 {
		return model.Completion{}, fmt.Errorf("anthropic: at least one user message is required")
	}

	reqBody := anthropicRequest{
		Model:     p.model,
		MaxTokens: anthropicMaxTokens,
		System:    system,
		Messages:  make([]anthropicMessage, 0, len(turns)),
	}
	if opts.Model != "" {
		reqBody.Model = opts.Model
	}
	if opts.MaxTokens > 0 {
		reqBody.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		reqBody.Temperature = &opts.Temperature
	}
	for _, m := range turns {
		reqBody.Messages = append(reqBody.Messages, anthropicMessage{Role: string(m.Role), Content: m.Content})
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return model.Completion{}, fmt.Errorf("anthropic: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return model.Completion{}, fmt.Errorf("anthropic: create request: %w", err)
	}
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return model.Completion{}, fmt.Errorf("anthropic: send request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Completion{}, fmt.Errorf("anthropic: read response: %w", err)
	}

	var parsed anthropicResponse
	decodeErr := json.Unmarshal(respBytes, &parsed)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && parsed.Error != nil {
			return model.Completion{}, fmt.Errorf("anthropic: status %d: %s: %s", resp.StatusCode, parsed.Error.Type, parsed.Error.Message)
		}
		return model.Completion{}, fmt.Errorf("anthropic: status %d: %.200s", resp.StatusCode, respBytes)
	}
	if decodeErr != nil {
		return model.Completion{}, fmt.Errorf("anthropic: decode response: %w", decodeErr)
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return model.Completion{}, fmt.Errorf("anthropic: no text content in response")
	}

	return model.Completion{Content: text.String()}, nil
}
