package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/ericfisherdev/codesuggest/internal/domain/model"
	"github.com/ericfisherdev/codesuggest/internal/domain/port/driven"
)

const geminiDefaultModel = "gemini-2.5-flash"

// Compile-time interface satisfaction check.
var _ driven.ModelProvider = (*GeminiProvider)(nil)

// GeminiConfig configures a GeminiProvider. BaseURL overrides the API
// endpoint and is only needed in tests.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GeminiProvider calls the Gemini API through the official genai SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a GeminiProvider.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = geminiDefaultModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &GeminiProvider{client: client, model: cfg.Model}, nil
}

// Complete sends one GenerateContent request. System messages become the
// system instruction; assistant turns map to the "model" role.
func (p *GeminiProvider) Complete(ctx context.Context, messages []model.ChatMessage, opts model.CompletionOptions) (model.Completion, error) {
	system, turns := splitSystem(messages)
	if len(turns) == 0 {
		return model.Completion{}, fmt.Errorf("gemini: at least one user message is required")
	}

	contents := make([]*genai.Content, 0, len(turns))
	for _, m := range turns {
		role := genai.Role(genai.RoleUser)
		if m.Role == model.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(opts.Temperature))
	}
	if opts.JSONOutput {
		config.ResponseMIMEType = "application/json"
	}

	modelName := p.model
	if opts.Model != "" {
		modelName = opts.Model
	}

	resp, err := p.client.Models.GenerateContent(ctx, modelName, contents, config)
	if err != nil {
		return model.Completion{}, fmt.Errorf("gemini: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return model.Completion{}, fmt.Errorf("gemini: no text content in response")
	}
	return model.Completion{Content: text}, nil
}
