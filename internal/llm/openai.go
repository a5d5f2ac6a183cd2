package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/fyrsmithlabs/issuepilot/internal/config"
)

// OpenAIClient implements Client on langchaingo's OpenAI-compatible model.
type OpenAIClient struct {
	model       llms.Model
	temperature float64
}

// NewOpenAIClient creates a completion client from configuration.
//
// BaseURL may point at any OpenAI-compatible endpoint (proxy, local server).
func NewOpenAIClient(cfg config.LLMConfig) (*OpenAIClient, error) {
	if !cfg.APIKey.IsSet() {
		return nil, fmt.Errorf("LLM API key not set")
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey.Value()),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}

	return &OpenAIClient{
		model:       model,
		temperature: cfg.Temperature,
	}, nil
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Response, error) {
	messages := make([]llms.MessageContent, 0, 2)
	if req.System != "" {
		messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, req.System))
	}
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, req.Prompt))

	var callOpts []llms.CallOption
	if c.temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(c.temperature))
	}

	resp, err := c.model.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("completion returned no choices")
	}

	choice := resp.Choices[0]
	return &Response{
		Text:  choice.Content,
		Usage: usageFromGenerationInfo(choice.GenerationInfo),
	}, nil
}

// usageFromGenerationInfo extracts token counts from langchaingo's
// provider-specific generation info map. Missing keys yield zero counts.
func usageFromGenerationInfo(info map[string]any) Usage {
	var u Usage
	u.PromptTokens = intFromInfo(info, "PromptTokens")
	u.CompletionTokens = intFromInfo(info, "CompletionTokens")
	u.TotalTokens = intFromInfo(info, "TotalTokens")
	if u.TotalTokens == 0 {
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
	}
	return u
}

func intFromInfo(info map[string]any, key string) int {
	if info == nil {
		return 0
	}
	switch v := info[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
