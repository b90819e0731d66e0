package engine

import (
	"context"
	"errors"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

// openAIClient talks to any OpenAI-compatible chat completions API,
// including the Gemini compatibility endpoint. One client per API key;
// fallback keys are rotated on auth and quota errors.
type openAIClient struct {
	clients     []*openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func newOpenAIClient(c Config) *openAIClient {
	o := &openAIClient{
		model:       c.LLMModel,
		temperature: float32(c.LLMTemperature),
		maxTokens:   c.LLMMaxTokens,
	}
	for _, key := range append([]string{c.LLMAPIKey}, c.LLMAPIKeyFallbacks...) {
		config := openai.DefaultConfig(key)
		if c.LLMAPIBase != "" {
			config.BaseURL = c.LLMAPIBase
		}
		if c.HTTPClient != nil {
			config.HTTPClient = c.HTTPClient
		}
		o.clients = append(o.clients, openai.NewClientWithConfig(config))
	}
	return o
}

// Complete sends a chat completion request, rotating to the next API key
// on auth or quota errors.
func (o *openAIClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	var messages []openai.ChatCompletionMessage
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	var lastErr error
	for i, client := range o.clients {
		resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       o.model,
			Messages:    messages,
			Temperature: o.temperature,
			MaxTokens:   o.maxTokens,
		})
		if err != nil {
			lastErr = err
			var apiErr *openai.APIError
			if errors.As(err, &apiErr) && isKeyExhausted(apiErr.HTTPStatusCode) && i < len(o.clients)-1 {
				slog.Warn("llm: rotating api key",
					slog.Int("status", apiErr.HTTPStatusCode),
					slog.Int("next_key", i+1))
				continue
			}
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("llm returned no choices")
		}
		return resp.Choices[0].Message.Content, nil
	}
	return "", lastErr
}

// isKeyExhausted reports statuses that a different API key may survive.
func isKeyExhausted(code int) bool {
	switch code {
	case 401, 403, 429:
		return true
	}
	return false
}
