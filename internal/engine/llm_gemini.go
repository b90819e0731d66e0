package engine

import (
	"context"
	"errors"
	"sync"

	"google.golang.org/genai"
)

// geminiClient uses the native Gemini API. Selected by LLM_PROVIDER=gemini.
type geminiClient struct {
	apiKey      string
	model       string
	temperature float32
	maxTokens   int32

	once   sync.Once
	client *genai.Client
	err    error
}

func newGeminiClient(c Config) *geminiClient {
	return &geminiClient{
		apiKey:      c.LLMAPIKey,
		model:       c.LLMModel,
		temperature: float32(c.LLMTemperature),
		maxTokens:   int32(c.LLMMaxTokens),
	}
}

// Complete generates a JSON response via the Gemini models API.
func (g *geminiClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	g.once.Do(func() {
		g.client, g.err = genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: g.apiKey})
	})
	if g.err != nil {
		return "", g.err
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(g.temperature),
	}
	if g.maxTokens > 0 {
		config.MaxOutputTokens = g.maxTokens
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("llm returned empty response")
	}
	return text, nil
}
