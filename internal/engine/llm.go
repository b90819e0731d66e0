package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// LLMClient sends a system+user prompt pair and returns the raw completion text.
type LLMClient interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// ErrLLMDisabled is returned by CallLLM when no client is configured.
var ErrLLMDisabled = errors.New("llm client not configured")

// NewLLMClient builds the client selected by LLM_PROVIDER.
// Returns nil when no API key is configured.
func NewLLMClient(c Config) LLMClient {
	if c.LLMAPIKey == "" {
		return nil
	}
	if strings.EqualFold(c.LLMProvider, "gemini") {
		return newGeminiClient(c)
	}
	return newOpenAIClient(c)
}

// llmRecommendation mirrors one item of the model's JSON contract.
type llmRecommendation struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Reason   string `json:"reason"`
}

// llmRecOutput is the JSON structure expected from the LLM.
type llmRecOutput struct {
	Recommendations []llmRecommendation `json:"recommendations"`
	Reasoning       string              `json:"reasoning"`
}

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// CallLLM sends a prompt with retry and returns fence-stripped response text.
func CallLLM(ctx context.Context, system, prompt string) (string, error) {
	if cfg.LLMClient == nil {
		return "", ErrLLMDisabled
	}
	raw, err := RetryDo(ctx, DefaultRetryConfig, func() (string, error) {
		metrics.LLMCalls.Add(1)
		resp, err := cfg.LLMClient.Complete(ctx, system, prompt)
		if err != nil {
			metrics.LLMErrors.Add(1)
			return "", err
		}
		return resp, nil
	})
	if err != nil {
		return "", err
	}
	return stripFences(raw), nil
}

// parseRecommendations decodes a model response, salvaging a JSON object
// embedded in surrounding prose when strict parsing fails.
func parseRecommendations(raw string) (*llmRecOutput, error) {
	raw = stripFences(raw)

	var out llmRecOutput
	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		return &out, nil
	}

	if block := ExtractJSONBlock(raw); block != "" {
		if err := json.Unmarshal([]byte(block), &out); err == nil {
			return &out, nil
		}
	}

	if reasoning := ExtractJSONString(raw, "reasoning"); reasoning != "" {
		return &llmRecOutput{Reasoning: reasoning}, nil
	}

	return nil, fmt.Errorf("unparseable llm response (%d bytes)", len(raw))
}

// ExtractJSONBlock returns the first balanced {...} block in raw, skipping
// braces inside string literals.
func ExtractJSONBlock(raw string) string {
	start := strings.Index(raw, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			if c == '\\' {
				i++
				continue
			}
			if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	return ""
}

// ExtractJSONString extracts a string field from malformed JSON where the
// value may contain unescaped newlines or special characters.
func ExtractJSONString(raw, field string) string {
	prefix := `"` + field + `"`
	idx := strings.Index(raw, prefix)
	if idx < 0 {
		return ""
	}
	rest := raw[idx+len(prefix):]
	rest = strings.TrimSpace(rest)
	if len(rest) == 0 || rest[0] != ':' {
		return ""
	}
	rest = strings.TrimSpace(rest[1:])
	if len(rest) == 0 || rest[0] != '"' {
		return ""
	}
	rest = rest[1:] // skip opening quote

	var sb strings.Builder
	for i := 0; i < len(rest); i++ {
		if rest[i] == '\\' && i+1 < len(rest) {
			if rest[i+1] == '"' {
				sb.WriteByte('"')
				i++
				continue
			}
			if rest[i+1] == 'n' {
				sb.WriteByte('\n')
				i++
				continue
			}
			sb.WriteByte(rest[i])
			continue
		}
		if rest[i] == '"' {
			return sb.String()
		}
		sb.WriteByte(rest[i])
	}
	if sb.Len() > 0 {
		return sb.String()
	}
	return ""
}
