package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "no fences",
			raw:  `{"reasoning": "plain"}`,
			want: `{"reasoning": "plain"}`,
		},
		{
			name: "json fence",
			raw:  "```json\n{\"reasoning\": \"fenced\"}\n```",
			want: `{"reasoning": "fenced"}`,
		},
		{
			name: "bare fence",
			raw:  "```\n{\"reasoning\": \"bare\"}\n```",
			want: `{"reasoning": "bare"}`,
		},
		{
			name: "surrounding whitespace",
			raw:  "  \n{\"a\": 1}\n  ",
			want: `{"a": 1}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripFences(tt.raw)
			if got != tt.want {
				t.Errorf("stripFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain object",
			raw:  `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "surrounded by prose",
			raw:  `Here are my picks: {"a": 1} hope that helps.`,
			want: `{"a": 1}`,
		},
		{
			name: "nested objects",
			raw:  `{"a": {"b": 2}}`,
			want: `{"a": {"b": 2}}`,
		},
		{
			name: "brace inside string",
			raw:  `{"a": "}"}`,
			want: `{"a": "}"}`,
		},
		{
			name: "no object",
			raw:  "nothing here",
			want: "",
		},
		{
			name: "unbalanced",
			raw:  `{"a": 1`,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSONBlock(tt.raw)
			if got != tt.want {
				t.Errorf("ExtractJSONBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSONString(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "valid json",
			raw:  `{"reasoning": "hello world"}`,
			want: "hello world",
		},
		{
			name: "escaped quotes",
			raw:  `{"reasoning": "matched \"Java 8\" by name"}`,
			want: `matched "Java 8" by name`,
		},
		{
			name: "escaped newlines",
			raw:  `{"reasoning": "line1\nline2"}`,
			want: "line1\nline2",
		},
		{
			name: "field missing",
			raw:  `{"result": "something"}`,
			want: "",
		},
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
		{
			name: "malformed - no closing quote",
			raw:  `{"reasoning": "unclosed`,
			want: "unclosed",
		},
		{
			name: "extra whitespace",
			raw:  `{  "reasoning" :  "spaced out"  }`,
			want: "spaced out",
		},
		{
			name: "non-string value",
			raw:  `{"reasoning": 42}`,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSONString(tt.raw, "reasoning")
			if got != tt.want {
				t.Errorf("ExtractJSONString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRecommendations(t *testing.T) {
	strict := `{"recommendations": [{"position": 1, "name": "Java 8 (New)", "url": "https://example.com/java-8-new/", "reason": "covers core Java"}], "reasoning": "query names Java explicitly"}`

	t.Run("strict json", func(t *testing.T) {
		out, err := parseRecommendations(strict)
		if err != nil {
			t.Fatalf("parseRecommendations() error: %v", err)
		}
		if len(out.Recommendations) != 1 {
			t.Fatalf("got %d recommendations, want 1", len(out.Recommendations))
		}
		rec := out.Recommendations[0]
		if rec.Name != "Java 8 (New)" || rec.Position != 1 {
			t.Errorf("got %+v, want Java 8 (New) at position 1", rec)
		}
		if out.Reasoning != "query names Java explicitly" {
			t.Errorf("got reasoning %q", out.Reasoning)
		}
	})

	t.Run("fenced json", func(t *testing.T) {
		out, err := parseRecommendations("```json\n" + strict + "\n```")
		if err != nil {
			t.Fatalf("parseRecommendations() error: %v", err)
		}
		if len(out.Recommendations) != 1 {
			t.Errorf("got %d recommendations, want 1", len(out.Recommendations))
		}
	})

	t.Run("embedded in prose", func(t *testing.T) {
		out, err := parseRecommendations("Sure, here is the ranking:\n" + strict + "\nLet me know if you need more.")
		if err != nil {
			t.Fatalf("parseRecommendations() error: %v", err)
		}
		if len(out.Recommendations) != 1 {
			t.Errorf("got %d recommendations, want 1", len(out.Recommendations))
		}
	})

	t.Run("salvages reasoning from malformed json", func(t *testing.T) {
		raw := `{"recommendations": [{"name": "X" // broken}], "reasoning": "explained here"}`
		out, err := parseRecommendations(raw)
		if err != nil {
			t.Fatalf("parseRecommendations() error: %v", err)
		}
		if len(out.Recommendations) != 0 {
			t.Errorf("got %d recommendations, want 0", len(out.Recommendations))
		}
		if out.Reasoning != "explained here" {
			t.Errorf("got reasoning %q, want %q", out.Reasoning, "explained here")
		}
	})

	t.Run("unparseable", func(t *testing.T) {
		_, err := parseRecommendations("I cannot help with that.")
		if err == nil {
			t.Fatal("expected error for unparseable response")
		}
		if !strings.Contains(err.Error(), "unparseable") {
			t.Errorf("got error %q, want it to mention unparseable", err)
		}
	})
}

// fakeLLM returns a canned response or error, recording the last prompt.
type fakeLLM struct {
	resp       string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeLLM) Complete(_ context.Context, _, prompt string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.resp, nil
}

func TestCallLLM(t *testing.T) {
	old := cfg
	t.Cleanup(func() { cfg = old })

	ctx := context.Background()

	t.Run("disabled without client", func(t *testing.T) {
		cfg.LLMClient = nil
		_, err := CallLLM(ctx, "sys", "prompt")
		if !errors.Is(err, ErrLLMDisabled) {
			t.Errorf("got %v, want ErrLLMDisabled", err)
		}
	})

	t.Run("strips fences from response", func(t *testing.T) {
		cfg.LLMClient = &fakeLLM{resp: "```json\n{\"reasoning\": \"ok\"}\n```"}
		got, err := CallLLM(ctx, "sys", "prompt")
		if err != nil {
			t.Fatalf("CallLLM() error: %v", err)
		}
		if got != `{"reasoning": "ok"}` {
			t.Errorf("got %q, want fences stripped", got)
		}
	})

	t.Run("fails fast on non-retryable error", func(t *testing.T) {
		f := &fakeLLM{err: errors.New("invalid request")}
		cfg.LLMClient = f
		_, err := CallLLM(ctx, "sys", "prompt")
		if err == nil {
			t.Fatal("expected error")
		}
		if f.calls != 1 {
			t.Errorf("client called %d times, want 1 (no retry on non-retryable error)", f.calls)
		}
	})
}
