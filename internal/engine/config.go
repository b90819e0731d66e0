package engine

import (
	"net/http"
	"time"

	"github.com/akoval/go_assess/internal/engine/catalog"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMProvider        string // "openai" (any OpenAI-compatible chat API, default) or "gemini"
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	LLMClient          LLMClient // nil = keyword ranking only

	MaxContentChars int
	FetchTimeout    time.Duration

	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	HTTPClient *http.Client // used for LLM API calls; nil = library default

	// Catalog is the full assessment list, loaded once at startup.
	// Reload requires a restart.
	Catalog []catalog.Assessment
}

var cfg Config

// Cfg exposes the engine configuration for the server and tools.
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
