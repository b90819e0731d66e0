// go_assess — assessment recommendation service.
//
// Takes a free-text hiring query, a pasted job description, or a JD URL
// and returns a ranked list of assessment products with justifications.
// Serves a JSON API, a minimal HTML front end, health/stats endpoints,
// Prometheus metrics, and MCP tools for agent integrations.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/akoval/go_assess/internal/engine"
	"github.com/akoval/go_assess/internal/engine/catalog"
	"github.com/akoval/go_assess/internal/env"
	"github.com/akoval/go_assess/internal/recserver"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	initEngine()

	port := env.Str("PORT", "8080")
	slog.Info("starting go_assess",
		slog.String("port", port),
		slog.String("version", version),
		slog.Int("assessments", len(engine.Cfg.Catalog)))

	if err := recserver.Run(recserver.Config{
		Port:            port,
		Version:         version,
		ReadTimeout:     env.Duration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:    env.Duration("WRITE_TIMEOUT", 120*time.Second),
		ShutdownTimeout: env.Duration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func initEngine() {
	c := engine.Config{
		LLMProvider:          env.Str("LLM_PROVIDER", "openai"),
		LLMAPIKey:            env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks:   env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:           env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:             env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:       env.Float("LLM_TEMPERATURE", 0.1),
		LLMMaxTokens:         env.Int("LLM_MAX_TOKENS", 16384),
		MaxContentChars:      env.Int("MAX_CONTENT_CHARS", 6000),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 10*time.Second),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	c.Catalog = loadCatalog()

	c.LLMClient = engine.NewLLMClient(c)
	if c.LLMClient != nil {
		slog.Info("llm client ready",
			slog.String("provider", c.LLMProvider),
			slog.String("model", c.LLMModel))
	} else {
		slog.Warn("no LLM_API_KEY configured, keyword ranking only")
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}

// loadCatalog prefers Postgres when DATABASE_URL is set, falling back to
// the JSON file. Starting with an empty catalog is allowed: /health
// reports it and /api/recommend errors until data arrives.
func loadCatalog() []catalog.Assessment {
	if dsn := env.Str("DATABASE_URL", ""); dsn != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		store, err := catalog.Connect(ctx, dsn)
		if err != nil {
			slog.Error("catalog postgres connect failed", slog.Any("error", err))
		} else {
			defer store.Close()
			items, err := store.LoadAll(ctx)
			switch {
			case err != nil:
				slog.Error("catalog postgres load failed", slog.Any("error", err))
			case len(items) > 0:
				slog.Info("catalog loaded from postgres", slog.Int("assessments", len(items)))
				return items
			default:
				slog.Warn("postgres catalog empty, falling back to file")
			}
		}
	}

	path := env.Str("CATALOG_PATH", "data/assessments.json")
	items, err := catalog.Load(path)
	if err != nil {
		slog.Error("catalog load failed", slog.String("path", path), slog.Any("error", err))
		return nil
	}
	slog.Info("catalog loaded", slog.String("path", path), slog.Int("assessments", len(items)))
	return items
}
