package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	RecommendRequests atomic.Int64
	URLQueries        atomic.Int64
	LLMCalls          atomic.Int64
	LLMErrors         atomic.Int64
	KeywordFallbacks  atomic.Int64
	FetchRequests     atomic.Int64
	FetchErrors       atomic.Int64
}

// GetMetrics returns a snapshot of all counters including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"recommend_requests": metrics.RecommendRequests.Load(),
		"url_queries":        metrics.URLQueries.Load(),
		"llm_calls":          metrics.LLMCalls.Load(),
		"llm_errors":         metrics.LLMErrors.Load(),
		"keyword_fallbacks":  metrics.KeywordFallbacks.Load(),
		"fetch_requests":     metrics.FetchRequests.Load(),
		"fetch_errors":       metrics.FetchErrors.Load(),
		"cache_hits":         hits,
		"cache_misses":       misses,
	}
}

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
