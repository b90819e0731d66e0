package recserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/akoval/go_assess/internal/engine"
	"github.com/akoval/go_assess/internal/engine/catalog"
	"github.com/akoval/go_assess/internal/engine/history"
)

const emptyQueryError = "Query cannot be empty"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", slog.Any("error", err))
	}
}

// parseRecommendRequest accepts the three request shapes the API
// supports: query parameters on GET, a JSON body, or form fields.
// A final_k that fails to parse falls back to the engine default.
func parseRecommendRequest(r *http.Request) engine.RecommendRequest {
	var req engine.RecommendRequest

	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req.Kind = q.Get("type")
		req.Query = q.Get("query")
		req.FinalK = intOrZero(q.Get("final_k"))
		return req
	}

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var body struct {
			Type   string `json:"type"`
			Query  string `json:"query"`
			FinalK any    `json:"final_k"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return req
		}
		req.Kind = body.Type
		req.Query = body.Query
		req.FinalK = coerceInt(body.FinalK)
		return req
	}

	if err := r.ParseForm(); err != nil {
		return req
	}
	req.Kind = r.PostFormValue("type")
	req.Query = r.PostFormValue("query")
	req.FinalK = intOrZero(r.PostFormValue("final_k"))
	return req
}

func intOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// coerceInt tolerates final_k arriving as a JSON number or a quoted
// number; anything else means "use the default".
func coerceInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		return intOrZero(n)
	}
	return 0
}

func (s *server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	req := parseRecommendRequest(r)
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": emptyQueryError})
		return
	}

	start := time.Now()
	res, err := engine.Recommend(r.Context(), req)
	if err != nil {
		if errors.Is(err, engine.ErrEmptyQuery) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": emptyQueryError})
			return
		}
		slog.Error("recommend failed",
			slog.Any("error", err),
			slog.String("request_id", RequestID(r.Context())))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	recordHistory(r, req.Query, res, time.Since(start))
	writeJSON(w, http.StatusOK, res.RecommendOutput)
}

// recordHistory logs the served recommendation. Failures are logged and
// swallowed: history is bookkeeping, not part of the response path.
func recordHistory(r *http.Request, query string, res *engine.RecommendResult, elapsed time.Duration) {
	err := history.Record(r.Context(), history.Entry{
		Query:      query,
		Source:     res.Kind,
		Returned:   len(res.Recommended),
		CacheHit:   res.CacheHit,
		LLMUsed:    res.LLMUsed,
		DurationMs: elapsed.Milliseconds(),
	})
	if err != nil {
		slog.Warn("history record failed", slog.Any("error", err))
	}
}

type healthResponse struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Version    string            `json:"version"`
	Components map[string]string `json:"components"`
	Metrics    map[string]any    `json:"metrics"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	loaded := len(engine.Cfg.Catalog)

	components := map[string]string{
		"catalog": "operational",
		"llm":     "operational",
		"cache":   "operational",
		"history": "operational",
	}
	if loaded == 0 {
		components["catalog"] = "empty"
	}
	if engine.Cfg.LLMClient == nil {
		components["llm"] = "keyword-fallback"
	}
	if _, err := history.ComputeTotals(r.Context()); err != nil {
		components["history"] = "unavailable"
	}

	resp := healthResponse{
		Status:     "healthy",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Version:    s.version,
		Components: components,
		Metrics: map[string]any{
			"assessments_loaded": loaded,
			"model":              engine.Cfg.LLMModel,
		},
	}

	status := http.StatusOK
	if loaded == 0 {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

type statsResponse struct {
	catalog.Stats
	Model   string           `json:"model"`
	Method  string           `json:"method"`
	Engine  map[string]int64 `json:"engine"`
	History *history.Totals  `json:"history,omitempty"`
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{
		Stats:  catalog.ComputeStats(engine.Cfg.Catalog),
		Model:  engine.Cfg.LLMModel,
		Method: "LLM re-ranking over keyword-filtered candidates",
		Engine: engine.GetMetrics(),
	}
	if engine.Cfg.LLMClient == nil {
		resp.Method = "keyword ranking (no LLM configured)"
	}
	if totals, err := history.ComputeTotals(r.Context()); err == nil {
		resp.History = totals
	}
	writeJSON(w, http.StatusOK, resp)
}
