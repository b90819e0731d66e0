// Command predict runs a test-set of queries against a running
// recommendation server and writes the predicted assessment URLs in the
// long CSV format the evaluate command consumes.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/akoval/go_assess/internal/engine"
	"github.com/akoval/go_assess/internal/evalkit"
)

func main() {
	_ = godotenv.Load()

	var (
		in     = flag.String("in", "test_queries.csv", "input CSV with a Query column")
		out    = flag.String("out", "predictions.csv", "output predictions CSV")
		server = flag.String("server", "http://localhost:8080", "recommendation server base URL")
		finalK = flag.Int("k", 10, "predictions per query")
		delay  = flag.Duration("delay", 500*time.Millisecond, "pause between requests")
	)
	flag.Parse()

	queries, err := evalkit.ReadQueries(*in)
	if err != nil {
		slog.Error("load queries failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("queries loaded", slog.String("path", *in), slog.Int("count", len(queries)))

	client := &http.Client{Timeout: 30 * time.Second}
	if err := checkHealth(client, *server); err != nil {
		slog.Error("server unreachable", slog.String("server", *server), slog.Any("error", err))
		os.Exit(1)
	}

	w, err := evalkit.NewPredictionsWriter(*out)
	if err != nil {
		slog.Error("create predictions file failed", slog.Any("error", err))
		os.Exit(1)
	}

	predicted := 0
	for i, query := range queries {
		urls, err := fetchPredictions(client, *server, query, *finalK)
		if err != nil {
			slog.Warn("prediction failed",
				slog.String("query", engine.TruncateRunes(query, 80, "...")),
				slog.Any("error", err))
		}
		if err := w.Write(query, urls); err != nil {
			slog.Error("write predictions failed", slog.Any("error", err))
			os.Exit(1)
		}
		predicted += len(urls)
		slog.Info("query predicted",
			slog.Int("n", i+1),
			slog.Int("total", len(queries)),
			slog.Int("urls", len(urls)))

		if i < len(queries)-1 {
			time.Sleep(*delay)
		}
	}

	if err := w.Close(); err != nil {
		slog.Error("close predictions file failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("predictions written",
		slog.String("path", *out),
		slog.Int("queries", len(queries)),
		slog.Int("urls", predicted))
}

// checkHealth verifies the server answers at all. An unhealthy status is
// logged but not fatal: a degraded server can still serve predictions.
func checkHealth(client *http.Client, serverURL string) error {
	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		slog.Warn("server reported unhealthy", slog.Int("status", resp.StatusCode))
	}
	return nil
}

func fetchPredictions(client *http.Client, serverURL, query string, finalK int) ([]string, error) {
	payload, err := json.Marshal(engine.RecommendRequest{
		Query:  query,
		Kind:   engine.QueryKindText,
		FinalK: finalK,
	})
	if err != nil {
		return nil, err
	}

	resp, err := client.Post(serverURL+"/api/recommend", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var out engine.RecommendOutput
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(out.Recommended))
	for _, a := range out.Recommended {
		if a.URL != "" {
			urls = append(urls, a.URL)
		}
	}
	return urls, nil
}
