// Package recserver serves the recommendation engine over HTTP: the
// JSON API, a minimal HTML front end, health and stats endpoints,
// Prometheus metrics, and an MCP endpoint for agent integrations.
package recserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config controls the HTTP listener.
type Config struct {
	Port            string
	Version         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type server struct {
	version string
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/recommend", s.handleRecommend)
	mux.HandleFunc("POST /api/recommend", s.handleRecommend)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/mcp", mcpHandler(newMCPServer(s.version)))

	return mux
}

// NewHandler builds the full route set wrapped in the standard
// middleware chain. Exposed so tests can drive it through httptest.
func NewHandler(version string) http.Handler {
	s := &server{version: version}
	return withMiddleware(s.routes())
}

// Run serves HTTP until SIGINT/SIGTERM, then drains in-flight requests.
// A second signal forces immediate exit.
func Run(cfg Config) error {
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      NewHandler(cfg.Version),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	slog.Info("http server listening",
		slog.String("addr", srv.Addr),
		slog.String("version", cfg.Version))

	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case s := <-sig:
		slog.Info("shutting down", slog.String("signal", s.String()))
	}

	go func() {
		<-sig
		slog.Warn("second signal, exiting immediately")
		os.Exit(1)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}
