// Package history persists a log of served recommendations in a local
// SQLite database. Used by /api/stats and for offline inspection of what
// the service actually recommended.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Query sources recorded per entry.
const (
	SourceText = "text"
	SourceURL  = "url"
)

// Entry is a single recommendation event.
type Entry struct {
	ID         int64  `json:"id"`
	Query      string `json:"query"`
	Source     string `json:"source"` // text | url
	Returned   int    `json:"returned"`
	CacheHit   bool   `json:"cache_hit"`
	LLMUsed    bool   `json:"llm_used"`
	DurationMs int64  `json:"duration_ms"`
	CreatedAt  string `json:"created_at"`
}

// Totals aggregates the log for /api/stats.
type Totals struct {
	Queries    int64 `json:"queries"`
	URLQueries int64 `json:"url_queries"`
	CacheHits  int64 `json:"cache_hits"`
	LLMRanked  int64 `json:"llm_ranked"`
}

var (
	historyDB   *sql.DB
	historyOnce sync.Once
	historyErr  error
)

// openHistoryDB opens (or creates) the SQLite history database.
// HISTORY_DB overrides the default $HOME/.go_assess/history.db path.
func openHistoryDB() (*sql.DB, error) {
	historyOnce.Do(func() {
		dbPath := os.Getenv("HISTORY_DB")
		if dbPath == "" {
			dir := filepath.Join(os.Getenv("HOME"), ".go_assess")
			if err := os.MkdirAll(dir, 0750); err != nil {
				historyErr = fmt.Errorf("history: mkdir %s: %w", dir, err)
				return
			}
			dbPath = filepath.Join(dir, "history.db")
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			historyErr = fmt.Errorf("history: open db: %w", err)
			return
		}
		db.SetMaxOpenConns(1) // SQLite: single writer
		if err := initHistorySchema(db); err != nil {
			historyErr = fmt.Errorf("history: init schema: %w", err)
			return
		}
		historyDB = db
	})
	return historyDB, historyErr
}

// initHistorySchema creates the recommendations table if it doesn't exist.
func initHistorySchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS recommendations (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		query       TEXT NOT NULL,
		source      TEXT NOT NULL DEFAULT 'text',
		returned    INTEGER NOT NULL DEFAULT 0,
		cache_hit   INTEGER NOT NULL DEFAULT 0,
		llm_used    INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL
	)`)
	return err
}

func validSource(s string) bool {
	return s == SourceText || s == SourceURL
}

// Record appends one entry. Callers treat failures as non-fatal: a broken
// history log must never fail a recommendation request.
func Record(_ context.Context, e Entry) error {
	if e.Query == "" {
		return fmt.Errorf("history: query is required")
	}
	if e.Source == "" {
		e.Source = SourceText
	}
	if !validSource(e.Source) {
		return fmt.Errorf("history: invalid source %q (valid: text, url)", e.Source)
	}

	db, err := openHistoryDB()
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = db.Exec(
		`INSERT INTO recommendations (query, source, returned, cache_hit, llm_used, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Query, e.Source, e.Returned, boolInt(e.CacheHit), boolInt(e.LLMUsed), e.DurationMs, now,
	)
	if err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}
	return nil
}

// Recent returns the newest entries, optionally filtered by source.
func Recent(_ context.Context, limit int, source string) ([]Entry, error) {
	db, err := openHistoryDB()
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var rows *sql.Rows
	if source != "" {
		if !validSource(source) {
			return nil, fmt.Errorf("history: invalid source %q", source)
		}
		rows, err = db.Query(
			`SELECT id, query, source, returned, cache_hit, llm_used, duration_ms, created_at
			 FROM recommendations WHERE source = ? ORDER BY id DESC LIMIT ?`,
			source, limit,
		)
	} else {
		rows, err = db.Query(
			`SELECT id, query, source, returned, cache_hit, llm_used, duration_ms, created_at
			 FROM recommendations ORDER BY id DESC LIMIT ?`,
			limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var cacheHit, llmUsed int
		if err := rows.Scan(&e.ID, &e.Query, &e.Source, &e.Returned,
			&cacheHit, &llmUsed, &e.DurationMs, &e.CreatedAt); err != nil {
			continue
		}
		e.CacheHit = cacheHit != 0
		e.LLMUsed = llmUsed != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ComputeTotals aggregates the full log.
func ComputeTotals(_ context.Context) (*Totals, error) {
	db, err := openHistoryDB()
	if err != nil {
		return nil, err
	}

	var t Totals
	err = db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN source = 'url' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(cache_hit), 0),
		        COALESCE(SUM(llm_used), 0)
		 FROM recommendations`,
	).Scan(&t.Queries, &t.URLQueries, &t.CacheHits, &t.LLMRanked)
	if err != nil {
		return nil, fmt.Errorf("history: totals: %w", err)
	}
	return &t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
