package catalog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Store is a Postgres-backed catalog source. The JSON file stays the
// default; the store is used when DATABASE_URL is configured.
type Store struct {
	pool *pgxpool.Pool
}

// Connect creates a pgx pool and runs schema migrations.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	st := &Store{pool: pool}
	if err := st.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("catalog postgres connected", slog.String("addr", config.ConnConfig.Host))
	return st, nil
}

func (st *Store) Close() {
	st.pool.Close()
}

func (st *Store) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	conn, err := st.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire migration connection: %w", err)
	}
	defer conn.Release()

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := conn.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
		slog.Info("migration applied", slog.String("file", entry.Name()))
	}
	return nil
}

// LoadAll returns every assessment ordered by insertion.
func (st *Store) LoadAll(ctx context.Context) ([]Assessment, error) {
	rows, err := st.pool.Query(ctx,
		`SELECT url, name, description, test_type, duration, adaptive_support, remote_support
		 FROM assessments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Assessment
	for rows.Next() {
		var a Assessment
		if err := rows.Scan(&a.URL, &a.Name, &a.Description, &a.TestType,
			&a.Duration, &a.AdaptiveSupport, &a.RemoteSupport); err != nil {
			return nil, err
		}
		normalize(&a)
		items = append(items, a)
	}
	return items, rows.Err()
}

// ReplaceAll swaps the stored catalog for the given one in a single
// transaction. Used by the scraper's --db flag.
func (st *Store) ReplaceAll(ctx context.Context, items []Assessment) error {
	tx, err := st.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM assessments`); err != nil {
		return fmt.Errorf("clear assessments: %w", err)
	}
	for _, a := range items {
		_, err := tx.Exec(ctx,
			`INSERT INTO assessments (url, name, description, test_type, duration, adaptive_support, remote_support)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (url) DO UPDATE SET
			   name = EXCLUDED.name,
			   description = EXCLUDED.description,
			   test_type = EXCLUDED.test_type,
			   duration = EXCLUDED.duration,
			   adaptive_support = EXCLUDED.adaptive_support,
			   remote_support = EXCLUDED.remote_support`,
			a.URL, a.Name, a.Description, a.TestType, a.Duration, a.AdaptiveSupport, a.RemoteSupport)
		if err != nil {
			return fmt.Errorf("insert %s: %w", a.Name, err)
		}
	}
	return tx.Commit(ctx)
}

// Count returns the number of stored assessments.
func (st *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := st.pool.QueryRow(ctx, `SELECT count(*) FROM assessments`).Scan(&n)
	return n, err
}
