package evalkit

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prediction is one row of a long-format predictions file: a query and
// one predicted assessment URL.
type Prediction struct {
	Query string
	URL   string
}

// QueryPredictions groups the predicted URLs for a single query.
type QueryPredictions struct {
	Query string
	URLs  []string
}

func findColumn(header []string, names ...string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range names {
			if h == name {
				return i
			}
		}
	}
	return -1
}

// ReadQueries extracts the query column from a test-set CSV. The header
// match is case-insensitive ("query" or "Query"); blank rows are skipped.
func ReadQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open queries: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read queries header: %w", err)
	}
	col := findColumn(header, "query")
	if col < 0 {
		return nil, fmt.Errorf("queries %s: no query column", path)
	}

	var queries []string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read queries row: %w", err)
		}
		if col >= len(rec) {
			continue
		}
		if q := strings.TrimSpace(rec[col]); q != "" {
			queries = append(queries, q)
		}
	}
	return queries, nil
}

// ReadPredictions parses a long-format predictions CSV. The URL column
// accepts both "assessment_url" and the historical "assesment_url"
// spelling. Rows with a blank query are skipped; blank URLs are kept so
// "no predictions" marker rows survive a round trip.
func ReadPredictions(path string) ([]Prediction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open predictions: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read predictions header: %w", err)
	}
	queryCol := findColumn(header, "query")
	urlCol := findColumn(header, "assessment_url", "assesment_url")
	if queryCol < 0 || urlCol < 0 {
		return nil, fmt.Errorf("predictions %s: need query and assessment_url columns", path)
	}

	var rows []Prediction
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read predictions row: %w", err)
		}
		if queryCol >= len(rec) {
			continue
		}
		p := Prediction{Query: strings.TrimSpace(rec[queryCol])}
		if urlCol < len(rec) {
			p.URL = strings.TrimSpace(rec[urlCol])
		}
		if p.Query == "" {
			continue
		}
		rows = append(rows, p)
	}
	return rows, nil
}

// GroupPredictions folds long-format rows into per-query URL lists,
// preserving first-seen query order and per-query URL order. Blank URLs
// (the "no predictions" markers) are dropped from the lists.
func GroupPredictions(rows []Prediction) []QueryPredictions {
	index := make(map[string]int)
	var grouped []QueryPredictions

	for _, row := range rows {
		i, ok := index[row.Query]
		if !ok {
			i = len(grouped)
			index[row.Query] = i
			grouped = append(grouped, QueryPredictions{Query: row.Query})
		}
		if row.URL != "" {
			grouped[i].URLs = append(grouped[i].URLs, row.URL)
		}
	}
	return grouped
}

// PredictionsWriter streams long-format rows to disk: one row per
// predicted URL, a single empty-URL row for queries with none.
type PredictionsWriter struct {
	f *os.File
	w *csv.Writer
}

// NewPredictionsWriter creates path and writes the header row.
func NewPredictionsWriter(path string) (*PredictionsWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create predictions: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"query", "assessment_url"}); err != nil {
		f.Close()
		return nil, fmt.Errorf("write predictions header: %w", err)
	}
	return &PredictionsWriter{f: f, w: w}, nil
}

// Write appends one query's predictions.
func (pw *PredictionsWriter) Write(query string, urls []string) error {
	if len(urls) == 0 {
		return pw.w.Write([]string{query, ""})
	}
	for _, u := range urls {
		if err := pw.w.Write([]string{query, u}); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes buffered rows and closes the file.
func (pw *PredictionsWriter) Close() error {
	pw.w.Flush()
	if err := pw.w.Error(); err != nil {
		pw.f.Close()
		return err
	}
	return pw.f.Close()
}
