// Package catalog holds the assessment catalog: the data model, file
// persistence, keyword ranking, and the product-catalog scraper that
// builds the data set.
package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Test type labels used across the catalog.
const (
	TypeKnowledge   = "Knowledge & Skills"
	TypePersonality = "Personality & Behaviour"
	TypeCompetency  = "Competencies"
)

// Assessment is a single catalog entry.
type Assessment struct {
	URL             string   `json:"url"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Duration        int      `json:"duration"` // minutes
	TestType        []string `json:"test_type"`
	AdaptiveSupport string   `json:"adaptive_support"` // "Yes" / "No"
	RemoteSupport   string   `json:"remote_support"`   // "Yes" / "No"
}

// Load reads a JSON catalog file. Entries are normalized: missing test
// types default to Knowledge & Skills, adaptive/remote default to "No"/"Yes".
func Load(path string) ([]Assessment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var items []Assessment
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("catalog %s is empty", path)
	}

	for i := range items {
		normalize(&items[i])
	}
	return items, nil
}

// Save writes the catalog as indented JSON.
func Save(path string, items []Assessment) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

// WriteCSV writes the catalog in the flat export format
// (name,url,description,test_type,duration,adaptive_support,remote_support).
func WriteCSV(path string, items []Assessment) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"name", "url", "description", "test_type", "duration", "adaptive_support", "remote_support"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, a := range items {
		row := []string{
			a.Name,
			a.URL,
			a.Description,
			strings.Join(a.TestType, ", "),
			strconv.Itoa(a.Duration),
			a.AdaptiveSupport,
			a.RemoteSupport,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func normalize(a *Assessment) {
	if len(a.TestType) == 0 {
		a.TestType = []string{TypeKnowledge}
	}
	if a.AdaptiveSupport == "" {
		a.AdaptiveSupport = "No"
	}
	if a.RemoteSupport == "" {
		a.RemoteSupport = "Yes"
	}
}

// Stats summarizes a loaded catalog for health and stats endpoints.
type Stats struct {
	Total       int            `json:"total_assessments"`
	TestTypes   map[string]int `json:"test_types"`
	DurationMin int            `json:"duration_min"`
	DurationMax int            `json:"duration_max"`
	DurationAvg float64        `json:"duration_avg"`
	AdaptiveYes int            `json:"adaptive_yes"`
	RemoteYes   int            `json:"remote_yes"`
}

// ComputeStats aggregates catalog counters.
func ComputeStats(items []Assessment) Stats {
	s := Stats{Total: len(items), TestTypes: make(map[string]int)}
	if len(items) == 0 {
		return s
	}

	sum := 0
	s.DurationMin = items[0].Duration
	for _, a := range items {
		for _, t := range a.TestType {
			s.TestTypes[t]++
		}
		if a.Duration < s.DurationMin {
			s.DurationMin = a.Duration
		}
		if a.Duration > s.DurationMax {
			s.DurationMax = a.Duration
		}
		sum += a.Duration
		if a.AdaptiveSupport == "Yes" {
			s.AdaptiveYes++
		}
		if a.RemoteSupport == "Yes" {
			s.RemoteYes++
		}
	}
	s.DurationAvg = float64(int(float64(sum)/float64(len(items))*10+0.5)) / 10
	return s
}
