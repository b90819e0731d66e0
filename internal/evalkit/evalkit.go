// Package evalkit measures recommendation quality: Recall@K against a
// labelled ground-truth set, plus category balance of the returned
// assessments. It also owns the CSV formats the prediction and
// evaluation tools exchange.
package evalkit

import (
	"encoding/json"
	"fmt"
	"os"
)

const balanceWindow = 10 // recommendations considered for balance and recall@10

// GroundTruthCase is one labelled query: the relevant assessment names
// and, optionally, the category balance the result set should show.
type GroundTruthCase struct {
	Query    string             `json:"query"`
	Relevant []string           `json:"relevant_assessments"`
	Expected map[string]float64 `json:"expected_balance,omitempty"`
}

// LoadGroundTruth reads the labelled query set from a JSON file.
func LoadGroundTruth(path string) ([]GroundTruthCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ground truth: %w", err)
	}
	var cases []GroundTruthCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("parse ground truth %s: %w", path, err)
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("ground truth %s is empty", path)
	}
	return cases, nil
}

// QueryResult is the per-query evaluation record.
type QueryResult struct {
	Query         string              `json:"query"`
	RecallAt5     float64             `json:"recall_at_5"`
	RecallAt10    float64             `json:"recall_at_10"`
	RelevantIn5   int                 `json:"relevant_in_5"`
	RelevantIn10  int                 `json:"relevant_in_10"`
	TotalRelevant int                 `json:"total_relevant"`
	Categorized   map[string][]string `json:"categorized"`
	Distribution  map[string]float64  `json:"actual_distribution"`
	Expected      map[string]float64  `json:"expected_balance,omitempty"`
	Top5          []string            `json:"top_5_recommendations"`
}

// Summary is the whole-run report written to disk.
type Summary struct {
	MeanRecallAt5  float64       `json:"mean_recall_at_5"`
	MeanRecallAt10 float64       `json:"mean_recall_at_10"`
	MinRecall10    float64       `json:"min_recall_10"`
	MaxRecall10    float64       `json:"max_recall_10"`
	StdDev         float64       `json:"std_dev"`
	Rating         string        `json:"performance_rating"`
	Results        []QueryResult `json:"test_results"`
}

// EvaluateQuery scores one query's recommendations against its ground
// truth. Balance is computed over the top ten recommendations.
func EvaluateQuery(gt GroundTruthCase, items []Item) QueryResult {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}

	res := QueryResult{
		Query:    gt.Query,
		Expected: gt.Expected,
	}
	res.RecallAt5, res.RelevantIn5, res.TotalRelevant = RecallAtK(names, gt.Relevant, 5)
	res.RecallAt10, res.RelevantIn10, _ = RecallAtK(names, gt.Relevant, balanceWindow)

	window := items
	if len(window) > balanceWindow {
		window = window[:balanceWindow]
	}
	res.Categorized = Categorize(window)
	res.Distribution = Distribution(res.Categorized, len(window))

	res.Top5 = names
	if len(res.Top5) > 5 {
		res.Top5 = res.Top5[:5]
	}
	return res
}

// Summarize rolls per-query results into the overall report. The rating
// follows Mean Recall@10.
func Summarize(results []QueryResult) Summary {
	recalls5 := make([]float64, len(results))
	recalls10 := make([]float64, len(results))
	for i, r := range results {
		recalls5[i] = r.RecallAt5
		recalls10[i] = r.RecallAt10
	}

	s := Summary{
		MeanRecallAt5:  Mean(recalls5),
		MeanRecallAt10: Mean(recalls10),
		StdDev:         StdDev(recalls10),
		Results:        results,
	}
	for i, r := range recalls10 {
		if i == 0 || r < s.MinRecall10 {
			s.MinRecall10 = r
		}
		if r > s.MaxRecall10 {
			s.MaxRecall10 = r
		}
	}
	s.Rating = Rating(s.MeanRecallAt10)
	return s
}

// Rating buckets a mean recall score.
func Rating(meanRecall float64) string {
	switch {
	case meanRecall >= 0.8:
		return "EXCELLENT"
	case meanRecall >= 0.6:
		return "GOOD"
	case meanRecall >= 0.4:
		return "FAIR"
	}
	return "NEEDS IMPROVEMENT"
}

// WriteSummary saves the report as indented JSON.
func WriteSummary(path string, s Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
