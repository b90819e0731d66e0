// Command evaluate scores a predictions file against a ground-truth set:
// Recall@5/@10 per query, category balance, and an overall summary
// written as JSON.
package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/akoval/go_assess/internal/engine/catalog"
	"github.com/akoval/go_assess/internal/evalkit"
)

func main() {
	var (
		truthPath = flag.String("truth", "data/ground_truth.json", "ground-truth JSON")
		predPath  = flag.String("predictions", "predictions.csv", "predictions CSV")
		catPath   = flag.String("catalog", "data/assessments.json", "catalog JSON, resolves URLs to names")
		outPath   = flag.String("out", "evaluation_results.json", "summary output JSON")
	)
	flag.Parse()

	cases, err := evalkit.LoadGroundTruth(*truthPath)
	if err != nil {
		slog.Error("load ground truth failed", slog.Any("error", err))
		os.Exit(1)
	}
	rows, err := evalkit.ReadPredictions(*predPath)
	if err != nil {
		slog.Error("load predictions failed", slog.Any("error", err))
		os.Exit(1)
	}
	items, err := catalog.Load(*catPath)
	if err != nil {
		slog.Error("load catalog failed", slog.Any("error", err))
		os.Exit(1)
	}

	index := buildIndex(items)
	byQuery := make(map[string][]string)
	for _, qp := range evalkit.GroupPredictions(rows) {
		byQuery[qp.Query] = qp.URLs
	}

	results := make([]evalkit.QueryResult, 0, len(cases))
	for i, gt := range cases {
		urls, ok := byQuery[gt.Query]
		if !ok {
			slog.Warn("no predictions for query", slog.String("query", gt.Query))
		}

		res := evalkit.EvaluateQuery(gt, toItems(urls, index))
		results = append(results, res)
		slog.Info("query evaluated",
			slog.Int("n", i+1),
			slog.Int("total", len(cases)),
			slog.Float64("recall_at_5", res.RecallAt5),
			slog.Float64("recall_at_10", res.RecallAt10),
			slog.Int("relevant", res.TotalRelevant))
	}

	summary := evalkit.Summarize(results)
	slog.Info("evaluation complete",
		slog.Int("queries", len(results)),
		slog.Float64("mean_recall_at_5", summary.MeanRecallAt5),
		slog.Float64("mean_recall_at_10", summary.MeanRecallAt10),
		slog.Float64("min_recall_10", summary.MinRecall10),
		slog.Float64("max_recall_10", summary.MaxRecall10),
		slog.Float64("std_dev", summary.StdDev),
		slog.String("rating", summary.Rating))

	if err := evalkit.WriteSummary(*outPath, summary); err != nil {
		slog.Error("write summary failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("summary written", slog.String("path", *outPath))
}

func buildIndex(items []catalog.Assessment) map[string]catalog.Assessment {
	index := make(map[string]catalog.Assessment, len(items))
	for _, a := range items {
		index[strings.TrimRight(a.URL, "/")] = a
	}
	return index
}

// toItems resolves predicted URLs to catalog names and descriptions.
// URLs missing from the catalog keep the raw URL as their name, which
// never matches a ground-truth name and so counts as a miss.
func toItems(urls []string, index map[string]catalog.Assessment) []evalkit.Item {
	out := make([]evalkit.Item, 0, len(urls))
	for _, u := range urls {
		if a, ok := index[strings.TrimRight(u, "/")]; ok {
			out = append(out, evalkit.Item{Name: a.Name, Description: a.Description})
		} else {
			out = append(out, evalkit.Item{Name: u})
		}
	}
	return out
}
