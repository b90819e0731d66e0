package evalkit

import "math"

// RecallAtK scores one query: the fraction of relevant assessment names
// present among the top k recommended names. Returns the recall plus the
// hit and relevant counts for reporting.
func RecallAtK(recommended, relevant []string, k int) (recall float64, hits, total int) {
	if k > len(recommended) {
		k = len(recommended)
	}
	if k < 0 {
		k = 0
	}

	topK := make(map[string]bool, k)
	for _, name := range recommended[:k] {
		topK[name] = true
	}

	for _, name := range relevant {
		if topK[name] {
			hits++
		}
	}

	total = len(relevant)
	if total == 0 {
		return 0, 0, 0
	}
	return float64(hits) / float64(total), hits, total
}

// Mean returns the arithmetic mean of xs, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation of xs.
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}
