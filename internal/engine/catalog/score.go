package catalog

import (
	"sort"
	"strings"
	"unicode"
)

// scoreStopWords filters common English words that add noise to keyword matching.
// Deliberately keeps "team", "lead" and similar words: they are signal for
// behavioural and leadership assessments.
var scoreStopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true,
	"role": true, "job": true, "hire": true, "hiring": true, "need": true,
	"about": true, "which": true, "what": true, "who": true, "how": true,
	"can": true, "not": true, "but": true, "all": true, "also": true,
	"more": true, "than": true, "into": true, "has": true, "its": true,
	"was": true, "were": true, "been": true, "each": true, "new": true,
	"use": true, "using": true, "used": true, "well": true, "some": true,
	"good": true, "able": true, "get": true, "set": true, "such": true,
	"looking": true, "someone": true, "candidate": true, "candidates": true,
	"assessment": true, "assessments": true, "test": true, "tests": true,
}

// ExtractQueryKeywords tokenizes a query into a keyword set (>= 3 runes,
// lowercased). Call once per query and reuse across the catalog.
func ExtractQueryKeywords(text string) map[string]bool {
	return extractKeywords(text)
}

// extractKeywords tokenizes text into lowercase keywords, skipping stop words.
// Preserves tech suffixes like "c++", "c#", "node.js" by treating + # . as word chars.
func extractKeywords(text string) map[string]bool {
	kw := make(map[string]bool)
	var word strings.Builder
	flush := func() {
		w := word.String()
		word.Reset()
		w = strings.TrimRight(w, ".") // drop trailing dots
		if len([]rune(w)) >= 3 && !scoreStopWords[w] {
			kw[w] = true
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return kw
}

// ScoreAssessment computes a Jaccard-based keyword overlap score (0-100)
// between pre-extracted query keywords and one assessment's text
// (name + description + test types).
//
// Returns:
//   - score: 0-100 (Jaccard similarity x 100, rounded to 1 decimal)
//   - matching: keywords present in both query and assessment
//   - missing: assessment keywords absent from the query (top 20 max)
func ScoreAssessment(queryKW map[string]bool, a Assessment) (score float64, matching, missing []string) {
	text := a.Name + " " + a.Description + " " + strings.Join(a.TestType, " ")
	itemKW := extractKeywords(text)

	inter := 0
	for kw := range queryKW {
		if itemKW[kw] {
			inter++
			matching = append(matching, kw)
		}
	}
	for kw := range itemKW {
		if !queryKW[kw] {
			missing = append(missing, kw)
		}
	}

	union := len(queryKW) + len(itemKW) - inter
	if union > 0 {
		raw := float64(inter) / float64(union) * 100
		score = float64(int(raw*10+0.5)) / 10 // round to 1 decimal
	}

	sort.Strings(matching)
	sort.Strings(missing)
	if len(missing) > 20 {
		missing = missing[:20]
	}
	return score, matching, missing
}

// Match is an assessment annotated with its keyword overlap score.
type Match struct {
	Assessment
	Score    float64  `json:"score"`
	Matching []string `json:"matching_keywords,omitempty"`
	Missing  []string `json:"missing_keywords,omitempty"`
}

// Rank scores every assessment against the query and returns the top k
// by score (all of them when k <= 0 or k exceeds the catalog).
// Ties keep catalog order, so the result is deterministic.
func Rank(query string, items []Assessment, k int) []Match {
	queryKW := ExtractQueryKeywords(query)

	matches := make([]Match, 0, len(items))
	for _, a := range items {
		score, matching, missing := ScoreAssessment(queryKW, a)
		matches = append(matches, Match{Assessment: a, Score: score, Matching: matching, Missing: missing})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if k > 0 && k < len(matches) {
		matches = matches[:k]
	}
	return matches
}
