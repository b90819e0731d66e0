package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/akoval/go_assess/internal/engine/catalog"
)

// API-visible sentinel errors.
var (
	ErrEmptyQuery = errors.New("query cannot be empty")
	ErrNoCatalog  = errors.New("assessment catalog is empty")
)

// Result count bounds for a single recommendation run.
const (
	MinFinalK     = 1
	MaxFinalK     = 10
	DefaultFinalK = 5

	// Candidate pool handed to the LLM: max(minCandidates, candidateFactor*finalK).
	minCandidates   = 20
	candidateFactor = 4
)

const urlFetchFailedNote = "Failed to fetch or parse URL."

// Recommend runs the full pipeline: cache lookup, JD scrape for URL
// queries, feature extraction, duration filter, keyword prefilter, LLM
// ranking and fallbacks.
func Recommend(ctx context.Context, req RecommendRequest) (*RecommendResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if len(cfg.Catalog) == 0 {
		return nil, ErrNoCatalog
	}

	metrics.RecommendRequests.Add(1)

	kind := DetectQueryKind(query, req.Kind)
	finalK := ClampFinalK(req.FinalK)

	cacheKey := CacheKey("recommend", kind, query, strconv.Itoa(finalK))
	if cached, ok := CacheGet(ctx, cacheKey); ok {
		return &RecommendResult{RecommendOutput: cached, Kind: kind, CacheHit: true}, nil
	}

	searchText := query
	scrapeFailed := false
	if kind == QueryKindURL {
		metrics.URLQueries.Add(1)
		if text, ok := fetchJobDescription(ctx, query); ok {
			searchText = text
		} else {
			scrapeFailed = true
		}
	}

	feats := ExtractQueryFeatures(searchText)
	pool := filterByDuration(cfg.Catalog, feats.MaxDuration)
	if len(pool) == 0 {
		// Cap tighter than every assessment: ignore it rather than rank nothing.
		pool = cfg.Catalog
	}

	topK := candidateFactor * finalK
	if topK < minCandidates {
		topK = minCandidates
	}
	candidates := catalog.Rank(feats.Cleaned, pool, topK)

	var out RecommendOutput
	llmUsed := false
	switch {
	case scrapeFailed:
		// Keyword ranking over the URL string. Slugs often carry the role title.
		metrics.KeywordFallbacks.Add(1)
		out = keywordRecommend(candidates, finalK)
		out.Reasoning = strings.TrimSpace(urlFetchFailedNote + " " + out.Reasoning)
	case cfg.LLMClient == nil:
		metrics.KeywordFallbacks.Add(1)
		out = keywordRecommend(candidates, finalK)
	default:
		llmOut, err := llmRecommend(ctx, searchText, feats, candidates, finalK)
		if err != nil {
			slog.Warn("recommend: llm failed, using keyword ranking", slog.Any("error", err))
			metrics.KeywordFallbacks.Add(1)
			out = keywordRecommend(candidates, finalK)
		} else {
			out = *llmOut
			llmUsed = true
		}
	}

	// Never return an empty list while the catalog has entries.
	if len(out.Recommended) == 0 {
		out.Recommended = []RecommendedAssessment{{Assessment: cfg.Catalog[0]}}
		if out.Reasoning == "" {
			out.Reasoning = "No assessments matched the query; returning the first catalog entry."
		}
	}

	CacheSet(ctx, cacheKey, out)
	return &RecommendResult{RecommendOutput: out, Kind: kind, LLMUsed: llmUsed}, nil
}

// ClampFinalK bounds the requested result count to [1,10], defaulting to 5.
func ClampFinalK(k int) int {
	switch {
	case k == 0:
		return DefaultFinalK
	case k < MinFinalK:
		return MinFinalK
	case k > MaxFinalK:
		return MaxFinalK
	}
	return k
}

// filterByDuration drops assessments longer than maxDuration minutes.
func filterByDuration(items []catalog.Assessment, maxDuration int) []catalog.Assessment {
	if maxDuration <= 0 {
		return items
	}
	out := make([]catalog.Assessment, 0, len(items))
	for _, a := range items {
		if a.Duration <= maxDuration {
			out = append(out, a)
		}
	}
	return out
}

// scrapedDoc is the cached form of a fetched job description.
type scrapedDoc struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// fetchJobDescription scrapes a JD URL, caching the extracted text.
func fetchJobDescription(ctx context.Context, rawURL string) (string, bool) {
	key := CacheKey("url", rawURL)
	if doc, ok := CacheLoadJSON[scrapedDoc](ctx, key); ok {
		return doc.combined(), true
	}

	var doc scrapedDoc
	var err error
	if isPlainTextURL(rawURL) {
		doc.Text, err = FetchRawContent(ctx, rawURL)
	} else {
		doc.Title, doc.Text, err = FetchURLContent(ctx, rawURL)
	}
	if err != nil || strings.TrimSpace(doc.Text) == "" {
		slog.Warn("recommend: url fetch failed", slog.String("url", rawURL), slog.Any("error", err))
		return "", false
	}

	CacheStoreJSON(ctx, key, doc)
	return doc.combined(), true
}

func (d scrapedDoc) combined() string {
	if d.Title == "" {
		return d.Text
	}
	return d.Title + "\n\n" + d.Text
}

func isPlainTextURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	p := strings.ToLower(u.Path)
	return strings.HasSuffix(p, ".txt") || strings.HasSuffix(p, ".md")
}

// llmRecommend asks the model to pick finalK items from the candidate list.
func llmRecommend(ctx context.Context, query string, feats QueryFeatures, candidates []catalog.Match, finalK int) (*RecommendOutput, error) {
	if len(candidates) == 0 {
		return nil, errors.New("no candidates to rank")
	}
	prompt := buildRecommendPrompt(query, feats, candidates, finalK)

	var raw string
	err := TrackOperation(ctx, "llm_recommend", func(ctx context.Context) error {
		var callErr error
		raw, callErr = CallLLM(ctx, recommendSystemPrompt, prompt)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	parsed, err := parseRecommendations(raw)
	if err != nil {
		return nil, err
	}

	out := &RecommendOutput{Reasoning: strings.TrimSpace(parsed.Reasoning)}
	seen := make(map[string]bool)
	for _, rec := range parsed.Recommendations {
		a, ok := resolveCandidate(rec, candidates)
		if !ok {
			slog.Debug("recommend: dropping unknown llm item", slog.String("name", rec.Name))
			continue
		}
		if seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		out.Recommended = append(out.Recommended, RecommendedAssessment{
			Assessment: a,
			Reason:     strings.TrimSpace(rec.Reason),
		})
		if len(out.Recommended) >= finalK {
			break
		}
	}
	return out, nil
}

// resolveCandidate maps an LLM item back to a catalog entry by position,
// then name, then URL. Items matching nothing are dropped.
func resolveCandidate(rec llmRecommendation, candidates []catalog.Match) (catalog.Assessment, bool) {
	if rec.Position >= 1 && rec.Position <= len(candidates) {
		return candidates[rec.Position-1].Assessment, true
	}

	if name := strings.ToLower(strings.TrimSpace(rec.Name)); name != "" {
		for _, m := range candidates {
			if strings.ToLower(m.Name) == name {
				return m.Assessment, true
			}
		}
	}

	if rawURL := strings.TrimRight(strings.TrimSpace(rec.URL), "/"); rawURL != "" {
		for _, m := range candidates {
			if strings.EqualFold(strings.TrimRight(m.URL, "/"), rawURL) {
				return m.Assessment, true
			}
		}
	}

	return catalog.Assessment{}, false
}

// buildRecommendPrompt renders the numbered candidate list plus constraint hints.
func buildRecommendPrompt(query string, feats QueryFeatures, candidates []catalog.Match, finalK int) string {
	var sb strings.Builder
	for i, m := range candidates {
		fmt.Fprintf(&sb, "[%d] %s\nURL: %s\nTypes: %s | Duration: %d min | Remote: %s | Adaptive: %s\n",
			i+1, m.Name, m.URL, strings.Join(m.TestType, ", "), m.Duration, m.RemoteSupport, m.AdaptiveSupport)
		if m.Description != "" {
			fmt.Fprintf(&sb, "Description: %s\n", TruncateRunes(m.Description, 300, "..."))
		}
		sb.WriteByte('\n')
	}

	queryText := query
	if len(queryText) > cfg.MaxContentChars && cfg.MaxContentChars > 0 {
		queryText = queryText[:cfg.MaxContentChars] + "..."
	}

	return fmt.Sprintf(recommendPrompt, finalK, queryText, buildConstraints(feats), sb.String())
}

// buildConstraints renders extracted query features as prompt hints.
func buildConstraints(feats QueryFeatures) string {
	var lines []string
	if feats.MaxDuration > 0 {
		lines = append(lines, fmt.Sprintf("- each assessment must take at most %d minutes", feats.MaxDuration))
	}
	if feats.RoleLevel != "" {
		lines = append(lines, fmt.Sprintf("- the role is %s level", feats.RoleLevel))
	}
	if feats.SoftSkill {
		lines = append(lines, "- the need emphasizes personality, behaviour or collaboration, so include at least one Personality & Behaviour assessment if available")
	}
	if len(lines) == 0 {
		return ""
	}
	return "Constraints:\n" + strings.Join(lines, "\n") + "\n\n"
}

// keywordRecommend ranks by keyword overlap when the LLM is unavailable.
func keywordRecommend(candidates []catalog.Match, finalK int) RecommendOutput {
	out := RecommendOutput{
		Reasoning: "Keyword ranking: assessments scored by term overlap between the query and their name, description and test types.",
	}
	for _, m := range candidates {
		if m.Score <= 0 || len(out.Recommended) >= finalK {
			break
		}
		reason := "Matches query keywords."
		if len(m.Matching) > 0 {
			reason = fmt.Sprintf("Matches query keywords: %s.", strings.Join(m.Matching, ", "))
		}
		out.Recommended = append(out.Recommended, RecommendedAssessment{
			Assessment: m.Assessment,
			Reason:     reason,
		})
	}
	return out
}
