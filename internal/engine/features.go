package engine

import (
	"regexp"
	"strconv"
	"strings"
)

// Keyword sets for local query analysis. Matched as substrings of the
// lowercased query, so stems cover plural and verb forms.
var (
	softSkillWords = []string{
		"collaborat", "team", "teamwork", "lead", "manag", "supervisor",
		"personality", "behaviour", "behavior", "communication", "interpersonal", "opq",
	}
	entryLevelWords  = []string{"entry", "junior", "graduate", "intern", "trainee"}
	midLevelWords    = []string{"mid level", "mid-level", "intermediate"}
	seniorLevelWords = []string{"senior", "lead", "expert", "principal", "staff engineer", "head of"}
)

// Duration cap patterns. The qualifier may come before or after the
// minute count ("within 30 minutes", "45 minutes max"). The gap is
// bounded so unrelated numbers far apart do not pair up.
var (
	durationQualFirstRe = regexp.MustCompile(
		`(?:less than|under|within|in|max(?:imum)?(?:\s+of)?|no more than|up to|limit(?:ed)?(?:\s+(?:of|to))?|at most)[^\d]{0,20}(\d+)\s*(?:minutes|minute|mins|min)\b`)
	durationNumFirstRe = regexp.MustCompile(
		`(\d+)\s*(?:minutes|minute|mins|min)\b[^\d]{0,20}\b(?:or less|or under|max(?:imum)?|limit|cap|tops)`)
	durationPhraseRe = regexp.MustCompile(
		`(?i)(?:less than|under|within|in|max(?:imum)?(?:\s+of)?|no more than|up to|limit(?:ed)?(?:\s+(?:of|to))?|at most)?[^\S\n]*\d+\s*(?:minutes|minute|mins|min)\b[^\S\n]*(?:or less|or under|max(?:imum)?|limit|cap|tops)?`)
)

// ExtractQueryFeatures derives filtering hints from the query (or scraped
// JD) text. Duration phrases are removed from the cleaned query so they
// do not pollute keyword scoring.
func ExtractQueryFeatures(query string) QueryFeatures {
	q := strings.ToLower(query)
	f := QueryFeatures{Cleaned: query}

	f.MaxDuration = extractMaxDuration(q)
	f.SoftSkill = containsAny(q, softSkillWords)

	// Mid before entry: "intern" would otherwise match inside "intermediate".
	switch {
	case containsAny(q, seniorLevelWords):
		f.RoleLevel = "senior"
	case containsAny(q, midLevelWords):
		f.RoleLevel = "mid"
	case containsAny(q, entryLevelWords):
		f.RoleLevel = "entry"
	}

	if f.MaxDuration > 0 {
		if cleaned := strings.TrimSpace(durationPhraseRe.ReplaceAllString(query, " ")); cleaned != "" {
			f.Cleaned = cleaned
		}
	}
	return f
}

// extractMaxDuration returns a minute cap from the query, or 0.
func extractMaxDuration(q string) int {
	for _, re := range []*regexp.Regexp{durationQualFirstRe, durationNumFirstRe} {
		if m := re.FindStringSubmatch(q); len(m) > 1 {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// DetectQueryKind classifies a request as URL or free text. A declared
// type=url wins; otherwise a query starting with http(s):// is a URL.
func DetectQueryKind(query, declared string) string {
	if NormQueryKind(declared) == QueryKindURL {
		return QueryKindURL
	}
	q := strings.TrimSpace(query)
	if strings.HasPrefix(q, "http://") || strings.HasPrefix(q, "https://") {
		return QueryKindURL
	}
	return QueryKindText
}
