package engine

import (
	"math/rand/v2"
	"strings"
	"unicode/utf8"
)

// NormQueryKind normalises a request type field: empty string → "text".
func NormQueryKind(kind string) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		return QueryKindText
	}
	return kind
}

// User-Agent strings used across HTTP clients.
const (
	UserAgentBot    = "GoAssess/1.0"
	UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// userAgents is the rotation pool for scraping fetches.
var userAgents = []string{
	UserAgentChrome,
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0",
}

// RandomUserAgent returns a random desktop browser User-Agent.
func RandomUserAgent() string {
	return userAgents[rand.IntN(len(userAgents))]
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:limit]), " ") + suffix
}
