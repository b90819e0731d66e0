package engine

import (
	"context"
	"strings"
)

// FetchRawContent fetches a URL as plain text (no readability extraction).
// Used for .txt and .md job descriptions.
func FetchRawContent(ctx context.Context, rawURL string) (string, error) {
	metrics.FetchRequests.Add(1)

	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	resp, err := fetchWithRetry(ctx, rawURL, false)
	if err != nil {
		metrics.FetchErrors.Add(1)
		return "", err
	}
	defer resp.Body.Close()

	body, err := readResponseBody(resp)
	if err != nil {
		metrics.FetchErrors.Add(1)
		return "", err
	}

	text := strings.TrimSpace(string(body))
	if len(text) > cfg.MaxContentChars {
		text = text[:cfg.MaxContentChars] + "..."
	}
	return text, nil
}
