package engine

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// FetchURLContent extracts the main text content from a URL using
// go-readability, converted to markdown. Falls back to goquery, then
// regex-based extraction on failure.
func FetchURLContent(ctx context.Context, rawURL string) (title, content string, err error) {
	metrics.FetchRequests.Add(1)
	defer func() {
		if err != nil {
			metrics.FetchErrors.Add(1)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	resp, err := fetchWithRetry(ctx, rawURL, true)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	body, err := readResponseBody(resp)
	if err != nil {
		return "", "", err
	}

	parsedURL, _ := url.Parse(rawURL)
	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err != nil || strings.TrimSpace(article.TextContent) == "" {
		return extractWithGoquery(rawURL, body)
	}

	md, err := htmltomarkdown.ConvertString(article.Content)
	if err != nil {
		md = article.TextContent
	}
	text := strings.TrimSpace(md)
	if len(text) > cfg.MaxContentChars {
		text = text[:cfg.MaxContentChars] + "..."
	}
	return article.Title, text, nil
}

// extractWithGoquery uses goquery for structured HTML parsing when readability fails.
func extractWithGoquery(rawURL string, body []byte) (title, content string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return extractWithRegex(body)
	}

	title = doc.Find("title").First().Text()
	if title == "" {
		doc.Find("meta[property=og:title]").Each(func(i int, s *goquery.Selection) {
			if title == "" {
				title, _ = s.Attr("content")
			}
		})
	}

	removeSelectors := []string{
		"script", "style", "noscript", "iframe", "svg",
		"header", "footer", "nav", "aside",
		".advertisement", ".ad", ".sidebar", ".comments",
		"[role=navigation]", "[role=banner]", "[role=contentinfo]",
	}
	doc.Find(strings.Join(removeSelectors, ", ")).Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	contentSel := doc.Find("article, main, .content, .post-content, .job-description, #content").First()
	if contentSel.Length() == 0 {
		contentSel = doc.Find("body")
	}

	content = strings.TrimSpace(contentSel.Text())
	content = wsRe.ReplaceAllString(content, " ")

	if len(content) > cfg.MaxContentChars {
		content = content[:cfg.MaxContentChars] + "..."
	}

	return title, content, nil
}

var (
	wsRe      = regexp.MustCompile(`\s+`)
	titleRe   = regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`)
	ogTitleRe = regexp.MustCompile(`(?i)<meta[^>]*property=["']og:title["'][^>]*content=["']([^"']+)["']`)
	blockRes  = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
		regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`),
		regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`),
		regexp.MustCompile(`(?is)<header[^>]*>.*?</header>`),
		regexp.MustCompile(`(?is)<footer[^>]*>.*?</footer>`),
		regexp.MustCompile(`(?is)<nav[^>]*>.*?</nav>`),
		regexp.MustCompile(`(?is)<aside[^>]*>.*?</aside>`),
		regexp.MustCompile(`(?is)<iframe[^>]*>.*?</iframe>`),
	}
	tagRe = regexp.MustCompile(`<[^>]+>`)
)

// extractWithRegex strips tags directly when both readability and goquery fail.
func extractWithRegex(body []byte) (title, content string, err error) {
	html := string(body)

	if m := titleRe.FindStringSubmatch(html); len(m) > 1 {
		title = strings.TrimSpace(m[1])
	}
	if title == "" {
		if m := ogTitleRe.FindStringSubmatch(html); len(m) > 1 {
			title = strings.TrimSpace(m[1])
		}
	}

	for _, re := range blockRes {
		html = re.ReplaceAllString(html, "")
	}
	content = tagRe.ReplaceAllString(html, "")
	content = strings.TrimSpace(wsRe.ReplaceAllString(content, " "))

	if len(content) > cfg.MaxContentChars {
		content = content[:cfg.MaxContentChars] + "..."
	}

	return title, content, nil
}
