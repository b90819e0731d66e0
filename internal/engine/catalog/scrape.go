package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v5"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const (
	siteBase       = "https://www.shl.com"
	catalogListURL = "https://www.shl.com/solutions/products/product-catalog/"
	viewPathMarker = "/product-catalog/view/"

	pageStep        = 12  // products per listing page
	maxListingStart = 500 // pagination safety cap
	minCrawlResults = 20  // below this the known-test fallback list kicks in

	scrapeUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// individualTestIndicators marks catalog entries that are standalone tests.
var individualTestIndicators = []string{
	"python", "java", "javascript", "sql", "c++", "c#", ".net",
	"html", "css", "selenium", "testing", "qa", "automata",
	"tableau", "excel", "powerpoint", "word", "outlook",
	"opq", "personality", "verify", "reasoning", "ability", "cognitive",
	"verbal", "numerical", "inductive", "deductive",
	"english", "language", "communication", "writing",
	"accounting", "bookkeeping", "finance",
	"marketing", "seo", "advertising", "digital",
	"leadership report", "team types", "enterprise leadership",
	"global skills", "data warehousing", "database",
	"drupal", "wordpress", "web development",
}

// excludeKeywords marks pre-packaged job solution bundles.
var excludeKeywords = []string{
	"solution", "job focused", "jfa", "short form",
	"manager solution", "agent solution", "clerk solution",
	"representative solution", "associate solution",
	"professional solution", "specialist solution",
	"supervisor solution", "coordinator solution",
}

var adaptiveWords = []string{"adaptive", "adapts to", "tailored", "personalized"}

var onsiteOnlyWords = []string{"on-site only", "not remote", "in-person only"}

var titleSuffixRe = regexp.MustCompile(`\s*[|-]\s*SHL.*$`)

// Duration patterns, checked in order. The page text is lowercased first.
var durationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`approximate\s+completion\s+time\s+in\s+minutes\s*=\s*(\d+)`),
	regexp.MustCompile(`completion\s+time[:\s]*(\d+)\s*(?:minute|min)`),
	regexp.MustCompile(`duration[:\s]*(\d+)\s*(?:minute|min)`),
	regexp.MustCompile(`takes?\s+(?:approximately\s+)?(\d+)\s*(?:minute|min)`),
}

// genericMinutesRe is the last-resort duration pattern. RE2 has no lookahead,
// so "per"/"each" after the unit is rejected in code.
var genericMinutesRe = regexp.MustCompile(`(\d+)\s*(?:minutes|minute|mins|min)`)

// Scraper crawls the product catalog and extracts individual test entries.
type Scraper struct {
	client  *http.Client
	limiter *rate.Limiter
	listURL string
}

// NewScraper creates a catalog scraper. A nil client gets scraping defaults.
func NewScraper(client *http.Client) *Scraper {
	if client == nil {
		client = &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}
	return &Scraper{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		listURL: catalogListURL,
	}
}

// Run crawls the listing pages, scrapes each individual test page, and
// returns the enhanced catalog.
func (s *Scraper) Run(ctx context.Context) ([]Assessment, error) {
	urls, err := s.collectTestURLs(ctx)
	if err != nil {
		return nil, err
	}

	if len(urls) < minCrawlResults {
		slog.Warn("crawl found few individual tests, adding known test URLs", slog.Int("found", len(urls)))
		seen := make(map[string]bool, len(urls))
		for _, u := range urls {
			seen[u] = true
		}
		for _, u := range fallbackTestURLs() {
			if !seen[u] {
				seen[u] = true
				urls = append(urls, u)
			}
		}
	}

	var items []Assessment
	for i, u := range urls {
		if err := s.limiter.Wait(ctx); err != nil {
			return items, err
		}
		a, err := s.extractDetails(ctx, u)
		if err != nil {
			slog.Warn("detail extraction failed", slog.String("url", u), slog.Any("error", err))
			continue
		}
		if a == nil {
			continue // job solution, filtered out
		}
		items = append(items, *a)
		slog.Debug("scraped assessment",
			slog.Int("n", i+1),
			slog.Int("total", len(urls)),
			slog.String("name", a.Name))
	}

	if len(items) == 0 {
		return nil, errors.New("no individual tests scraped")
	}

	enhance(items)
	slog.Info("catalog scrape complete", slog.Int("assessments", len(items)))
	return items, nil
}

// collectTestURLs walks the paginated listing and returns detail-page URLs
// that look like individual tests.
func (s *Scraper) collectTestURLs(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var order []string

	for start := 0; start < maxListingStart; start += pageStep {
		pageURL := fmt.Sprintf("%s?type=2&start=%d", s.listURL, start)

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		body, err := s.fetch(ctx, pageURL)
		if err != nil {
			slog.Warn("listing page fetch failed", slog.String("url", pageURL), slog.Any("error", err))
			continue
		}

		newOnPage := 0
		for _, href := range parseCatalogLinks(body) {
			if !seen[href] {
				seen[href] = true
				order = append(order, href)
				newOnPage++
			}
		}
		slog.Debug("listing page crawled", slog.Int("start", start), slog.Int("new", newOnPage))

		// A short page means the catalog ran out of products.
		if newOnPage < pageStep {
			break
		}
	}

	var urls []string
	for _, u := range order {
		if isIndividualTest(nameFromSlug(u), u) {
			urls = append(urls, u)
		}
	}
	slog.Info("catalog crawl finished",
		slog.Int("products", len(order)),
		slog.Int("individual_tests", len(urls)))
	return urls, nil
}

// fetch performs a GET with exponential backoff. Non-retryable statuses are permanent.
func (s *Scraper) fetch(ctx context.Context, pageURL string) ([]byte, error) {
	operation := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", scrapeUserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			return io.ReadAll(io.LimitReader(resp.Body, 2<<20))
		case 429, 500, 502, 503, 504:
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		default:
			return nil, backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 10 * time.Second

	return backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(3), backoff.WithMaxElapsedTime(30*time.Second))
}

// parseCatalogLinks extracts detail-page URLs from a listing page.
func parseCatalogLinks(body []byte) []string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := getAttr(n, "href"); href != "" {
				full := resolveURL(href)
				if strings.Contains(full, viewPathMarker) {
					links = append(links, full)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links
}

// getAttr returns the value of an attribute on a node, or "".
func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func resolveURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	base, _ := url.Parse(siteBase)
	return base.ResolveReference(u).String()
}

// isIndividualTest reports whether a catalog entry is a standalone test
// rather than a pre-packaged job solution bundle.
func isIndividualTest(name, pageURL string) bool {
	nameLower := strings.ToLower(name)
	urlLower := strings.ToLower(pageURL)

	for _, exclude := range excludeKeywords {
		if strings.Contains(nameLower, exclude) {
			// The Global Skills Assessment is a real test despite the bundle-ish name.
			return strings.Contains(nameLower, "global skills")
		}
	}
	for _, indicator := range individualTestIndicators {
		if strings.Contains(nameLower, indicator) || strings.Contains(urlLower, indicator) {
			return true
		}
	}
	return false
}

// extractDetails fetches and parses one detail page. Returns (nil, nil) when
// the page turns out to be a job solution bundle.
func (s *Scraper) extractDetails(ctx context.Context, pageURL string) (*Assessment, error) {
	body, err := s.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return parseAssessmentPage(pageURL, body)
}

// parseAssessmentPage extracts an Assessment from detail-page HTML.
func parseAssessmentPage(pageURL string, body []byte) (*Assessment, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	a := &Assessment{
		URL:             pageURL,
		AdaptiveSupport: "No",
		RemoteSupport:   "Yes",
	}

	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		a.Name = strings.TrimSpace(titleSuffixRe.ReplaceAllString(t, ""))
	}
	if a.Name == "" {
		a.Name = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if a.Name == "" {
		a.Name = nameFromSlug(pageURL)
	}

	if !isIndividualTest(a.Name, pageURL) {
		return nil, nil
	}

	a.Description = extractDescription(doc)

	pageText := strings.ToLower(doc.Text())
	a.TestType = detectTestTypes(pageText)
	a.Duration = extractDuration(pageText)

	for _, w := range adaptiveWords {
		if strings.Contains(pageText, w) {
			a.AdaptiveSupport = "Yes"
			break
		}
	}
	for _, w := range onsiteOnlyWords {
		if strings.Contains(pageText, w) {
			a.RemoteSupport = "No"
			break
		}
	}

	return a, nil
}

// extractDescription prefers the meta description, then the first long
// paragraph inside a description/overview/content container.
func extractDescription(doc *goquery.Document) string {
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		desc = strings.TrimSpace(desc)
		if len(desc) > 50 && !strings.Contains(desc, "We recommend") {
			return desc
		}
	}

	var found string
	doc.Find("div, section").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		attrs := strings.ToLower(sel.AttrOr("class", "") + " " + sel.AttrOr("id", ""))
		if !strings.Contains(attrs, "description") && !strings.Contains(attrs, "overview") &&
			!strings.Contains(attrs, "content") && !strings.Contains(attrs, "summary") {
			return true
		}
		sel.Find("p").EachWithBreak(func(i int, p *goquery.Selection) bool {
			if i >= 5 {
				return false
			}
			text := strings.TrimSpace(p.Text())
			if len(text) > 100 && !strings.HasPrefix(text, "We recommend") {
				found = text
				return false
			}
			return true
		})
		return found == ""
	})
	return found
}

// detectTestTypes classifies a page by keyword presence. Defaults to
// Knowledge & Skills when nothing matches.
func detectTestTypes(pageText string) []string {
	var types []string

	personality := []string{"personality", "behaviour", "behavior", "opq", "trait", "work style", "preference"}
	for _, w := range personality {
		if strings.Contains(pageText, w) {
			types = append(types, TypePersonality)
			break
		}
	}

	competency := []string{"competenc", "ability", "aptitude", "reasoning", "cognitive", "verify", "thinking"}
	for _, w := range competency {
		if strings.Contains(pageText, w) {
			types = append(types, TypeCompetency)
			break
		}
	}

	knowledge := []string{"knowledge", "skill", "programming", "technical", "coding", "language", "software", "test", "proficiency"}
	for _, w := range knowledge {
		if strings.Contains(pageText, w) {
			types = append(types, TypeKnowledge)
			break
		}
	}

	if len(types) == 0 {
		types = append(types, TypeKnowledge)
	}
	return types
}

// extractDuration returns the first plausible duration in minutes, or 0.
func extractDuration(pageText string) int {
	for _, re := range durationPatterns {
		if m := re.FindStringSubmatch(pageText); len(m) > 1 {
			if d, err := strconv.Atoi(m[1]); err == nil && d >= 5 && d <= 180 {
				return d
			}
		}
	}
	for _, m := range genericMinutesRe.FindAllStringSubmatchIndex(pageText, -1) {
		d, err := strconv.Atoi(pageText[m[2]:m[3]])
		if err != nil || d < 5 || d > 180 {
			continue
		}
		rest := strings.TrimLeft(pageText[m[1]:], " ")
		if strings.HasPrefix(rest, "per") || strings.HasPrefix(rest, "each") {
			continue
		}
		return d
	}
	return 0
}

// nameFromSlug derives a readable name from the URL slug.
func nameFromSlug(pageURL string) string {
	slug := strings.TrimRight(pageURL, "/")
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		slug = slug[i+1:]
	}
	words := strings.Fields(strings.ReplaceAll(slug, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// enhance fills in missing descriptions and durations after scraping.
func enhance(items []Assessment) {
	for i := range items {
		a := &items[i]
		if len(a.Description) < 50 {
			a.Description = describeAssessment(a.Name)
		}
		if a.Duration == 0 {
			a.Duration = estimateDuration(a.Name, a.TestType)
		}
	}
}
