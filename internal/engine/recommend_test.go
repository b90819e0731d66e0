package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/akoval/go_assess/internal/engine/catalog"
)

func testCatalog() []catalog.Assessment {
	return []catalog.Assessment{
		{
			URL:             "https://www.shl.com/solutions/products/product-catalog/view/java-8-new/",
			Name:            "Java 8 (New)",
			Description:     "Multi-choice test that measures the knowledge of Java class design, exceptions, generics, collections and concurrency.",
			Duration:        40,
			TestType:        []string{"Knowledge & Skills"},
			AdaptiveSupport: "No",
			RemoteSupport:   "Yes",
		},
		{
			URL:             "https://www.shl.com/solutions/products/product-catalog/view/python-new/",
			Name:            "Python (New)",
			Description:     "Multi-choice test that measures expertise in Python programming, databases, modules and library use.",
			Duration:        45,
			TestType:        []string{"Knowledge & Skills"},
			AdaptiveSupport: "No",
			RemoteSupport:   "Yes",
		},
		{
			URL:             "https://www.shl.com/solutions/products/product-catalog/view/verify-numerical-ability/",
			Name:            "Verify - Numerical Ability",
			Description:     "Measures numerical reasoning ability with charts, tables and numerical data.",
			Duration:        18,
			TestType:        []string{"Ability & Aptitude"},
			AdaptiveSupport: "Yes",
			RemoteSupport:   "Yes",
		},
		{
			URL:             "https://www.shl.com/solutions/products/product-catalog/view/teamwork-styles/",
			Name:            "Teamwork Styles",
			Description:     "Assesses collaboration and communication styles for team based positions.",
			Duration:        25,
			TestType:        []string{"Personality & Behaviour"},
			AdaptiveSupport: "Yes",
			RemoteSupport:   "Yes",
		},
	}
}

// initTestEngine resets engine config and the response cache so tests do
// not see each other's cached results.
func initTestEngine(t *testing.T, client LLMClient) {
	t.Helper()
	old := cfg
	t.Cleanup(func() { cfg = old })
	Init(Config{
		LLMClient:       client,
		MaxContentChars: 6000,
		FetchTimeout:    5 * time.Second,
		Catalog:         testCatalog(),
	})
	InitCache("", time.Minute, 100, 5*time.Minute)
}

func recommendedNames(out RecommendOutput) []string {
	names := make([]string, 0, len(out.Recommended))
	for _, rec := range out.Recommended {
		names = append(names, rec.Name)
	}
	return names
}

func TestRecommend_EmptyQuery(t *testing.T) {
	initTestEngine(t, nil)
	_, err := Recommend(context.Background(), RecommendRequest{Query: "   "})
	if !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("got %v, want ErrEmptyQuery", err)
	}
}

func TestRecommend_EmptyCatalog(t *testing.T) {
	initTestEngine(t, nil)
	cfg.Catalog = nil
	_, err := Recommend(context.Background(), RecommendRequest{Query: "java developer"})
	if !errors.Is(err, ErrNoCatalog) {
		t.Errorf("got %v, want ErrNoCatalog", err)
	}
}

func TestRecommend_KeywordRanking(t *testing.T) {
	initTestEngine(t, nil)

	res, err := Recommend(context.Background(), RecommendRequest{Query: "java developer"})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if res.LLMUsed {
		t.Error("LLMUsed = true without a configured client")
	}
	if res.Kind != QueryKindText {
		t.Errorf("Kind = %q, want text", res.Kind)
	}
	if len(res.Recommended) != 1 || res.Recommended[0].Name != "Java 8 (New)" {
		t.Errorf("got %v, want only Java 8 (New)", recommendedNames(res.RecommendOutput))
	}
	if !strings.Contains(res.Reasoning, "Keyword ranking") {
		t.Errorf("reasoning = %q, want keyword ranking note", res.Reasoning)
	}
}

func TestRecommend_LLMRanking(t *testing.T) {
	f := &fakeLLM{resp: `{"recommendations": [{"position": 1, "name": "Python (New)", "url": "", "reason": "Covers core Python skills."}], "reasoning": "The role needs Python."}`}
	initTestEngine(t, f)

	res, err := Recommend(context.Background(), RecommendRequest{Query: "python developer"})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if !res.LLMUsed {
		t.Error("LLMUsed = false, want true")
	}
	if len(res.Recommended) != 1 || res.Recommended[0].Name != "Python (New)" {
		t.Fatalf("got %v, want only Python (New)", recommendedNames(res.RecommendOutput))
	}
	if res.Recommended[0].Reason != "Covers core Python skills." {
		t.Errorf("reason = %q", res.Recommended[0].Reason)
	}
	if res.Reasoning != "The role needs Python." {
		t.Errorf("reasoning = %q", res.Reasoning)
	}

	// Python scores highest for this query, so it leads the candidate list.
	if !strings.Contains(f.lastPrompt, "[1] Python (New)") {
		t.Errorf("prompt missing numbered candidate list:\n%s", f.lastPrompt)
	}
	if !strings.Contains(f.lastPrompt, "python developer") {
		t.Error("prompt missing the query text")
	}
}

func TestRecommend_LLMFailureFallsBack(t *testing.T) {
	f := &fakeLLM{err: errors.New("model overloaded")}
	initTestEngine(t, f)

	res, err := Recommend(context.Background(), RecommendRequest{Query: "java developer"})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if res.LLMUsed {
		t.Error("LLMUsed = true after llm failure")
	}
	if len(res.Recommended) != 1 || res.Recommended[0].Name != "Java 8 (New)" {
		t.Errorf("got %v, want keyword fallback result", recommendedNames(res.RecommendOutput))
	}
}

func TestRecommend_CacheHit(t *testing.T) {
	f := &fakeLLM{resp: `{"recommendations": [{"position": 1, "name": "", "url": "", "reason": "ok"}], "reasoning": "cached run"}`}
	initTestEngine(t, f)

	req := RecommendRequest{Query: "python developer"}
	first, err := Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("first Recommend() error: %v", err)
	}
	if first.CacheHit {
		t.Error("first call reported a cache hit")
	}

	second, err := Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("second Recommend() error: %v", err)
	}
	if !second.CacheHit {
		t.Error("second call missed the cache")
	}
	if f.calls != 1 {
		t.Errorf("llm called %d times, want 1", f.calls)
	}
	if second.Reasoning != first.Reasoning {
		t.Errorf("cached reasoning %q != original %q", second.Reasoning, first.Reasoning)
	}
}

func TestRecommend_NeverEmpty(t *testing.T) {
	initTestEngine(t, nil)

	res, err := Recommend(context.Background(), RecommendRequest{Query: "zzzz qqqq wwww"})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if len(res.Recommended) != 1 {
		t.Fatalf("got %d recommendations, want the fallback entry", len(res.Recommended))
	}
	if res.Recommended[0].Name != "Java 8 (New)" {
		t.Errorf("fallback entry = %q, want the first catalog entry", res.Recommended[0].Name)
	}
	if !strings.Contains(res.Reasoning, "No assessments matched") {
		t.Errorf("reasoning = %q", res.Reasoning)
	}
}

func TestRecommend_DurationCap(t *testing.T) {
	initTestEngine(t, nil)

	res, err := Recommend(context.Background(), RecommendRequest{Query: "numerical reasoning under 20 minutes"})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if len(res.Recommended) != 1 || res.Recommended[0].Name != "Verify - Numerical Ability" {
		t.Fatalf("got %v, want only Verify - Numerical Ability", recommendedNames(res.RecommendOutput))
	}
	if res.Recommended[0].Duration > 20 {
		t.Errorf("recommended duration %d exceeds the 20 minute cap", res.Recommended[0].Duration)
	}
}

func TestRecommend_URLQuery(t *testing.T) {
	initTestEngine(t, nil)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(jobPageHTML))
	}))
	defer srv.Close()

	res, err := Recommend(context.Background(), RecommendRequest{Query: srv.URL})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if res.Kind != QueryKindURL {
		t.Errorf("Kind = %q, want url", res.Kind)
	}

	names := strings.Join(recommendedNames(res.RecommendOutput), ", ")
	if !strings.Contains(names, "Java 8 (New)") {
		t.Errorf("recommendations %q missing the Java assessment", names)
	}
	if !strings.Contains(names, "Teamwork Styles") {
		t.Errorf("recommendations %q missing the collaboration assessment", names)
	}
}

func TestRecommend_URLFetchFailure(t *testing.T) {
	initTestEngine(t, nil)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	res, err := Recommend(context.Background(), RecommendRequest{Query: srv.URL})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if !strings.HasPrefix(res.Reasoning, urlFetchFailedNote) {
		t.Errorf("reasoning = %q, want the fetch failure note first", res.Reasoning)
	}
	if len(res.Recommended) == 0 {
		t.Error("expected a non-empty result even when the fetch fails")
	}
}

func TestClampFinalK(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultFinalK},
		{-3, MinFinalK},
		{1, 1},
		{7, 7},
		{10, 10},
		{25, MaxFinalK},
	}
	for _, tt := range tests {
		if got := ClampFinalK(tt.in); got != tt.want {
			t.Errorf("ClampFinalK(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFilterByDuration(t *testing.T) {
	items := testCatalog()

	t.Run("cap filters long assessments", func(t *testing.T) {
		got := filterByDuration(items, 30)
		if len(got) != 2 {
			t.Fatalf("got %d items, want 2", len(got))
		}
		for _, a := range got {
			if a.Duration > 30 {
				t.Errorf("%s duration %d exceeds cap", a.Name, a.Duration)
			}
		}
	})

	t.Run("zero cap keeps everything", func(t *testing.T) {
		if got := filterByDuration(items, 0); len(got) != len(items) {
			t.Errorf("got %d items, want %d", len(got), len(items))
		}
	})

	t.Run("cap below all durations empties the pool", func(t *testing.T) {
		if got := filterByDuration(items, 5); len(got) != 0 {
			t.Errorf("got %d items, want 0", len(got))
		}
	})
}

func TestResolveCandidate(t *testing.T) {
	candidates := []catalog.Match{
		{Assessment: catalog.Assessment{Name: "Java 8 (New)", URL: "https://example.com/java-8-new/"}},
		{Assessment: catalog.Assessment{Name: "Python (New)", URL: "https://example.com/python-new/"}},
	}

	t.Run("by position", func(t *testing.T) {
		a, ok := resolveCandidate(llmRecommendation{Position: 2}, candidates)
		if !ok || a.Name != "Python (New)" {
			t.Errorf("got %v %v, want Python (New)", a.Name, ok)
		}
	})

	t.Run("by name case-insensitive", func(t *testing.T) {
		a, ok := resolveCandidate(llmRecommendation{Name: "java 8 (new)"}, candidates)
		if !ok || a.Name != "Java 8 (New)" {
			t.Errorf("got %v %v, want Java 8 (New)", a.Name, ok)
		}
	})

	t.Run("by url ignoring trailing slash", func(t *testing.T) {
		a, ok := resolveCandidate(llmRecommendation{URL: "https://example.com/python-new"}, candidates)
		if !ok || a.Name != "Python (New)" {
			t.Errorf("got %v %v, want Python (New)", a.Name, ok)
		}
	})

	t.Run("unknown item dropped", func(t *testing.T) {
		if _, ok := resolveCandidate(llmRecommendation{Name: "Invented Test"}, candidates); ok {
			t.Error("resolved an item that is not in the candidate list")
		}
	})

	t.Run("out of range position falls through to name", func(t *testing.T) {
		a, ok := resolveCandidate(llmRecommendation{Position: 99, Name: "Python (New)"}, candidates)
		if !ok || a.Name != "Python (New)" {
			t.Errorf("got %v %v, want Python (New)", a.Name, ok)
		}
	})
}

func TestBuildConstraints(t *testing.T) {
	t.Run("all hints", func(t *testing.T) {
		got := buildConstraints(QueryFeatures{MaxDuration: 30, RoleLevel: "senior", SoftSkill: true})
		for _, want := range []string{"30 minutes", "senior level", "Personality & Behaviour"} {
			if !strings.Contains(got, want) {
				t.Errorf("constraints missing %q:\n%s", want, got)
			}
		}
	})

	t.Run("no hints", func(t *testing.T) {
		if got := buildConstraints(QueryFeatures{}); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})
}

func TestKeywordRecommend(t *testing.T) {
	candidates := []catalog.Match{
		{Assessment: catalog.Assessment{Name: "A"}, Score: 50, Matching: []string{"java", "spring"}},
		{Assessment: catalog.Assessment{Name: "B"}, Score: 10},
		{Assessment: catalog.Assessment{Name: "C"}, Score: 0},
	}

	out := keywordRecommend(candidates, 5)
	if got := recommendedNames(out); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("got %v, want [A B]", got)
	}
	if !strings.Contains(out.Recommended[0].Reason, "java, spring") {
		t.Errorf("reason = %q, want matched keywords listed", out.Recommended[0].Reason)
	}

	if out := keywordRecommend(candidates, 1); len(out.Recommended) != 1 {
		t.Errorf("finalK=1 returned %d items", len(out.Recommended))
	}
}
