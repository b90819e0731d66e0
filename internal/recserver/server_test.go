package recserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akoval/go_assess/internal/engine"
	"github.com/akoval/go_assess/internal/engine/catalog"
)

func TestMain(m *testing.M) {
	// History writes go to a throwaway SQLite file, not $HOME.
	dir, err := os.MkdirTemp("", "recserver-test")
	if err != nil {
		panic(err)
	}
	os.Setenv("HISTORY_DB", filepath.Join(dir, "history.db"))

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func testCatalog() []catalog.Assessment {
	return []catalog.Assessment{
		{
			URL:         "https://example.com/catalog/java-developer/",
			Name:        "Java Developer Test",
			Description: "Java programming and object oriented design for developers",
			Duration:    40,
			TestType:    []string{catalog.TypeKnowledge},
		},
		{
			URL:         "https://example.com/catalog/python-developer/",
			Name:        "Python Developer Test",
			Description: "Python programming and data structures",
			Duration:    45,
			TestType:    []string{catalog.TypeKnowledge},
		},
		{
			URL:             "https://example.com/catalog/teamwork/",
			Name:            "Teamwork Styles",
			Description:     "Collaboration and communication behaviour questionnaire",
			Duration:        25,
			TestType:        []string{catalog.TypePersonality},
			AdaptiveSupport: "Yes",
		},
	}
}

func newTestHandler(t *testing.T, items []catalog.Assessment) http.Handler {
	t.Helper()
	engine.Init(engine.Config{Catalog: items})
	return NewHandler("test")
}

func decodeOutput(t *testing.T, body []byte) engine.RecommendOutput {
	t.Helper()
	var out engine.RecommendOutput
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestRecommend_GET(t *testing.T) {
	h := newTestHandler(t, testCatalog())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recommend?query=java+developer&final_k=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	out := decodeOutput(t, rec.Body.Bytes())
	require.NotEmpty(t, out.Recommended)
	require.LessOrEqual(t, len(out.Recommended), 2)
	require.Equal(t, "Java Developer Test", out.Recommended[0].Name)
}

func TestRecommend_EmptyQuery(t *testing.T) {
	h := newTestHandler(t, testCatalog())

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"get no params", httptest.NewRequest(http.MethodGet, "/api/recommend", nil)},
		{"get blank", httptest.NewRequest(http.MethodGet, "/api/recommend?query=%20%20", nil)},
		{"post empty json", jsonRequest(t, map[string]any{"query": ""})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tt.req)

			require.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, "Query cannot be empty", body["error"])
		})
	}
}

func jsonRequest(t *testing.T, payload map[string]any) *http.Request {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/recommend", strings.NewReader(string(data)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRecommend_PostJSON(t *testing.T) {
	h := newTestHandler(t, testCatalog())

	tests := []struct {
		name   string
		finalK any
		maxLen int
	}{
		{"number", 2, 2},
		{"quoted number", "2", 2},
		{"garbage falls back to default", "lots", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, jsonRequest(t, map[string]any{
				"query":   "python developer",
				"final_k": tt.finalK,
			}))

			require.Equal(t, http.StatusOK, rec.Code)
			out := decodeOutput(t, rec.Body.Bytes())
			require.NotEmpty(t, out.Recommended)
			require.LessOrEqual(t, len(out.Recommended), tt.maxLen)
		})
	}
}

func TestRecommend_PostForm(t *testing.T) {
	h := newTestHandler(t, testCatalog())

	form := url.Values{}
	form.Set("query", "collaboration and communication")
	form.Set("final_k", "1")
	req := httptest.NewRequest(http.MethodPost, "/api/recommend", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeOutput(t, rec.Body.Bytes())
	require.Len(t, out.Recommended, 1)
	require.Equal(t, "Teamwork Styles", out.Recommended[0].Name)
}

func TestRecommend_EmptyCatalog(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recommend?query=java", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, false, body["success"])
	require.Contains(t, body["error"], "catalog")
}

func TestRecommend_RequestID(t *testing.T) {
	h := newTestHandler(t, testCatalog())

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recommend?query=java", nil))
		require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/recommend?query=java", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	})
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := newTestHandler(t, testCatalog())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var body healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "healthy", body.Status)
		require.Equal(t, "test", body.Version)
		require.Equal(t, "operational", body.Components["catalog"])
		require.Equal(t, "keyword-fallback", body.Components["llm"])
		require.EqualValues(t, 3, body.Metrics["assessments_loaded"])
	})

	t.Run("empty catalog is unhealthy", func(t *testing.T) {
		h := newTestHandler(t, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "unhealthy", body.Status)
		require.Equal(t, "empty", body.Components["catalog"])
	})
}

func TestStats(t *testing.T) {
	h := newTestHandler(t, testCatalog())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 3, body.Total)
	require.Equal(t, 2, body.TestTypes[catalog.TypeKnowledge])
	require.Equal(t, 25, body.DurationMin)
	require.Equal(t, 45, body.DurationMax)
	require.Contains(t, body.Method, "keyword")
	require.NotNil(t, body.Engine)
}

func TestIndexPage(t *testing.T) {
	h := newTestHandler(t, testCatalog())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "Assessment Recommender")
	require.Contains(t, rec.Body.String(), "/api/recommend")
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t, testCatalog())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_gc_duration_seconds")
}

func TestRecommendTool(t *testing.T) {
	engine.Init(engine.Config{Catalog: testCatalog()})

	_, out, err := recommendTool(context.Background(), nil, engine.RecommendRequest{
		Query:  "java developer",
		FinalK: 1,
	})
	require.NoError(t, err)
	require.Len(t, out.Recommended, 1)
	require.Equal(t, "Java Developer Test", out.Recommended[0].Name)
}

func TestCatalogStatsTool(t *testing.T) {
	engine.Init(engine.Config{Catalog: testCatalog()})

	_, stats, err := catalogStatsTool(context.Background(), nil, catalogStatsInput{})
	require.NoError(t, err)
	require.Equal(t, 3, stats.Total)
}
