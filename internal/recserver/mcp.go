package recserver

import (
	"context"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/akoval/go_assess/internal/engine"
	"github.com/akoval/go_assess/internal/engine/catalog"
	"github.com/akoval/go_assess/internal/engine/history"
)

// newMCPServer exposes the recommendation engine over MCP so agents can
// call it as tools instead of raw HTTP.
func newMCPServer(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_assess",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name: "recommend_assessments",
		Description: "Recommend assessments for a hiring query, job description text, " +
			"or a JD URL. Returns up to final_k (1-10, default 5) catalog entries " +
			"ranked by relevance, each with a short justification.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, recommendTool)

	mcp.AddTool(server, &mcp.Tool{
		Name: "catalog_stats",
		Description: "Summarize the loaded assessment catalog: totals, test type " +
			"distribution, duration range, adaptive and remote support counts.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, catalogStatsTool)

	return server
}

func recommendTool(ctx context.Context, _ *mcp.CallToolRequest, input engine.RecommendRequest) (*mcp.CallToolResult, engine.RecommendOutput, error) {
	start := time.Now()
	res, err := engine.Recommend(ctx, input)
	if err != nil {
		return nil, engine.RecommendOutput{}, err
	}

	_ = history.Record(ctx, history.Entry{
		Query:      input.Query,
		Source:     res.Kind,
		Returned:   len(res.Recommended),
		CacheHit:   res.CacheHit,
		LLMUsed:    res.LLMUsed,
		DurationMs: time.Since(start).Milliseconds(),
	})
	return nil, res.RecommendOutput, nil
}

type catalogStatsInput struct{}

func catalogStatsTool(_ context.Context, _ *mcp.CallToolRequest, _ catalogStatsInput) (*mcp.CallToolResult, catalog.Stats, error) {
	return nil, catalog.ComputeStats(engine.Cfg.Catalog), nil
}

// mcpHandler serves the MCP server over streamable HTTP at /mcp.
func mcpHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}
