package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pagescout/pagescout/internal/api"
)

// makeSearchHandler creates the search_page tool handler. It runs the full
// pipeline and returns the same uniform {results, error} shape as the HTTP
// API: pipeline failures become a message in the output, not a tool error,
// so the server keeps serving subsequent calls.
func makeSearchHandler(s api.PageSearcher) func(
	context.Context, *mcp.CallToolRequest, SearchPageInput,
) (*mcp.CallToolResult, SearchPageOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchPageInput) (
		*mcp.CallToolResult, SearchPageOutput, error,
	) {
		matches, err := s.Search(ctx, input.URL, input.Query)
		if err != nil {
			return nil, SearchPageOutput{
				Results: []PageMatch{},
				Error:   api.ErrorMessage(err),
			}, nil
		}

		results := make([]PageMatch, 0, len(matches))
		for _, m := range matches {
			results = append(results, PageMatch{
				Content: m.Content,
				HTML:    m.HTML,
				Score:   m.Score,
				Path:    m.Path,
			})
		}

		return nil, SearchPageOutput{Results: results}, nil
	}
}
