package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pagescout/pagescout/internal/api"
)

// Server wraps the MCP server with dependencies.
type Server struct {
	server   *mcp.Server
	searcher api.PageSearcher
}

// Config holds server dependencies.
type Config struct {
	Searcher api.PageSearcher
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "pagescout-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_page",
		Description: "Semantically search the content of a single web page. Fetches the page, indexes its passages, and returns the ones most similar to the query with 0-100 relevance scores.",
	}, makeSearchHandler(cfg.Searcher))

	return &Server{
		server:   server,
		searcher: cfg.Searcher,
	}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
