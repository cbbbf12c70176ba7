// Package mcpserver exposes the seed engine as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"timeless-mapper/internal/config"
	"timeless-mapper/internal/engine"
	"timeless-mapper/internal/refdata"
)

const serverName = "timeless-mapper"

// Server is an MCP server bound to one set of reference data.
type Server struct {
	mcpServer *mcp.Server
}

// NewServer registers every tool against data.
func NewServer(cfg *config.Config, data *refdata.Data, version string) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil)
	scanner := engine.NewScanner(data.Mapper, cfg.SearchWorkers)

	mcp.AddTool(mcpServer, SocketsTool(), SocketsHandler(scanner))
	mcp.AddTool(mcpServer, SocketRadiusTool(), SocketRadiusHandler(scanner, cfg))
	mcp.AddTool(mcpServer, AnalyzeTool(), AnalyzeHandler(scanner, cfg))
	mcp.AddTool(mcpServer, CompareTool(), CompareHandler(scanner, cfg))
	mcp.AddTool(mcpServer, SearchTool(), SearchHandler(scanner, cfg))
	mcp.AddTool(mcpServer, DistributionTool(), DistributionHandler(scanner, cfg))

	return &Server{mcpServer: mcpServer}
}

// Serve runs the server on stdio until the client disconnects or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
