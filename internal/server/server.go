// Package server exposes the content service over MCP (stdio) and HTTP.
package server

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Name is the implementation name announced to MCP clients.
const Name = "contentpilot"

const instructions = `Generates social media copy for product photos.
Start with generate_content (standard mode needs an image on the first turn),
keep passing the returned session_id for follow-ups, and call save_content on
replies that carry structured content.`

// Server owns the MCP server and its stdio lifecycle.
type Server struct {
	mcp    *mcp.Server
	logger *slog.Logger
}

// New creates an MCP server announcing version.
func New(version string, logger *slog.Logger) *Server {
	return &Server{
		mcp: mcp.NewServer(
			&mcp.Implementation{Name: Name, Version: version},
			&mcp.ServerOptions{Instructions: instructions},
		),
		logger: logger,
	}
}

// Setup installs request logging. Call before registering tools.
func (s *Server) Setup() {
	s.mcp.AddReceivingMiddleware(LoggingMiddleware(s.logger))
}

// MCPServer returns the underlying server for tool registration.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Run serves on stdio until the client disconnects or ctx ends.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server", "transport", "stdio", "name", Name)
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}
