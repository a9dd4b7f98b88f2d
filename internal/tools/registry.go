package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/raphaelgruber/contentpilot/internal/config"
)

// RegisterAll registers all tools with the MCP server.
// This is called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies, cfg *config.Config) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ping",
		Description: "Test tool - responds with pong or echoes input",
	}, NewPingHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_platforms",
		Description: "List the supported social media platforms and their display names",
	}, NewListPlatformsHandler(deps))

	// generate_content runs one conversation turn, creating a session on demand
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_content",
		Description: "Generate social media content for a product. Starts a session unless session_id is given; standard mode needs an image on the first turn",
	}, NewGenerateContentHandler(deps, cfg))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_content",
		Description: "Save the structured content of an assistant message to the content library",
	}, NewSaveContentHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_saved_content",
		Description: "List saved content newest first, optionally filtered by platform",
	}, NewListSavedContentHandler(deps))
}
