package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// PingInput defines the input schema for the ping tool.
type PingInput struct {
	Echo string `json:"echo,omitempty" jsonschema:"Text to echo back"`
}

// NewPingHandler answers "pong" with the number of open sessions, or echoes input.
func NewPingHandler(deps *Dependencies) mcp.ToolHandlerFor[PingInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input PingInput) (*mcp.CallToolResult, any, error) {
		if input.Echo != "" {
			return TextResult(input.Echo), nil, nil
		}
		if deps == nil || deps.Sessions == nil {
			return TextResult("pong"), nil, nil
		}
		open := len(deps.Sessions.List())
		deps.Logger.Debug("ping", "sessions", open)
		return TextResult(fmt.Sprintf("pong (%d open sessions)", open)), nil, nil
	}
}
