package tools

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/raphaelgruber/contentpilot/internal/service"
)

// ErrorResult creates a tool error result with optional recovery hint.
// If hint is non-empty, formats as "{msg}. {hint}" with a single period.
// Returns IsError=true so LLM can see the error and self-correct.
func ErrorResult(msg, hint string) *mcp.CallToolResult {
	text := msg
	if hint != "" {
		text = strings.TrimRight(msg, ". ") + ". " + hint
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}

// withSessionID names the session a failed turn was recorded in, so the
// caller can resubmit against it.
func withSessionID(result *mcp.CallToolResult, sessionID string) *mcp.CallToolResult {
	if text, ok := result.Content[0].(*mcp.TextContent); ok {
		text.Text += " (session_id: " + sessionID + ")"
	}
	return result
}

// TextResult creates a success result with text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// JSONResult renders v as indented JSON text.
func JSONResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ErrorResult("Failed to encode result", err.Error())
	}
	return TextResult(string(data))
}

// FormatResults joins items with newlines for list output.
func FormatResults(items []string) string {
	return strings.Join(items, "\n")
}

// serviceErrorResult turns a domain error into a tool error with a hint the
// calling model can act on.
func serviceErrorResult(err error) *mcp.CallToolResult {
	msg := service.UserMessage(err)
	switch {
	case errors.Is(err, service.ErrImageRequired):
		return ErrorResult(msg, "Pass image_path or image_base64 on the first standard-mode turn")
	case errors.Is(err, models.ErrUnknownPlatform):
		return ErrorResult(msg, "Call list_platforms for valid values")
	case errors.Is(err, models.ErrUnknownMode):
		return ErrorResult(msg, "Use standard, viral or competitor")
	case errors.Is(err, service.ErrSessionNotFound):
		return ErrorResult(msg, "Omit session_id to start a new session")
	case errors.Is(err, service.ErrNoStructuredContent):
		return ErrorResult(msg, "Only standard-mode replies with extracted content can be saved")
	case errors.Is(err, service.ErrTurnInFlight):
		return ErrorResult(msg, "Wait for the previous generate_content call to finish")
	default:
		return ErrorResult(msg, "")
	}
}
