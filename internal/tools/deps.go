// Package tools provides MCP tool handlers and registration.
package tools

import (
	"log/slog"

	"github.com/raphaelgruber/contentpilot/internal/service"
)

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture.
type Dependencies struct {
	Sessions *service.SessionManager
	Library  *service.ContentLibrary
	Logger   *slog.Logger
}
