package tools

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/raphaelgruber/contentpilot/internal/config"
	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/raphaelgruber/contentpilot/internal/service"
	"github.com/samber/lo"
)

// GenerateContentInput defines the input schema for the generate_content tool.
type GenerateContentInput struct {
	Prompt        string `json:"prompt" jsonschema:"required,What to write about the product"`
	SessionID     string `json:"session_id,omitempty" jsonschema:"Continue an existing session; omit to start a new one"`
	Mode          string `json:"mode,omitempty" jsonschema:"standard, viral or competitor (default standard)"`
	Platform      string `json:"platform,omitempty" jsonschema:"Target platform key, see list_platforms"`
	ImagePath     string `json:"image_path,omitempty" jsonschema:"Local path to a product photo"`
	ImageBase64   string `json:"image_base64,omitempty" jsonschema:"Base64-encoded product photo"`
	ImageMIMEType string `json:"image_mime_type,omitempty" jsonschema:"MIME type of image_base64, sniffed when omitted"`
}

// GenerateContentResult is the response from the generate_content tool.
type GenerateContentResult struct {
	SessionID  string                    `json:"session_id"`
	MessageID  string                    `json:"message_id"`
	Content    string                    `json:"content"`
	Extracted  bool                      `json:"extracted"`
	Structured *models.StructuredContent `json:"structured_content,omitempty"`
}

// NewGenerateContentHandler runs one turn against a new or existing session.
func NewGenerateContentHandler(deps *Dependencies, cfg *config.Config) mcp.ToolHandlerFor[GenerateContentInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GenerateContentInput) (
		*mcp.CallToolResult, any, error,
	) {
		image, err := loadImage(input)
		if err != nil {
			return ErrorResult("Failed to read image", err.Error()), nil, nil
		}

		session, sel, created, errResult := resolveSession(deps, cfg, input)
		if errResult != nil {
			return errResult, nil, nil
		}

		out := session.SubmitWith(ctx, sel, service.Turn{Prompt: input.Prompt, Image: image})
		if out.Err != nil {
			deps.Logger.Warn("generate_content failed", "session_id", session.ID, "error", out.Err)
			if out.User == nil {
				// Rejected before anything was committed.
				if created {
					_ = deps.Sessions.Delete(session.ID)
				}
				return serviceErrorResult(out.Err), nil, nil
			}
			return withSessionID(serviceErrorResult(out.Err), session.ID), nil, nil
		}

		deps.Logger.Info("generate_content completed", "session_id", session.ID, "extracted", out.Extracted)
		return JSONResult(GenerateContentResult{
			SessionID:  session.ID,
			MessageID:  out.Reply.ID,
			Content:    out.Reply.Content,
			Extracted:  out.Extracted,
			Structured: out.Reply.Structured,
		}), nil, nil
	}
}

// resolveSession returns the requested session and the mode and platform
// switches to submit with, or a fresh session. created reports the latter.
func resolveSession(deps *Dependencies, cfg *config.Config, input GenerateContentInput) (
	session *service.Session, sel service.Selection, created bool, errResult *mcp.CallToolResult,
) {
	var platform *models.Platform
	if input.Platform != "" {
		p, err := models.ParsePlatform(input.Platform)
		if err != nil {
			return nil, sel, false, serviceErrorResult(err)
		}
		platform = &p
	}

	if input.SessionID == "" {
		mode, err := models.ParseMode(input.Mode)
		if err != nil {
			return nil, sel, false, serviceErrorResult(err)
		}
		if platform == nil && cfg != nil {
			platform = cfg.InitialPlatform()
		}
		session, err := deps.Sessions.Create(mode, platform)
		if err != nil {
			return nil, sel, false, serviceErrorResult(err)
		}
		return session, sel, true, nil
	}

	session, err := deps.Sessions.Get(input.SessionID)
	if err != nil {
		return nil, sel, false, serviceErrorResult(err)
	}
	if input.Mode != "" {
		mode, err := models.ParseMode(input.Mode)
		if err != nil {
			return nil, sel, false, serviceErrorResult(err)
		}
		sel.Mode = &mode
	}
	sel.Platform = platform
	return session, sel, false, nil
}

func loadImage(input GenerateContentInput) (*models.Image, error) {
	switch {
	case input.ImagePath != "":
		data, err := os.ReadFile(input.ImagePath)
		if err != nil {
			return nil, err
		}
		return &models.Image{Data: data}, nil
	case input.ImageBase64 != "":
		data, err := base64.StdEncoding.DecodeString(input.ImageBase64)
		if err != nil {
			return nil, fmt.Errorf("image_base64 is not valid base64: %w", err)
		}
		return &models.Image{Data: data, MIMEType: input.ImageMIMEType}, nil
	default:
		return nil, nil
	}
}

// SaveContentInput defines the input schema for the save_content tool.
type SaveContentInput struct {
	SessionID string `json:"session_id" jsonschema:"required,Session that produced the message"`
	MessageID string `json:"message_id" jsonschema:"required,Assistant message to save"`
}

// SavedContentResult is one saved record in tool output.
type SavedContentResult struct {
	ID          string          `json:"id"`
	Headline    string          `json:"headline"`
	Description string          `json:"description"`
	CTA         string          `json:"cta"`
	Hashtags    string          `json:"hashtags"`
	Platform    models.Platform `json:"platform"`
	Created     string          `json:"created"`
}

func toSavedContentResult(c models.SavedContent) SavedContentResult {
	return SavedContentResult{
		ID:          c.Key(),
		Headline:    c.Headline,
		Description: c.Description,
		CTA:         c.CTA,
		Hashtags:    c.Hashtags,
		Platform:    c.Platform,
		Created:     c.CreatedAt.Format(time.RFC3339),
	}
}

// NewSaveContentHandler saves the structured payload of a session message.
func NewSaveContentHandler(deps *Dependencies) mcp.ToolHandlerFor[SaveContentInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SaveContentInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.SessionID == "" || input.MessageID == "" {
			return ErrorResult("session_id and message_id are required", "Use the values returned by generate_content"), nil, nil
		}

		saved, err := deps.Library.Save(ctx, input.SessionID, input.MessageID)
		if err != nil {
			return serviceErrorResult(err), nil, nil
		}
		return JSONResult(toSavedContentResult(*saved)), nil, nil
	}
}

// ListSavedContentInput defines the input schema for the list_saved_content tool.
type ListSavedContentInput struct {
	Platform string `json:"platform,omitempty" jsonschema:"Only return content for this platform"`
}

// NewListSavedContentHandler lists the content library.
func NewListSavedContentHandler(deps *Dependencies) mcp.ToolHandlerFor[ListSavedContentInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListSavedContentInput) (
		*mcp.CallToolResult, any, error,
	) {
		var filter *models.Platform
		if input.Platform != "" {
			p, err := models.ParsePlatform(input.Platform)
			if err != nil {
				return serviceErrorResult(err), nil, nil
			}
			filter = &p
		}

		items, err := deps.Library.List(ctx, filter)
		if err != nil {
			deps.Logger.Error("list saved content failed", "error", err)
			return ErrorResult("Failed to list saved content", "The content store may be unavailable"), nil, nil
		}
		if len(items) == 0 {
			return TextResult("No saved content"), nil, nil
		}
		return JSONResult(lo.Map(items, func(c models.SavedContent, _ int) SavedContentResult {
			return toSavedContentResult(c)
		})), nil, nil
	}
}

// ListPlatformsInput is empty; list_platforms takes no arguments.
type ListPlatformsInput struct{}

// NewListPlatformsHandler lists platform keys with their labels.
func NewListPlatformsHandler(deps *Dependencies) mcp.ToolHandlerFor[ListPlatformsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListPlatformsInput) (
		*mcp.CallToolResult, any, error,
	) {
		lines := lo.Map(models.Platforms(), func(p models.Platform, _ int) string {
			return fmt.Sprintf("%s: %s", p, p.Label())
		})
		return TextResult(FormatResults(lines)), nil, nil
	}
}
