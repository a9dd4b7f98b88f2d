package parser

import (
	"strings"

	"github.com/raphaelgruber/contentpilot/internal/models"
)

const (
	ctaMarker      = "👉 "
	platformMarker = "📱 Plataforma: "
)

// FormatDisplay renders structured content as chat display text.
// The layout is fixed so the same payload always renders identically.
func FormatDisplay(c models.StructuredContent) string {
	sections := []string{
		"**" + c.Headline + "**",
		c.Description,
		ctaMarker + c.CTA,
		c.Hashtags,
		platformMarker + c.Platform.Label(),
	}
	return strings.Join(sections, "\n\n")
}
