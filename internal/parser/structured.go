// Package parser extracts structured content from free-form model replies.
package parser

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/raphaelgruber/contentpilot/internal/models"
)

// leadingFence matches an opening code fence with an optional language tag.
var leadingFence = regexp.MustCompile("^```[ \t]*[A-Za-z0-9_+-]*[ \t]*\r?\n?")

// TryParseStructured extracts a StructuredContent from raw model output.
//
// Markdown code fences around the payload are tolerated. Any syntax or schema
// failure yields false; malformed input is an expected outcome, not an error.
func TryParseStructured(raw string) (models.StructuredContent, bool) {
	body := StripCodeFence(raw)
	if body == "" {
		return models.StructuredContent{}, false
	}

	var content models.StructuredContent
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	if err := dec.Decode(&content); err != nil {
		return models.StructuredContent{}, false
	}
	// Trailing data after the object means the reply was not a single payload.
	if dec.More() {
		return models.StructuredContent{}, false
	}

	if err := Validate(content); err != nil {
		return models.StructuredContent{}, false
	}
	return content, true
}

// StripCodeFence trims whitespace and removes a leading ``` or ```lang fence
// and a trailing ``` fence when present.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = leadingFence.ReplaceAllString(s, "")
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

// Validate checks the five required fields and the platform enumeration.
func Validate(c models.StructuredContent) error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Headline, validation.Required),
		validation.Field(&c.Description, validation.Required),
		validation.Field(&c.CTA, validation.Required),
		validation.Field(&c.Hashtags, validation.Required),
		validation.Field(&c.Platform, validation.Required, validation.By(validPlatform)),
	)
}

func validPlatform(value interface{}) error {
	p, _ := value.(models.Platform)
	if !p.Valid() {
		return validation.NewError("validation_platform_unknown", "must be a supported platform")
	}
	return nil
}
