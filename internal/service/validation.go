package service

import (
	"fmt"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/samber/lo"
)

// Limits bounds what a turn may carry.
type Limits struct {
	MaxPromptChars int
	MaxImageBytes  int
}

// DefaultLimits matches the submission contract: 2000 characters, 5MB.
func DefaultLimits() Limits {
	return Limits{
		MaxPromptChars: 2000,
		MaxImageBytes:  5 << 20,
	}
}

// withDefaults fills each unset limit from DefaultLimits.
func (l Limits) withDefaults() Limits {
	def := DefaultLimits()
	if l.MaxPromptChars <= 0 {
		l.MaxPromptChars = def.MaxPromptChars
	}
	if l.MaxImageBytes <= 0 {
		l.MaxImageBytes = def.MaxImageBytes
	}
	return l
}

// SupportedImageTypes lists the accepted attachment formats.
var SupportedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// Submission is the stateless conversation request.
type Submission struct {
	Prompt   string               `json:"prompt"`
	History  []models.HistoryTurn `json:"history,omitempty"`
	Image    *models.Image        `json:"image,omitempty"`
	Platform *models.Platform     `json:"platform,omitempty"`
	Mode     models.Mode          `json:"mode,omitempty"`
}

// Validate checks the fields that do not depend on conversation state.
func (s Submission) Validate() error {
	if s.Mode != "" && !s.Mode.Valid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownMode, s.Mode)
	}
	if s.Platform != nil && !s.Platform.Valid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownPlatform, *s.Platform)
	}
	for i, turn := range s.History {
		if turn.Role != models.HistoryRoleUser && turn.Role != models.HistoryRoleModel {
			return fmt.Errorf("%w: history[%d] has role %q", ErrValidation, i, turn.Role)
		}
	}
	return nil
}

// validateTurn checks prompt and image against the limits and returns the
// image normalized to its sniffed MIME type.
func (l Limits) validateTurn(turn Turn) (*models.Image, error) {
	prompt := strings.TrimSpace(turn.Prompt)
	if err := validation.Validate(prompt, validation.Required); err != nil {
		return nil, ErrPromptEmpty
	}
	if err := validation.Validate(turn.Prompt, validation.RuneLength(0, l.MaxPromptChars)); err != nil {
		return nil, fmt.Errorf("%w: %d characters allowed", ErrPromptTooLong, l.MaxPromptChars)
	}

	if turn.Image == nil {
		return nil, nil
	}
	if len(turn.Image.Data) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrImageType)
	}
	if err := validation.Validate(turn.Image.Data, validation.Length(0, l.MaxImageBytes)); err != nil {
		return nil, fmt.Errorf("%w: %d bytes allowed", ErrImageTooLarge, l.MaxImageBytes)
	}

	sniffed := http.DetectContentType(turn.Image.Data)
	if err := validation.Validate(sniffed, validation.In(lo.ToAnySlice(SupportedImageTypes)...)); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrImageType, sniffed)
	}

	return &models.Image{Data: turn.Image.Data, MIMEType: sniffed}, nil
}
