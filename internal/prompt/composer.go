// Package prompt builds the system and user instructions sent to the model.
package prompt

import (
	"fmt"

	"github.com/raphaelgruber/contentpilot/internal/models"
)

// DefaultPlatform is the platform the standard-mode instruction tells the
// model to assume when the user does not name one.
const DefaultPlatform = models.PlatformInstagram

// Profile is the per-mode behavior table entry.
type Profile struct {
	SystemPrompt             string
	AttemptsExtraction       bool
	RequiresImageOnFirstTurn bool
	UsesPlatform             bool
}

// DefaultProfiles returns the built-in profile table.
func DefaultProfiles() map[models.Mode]Profile {
	return map[models.Mode]Profile{
		models.ModeStandard: {
			SystemPrompt:             standardSystemPrompt,
			AttemptsExtraction:       true,
			RequiresImageOnFirstTurn: true,
			UsesPlatform:             true,
		},
		models.ModeViral: {
			SystemPrompt: viralSystemPrompt,
		},
		models.ModeCompetitor: {
			SystemPrompt: competitorSystemPrompt,
		},
	}
}

// Composer resolves mode profiles. It is immutable after construction and
// safe for concurrent use.
type Composer struct {
	profiles map[models.Mode]Profile
}

// NewComposer builds a composer from the default table with optional
// overrides applied. Every mode must end up with a non-empty system prompt.
func NewComposer(overrides *Overrides) (*Composer, error) {
	profiles := DefaultProfiles()
	if overrides != nil {
		if err := overrides.apply(profiles); err != nil {
			return nil, err
		}
	}

	for _, mode := range models.Modes() {
		p, ok := profiles[mode]
		if !ok || p.SystemPrompt == "" {
			return nil, fmt.Errorf("mode %q has no system prompt", mode)
		}
	}

	return &Composer{profiles: profiles}, nil
}

// Default returns a composer with the built-in profiles.
func Default() *Composer {
	c, err := NewComposer(nil)
	if err != nil {
		panic(err)
	}
	return c
}

// Profile returns the profile for mode.
func (c *Composer) Profile(mode models.Mode) (Profile, error) {
	p, ok := c.profiles[mode]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", models.ErrUnknownMode, mode)
	}
	return p, nil
}

// SystemPrompt returns the system instruction for mode, or an empty string
// for a mode outside the closed set.
func (c *Composer) SystemPrompt(mode models.Mode) string {
	return c.profiles[mode].SystemPrompt
}

// UserInstruction prefixes the prompt with a platform tag when one is given.
func UserInstruction(prompt string, platform *models.Platform) string {
	if platform == nil {
		return prompt
	}
	return fmt.Sprintf("[Plataforma: %s] %s", platform.Label(), prompt)
}
