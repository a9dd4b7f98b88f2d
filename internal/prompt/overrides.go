package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/raphaelgruber/contentpilot/internal/models"
	"gopkg.in/yaml.v3"
)

// Overrides replaces built-in system prompts, keyed by mode.
//
//	modes:
//	  viral:
//	    system_prompt: |
//	      ...
type Overrides struct {
	Modes map[string]ModeOverride `yaml:"modes"`
}

// ModeOverride holds the overridable fields of a profile.
type ModeOverride struct {
	SystemPrompt string `yaml:"system_prompt"`
}

// LoadOverrides reads a YAML overrides file.
// An empty path returns nil overrides.
func LoadOverrides(path string) (*Overrides, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}

	return ParseOverrides(data)
}

// ParseOverrides decodes YAML overrides. Unknown fields are rejected.
func ParseOverrides(data []byte) (*Overrides, error) {
	var o Overrides
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse prompts file: %w", err)
	}
	return &o, nil
}

// apply merges the overrides into profiles. Unknown mode keys are
// configuration errors.
func (o *Overrides) apply(profiles map[models.Mode]Profile) error {
	for key, override := range o.Modes {
		mode := models.Mode(key)
		if !mode.Valid() {
			return fmt.Errorf("prompts file: %w: %q", models.ErrUnknownMode, key)
		}
		if override.SystemPrompt == "" {
			continue
		}
		p := profiles[mode]
		p.SystemPrompt = override.SystemPrompt
		profiles[mode] = p
	}
	return nil
}
