package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode is returned when a mode key is not in the closed set.
var ErrUnknownMode = errors.New("unknown mode")

// Mode is the behavioral contract governing prompt choice and
// whether structured extraction is attempted for a turn.
type Mode string

const (
	// ModeStandard produces structured marketing copy.
	ModeStandard Mode = "standard"
	// ModeViral answers trend questions in free text.
	ModeViral Mode = "viral"
	// ModeCompetitor analyzes a competitor in free text.
	ModeCompetitor Mode = "competitor"
)

// DefaultMode is used when a submission does not name a mode.
const DefaultMode = ModeStandard

var modes = []Mode{ModeStandard, ModeViral, ModeCompetitor}

// Modes returns the closed mode set in declaration order.
func Modes() []Mode {
	out := make([]Mode, len(modes))
	copy(out, modes)
	return out
}

// Valid reports whether m belongs to the closed mode set.
func (m Mode) Valid() bool {
	for _, known := range modes {
		if m == known {
			return true
		}
	}
	return false
}

func (m Mode) String() string {
	return string(m)
}

// ParseMode resolves a mode key. An empty key yields DefaultMode.
func ParseMode(s string) (Mode, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" {
		return DefaultMode, nil
	}
	m := Mode(trimmed)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}
