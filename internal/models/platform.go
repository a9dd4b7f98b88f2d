// Package models defines data structures for the contentpilot conversation core.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPlatform is returned when a platform key is not in the closed set.
var ErrUnknownPlatform = errors.New("unknown platform")

// Platform is a publishing target for generated content.
type Platform string

const (
	PlatformInstagram   Platform = "instagram"
	PlatformFacebook    Platform = "facebook"
	PlatformTikTok      Platform = "tiktok"
	PlatformTwitter     Platform = "twitter"
	PlatformLinkedIn    Platform = "linkedin"
	PlatformMarketplace Platform = "marketplace"
	PlatformEcommerce   Platform = "ecommerce"
)

var platforms = []Platform{
	PlatformInstagram,
	PlatformFacebook,
	PlatformTikTok,
	PlatformTwitter,
	PlatformLinkedIn,
	PlatformMarketplace,
	PlatformEcommerce,
}

var platformLabels = map[Platform]string{
	PlatformInstagram:   "Instagram",
	PlatformFacebook:    "Facebook",
	PlatformTikTok:      "TikTok",
	PlatformTwitter:     "Twitter/X",
	PlatformLinkedIn:    "LinkedIn",
	PlatformMarketplace: "Marketplace",
	PlatformEcommerce:   "E-commerce",
}

// Platforms returns the closed platform set in display order.
func Platforms() []Platform {
	out := make([]Platform, len(platforms))
	copy(out, platforms)
	return out
}

// Valid reports whether p belongs to the closed platform set.
func (p Platform) Valid() bool {
	_, ok := platformLabels[p]
	return ok
}

// Label returns the human-readable platform name.
// Unknown values fall back to the raw key.
func (p Platform) Label() string {
	if label, ok := platformLabels[p]; ok {
		return label
	}
	return string(p)
}

func (p Platform) String() string {
	return string(p)
}

// ParsePlatform resolves a platform key. Matching is case-insensitive
// and ignores surrounding whitespace.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
	}
	return p, nil
}
