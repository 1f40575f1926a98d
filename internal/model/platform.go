package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPlatform is returned by ParsePlatform for names that are not
// one of the supported upload targets.
var ErrUnknownPlatform = errors.New("unknown platform")

// Platform identifies a social media upload target.
type Platform string

// Supported upload targets.
const (
	// PlatformYouTube uploads videos through the YouTube Data API.
	PlatformYouTube Platform = "youtube"
	// PlatformInstagram publishes images through the Instagram Graph API.
	PlatformInstagram Platform = "instagram"
	// PlatformLinkedIn shares text posts through the LinkedIn UGC API.
	PlatformLinkedIn Platform = "linkedin"
	// PlatformTikTok uploads videos through the TikTok open API.
	PlatformTikTok Platform = "tiktok"
)

// AllPlatforms returns every supported platform in a fixed order.
func AllPlatforms() []Platform {
	return []Platform{PlatformYouTube, PlatformInstagram, PlatformLinkedIn, PlatformTikTok}
}

// ParsePlatform converts a user supplied name into a Platform.
// Matching ignores case and surrounding whitespace.
func ParsePlatform(name string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(name)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, name)
	}
	return p, nil
}

// ParsePlatforms parses a list of names, rejecting unknown and repeated ones.
func ParsePlatforms(names []string) ([]Platform, error) {
	seen := make(map[Platform]bool, len(names))
	out := make([]Platform, 0, len(names))
	for _, name := range names {
		p, err := ParsePlatform(name)
		if err != nil {
			return nil, err
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out, nil
}

// String returns the lowercase identifier of the platform.
func (p Platform) String() string {
	return string(p)
}

// IsValid reports whether p is a supported platform.
func (p Platform) IsValid() bool {
	switch p {
	case PlatformYouTube, PlatformInstagram, PlatformLinkedIn, PlatformTikTok:
		return true
	default:
		return false
	}
}

// DisplayName returns the brand spelling of the platform.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformYouTube:
		return "YouTube"
	case PlatformInstagram:
		return "Instagram"
	case PlatformLinkedIn:
		return "LinkedIn"
	case PlatformTikTok:
		return "TikTok"
	default:
		return "Unknown"
	}
}
