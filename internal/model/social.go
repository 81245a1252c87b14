// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"

	"github.com/olegiv/linkfolio-go/internal/apperr"
)

// PlatformCustomLink is the catalog entry for user-named links.
const PlatformCustomLink = "Custom Link"

// socialPlatforms is the fixed catalog of supported social icons.
var socialPlatforms = map[string]struct{}{
	"Twitter":        {},
	"Instagram":      {},
	"YouTube":        {},
	"Twitch":         {},
	"TikTok":         {},
	"GitHub":         {},
	"LinkedIn":       {},
	"Discord":        {},
	"Bluesky":        {},
	"Mastodon":       {},
	"Facebook":       {},
	"Reddit":         {},
	"Patreon":        {},
	"Ko-fi":          {},
	"OnlyFans":       {},
	"Fansly":         {},
	"Website":        {},
	PlatformCustomLink: {},
}

// nsfwCapablePlatforms lists the platforms that may carry the NSFW flag.
var nsfwCapablePlatforms = map[string]struct{}{
	"OnlyFans":       {},
	"Fansly":         {},
	"Reddit":         {},
	"Twitter":        {},
	PlatformCustomLink: {},
}

// SavedSocial is one social/profile link on a links page.
type SavedSocial struct {
	IconName   string `json:"iconName"`
	URL        string `json:"url"`
	CustomName string `json:"customName,omitempty"`
	IsNsfw     bool   `json:"isNsfw,omitempty"`
}

// IsKnownPlatform reports whether name exists in the platform catalog.
func IsKnownPlatform(name string) bool {
	_, ok := socialPlatforms[name]
	return ok
}

// IsNsfwCapable reports whether the platform may carry the NSFW flag.
func IsNsfwCapable(name string) bool {
	_, ok := nsfwCapablePlatforms[name]
	return ok
}

// Normalize trims fields and clears the NSFW flag on platforms that cannot
// carry it.
func (s *SavedSocial) Normalize() {
	s.IconName = strings.TrimSpace(s.IconName)
	s.URL = strings.TrimSpace(s.URL)
	s.CustomName = strings.TrimSpace(s.CustomName)
	if !IsNsfwCapable(s.IconName) {
		s.IsNsfw = false
	}
}

// Validate checks the social entry after normalization.
func (s *SavedSocial) Validate() error {
	if !IsKnownPlatform(s.IconName) {
		return apperr.Validation("unknown social platform %q", s.IconName)
	}
	if err := validateURLField("social url", s.URL); err != nil {
		return err
	}
	if s.IconName == PlatformCustomLink && s.CustomName == "" {
		return apperr.Validation("custom links need a name")
	}
	return nil
}

// DisplayName returns the label shown for this entry: the custom name for
// custom links, otherwise the platform name.
func (s SavedSocial) DisplayName() string {
	if s.IconName == PlatformCustomLink && s.CustomName != "" {
		return s.CustomName
	}
	return s.IconName
}

// NormalizeSocials normalizes and validates a full socials array.
func NormalizeSocials(socials []SavedSocial) ([]SavedSocial, error) {
	out := make([]SavedSocial, 0, len(socials))
	for i := range socials {
		s := socials[i]
		s.Normalize()
		if err := s.Validate(); err != nil {
			return nil, apperr.Validation("social %d: %s", i, err.Error())
		}
		out = append(out, s)
	}
	return out, nil
}
