// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package preview

import (
	"strings"
	"testing"

	"github.com/olegiv/linkfolio-go/internal/model"
)

func TestYouTubeVideoID(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		id    string
		found bool
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"shorts url", "https://youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"mobile host", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"unrelated host", "https://vimeo.com/12345678", "", false},
		{"watch without id", "https://www.youtube.com/watch", "", false},
		{"malformed id", "https://youtu.be/%%%", "", false},
		{"not a url", "::::", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, found := YouTubeVideoID(tt.url)
			if found != tt.found || id != tt.id {
				t.Errorf("YouTubeVideoID(%q) = (%q, %v), want (%q, %v)", tt.url, id, found, tt.id, tt.found)
			}
		})
	}
}

func TestSpotifyTrackID(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		id    string
		found bool
	}{
		{"track url", "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", "4uLU6hMCjMI75M1A2tKUQC", true},
		{"locale segment", "https://open.spotify.com/intl-de/track/4uLU6hMCjMI75M1A2tKUQC", "4uLU6hMCjMI75M1A2tKUQC", true},
		{"album url", "https://open.spotify.com/album/2up3OPMp9Tb4dAKM2erWXQ", "", false},
		{"wrong host", "https://spotify.example/track/4uLU6hMCjMI75M1A2tKUQC", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, found := SpotifyTrackID(tt.url)
			if found != tt.found || id != tt.id {
				t.Errorf("SpotifyTrackID(%q) = (%q, %v), want (%q, %v)", tt.url, id, found, tt.id, tt.found)
			}
		})
	}
}

func TestRenderHeadingLevels(t *testing.T) {
	// Block levels 1-3 map to h2-h4; h1 stays reserved for the profile name.
	for level, tag := range map[int]string{1: "h2", 2: "h3", 3: "h4"} {
		html := string(Render([]model.Block{
			&model.HeadingBlock{ID: "h", Level: level, Text: "Section", Align: model.AlignLeft},
		}))
		if !strings.Contains(html, "<"+tag+" ") {
			t.Errorf("level %d rendered %q, want tag %s", level, html, tag)
		}
	}
}

func TestRenderLinkNsfwBadge(t *testing.T) {
	flagged := string(Render([]model.Block{
		&model.LinkBlock{ID: "l", Title: "Spicy", URL: "https://example.com", IsNsfw: true},
	}))
	if !strings.Contains(flagged, `<span class="nsfw-badge">NSFW</span>`) {
		t.Errorf("flagged link missing NSFW badge: %q", flagged)
	}

	plain := string(Render([]model.Block{
		&model.LinkBlock{ID: "l", Title: "Safe", URL: "https://example.com"},
	}))
	if strings.Contains(plain, "nsfw-badge") {
		t.Errorf("unflagged link should not carry a badge: %q", plain)
	}
}

func TestRenderEscapesUserText(t *testing.T) {
	html := string(Render([]model.Block{
		&model.ParagraphBlock{ID: "p", Text: `<script>alert("x")</script>`, Align: model.AlignLeft},
	}))
	if strings.Contains(html, "<script>") {
		t.Errorf("user text not escaped: %q", html)
	}
}

func TestRenderEmbedFallsBackToCard(t *testing.T) {
	// An unembeddable URL renders a link card, never an error or empty output.
	html := string(Render([]model.Block{
		&model.EmbedBlock{ID: "e", URL: "https://example.com/some/page", Title: "Some page"},
	}))
	if !strings.Contains(html, "embed-card") {
		t.Errorf("non-YouTube embed should fall back to a card: %q", html)
	}
	if strings.Contains(html, "<iframe") {
		t.Errorf("fallback must not contain an iframe: %q", html)
	}
}

func TestRenderEmbedYouTube(t *testing.T) {
	html := string(Render([]model.Block{
		&model.EmbedBlock{ID: "e", URL: "https://youtu.be/dQw4w9WgXcQ", Title: "Video"},
	}))
	if !strings.Contains(html, "youtube-nocookie.com/embed/dQw4w9WgXcQ") {
		t.Errorf("YouTube embed missing iframe: %q", html)
	}
}

func TestRenderSpotify(t *testing.T) {
	embedded := string(Render([]model.Block{
		&model.SpotifyBlock{ID: "s", Title: "Song", URL: "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", UseEmbed: true},
	}))
	if !strings.Contains(embedded, "open.spotify.com/embed/track/4uLU6hMCjMI75M1A2tKUQC") {
		t.Errorf("UseEmbed should render the iframe: %q", embedded)
	}

	card := string(Render([]model.Block{
		&model.SpotifyBlock{ID: "s", Title: "Song", Artist: "Band", URL: "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC"},
	}))
	if strings.Contains(card, "<iframe") {
		t.Errorf("card mode must not embed: %q", card)
	}
	if !strings.Contains(card, "Band") {
		t.Errorf("card should show the artist: %q", card)
	}
}

func TestRenderSpacerHeight(t *testing.T) {
	html := string(Render([]model.Block{
		&model.SpacerBlock{ID: "s", Height: 48},
	}))
	if !strings.Contains(html, "height:48px") {
		t.Errorf("spacer height not rendered: %q", html)
	}
}

func TestRenderProjectsOmitsAbsentFields(t *testing.T) {
	html := string(Render([]model.Block{
		&model.ProjectsBlock{ID: "p", Title: "Projects", Items: []model.ProjectItem{
			{ID: "p1", Title: "Bare project"},
		}},
	}))
	if strings.Contains(html, "Demo") || strings.Contains(html, "Source") || strings.Contains(html, "<img") {
		t.Errorf("absent optional fields must be omitted: %q", html)
	}
	if !strings.Contains(html, "Bare project") {
		t.Errorf("project title missing: %q", html)
	}
}

func TestRenderPreservesOrder(t *testing.T) {
	html := string(Render([]model.Block{
		&model.ParagraphBlock{ID: "1", Text: "first", Align: model.AlignLeft},
		&model.ParagraphBlock{ID: "2", Text: "second", Align: model.AlignLeft},
	}))
	if strings.Index(html, "first") > strings.Index(html, "second") {
		t.Errorf("blocks rendered out of order: %q", html)
	}
}
