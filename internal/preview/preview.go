// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package preview renders a block list to HTML. The same pure function backs
// the editor's live preview and the public page, so what the creator sees is
// what visitors get.
package preview

import (
	"fmt"
	"html/template"
	"net/url"
	"regexp"
	"strings"

	"github.com/olegiv/linkfolio-go/internal/model"
)

var (
	youtubeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6,20}$`)
	spotifyIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{10,40}$`)
)

// Render maps an ordered block list to HTML. Unknown block types render
// nothing: the renderer fails soft by omission so stored documents survive
// schema growth without breaking the page.
func Render(blocks []model.Block) template.HTML {
	var sb strings.Builder
	for _, block := range blocks {
		sb.WriteString(renderBlock(block))
	}
	return template.HTML(sb.String()) // #nosec G203 -- fragments escape all user input
}

func renderBlock(block model.Block) string {
	switch b := block.(type) {
	case *model.HeadingBlock:
		return renderHeading(b)
	case *model.ParagraphBlock:
		return renderParagraph(b)
	case *model.LinkBlock:
		return renderLink(b)
	case *model.ButtonBlock:
		return renderButton(b)
	case *model.ImageBlock:
		return renderImage(b)
	case *model.EmbedBlock:
		return renderEmbed(b)
	case *model.SpotifyBlock:
		return renderSpotify(b)
	case *model.ListBlock:
		return renderList(b)
	case *model.SpacerBlock:
		return renderSpacer(b)
	case *model.ProjectsBlock:
		return renderProjects(b)
	default:
		return ""
	}
}

// esc escapes text content for safe interpolation.
func esc(s string) string {
	return template.HTMLEscapeString(s)
}

func renderHeading(b *model.HeadingBlock) string {
	// Levels 1-3 map to h2-h4 on the page; h1 is reserved for the profile name.
	tag := fmt.Sprintf("h%d", b.Level+1)
	return fmt.Sprintf(`<%s class="block-heading heading-%d align-%s">%s</%s>`,
		tag, b.Level, esc(b.Align), esc(b.Text), tag)
}

func renderParagraph(b *model.ParagraphBlock) string {
	return fmt.Sprintf(`<p class="block-paragraph align-%s">%s</p>`, esc(b.Align), esc(b.Text))
}

func renderLink(b *model.LinkBlock) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<a class="block-link" href="%s" target="_blank" rel="noopener noreferrer">`, esc(b.URL)))
	sb.WriteString(fmt.Sprintf(`<span class="link-title">%s</span>`, esc(b.Title)))
	if b.IsNsfw {
		sb.WriteString(`<span class="nsfw-badge">NSFW</span>`)
	}
	if b.Description != "" {
		sb.WriteString(fmt.Sprintf(`<span class="link-description">%s</span>`, esc(b.Description)))
	}
	sb.WriteString(`</a>`)
	return sb.String()
}

func renderButton(b *model.ButtonBlock) string {
	return fmt.Sprintf(`<a class="block-button" href="%s" target="_blank" rel="noopener noreferrer">%s</a>`,
		esc(b.URL), esc(b.Label))
}

func renderImage(b *model.ImageBlock) string {
	var sb strings.Builder
	sb.WriteString(`<figure class="block-image">`)
	img := fmt.Sprintf(`<img src="%s" alt="%s">`, esc(b.Src), esc(b.Alt))
	if b.LinkURL != "" {
		sb.WriteString(fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer">%s</a>`, esc(b.LinkURL), img))
	} else {
		sb.WriteString(img)
	}
	if b.Caption != "" {
		sb.WriteString(fmt.Sprintf(`<figcaption>%s</figcaption>`, esc(b.Caption)))
	}
	sb.WriteString(`</figure>`)
	return sb.String()
}

func renderEmbed(b *model.EmbedBlock) string {
	if id, ok := YouTubeVideoID(b.URL); ok {
		return fmt.Sprintf(`<div class="block-embed embed-youtube"><iframe src="https://www.youtube-nocookie.com/embed/%s" title="%s" allowfullscreen loading="lazy"></iframe></div>`,
			esc(id), esc(b.Title))
	}
	return linkCard("block-embed embed-card", b.URL, cardTitle(b.Title, b.URL), "")
}

func renderSpotify(b *model.SpotifyBlock) string {
	if b.UseEmbed {
		if id, ok := SpotifyTrackID(b.URL); ok {
			return fmt.Sprintf(`<div class="block-spotify spotify-embed"><iframe src="https://open.spotify.com/embed/track/%s" title="%s" loading="lazy"></iframe></div>`,
				esc(id), esc(b.Title))
		}
	}
	subtitle := b.Artist
	return linkCard("block-spotify spotify-card", b.URL, b.Title, subtitle)
}

func renderList(b *model.ListBlock) string {
	tag := "ul"
	if b.Ordered {
		tag = "ol"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<%s class="block-list">`, tag))
	for _, item := range b.Items {
		sb.WriteString(fmt.Sprintf(`<li>%s</li>`, esc(item)))
	}
	sb.WriteString(fmt.Sprintf(`</%s>`, tag))
	return sb.String()
}

func renderSpacer(b *model.SpacerBlock) string {
	return fmt.Sprintf(`<div class="block-spacer" style="height:%dpx" aria-hidden="true"></div>`, b.Height)
}

func renderProjects(b *model.ProjectsBlock) string {
	var sb strings.Builder
	sb.WriteString(`<section class="block-projects">`)
	sb.WriteString(fmt.Sprintf(`<h3>%s</h3>`, esc(b.Title)))
	for _, item := range b.Items {
		sb.WriteString(`<article class="project-item">`)
		if item.ImageURL != "" {
			sb.WriteString(fmt.Sprintf(`<img src="%s" alt="%s">`, esc(item.ImageURL), esc(item.Title)))
		}
		sb.WriteString(fmt.Sprintf(`<h4>%s</h4>`, esc(item.Title)))
		if item.Description != "" {
			sb.WriteString(fmt.Sprintf(`<p>%s</p>`, esc(item.Description)))
		}
		if len(item.Tags) > 0 {
			sb.WriteString(`<ul class="project-tags">`)
			for _, tag := range item.Tags {
				sb.WriteString(fmt.Sprintf(`<li>%s</li>`, esc(tag)))
			}
			sb.WriteString(`</ul>`)
		}
		if item.DemoURL != "" {
			sb.WriteString(fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer">Demo</a>`, esc(item.DemoURL)))
		}
		if item.RepoURL != "" {
			sb.WriteString(fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer">Source</a>`, esc(item.RepoURL)))
		}
		sb.WriteString(`</article>`)
	}
	sb.WriteString(`</section>`)
	return sb.String()
}

// linkCard renders the generic clickable card used when an embed URL cannot
// be turned into a structured embed. It never errors, even on malformed URLs.
func linkCard(class, href, title, subtitle string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<a class="%s" href="%s" target="_blank" rel="noopener noreferrer">`, class, esc(href)))
	sb.WriteString(fmt.Sprintf(`<span class="card-title">%s</span>`, esc(title)))
	if subtitle != "" {
		sb.WriteString(fmt.Sprintf(`<span class="card-subtitle">%s</span>`, esc(subtitle)))
	}
	sb.WriteString(`</a>`)
	return sb.String()
}

// cardTitle prefers the explicit title, falling back to the URL's host.
func cardTitle(title, rawURL string) string {
	if title != "" {
		return title
	}
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		return u.Host
	}
	return rawURL
}

// YouTubeVideoID extracts a video id from the common YouTube URL shapes:
// youtube.com/watch?v=ID, youtu.be/ID, and youtube.com/embed/ID. Returns
// false for anything it cannot parse.
func YouTubeVideoID(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtube.com", "youtube-nocookie.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/embed/"):
			id = strings.TrimPrefix(u.Path, "/embed/")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = strings.TrimPrefix(u.Path, "/shorts/")
		}
	case "youtu.be":
		id = strings.TrimPrefix(u.Path, "/")
	default:
		return "", false
	}

	id = strings.Trim(id, "/")
	if !youtubeIDPattern.MatchString(id) {
		return "", false
	}
	return id, true
}

// SpotifyTrackID extracts the track id from open.spotify.com/track/<id> URLs.
func SpotifyTrackID(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	if strings.TrimPrefix(strings.ToLower(u.Host), "www.") != "open.spotify.com" {
		return "", false
	}

	// Paths may carry a locale segment: /intl-de/track/<id>.
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part == "track" && i+1 < len(parts) {
			id := parts[i+1]
			if spotifyIDPattern.MatchString(id) {
				return id, true
			}
			return "", false
		}
	}
	return "", false
}
