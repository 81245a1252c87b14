// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/linkfolio-go/internal/analytics"
	"github.com/olegiv/linkfolio-go/internal/apperr"
	"github.com/olegiv/linkfolio-go/internal/cache"
	"github.com/olegiv/linkfolio-go/internal/model"
	"github.com/olegiv/linkfolio-go/internal/preview"
	"github.com/olegiv/linkfolio-go/internal/sanitize"
	"github.com/olegiv/linkfolio-go/internal/service"
	"github.com/olegiv/linkfolio-go/internal/util"
)

// pageTemplate renders the public profile page. Block markup is produced by
// the preview renderer; everything else is escaped here.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Name}}</title>
</head>
<body>
<main class="profile">
<header>
{{if .AvatarURL}}<img class="avatar" src="{{.AvatarURL}}" alt="{{.Name}}">{{end}}
<h1>{{.Name}}</h1>
{{if .Bio}}<p class="bio">{{.Bio}}</p>{{end}}
{{if .Socials}}<ul class="socials">
{{range .Socials}}<li><a href="{{.URL}}" rel="noopener noreferrer nofollow" target="_blank">{{.DisplayName}}</a>{{if .IsNsfw}} <span class="nsfw-badge">NSFW</span>{{end}}</li>
{{end}}</ul>{{end}}
</header>
<section class="blocks">
{{.Blocks}}
</section>
</main>
</body>
</html>
`))

// articleTemplate renders a public article page. Content is sanitized before
// it is marked safe.
var articleTemplate = template.Must(template.New("article").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{if .Excerpt}}<meta name="description" content="{{.Excerpt}}">{{end}}
</head>
<body>
<main class="article">
<article>{{.Content}}</article>
</main>
</body>
</html>
`))

type pageData struct {
	Name      string
	Bio       string
	AvatarURL string
	Socials   []socialView
	Blocks    template.HTML
}

type socialView struct {
	URL         string
	DisplayName string
	IsNsfw      bool
}

type articleData struct {
	Title   string
	Excerpt string
	Content template.HTML
}

// PublicHandler serves the public profile and article pages.
type PublicHandler struct {
	links    *service.LinksService
	articles *service.ArticleService
	tracker  *analytics.ViewTracker
	cache    cache.Cache
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(links *service.LinksService, articles *service.ArticleService, tracker *analytics.ViewTracker, c cache.Cache) *PublicHandler {
	return &PublicHandler{links: links, articles: articles, tracker: tracker, cache: c}
}

// pageCacheKey builds the cache key for a handle's rendered page.
func pageCacheKey(handle string) string {
	return "page:" + handle
}

// Page handles GET /@{handle}.
func (h *PublicHandler) Page(w http.ResponseWriter, r *http.Request) {
	handle := util.NormalizeHandle(chi.URLParam(r, "handle"))

	if h.cache != nil {
		if body, err := h.cache.Get(r.Context(), pageCacheKey(handle)); err == nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write(body)
			return
		}
	}

	doc, err := h.links.GetByHandle(r.Context(), handle)
	if err != nil || !doc.Published {
		// Unpublished pages are indistinguishable from missing ones.
		http.NotFound(w, r)
		if err != nil && !apperr.Is(err, apperr.CodeNotFound) {
			slog.Error("failed to load public page", "error", err, "handle", handle)
		}
		return
	}

	socials := make([]socialView, 0, len(doc.Socials))
	for _, s := range doc.Socials {
		socials = append(socials, socialView{
			URL:         s.URL,
			DisplayName: s.DisplayName(),
			IsNsfw:      s.IsNsfw,
		})
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, pageData{
		Name:      doc.Name,
		Bio:       doc.Bio,
		AvatarURL: doc.AvatarURL,
		Socials:   socials,
		Blocks:    preview.Render(doc.Blocks),
	})
	if err != nil {
		slog.Error("failed to render public page", "error", err, "handle", handle)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), pageCacheKey(handle), buf.Bytes(), 0); err != nil {
			slog.Warn("failed to cache public page", "error", err, "handle", handle)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// Article handles GET /@{handle}/{slug}.
func (h *PublicHandler) Article(w http.ResponseWriter, r *http.Request) {
	handle := util.NormalizeHandle(chi.URLParam(r, "handle"))
	slug := chi.URLParam(r, "slug")

	doc, err := h.links.GetByHandle(r.Context(), handle)
	if err != nil || !doc.Published {
		http.NotFound(w, r)
		return
	}

	article, err := h.articles.GetBySlug(r.Context(), doc.UserID, slug)
	if err != nil {
		if errors.As(err, new(*apperr.Error)) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to load article page", "error", err, "handle", handle, "slug", slug)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !article.Published || article.Visibility != model.VisibilityPublic {
		http.NotFound(w, r)
		return
	}

	var buf bytes.Buffer
	err = articleTemplate.Execute(&buf, articleData{
		Title:   article.Title,
		Excerpt: article.Excerpt,
		// Stored rows are never trusted: sanitize again at render time.
		Content: template.HTML(sanitize.Sanitize(article.Content)), // #nosec G203 -- sanitized above
	})
	if err != nil {
		slog.Error("failed to render article page", "error", err, "article_id", article.ID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.tracker.TrackArticleView(r.Context(), article.ID, r.UserAgent())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
