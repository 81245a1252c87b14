// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/linkfolio-go/internal/apperr"
	"github.com/olegiv/linkfolio-go/internal/markdown"
	"github.com/olegiv/linkfolio-go/internal/middleware"
	"github.com/olegiv/linkfolio-go/internal/service"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// ArticlesHandler exposes the article composer API.
type ArticlesHandler struct {
	articles *service.ArticleService
}

// NewArticlesHandler creates a new ArticlesHandler.
func NewArticlesHandler(articles *service.ArticleService) *ArticlesHandler {
	return &ArticlesHandler{articles: articles}
}

type articleRequest struct {
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Excerpt      string     `json:"excerpt"`
	Visibility   string     `json:"visibility"`
	Tags         []string   `json:"tags"`
	Published    bool       `json:"published"`
	ScheduledFor *time.Time `json:"scheduledFor"`
}

func (req articleRequest) input() service.ArticleInput {
	return service.ArticleInput{
		Title:        req.Title,
		Content:      req.Content,
		Excerpt:      req.Excerpt,
		Visibility:   req.Visibility,
		Tags:         req.Tags,
		Published:    req.Published,
		ScheduledFor: req.ScheduledFor,
	}
}

// List handles GET /api/articles.
func (h *ArticlesHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	page, perPage := pagination(r)
	offset := int64((page - 1) * perPage)

	articles, total, err := h.articles.List(r.Context(), user.ID, user.ID, int64(perPage), offset)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	pages := int((total + int64(perPage) - 1) / int64(perPage))
	WriteSuccess(w, articles, &Meta{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   pages,
	})
}

// Create handles POST /api/articles.
func (h *ArticlesHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req articleRequest
	if err := decodeBody(r, &req); err != nil {
		WriteAppError(w, err)
		return
	}

	article, err := h.articles.Create(r.Context(), user.ID, req.input())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteCreated(w, article)
}

// Get handles GET /api/articles/{id}.
func (h *ArticlesHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := articleID(r)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	article, err := h.articles.Get(r.Context(), user.ID, id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, article, nil)
}

// Update handles PUT /api/articles/{id}.
func (h *ArticlesHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := articleID(r)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	var req articleRequest
	if err := decodeBody(r, &req); err != nil {
		WriteAppError(w, err)
		return
	}

	article, err := h.articles.Update(r.Context(), user.ID, id, req.input())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, article, nil)
}

// Delete handles DELETE /api/articles/{id}.
func (h *ArticlesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := articleID(r)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	if err := h.articles.Delete(r.Context(), user.ID, id); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type importRequest struct {
	Markdown string `json:"markdown"`
}

type importResponse struct {
	Content string `json:"content"`
}

// Import handles POST /api/articles/import: converts markdown into sanitized
// article HTML for the composer.
func (h *ArticlesHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeBody(r, &req); err != nil {
		WriteAppError(w, err)
		return
	}
	if req.Markdown == "" {
		WriteAppError(w, apperr.Validation("markdown is required"))
		return
	}

	html, err := markdown.ToHTML(req.Markdown)
	if err != nil {
		WriteAppError(w, apperr.Validation("markdown could not be converted").Wrap(err))
		return
	}
	WriteSuccess(w, importResponse{Content: html}, nil)
}

// articleID parses the {id} route parameter.
func articleID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid article id")
	}
	return id, nil
}

// pagination parses ?page and ?per_page with sane bounds.
func pagination(r *http.Request) (page, perPage int) {
	page = 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	perPage = defaultPerPage
	if v, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && v > 0 {
		perPage = min(v, maxPerPage)
	}
	return page, perPage
}
