// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/olegiv/linkfolio-go/internal/apperr"
	"github.com/olegiv/linkfolio-go/internal/model"
	"github.com/olegiv/linkfolio-go/internal/sanitize"
	"github.com/olegiv/linkfolio-go/internal/store"
	"github.com/olegiv/linkfolio-go/internal/util"
)

// ExcerptLength is the target excerpt size when none is provided.
const ExcerptLength = 200

// firstH1 captures the inner text of the first h1 element.
var firstH1 = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)

// ArticleService manages article drafts and publishing. Content is sanitized
// on every write; renders sanitize again so stored rows are never trusted.
type ArticleService struct {
	queries *store.Queries
	now     func() time.Time
}

// NewArticleService creates a new ArticleService.
func NewArticleService(db *sql.DB) *ArticleService {
	return &ArticleService{
		queries: store.New(db),
		now:     time.Now,
	}
}

// ArticleInput carries the editable article fields.
type ArticleInput struct {
	Title        string
	Content      string
	Excerpt      string
	Visibility   string
	Tags         []string
	Published    bool
	ScheduledFor *time.Time
}

// normalize sanitizes the input and fills derived fields.
func (in *ArticleInput) normalize(now time.Time) error {
	in.Content = sanitize.Sanitize(in.Content)
	if sanitize.StripHTML(in.Content) == "" {
		// Content that strips to nothing would persist as an empty article.
		return apperr.Validation("article content is empty")
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		in.Title = deriveTitle(in.Content)
	}

	in.Excerpt = strings.TrimSpace(in.Excerpt)
	if in.Excerpt == "" {
		in.Excerpt = sanitize.GenerateExcerpt(in.Content, ExcerptLength)
	}

	if in.Visibility == "" {
		in.Visibility = model.VisibilityPublic
	}
	if !model.IsValidVisibility(in.Visibility) {
		return apperr.Validation("unknown visibility %q", in.Visibility)
	}

	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	in.Tags = tags

	if in.ScheduledFor != nil && !in.ScheduledFor.After(now) {
		// A past schedule means "publish now".
		in.Published = true
		in.ScheduledFor = nil
	}
	return nil
}

// deriveTitle extracts the first h1's text, falling back to "Untitled".
func deriveTitle(content string) string {
	if m := firstH1.FindStringSubmatch(content); m != nil {
		title := strings.TrimSpace(sanitize.StripHTML(m[1]))
		if title != "" {
			return title
		}
	}
	return "Untitled"
}

// Create stores a new article for the author.
func (s *ArticleService) Create(ctx context.Context, authorID int64, in ArticleInput) (model.Article, error) {
	now := s.now()
	if err := in.normalize(now); err != nil {
		return model.Article{}, err
	}

	slug, err := s.uniqueSlug(ctx, authorID, in.Title, 0)
	if err != nil {
		return model.Article{}, err
	}

	tagsJSON, err := json.Marshal(in.Tags)
	if err != nil {
		return model.Article{}, fmt.Errorf("encoding tags: %w", err)
	}

	params := store.CreateArticleParams{
		AuthorID:   authorID,
		Title:      in.Title,
		Slug:       slug,
		Content:    in.Content,
		Excerpt:    in.Excerpt,
		Visibility: in.Visibility,
		Published:  in.Published,
		TagsJSON:   string(tagsJSON),
	}
	if in.Published {
		params.PublishedAt = sql.NullTime{Time: now, Valid: true}
	}
	if in.ScheduledFor != nil {
		params.ScheduledFor = sql.NullTime{Time: in.ScheduledFor.UTC(), Valid: true}
	}

	row, err := s.queries.CreateArticle(ctx, params)
	if err != nil {
		return model.Article{}, fmt.Errorf("creating article: %w", err)
	}
	return toArticle(row)
}

// Update rewrites an article. Only the author may update it.
func (s *ArticleService) Update(ctx context.Context, authorID, articleID int64, in ArticleInput) (model.Article, error) {
	existing, err := s.ownedArticle(ctx, authorID, articleID)
	if err != nil {
		return model.Article{}, err
	}

	now := s.now()
	if err := in.normalize(now); err != nil {
		return model.Article{}, err
	}

	slug := existing.Slug
	if in.Title != existing.Title {
		slug, err = s.uniqueSlug(ctx, authorID, in.Title, articleID)
		if err != nil {
			return model.Article{}, err
		}
	}

	tagsJSON, err := json.Marshal(in.Tags)
	if err != nil {
		return model.Article{}, fmt.Errorf("encoding tags: %w", err)
	}

	params := store.UpdateArticleParams{
		ID:          articleID,
		Title:       in.Title,
		Slug:        slug,
		Content:     in.Content,
		Excerpt:     in.Excerpt,
		Visibility:  in.Visibility,
		Published:   in.Published,
		PublishedAt: existing.PublishedAt,
		TagsJSON:    string(tagsJSON),
	}
	if in.Published && !existing.PublishedAt.Valid {
		params.PublishedAt = sql.NullTime{Time: now, Valid: true}
	}
	if in.ScheduledFor != nil {
		params.ScheduledFor = sql.NullTime{Time: in.ScheduledFor.UTC(), Valid: true}
	}

	if err := s.queries.UpdateArticle(ctx, params); err != nil {
		return model.Article{}, fmt.Errorf("updating article: %w", err)
	}

	row, err := s.queries.GetArticleByID(ctx, articleID)
	if err != nil {
		return model.Article{}, fmt.Errorf("reloading article: %w", err)
	}
	return toArticle(row)
}

// Get returns an article the viewer is allowed to read.
func (s *ArticleService) Get(ctx context.Context, viewerID, articleID int64) (model.Article, error) {
	row, err := s.queries.GetArticleByID(ctx, articleID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Article{}, apperr.NotFound("article not found")
	}
	if err != nil {
		return model.Article{}, fmt.Errorf("loading article: %w", err)
	}
	article, err := toArticle(row)
	if err != nil {
		return model.Article{}, err
	}
	if !article.IsVisibleTo(viewerID) {
		return model.Article{}, apperr.Forbidden("article is not accessible")
	}
	return article, nil
}

// GetBySlug returns a published article by its author-scoped slug.
func (s *ArticleService) GetBySlug(ctx context.Context, authorID int64, slug string) (model.Article, error) {
	row, err := s.queries.GetArticleByAuthorSlug(ctx, store.GetArticleByAuthorSlugParams{
		AuthorID: authorID,
		Slug:     slug,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return model.Article{}, apperr.NotFound("article not found")
	}
	if err != nil {
		return model.Article{}, fmt.Errorf("loading article: %w", err)
	}
	return toArticle(row)
}

// List returns an author's articles, newest first. Drafts are included only
// when the viewer is the author.
func (s *ArticleService) List(ctx context.Context, viewerID, authorID int64, limit, offset int64) ([]model.Article, int64, error) {
	publishedOnly := viewerID != authorID
	rows, err := s.queries.ListArticlesByAuthor(ctx, store.ListArticlesByAuthorParams{
		AuthorID:      authorID,
		PublishedOnly: publishedOnly,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("listing articles: %w", err)
	}
	total, err := s.queries.CountArticlesByAuthor(ctx, authorID, publishedOnly)
	if err != nil {
		return nil, 0, fmt.Errorf("counting articles: %w", err)
	}

	articles := make([]model.Article, 0, len(rows))
	for _, row := range rows {
		a, err := toArticle(row)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, a)
	}
	return articles, total, nil
}

// Delete removes an article. Only the author may delete it.
func (s *ArticleService) Delete(ctx context.Context, authorID, articleID int64) error {
	if _, err := s.ownedArticle(ctx, authorID, articleID); err != nil {
		return err
	}
	if _, err := s.queries.DeleteArticle(ctx, articleID); err != nil {
		return fmt.Errorf("deleting article: %w", err)
	}
	return nil
}

// TrackView bumps the view counter for a rendered article.
func (s *ArticleService) TrackView(ctx context.Context, articleID int64) error {
	return s.queries.IncrementArticleViews(ctx, articleID)
}

// PublishDue publishes every article whose schedule has passed. Returns how
// many were published; invoked by the scheduler.
func (s *ArticleService) PublishDue(ctx context.Context) (int, error) {
	now := s.now().UTC()
	due, err := s.queries.ListDueScheduledArticles(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("listing due articles: %w", err)
	}
	published := 0
	for _, row := range due {
		if err := s.queries.MarkArticlePublished(ctx, row.ID, now); err != nil {
			slog.Error("failed to publish scheduled article",
				"category", model.EventCategoryArticle, "error", err, "article_id", row.ID)
			continue
		}
		published++
	}
	return published, nil
}

// ownedArticle loads an article and checks ownership.
func (s *ArticleService) ownedArticle(ctx context.Context, authorID, articleID int64) (store.ArticleRow, error) {
	row, err := s.queries.GetArticleByID(ctx, articleID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ArticleRow{}, apperr.NotFound("article not found")
	}
	if err != nil {
		return store.ArticleRow{}, fmt.Errorf("loading article: %w", err)
	}
	if row.AuthorID != authorID {
		return store.ArticleRow{}, apperr.Forbidden("article belongs to another user")
	}
	return row, nil
}

// uniqueSlug slugifies the title and appends a numeric suffix until the slug
// is free for this author.
func (s *ArticleService) uniqueSlug(ctx context.Context, authorID int64, title string, excludeID int64) (string, error) {
	base := util.Slugify(title)
	if base == "" {
		base = "untitled"
	}
	slug := base
	for i := 2; ; i++ {
		count, err := s.queries.CountArticleSlug(ctx, authorID, slug, excludeID)
		if err != nil {
			return "", fmt.Errorf("checking slug: %w", err)
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// toArticle converts a row into the domain article.
func toArticle(row store.ArticleRow) (model.Article, error) {
	a := model.Article{
		ID:           row.ID,
		AuthorID:     row.AuthorID,
		Title:        row.Title,
		Slug:         row.Slug,
		Content:      row.Content,
		Excerpt:      row.Excerpt,
		Visibility:   row.Visibility,
		Published:    row.Published,
		PublishedAt:  row.PublishedAt,
		ScheduledFor: row.ScheduledFor,
		ViewCount:    row.ViewCount,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		Tags:         []string{},
	}
	if row.TagsJSON != "" {
		if err := json.Unmarshal([]byte(row.TagsJSON), &a.Tags); err != nil {
			return model.Article{}, fmt.Errorf("decoding tags: %w", err)
		}
	}
	return a, nil
}
