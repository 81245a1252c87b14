// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// ArticleRow is the raw articles table row. Tags are stored as JSON array text.
type ArticleRow struct {
	ID           int64
	AuthorID     int64
	Title        string
	Slug         string
	Content      string
	Excerpt      string
	Visibility   string
	Published    bool
	PublishedAt  sql.NullTime
	ScheduledFor sql.NullTime
	TagsJSON     string
	ViewCount    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const articleColumns = `id, author_id, title, slug, content, excerpt, visibility, published,
	published_at, scheduled_for, tags, view_count, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (ArticleRow, error) {
	var a ArticleRow
	err := row.Scan(&a.ID, &a.AuthorID, &a.Title, &a.Slug, &a.Content, &a.Excerpt,
		&a.Visibility, &a.Published, &a.PublishedAt, &a.ScheduledFor, &a.TagsJSON,
		&a.ViewCount, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// CreateArticleParams holds the fields for CreateArticle.
type CreateArticleParams struct {
	AuthorID     int64
	Title        string
	Slug         string
	Content      string
	Excerpt      string
	Visibility   string
	Published    bool
	PublishedAt  sql.NullTime
	ScheduledFor sql.NullTime
	TagsJSON     string
}

// CreateArticle inserts a new article and returns it.
func (q *Queries) CreateArticle(ctx context.Context, arg CreateArticleParams) (ArticleRow, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO articles (author_id, title, slug, content, excerpt, visibility,
			published, published_at, scheduled_for, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.AuthorID, arg.Title, arg.Slug, arg.Content, arg.Excerpt, arg.Visibility,
		arg.Published, arg.PublishedAt, arg.ScheduledFor, arg.TagsJSON, now, now)
	if err != nil {
		return ArticleRow{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ArticleRow{}, err
	}
	return q.GetArticleByID(ctx, id)
}

// GetArticleByID fetches an article by id.
func (q *Queries) GetArticleByID(ctx context.Context, id int64) (ArticleRow, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	return scanArticle(row)
}

// GetArticleByAuthorSlugParams holds the fields for GetArticleByAuthorSlug.
type GetArticleByAuthorSlugParams struct {
	AuthorID int64
	Slug     string
}

// GetArticleByAuthorSlug fetches an article by its author-scoped slug.
func (q *Queries) GetArticleByAuthorSlug(ctx context.Context, arg GetArticleByAuthorSlugParams) (ArticleRow, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE author_id = ? AND slug = ?`,
		arg.AuthorID, arg.Slug)
	return scanArticle(row)
}

// CountArticleSlug counts articles by an author using the given slug,
// excluding one article id (0 to exclude nothing).
func (q *Queries) CountArticleSlug(ctx context.Context, authorID int64, slug string, excludeID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE author_id = ? AND slug = ? AND id != ?`,
		authorID, slug, excludeID).Scan(&count)
	return count, err
}

// ListArticlesByAuthorParams holds the fields for ListArticlesByAuthor.
type ListArticlesByAuthorParams struct {
	AuthorID      int64
	PublishedOnly bool
	Limit         int64
	Offset        int64
}

// ListArticlesByAuthor returns an author's articles, newest first.
func (q *Queries) ListArticlesByAuthor(ctx context.Context, arg ListArticlesByAuthorParams) ([]ArticleRow, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE author_id = ?`
	args := []any{arg.AuthorID}
	if arg.PublishedOnly {
		query += ` AND published = 1`
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []ArticleRow
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// CountArticlesByAuthor counts an author's articles.
func (q *Queries) CountArticlesByAuthor(ctx context.Context, authorID int64, publishedOnly bool) (int64, error) {
	query := `SELECT COUNT(*) FROM articles WHERE author_id = ?`
	if publishedOnly {
		query += ` AND published = 1`
	}
	var count int64
	err := q.db.QueryRowContext(ctx, query, authorID).Scan(&count)
	return count, err
}

// UpdateArticleParams holds the fields for UpdateArticle.
type UpdateArticleParams struct {
	ID           int64
	Title        string
	Slug         string
	Content      string
	Excerpt      string
	Visibility   string
	Published    bool
	PublishedAt  sql.NullTime
	ScheduledFor sql.NullTime
	TagsJSON     string
}

// UpdateArticle rewrites an article's editable fields.
func (q *Queries) UpdateArticle(ctx context.Context, arg UpdateArticleParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE articles SET title = ?, slug = ?, content = ?, excerpt = ?, visibility = ?,
			published = ?, published_at = ?, scheduled_for = ?, tags = ?, updated_at = ?
		WHERE id = ?`,
		arg.Title, arg.Slug, arg.Content, arg.Excerpt, arg.Visibility,
		arg.Published, arg.PublishedAt, arg.ScheduledFor, arg.TagsJSON,
		time.Now().UTC(), arg.ID)
	return err
}

// DeleteArticle removes an article. Returns the affected row count.
func (q *Queries) DeleteArticle(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// IncrementArticleViews bumps the view counter.
func (q *Queries) IncrementArticleViews(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE articles SET view_count = view_count + 1 WHERE id = ?`, id)
	return err
}

// ListDueScheduledArticles returns unpublished articles whose scheduled_for
// time has passed.
func (q *Queries) ListDueScheduledArticles(ctx context.Context, now time.Time) ([]ArticleRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles
		 WHERE published = 0 AND scheduled_for IS NOT NULL AND scheduled_for <= ?`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []ArticleRow
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// MarkArticlePublished flips an article to published, stamps published_at,
// and clears the schedule.
func (q *Queries) MarkArticlePublished(ctx context.Context, id int64, publishedAt time.Time) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE articles SET published = 1, published_at = ?, scheduled_for = NULL, updated_at = ?
		WHERE id = ?`,
		publishedAt, time.Now().UTC(), id)
	return err
}
