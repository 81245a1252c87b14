// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// LinksRow is the raw links table row. Socials and blocks are stored as JSON
// array text; decoding into model types happens in the service layer.
type LinksRow struct {
	UserID          int64
	Name            string
	Handle          sql.NullString
	Bio             string
	AvatarURL       string
	SocialsJSON     string
	BlocksJSON      string
	Published       bool
	HandleUpdatedAt sql.NullTime
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const linksColumns = `user_id, name, handle, bio, avatar_url, socials, blocks, published, handle_updated_at, created_at, updated_at`

func scanLinks(row *sql.Row) (LinksRow, error) {
	var l LinksRow
	err := row.Scan(&l.UserID, &l.Name, &l.Handle, &l.Bio, &l.AvatarURL,
		&l.SocialsJSON, &l.BlocksJSON, &l.Published, &l.HandleUpdatedAt,
		&l.CreatedAt, &l.UpdatedAt)
	return l, err
}

// GetLinksByUserID fetches the links document for a user.
// Returns sql.ErrNoRows when the document has never been written.
func (q *Queries) GetLinksByUserID(ctx context.Context, userID int64) (LinksRow, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+linksColumns+` FROM links WHERE user_id = ?`, userID)
	return scanLinks(row)
}

// GetLinksByHandle fetches a links document by its @-prefixed handle.
// SQLite's default BINARY collation keeps the comparison case-sensitive.
func (q *Queries) GetLinksByHandle(ctx context.Context, handle string) (LinksRow, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+linksColumns+` FROM links WHERE handle = ?`, handle)
	return scanLinks(row)
}

// GetHandleOwner returns the user id owning the given handle.
// Returns sql.ErrNoRows when the handle is unclaimed.
func (q *Queries) GetHandleOwner(ctx context.Context, handle string) (int64, error) {
	var ownerID int64
	err := q.db.QueryRowContext(ctx,
		`SELECT user_id FROM links WHERE handle = ?`, handle).Scan(&ownerID)
	return ownerID, err
}

// UpsertLinksParams holds the full mergeable field set for UpsertLinks.
// The handle and its cooldown stamp are managed separately by UpdateLinksHandle.
type UpsertLinksParams struct {
	UserID      int64
	Name        string
	Bio         string
	AvatarURL   string
	SocialsJSON string
	BlocksJSON  string
}

// UpsertLinks writes the mergeable profile fields, creating the row on first
// write. Creation intentionally leaves handle_updated_at NULL so the handle
// cooldown clock only starts on the first handle change.
func (q *Queries) UpsertLinks(ctx context.Context, arg UpsertLinksParams) error {
	now := time.Now().UTC()
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO links (user_id, name, bio, avatar_url, socials, blocks, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			name = excluded.name,
			bio = excluded.bio,
			avatar_url = excluded.avatar_url,
			socials = excluded.socials,
			blocks = excluded.blocks,
			updated_at = excluded.updated_at`,
		arg.UserID, arg.Name, arg.Bio, arg.AvatarURL, arg.SocialsJSON, arg.BlocksJSON, now, now)
	return err
}

// UpdateLinksHandleParams holds the fields for UpdateLinksHandle.
type UpdateLinksHandleParams struct {
	UserID          int64
	Handle          string
	HandleUpdatedAt sql.NullTime
}

// UpdateLinksHandle sets the handle, creating the row when absent. The caller
// decides whether to stamp handle_updated_at (first-ever set leaves it NULL).
func (q *Queries) UpdateLinksHandle(ctx context.Context, arg UpdateLinksHandleParams) error {
	now := time.Now().UTC()
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO links (user_id, handle, handle_updated_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			handle = excluded.handle,
			handle_updated_at = excluded.handle_updated_at,
			updated_at = excluded.updated_at`,
		arg.UserID, arg.Handle, arg.HandleUpdatedAt, now, now)
	return err
}

// SetLinksPublished flips the published flag. Returns the number of rows
// affected so callers can distinguish a missing document.
func (q *Queries) SetLinksPublished(ctx context.Context, userID int64, published bool) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE links SET published = ?, updated_at = ? WHERE user_id = ?`,
		published, time.Now().UTC(), userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteLinks removes the links document. Deleting an absent document is a
// no-op; the affected row count is returned for logging.
func (q *Queries) DeleteLinks(ctx context.Context, userID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM links WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
