// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Article visibilities
const (
	VisibilityPublic     = "public"
	VisibilityPrivate    = "private"
	VisibilitySupporters = "supporters"
	VisibilityMembers    = "members"
)

// ValidVisibilities contains all valid article visibilities.
var ValidVisibilities = []string{
	VisibilityPublic,
	VisibilityPrivate,
	VisibilitySupporters,
	VisibilityMembers,
}

// IsValidVisibility reports whether v is a recognized visibility.
func IsValidVisibility(v string) bool {
	for _, valid := range ValidVisibilities {
		if v == valid {
			return true
		}
	}
	return false
}

// Article is a published or draft long-form post. Content is stored as HTML
// from the editor and is sanitized both on write and before every render.
type Article struct {
	ID           int64        `json:"id"`
	AuthorID     int64        `json:"author_id"`
	Title        string       `json:"title"`
	Slug         string       `json:"slug"`
	Content      string       `json:"content"`
	Excerpt      string       `json:"excerpt"`
	Visibility   string       `json:"visibility"`
	Published    bool         `json:"published"`
	PublishedAt  sql.NullTime `json:"published_at,omitempty"`
	ScheduledFor sql.NullTime `json:"scheduled_for,omitempty"`
	Tags         []string     `json:"tags"`
	ViewCount    int64        `json:"view_count"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// IsVisibleTo reports whether the article can be read by the given viewer.
// The author always sees their own articles; everyone else only sees
// published public ones. Supporter/member gating is decided upstream by
// whoever resolves the viewer's relationship to the author.
func (a *Article) IsVisibleTo(viewerID int64) bool {
	if viewerID == a.AuthorID {
		return true
	}
	return a.Published && a.Visibility == VisibilityPublic
}
