// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// HandleCooldown is the minimum interval between handle changes, measured from
// HandleUpdatedAt. Setting the handle for the first time does not start the
// clock; only a subsequent change does.
const HandleCooldown = 60 * 24 * time.Hour

// LinksDocument is the per-user link-in-bio document: profile fields, socials,
// and the ordered block list. One row per user, created lazily on first write.
type LinksDocument struct {
	UserID          int64         `json:"userId"`
	Name            string        `json:"name"`
	Handle          string        `json:"handle"`
	Bio             string        `json:"bio"`
	AvatarURL       string        `json:"avatarUrl"`
	Socials         []SavedSocial `json:"socials"`
	Blocks          []Block       `json:"blocks"`
	Published       bool          `json:"published"`
	HandleUpdatedAt sql.NullTime  `json:"handleUpdatedAt,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// HandleCooldownRemaining returns how much of the cooldown is left at now.
// Zero means a handle change is allowed.
func (d *LinksDocument) HandleCooldownRemaining(now time.Time) time.Duration {
	if !d.HandleUpdatedAt.Valid {
		return 0
	}
	elapsed := now.Sub(d.HandleUpdatedAt.Time)
	if elapsed >= HandleCooldown {
		return 0
	}
	return HandleCooldown - elapsed
}

// LinksPatch carries a partial update for a links document. Nil fields are
// left untouched; socials and blocks replace the stored arrays wholesale.
type LinksPatch struct {
	Name      *string
	Bio       *string
	AvatarURL *string
	Socials   []SavedSocial
	Blocks    []Block
}
