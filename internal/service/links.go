// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides business logic services.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/olegiv/linkfolio-go/internal/apperr"
	"github.com/olegiv/linkfolio-go/internal/model"
	"github.com/olegiv/linkfolio-go/internal/store"
	"github.com/olegiv/linkfolio-go/internal/util"
)

// LinksService implements the links document contract: lazy creation on first
// write, merge upserts, the handle cooldown, and publish toggling.
type LinksService struct {
	queries *store.Queries
	now     func() time.Time
}

// NewLinksService creates a new LinksService.
func NewLinksService(db *sql.DB) *LinksService {
	return &LinksService{
		queries: store.New(db),
		now:     time.Now,
	}
}

// Get returns the user's links document, or a virtual default derived from
// the account identity when none has been written yet. Reads never create a
// row.
func (s *LinksService) Get(ctx context.Context, user model.User) (model.LinksDocument, error) {
	row, err := s.queries.GetLinksByUserID(ctx, user.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.LinksDocument{
			UserID:  user.ID,
			Name:    user.Name,
			Socials: []model.SavedSocial{},
			Blocks:  []model.Block{},
		}, nil
	}
	if err != nil {
		return model.LinksDocument{}, fmt.Errorf("loading links document: %w", err)
	}
	return s.toDocument(row)
}

// GetByHandle returns the links document owning the given normalized handle.
func (s *LinksService) GetByHandle(ctx context.Context, handle string) (model.LinksDocument, error) {
	row, err := s.queries.GetLinksByHandle(ctx, handle)
	if errors.Is(err, sql.ErrNoRows) {
		return model.LinksDocument{}, apperr.NotFound("no page for handle %s", handle)
	}
	if err != nil {
		return model.LinksDocument{}, fmt.Errorf("loading links document by handle: %w", err)
	}
	return s.toDocument(row)
}

// Upsert merges the provided fields into the user's document, creating it on
// first write. Socials and blocks replace the stored arrays wholesale; nil
// patch fields leave the stored values untouched.
func (s *LinksService) Upsert(ctx context.Context, user model.User, patch model.LinksPatch) (model.LinksDocument, error) {
	current, err := s.Get(ctx, user)
	if err != nil {
		return model.LinksDocument{}, err
	}

	if patch.Name != nil {
		current.Name = *patch.Name
	}
	if patch.Bio != nil {
		current.Bio = *patch.Bio
	}
	if patch.AvatarURL != nil {
		current.AvatarURL = *patch.AvatarURL
	}
	if patch.Socials != nil {
		current.Socials = patch.Socials
	}
	if patch.Blocks != nil {
		current.Blocks = patch.Blocks
	}

	socialsJSON, err := json.Marshal(current.Socials)
	if err != nil {
		return model.LinksDocument{}, fmt.Errorf("encoding socials: %w", err)
	}
	blocksJSON, err := model.EncodeBlocks(current.Blocks)
	if err != nil {
		return model.LinksDocument{}, err
	}

	err = s.queries.UpsertLinks(ctx, store.UpsertLinksParams{
		UserID:      user.ID,
		Name:        current.Name,
		Bio:         current.Bio,
		AvatarURL:   current.AvatarURL,
		SocialsJSON: string(socialsJSON),
		BlocksJSON:  string(blocksJSON),
	})
	if err != nil {
		return model.LinksDocument{}, fmt.Errorf("upserting links document: %w", err)
	}

	return s.Get(ctx, user)
}

// UpdateHandle changes the user's handle, enforcing the cooldown and
// uniqueness rules. The cooldown clock starts on the first *change*, not on
// the first set.
func (s *LinksService) UpdateHandle(ctx context.Context, user model.User, rawHandle string) (model.LinksDocument, error) {
	handle := util.NormalizeHandle(rawHandle)
	if !util.IsValidHandle(handle) {
		return model.LinksDocument{}, apperr.Validation("handle must be @ followed by %d-%d letters, digits, dots, underscores or hyphens",
			util.HandleMinLen, util.HandleMaxLen)
	}

	row, err := s.queries.GetLinksByUserID(ctx, user.ID)
	exists := true
	if errors.Is(err, sql.ErrNoRows) {
		exists = false
	} else if err != nil {
		return model.LinksDocument{}, fmt.Errorf("loading links document: %w", err)
	}

	if exists && row.Handle.Valid && row.Handle.String == handle {
		// Unchanged handle is a successful no-op.
		return s.Get(ctx, user)
	}

	now := s.now()
	if exists && row.HandleUpdatedAt.Valid {
		elapsed := now.Sub(row.HandleUpdatedAt.Time)
		if elapsed < model.HandleCooldown {
			remaining := model.HandleCooldown - elapsed
			days := int(math.Ceil(remaining.Hours() / 24))
			return model.LinksDocument{}, apperr.RateLimited("handle can be changed again in %d days", days).
				WithDetail("days_remaining", fmt.Sprintf("%d", days))
		}
	}

	ownerID, err := s.queries.GetHandleOwner(ctx, handle)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return model.LinksDocument{}, fmt.Errorf("checking handle owner: %w", err)
	}
	if err == nil && ownerID != user.ID {
		return model.LinksDocument{}, apperr.Conflict("handle %s is already taken", handle)
	}

	// Stamp the cooldown clock only when replacing an existing handle.
	var stamp sql.NullTime
	if exists && row.Handle.Valid && row.Handle.String != "" {
		stamp = sql.NullTime{Time: now, Valid: true}
	}

	err = s.queries.UpdateLinksHandle(ctx, store.UpdateLinksHandleParams{
		UserID:          user.ID,
		Handle:          handle,
		HandleUpdatedAt: stamp,
	})
	if err != nil {
		return model.LinksDocument{}, handleWriteError(err, handle)
	}

	slog.Info("handle updated", "category", model.EventCategoryLinks, "user_id", user.ID, "handle", handle)
	return s.Get(ctx, user)
}

// TogglePublish flips the published flag. A document that has never been
// written cannot be published.
func (s *LinksService) TogglePublish(ctx context.Context, userID int64) (bool, error) {
	row, err := s.queries.GetLinksByUserID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, apperr.NotFound("nothing to publish yet")
	}
	if err != nil {
		return false, fmt.Errorf("loading links document: %w", err)
	}

	next := !row.Published
	affected, err := s.queries.SetLinksPublished(ctx, userID, next)
	if err != nil {
		return false, fmt.Errorf("toggling publish: %w", err)
	}
	if affected == 0 {
		return false, apperr.NotFound("nothing to publish yet")
	}
	return next, nil
}

// Delete removes the document. Deleting a document that does not exist is a
// no-op; two tabs pressing delete should not produce an error.
func (s *LinksService) Delete(ctx context.Context, userID int64) error {
	affected, err := s.queries.DeleteLinks(ctx, userID)
	if err != nil {
		return fmt.Errorf("deleting links document: %w", err)
	}
	if affected == 0 {
		slog.Debug("delete of absent links document", "user_id", userID)
	}
	return nil
}

// handleWriteError maps the unique-index violation raised by a racing claim
// of the same handle onto the CONFLICT the pre-write owner check would have
// returned.
func handleWriteError(err error, handle string) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return apperr.Conflict("handle %s is already taken", handle)
	}
	return fmt.Errorf("updating handle: %w", err)
}

// toDocument converts a row into the domain document. Blocks with tags this
// build does not know are dropped on read, mirroring the renderer's
// fail-soft-by-omission policy for forward compatibility.
func (s *LinksService) toDocument(row store.LinksRow) (model.LinksDocument, error) {
	doc := model.LinksDocument{
		UserID:          row.UserID,
		Name:            row.Name,
		Bio:             row.Bio,
		AvatarURL:       row.AvatarURL,
		Published:       row.Published,
		HandleUpdatedAt: row.HandleUpdatedAt,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
		Socials:         []model.SavedSocial{},
		Blocks:          []model.Block{},
	}
	if row.Handle.Valid {
		doc.Handle = row.Handle.String
	}

	if row.SocialsJSON != "" {
		if err := json.Unmarshal([]byte(row.SocialsJSON), &doc.Socials); err != nil {
			return model.LinksDocument{}, fmt.Errorf("decoding socials: %w", err)
		}
	}

	if row.BlocksJSON != "" {
		blocks, skipped, err := model.DecodeBlocksLenient(json.RawMessage(row.BlocksJSON))
		if err != nil {
			return model.LinksDocument{}, fmt.Errorf("decoding blocks: %w", err)
		}
		if skipped > 0 {
			slog.Debug("skipped unknown stored blocks", "user_id", row.UserID, "skipped", skipped)
		}
		doc.Blocks = blocks
	}

	return doc, nil
}
