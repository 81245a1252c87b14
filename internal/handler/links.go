// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/olegiv/linkfolio-go/internal/cache"
	"github.com/olegiv/linkfolio-go/internal/middleware"
	"github.com/olegiv/linkfolio-go/internal/model"
	"github.com/olegiv/linkfolio-go/internal/service"
)

// LinksHandler exposes the links document API: the profile, its socials and
// blocks, the handle, and the publish flag.
type LinksHandler struct {
	links *service.LinksService
	cache cache.Cache
}

// NewLinksHandler creates a new LinksHandler.
func NewLinksHandler(links *service.LinksService, c cache.Cache) *LinksHandler {
	return &LinksHandler{links: links, cache: c}
}

// updateLinksRequest carries a partial update. Absent fields leave the stored
// values untouched; socials and blocks replace the stored arrays wholesale.
type updateLinksRequest struct {
	Name      *string             `json:"name"`
	Bio       *string             `json:"bio"`
	AvatarURL *string             `json:"avatarUrl"`
	Socials   []model.SavedSocial `json:"socials"`
	Blocks    json.RawMessage     `json:"blocks"`
}

type updateHandleRequest struct {
	Handle string `json:"handle"`
}

// Get handles GET /api/links.
func (h *LinksHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	doc, err := h.links.Get(r.Context(), *user)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, doc, nil)
}

// Update handles PUT /api/links.
func (h *LinksHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req updateLinksRequest
	if err := decodeBody(r, &req); err != nil {
		WriteAppError(w, err)
		return
	}

	patch := model.LinksPatch{
		Name:      req.Name,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	}

	if req.Socials != nil {
		socials, err := model.NormalizeSocials(req.Socials)
		if err != nil {
			WriteAppError(w, err)
			return
		}
		patch.Socials = socials
	}

	if req.Blocks != nil {
		// Saves are strict: an unknown block tag rejects the whole payload.
		blocks, err := model.DecodeBlocks(req.Blocks)
		if err != nil {
			WriteAppError(w, err)
			return
		}
		patch.Blocks = blocks
	}

	doc, err := h.links.Upsert(r.Context(), *user, patch)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	h.invalidatePage(r.Context(), doc.Handle)
	WriteSuccess(w, doc, nil)
}

// UpdateHandle handles PUT /api/links/handle.
func (h *LinksHandler) UpdateHandle(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req updateHandleRequest
	if err := decodeBody(r, &req); err != nil {
		WriteAppError(w, err)
		return
	}

	// Capture the old handle so its cached page can be evicted too.
	before, err := h.links.Get(r.Context(), *user)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	doc, err := h.links.UpdateHandle(r.Context(), *user, req.Handle)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	h.invalidatePage(r.Context(), before.Handle)
	h.invalidatePage(r.Context(), doc.Handle)
	WriteSuccess(w, doc, nil)
}

// TogglePublish handles POST /api/links/publish.
func (h *LinksHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	published, err := h.links.TogglePublish(r.Context(), user.ID)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	doc, err := h.links.Get(r.Context(), *user)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	h.invalidatePage(r.Context(), doc.Handle)

	WriteSuccess(w, map[string]bool{"published": published}, nil)
}

// Delete handles DELETE /api/links. Deleting an absent document succeeds.
func (h *LinksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	doc, err := h.links.Get(r.Context(), *user)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	if err := h.links.Delete(r.Context(), user.ID); err != nil {
		WriteAppError(w, err)
		return
	}

	h.invalidatePage(r.Context(), doc.Handle)
	w.WriteHeader(http.StatusNoContent)
}

// invalidatePage evicts the cached public page for a handle. Eviction failures
// are logged and otherwise ignored; the TTL bounds staleness.
func (h *LinksHandler) invalidatePage(ctx context.Context, handle string) {
	if handle == "" || h.cache == nil {
		return
	}
	if err := h.cache.Delete(ctx, pageCacheKey(handle)); err != nil {
		slog.Warn("failed to evict cached page", "error", err, "handle", handle)
	}
}
