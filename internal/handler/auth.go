// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/olegiv/linkfolio-go/internal/apperr"
	"github.com/olegiv/linkfolio-go/internal/middleware"
	"github.com/olegiv/linkfolio-go/internal/model"
	"github.com/olegiv/linkfolio-go/internal/store"
)

// AuthHandler handles account sessions.
type AuthHandler struct {
	queries        *store.Queries
	sessionManager *scs.SessionManager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, sm *scs.SessionManager) *AuthHandler {
	return &AuthHandler{
		queries:        store.New(db),
		sessionManager: sm,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		WriteAppError(w, err)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		WriteAppError(w, apperr.Validation("a valid email is required"))
		return
	}
	if len(req.Password) < 8 {
		WriteAppError(w, apperr.Validation("password must be at least 8 characters"))
		return
	}

	if _, err := h.queries.GetUserByEmail(r.Context(), req.Email); err == nil {
		WriteAppError(w, apperr.Conflict("an account with this email already exists"))
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		WriteAppError(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	h.startSession(w, r, user)
	WriteCreated(w, user)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		WriteAppError(w, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.queries.GetUserByEmail(r.Context(), email)
	if errors.Is(err, sql.ErrNoRows) {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "Invalid email or password", nil)
		return
	}
	if err != nil {
		WriteAppError(w, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		slog.Warn("failed login attempt", "category", model.EventCategoryAuth, "email", email)
		WriteError(w, http.StatusUnauthorized, "unauthorized", "Invalid email or password", nil)
		return
	}

	if err := h.queries.UpdateUserLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("failed to stamp last login", "error", err, "user_id", user.ID)
	}

	h.startSession(w, r, user)
	WriteSuccess(w, user, nil)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, map[string]bool{"ok": true}, nil)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "Sign in required", nil)
		return
	}
	WriteSuccess(w, user, nil)
}

// startSession rotates the session token and stores the user id.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user model.User) {
	// Renew the token on privilege change to prevent session fixation.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		slog.Warn("failed to renew session token", "error", err)
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)
}
