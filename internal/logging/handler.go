// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a custom slog handler that integrates with the
// event log. It forwards logs at WARN level and above to the database-backed
// event log for auditing.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/olegiv/linkfolio-go/internal/model"
	"github.com/olegiv/linkfolio-go/internal/store"
)

// EventLogHandler is a slog.Handler that wraps another handler and also writes
// WARN and ERROR level logs to the event log database.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level // Minimum level to forward to the event log (default: WARN)
}

// NewEventLogHandler creates a new EventLogHandler that wraps the given handler.
// Logs at WARN level and above will be written to both the wrapped handler and
// the event log.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   slog.LevelWarn,
	}
}

// NewEventLogHandlerWithLevel creates a new EventLogHandler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	// Always forward to the inner handler first
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.writeToEventLog(ctx, r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EventLogHandler{
		inner:   h.inner.WithAttrs(attrs),
		queries: h.queries,
		level:   h.level,
	}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{
		inner:   h.inner.WithGroup(name),
		queries: h.queries,
		level:   h.level,
	}
}

// writeToEventLog persists a record as an event. Failures are swallowed so
// logging can never take the request down with it.
func (h *EventLogHandler) writeToEventLog(ctx context.Context, r slog.Record) {
	level := model.EventLevelWarning
	if r.Level >= slog.LevelError {
		level = model.EventLevelError
	}

	category := model.EventCategorySystem
	var userID int64
	attrs := make(map[string]any)

	r.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "category":
			category = eventCategory(a.Value.String())
		case "user_id":
			userID = a.Value.Int64()
		default:
			attrs[a.Key] = a.Value.Any()
		}
		return true
	})

	metadata := "{}"
	if len(attrs) > 0 {
		if data, err := json.Marshal(attrs); err == nil {
			metadata = string(data)
		}
	}

	_ = h.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:    level,
		Category: category,
		Message:  r.Message,
		UserID:   userID,
		Metadata: metadata,
	})
}

// eventCategory maps a free-form category attribute to a known category.
func eventCategory(s string) string {
	switch strings.ToLower(s) {
	case model.EventCategoryAuth, model.EventCategoryLinks,
		model.EventCategoryArticle, model.EventCategoryUpload:
		return strings.ToLower(s)
	default:
		return model.EventCategorySystem
	}
}
