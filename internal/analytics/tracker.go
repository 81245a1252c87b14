// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package analytics tracks article views. Bot traffic is filtered out by
// user-agent classification so view counts reflect people, not crawlers.
package analytics

import (
	"context"
	"log/slog"

	"github.com/mileusna/useragent"

	"github.com/olegiv/linkfolio-go/internal/service"
)

// Device types
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
)

// ParsedUA holds the interesting parts of a parsed user agent.
type ParsedUA struct {
	Browser    string
	OS         string
	DeviceType string
}

// ParseUserAgent extracts browser, OS, and device type from a user agent string.
func ParseUserAgent(uaString string) ParsedUA {
	ua := useragent.Parse(uaString)

	result := ParsedUA{
		Browser: ua.Name,
		OS:      ua.OS,
	}
	if result.Browser == "" {
		result.Browser = "Unknown"
	}
	if result.OS == "" {
		result.OS = "Unknown"
	}

	switch {
	case ua.Bot:
		result.DeviceType = DeviceBot
	case ua.Mobile:
		result.DeviceType = DeviceMobile
	case ua.Tablet:
		result.DeviceType = DeviceTablet
	default:
		result.DeviceType = DeviceDesktop
	}

	return result
}

// ViewTracker records article views.
type ViewTracker struct {
	articles *service.ArticleService
}

// NewViewTracker creates a tracker over the article service.
func NewViewTracker(articles *service.ArticleService) *ViewTracker {
	return &ViewTracker{articles: articles}
}

// TrackArticleView bumps the view counter unless the user agent is a bot.
// Tracking failures are logged and swallowed: analytics must never break a
// page render.
func (t *ViewTracker) TrackArticleView(ctx context.Context, articleID int64, uaString string) {
	if ParseUserAgent(uaString).DeviceType == DeviceBot {
		return
	}
	if err := t.articles.TrackView(ctx, articleID); err != nil {
		slog.Warn("failed to track article view", "error", err, "article_id", articleID)
	}
}
