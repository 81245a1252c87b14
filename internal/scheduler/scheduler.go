// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the background cron jobs: publishing scheduled
// articles and pruning the event log.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/linkfolio-go/internal/model"
	"github.com/olegiv/linkfolio-go/internal/service"
	"github.com/olegiv/linkfolio-go/internal/store"
)

// EventRetention is how long event log entries are kept.
const EventRetention = 90 * 24 * time.Hour

// Scheduler owns the cron instance and its registered jobs.
type Scheduler struct {
	cron     *cron.Cron
	articles *service.ArticleService
	queries  *store.Queries
	logger   *slog.Logger
}

// New creates a scheduler with the standard jobs registered but not started.
func New(db *sql.DB, articles *service.ArticleService, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		articles: articles,
		queries:  store.New(db),
		logger:   logger,
	}

	// Scheduled article publishing runs every minute so a publish time is
	// honored within one minute of passing.
	if _, err := s.cron.AddFunc("* * * * *", s.publishDue); err != nil {
		return nil, err
	}

	// Event log pruning runs daily.
	if _, err := s.cron.AddFunc("30 3 * * *", s.pruneEvents); err != nil {
		return nil, err
	}

	return s, nil
}

// Start launches the cron loop.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) publishDue() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	published, err := s.articles.PublishDue(ctx)
	if err != nil {
		s.logger.Error("scheduled publish run failed",
			"category", model.EventCategoryArticle, "error", err)
		return
	}
	if published > 0 {
		s.logger.Info("published scheduled articles", "count", published)
	}
}

func (s *Scheduler) pruneEvents() {
	runCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-EventRetention)
	pruned, err := s.queries.PruneEvents(runCtx, cutoff)
	if err != nil {
		s.logger.Error("event log prune failed", "error", err)
		return
	}
	if pruned > 0 {
		s.logger.Info("pruned event log", "removed", pruned)
	}
}
