// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package builder

import (
	"context"
	"sync"
	"time"

	"github.com/olegiv/linkfolio-go/internal/model"
)

// AutosaveConfig holds autosave debounce configuration.
type AutosaveConfig struct {
	// Interval is the quiescence window measured from the last edit. Each new
	// edit resets the timer rather than queuing a second save.
	Interval time.Duration
	// MaxWait is the maximum time edits may keep deferring a save. Even under
	// continuous typing the document is persisted within this bound.
	MaxWait time.Duration
}

// DefaultAutosaveConfig returns default autosave timings.
func DefaultAutosaveConfig() AutosaveConfig {
	return AutosaveConfig{
		Interval: 2 * time.Second,
		MaxWait:  10 * time.Second,
	}
}

// SaveFunc persists the current block list.
type SaveFunc func(ctx context.Context, blocks []model.Block) error

// Autosave coalesces rapid edits into a single deferred save. A new edit
// supersedes a pending save; at most one save is in flight at a time, and a
// failed save reports through the error callback while the in-memory state is
// left intact for retry.
type Autosave struct {
	builder *Builder
	save    SaveFunc
	onError func(error)
	config  AutosaveConfig

	mu        sync.Mutex
	timer     *time.Timer
	firstEdit time.Time
	pending   bool

	saveMu sync.Mutex // serializes saves: single in-flight invariant
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAutosave creates an autosave bound to a builder. onError may be nil.
func NewAutosave(b *Builder, save SaveFunc, onError func(error), config AutosaveConfig) *Autosave {
	ctx, cancel := context.WithCancel(context.Background())
	if onError == nil {
		onError = func(error) {}
	}
	return &Autosave{
		builder: b,
		save:    save,
		onError: onError,
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Touch records an edit. The save fires after the quiescence interval, or
// immediately when edits have kept deferring it past MaxWait.
func (a *Autosave) Touch() {
	now := time.Now()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending {
		if now.Sub(a.firstEdit) >= a.config.MaxWait {
			a.fireLocked()
			return
		}
		a.timer.Reset(a.config.Interval)
		return
	}

	a.pending = true
	a.firstEdit = now
	a.timer = time.AfterFunc(a.config.Interval, func() {
		a.mu.Lock()
		a.fireLocked()
		a.mu.Unlock()
	})
}

// Flush immediately dispatches a pending save, if any. Useful right before
// navigation away or shutdown so no edit is lost.
func (a *Autosave) Flush() {
	a.mu.Lock()
	a.fireLocked()
	a.mu.Unlock()
}

// Stop flushes any pending save, waits for the in-flight save to finish, and
// cancels the autosave. A stray write must never race a teardown.
func (a *Autosave) Stop() {
	a.Flush()
	a.wg.Wait()
	a.cancel()
}

// Cancel drops any pending save and stops the autosave without persisting.
// Used on teardown when the session was explicitly abandoned.
func (a *Autosave) Cancel() {
	a.mu.Lock()
	if a.pending {
		a.pending = false
		a.timer.Stop()
	}
	a.mu.Unlock()
	a.cancel()
	a.wg.Wait()
}

// Pending reports whether a save is scheduled.
func (a *Autosave) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}

// fireLocked dispatches the pending save. Callers must hold mu.
func (a *Autosave) fireLocked() {
	if !a.pending {
		return
	}
	a.pending = false
	a.timer.Stop()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		// Serialize saves; the snapshot is taken after acquiring the slot so
		// a save that waited behind another one persists the newest state.
		a.saveMu.Lock()
		defer a.saveMu.Unlock()

		if a.ctx.Err() != nil {
			return
		}
		blocks := a.builder.Blocks()
		if err := a.save(a.ctx, blocks); err != nil {
			a.onError(err)
		}
	}()
}
