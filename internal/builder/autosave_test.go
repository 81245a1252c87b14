// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package builder

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/olegiv/linkfolio-go/internal/model"
)

func TestAutosaveCoalescesEdits(t *testing.T) {
	b := New(nil)
	var saves atomic.Int32
	a := NewAutosave(b, func(ctx context.Context, blocks []model.Block) error {
		saves.Add(1)
		return nil
	}, nil, AutosaveConfig{Interval: 30 * time.Millisecond, MaxWait: time.Second})

	// A burst of edits inside the quiescence window fires one save.
	a.Touch()
	a.Touch()
	a.Touch()

	time.Sleep(100 * time.Millisecond)
	a.Stop()

	if got := saves.Load(); got != 1 {
		t.Errorf("saves = %d, want 1", got)
	}
}

func TestAutosaveMaxWaitBoundsDeferral(t *testing.T) {
	b := New(nil)
	var saves atomic.Int32
	a := NewAutosave(b, func(ctx context.Context, blocks []model.Block) error {
		saves.Add(1)
		return nil
	}, nil, AutosaveConfig{Interval: 40 * time.Millisecond, MaxWait: 100 * time.Millisecond})

	// Keep touching more often than the interval; MaxWait must still force a
	// save even though quiescence is never reached.
	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		a.Touch()
		time.Sleep(10 * time.Millisecond)
	}

	if got := saves.Load(); got == 0 {
		t.Error("continuous edits starved the save past MaxWait")
	}
	a.Stop()
}

func TestAutosaveFlush(t *testing.T) {
	b := New(nil)
	saved := make(chan struct{}, 1)
	a := NewAutosave(b, func(ctx context.Context, blocks []model.Block) error {
		saved <- struct{}{}
		return nil
	}, nil, DefaultAutosaveConfig())

	a.Touch()
	if !a.Pending() {
		t.Fatal("Touch should schedule a save")
	}
	a.Flush()

	select {
	case <-saved:
	case <-time.After(time.Second):
		t.Fatal("Flush did not dispatch the pending save")
	}
	if a.Pending() {
		t.Error("Pending should be false after Flush")
	}
	a.Stop()
}

func TestAutosaveCancelDropsPendingSave(t *testing.T) {
	b := New(nil)
	var saves atomic.Int32
	a := NewAutosave(b, func(ctx context.Context, blocks []model.Block) error {
		saves.Add(1)
		return nil
	}, nil, AutosaveConfig{Interval: 50 * time.Millisecond, MaxWait: time.Second})

	a.Touch()
	a.Cancel()

	time.Sleep(120 * time.Millisecond)
	if got := saves.Load(); got != 0 {
		t.Errorf("saves after Cancel = %d, want 0", got)
	}
}

func TestAutosaveReportsErrors(t *testing.T) {
	b := New(nil)
	errCh := make(chan error, 1)
	wantErr := errors.New("disk full")
	a := NewAutosave(b, func(ctx context.Context, blocks []model.Block) error {
		return wantErr
	}, func(err error) {
		errCh <- err
	}, DefaultAutosaveConfig())

	a.Touch()
	a.Flush()

	select {
	case err := <-errCh:
		if !errors.Is(err, wantErr) {
			t.Errorf("onError got %v, want %v", err, wantErr)
		}
	case <-time.After(time.Second):
		t.Fatal("failed save did not report through onError")
	}
	a.Stop()
}
