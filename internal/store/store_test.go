// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"
)

// testDB creates a temporary test database with migrations applied.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "linkfolio-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		db.Close()
		os.Remove(dbPath)
	}
}

func testUser(t *testing.T, q *Queries, email string) int64 {
	t.Helper()
	user, err := q.CreateUser(context.Background(), CreateUserParams{
		Email:        email,
		PasswordHash: "hashed",
		Name:         "Test User",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user.ID
}

func TestCreateAndGetUser(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	ctx := context.Background()
	q := New(db)

	user, err := q.CreateUser(ctx, CreateUserParams{
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Name:         "Alice",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID == 0 {
		t.Error("user.ID should not be 0")
	}

	got, err := q.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != user.ID || got.Name != "Alice" {
		t.Errorf("GetUserByEmail = %+v, want id %d name Alice", got, user.ID)
	}
	if got.LastLoginAt.Valid {
		t.Error("LastLoginAt should be unset on a fresh user")
	}

	if err := q.UpdateUserLastLogin(ctx, user.ID); err != nil {
		t.Fatalf("UpdateUserLastLogin: %v", err)
	}
	got, err = q.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if !got.LastLoginAt.Valid {
		t.Error("LastLoginAt should be stamped after login")
	}
}

func TestUpsertLinksCreatesAndMerges(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	ctx := context.Background()
	q := New(db)
	userID := testUser(t, q, "alice@example.com")

	if _, err := q.GetLinksByUserID(ctx, userID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("fresh user should have no links row, got err %v", err)
	}

	err := q.UpsertLinks(ctx, UpsertLinksParams{
		UserID:      userID,
		Name:        "Alice",
		Bio:         "Maker of things",
		SocialsJSON: "[]",
		BlocksJSON:  "[]",
	})
	if err != nil {
		t.Fatalf("UpsertLinks (create): %v", err)
	}

	row, err := q.GetLinksByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("GetLinksByUserID: %v", err)
	}
	if row.Bio != "Maker of things" {
		t.Errorf("Bio = %q, want %q", row.Bio, "Maker of things")
	}
	if row.HandleUpdatedAt.Valid {
		t.Error("creation must not stamp handle_updated_at")
	}

	err = q.UpsertLinks(ctx, UpsertLinksParams{
		UserID:      userID,
		Name:        "Alice",
		Bio:         "Updated bio",
		SocialsJSON: "[]",
		BlocksJSON:  "[]",
	})
	if err != nil {
		t.Fatalf("UpsertLinks (update): %v", err)
	}
	row, err = q.GetLinksByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("GetLinksByUserID: %v", err)
	}
	if row.Bio != "Updated bio" {
		t.Errorf("Bio after merge = %q, want %q", row.Bio, "Updated bio")
	}
}

func TestHandleLookupsAreCaseSensitive(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	ctx := context.Background()
	q := New(db)
	userID := testUser(t, q, "alice@example.com")

	err := q.UpdateLinksHandle(ctx, UpdateLinksHandleParams{
		UserID: userID,
		Handle: "@Alice",
	})
	if err != nil {
		t.Fatalf("UpdateLinksHandle: %v", err)
	}

	if _, err := q.GetLinksByHandle(ctx, "@Alice"); err != nil {
		t.Errorf("exact-case lookup failed: %v", err)
	}
	if _, err := q.GetLinksByHandle(ctx, "@alice"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("lowercase lookup should miss, got err %v", err)
	}

	ownerID, err := q.GetHandleOwner(ctx, "@Alice")
	if err != nil {
		t.Fatalf("GetHandleOwner: %v", err)
	}
	if ownerID != userID {
		t.Errorf("owner = %d, want %d", ownerID, userID)
	}
}

func TestUpdateLinksHandleStamp(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	ctx := context.Background()
	q := New(db)
	userID := testUser(t, q, "alice@example.com")

	// First set: no stamp.
	err := q.UpdateLinksHandle(ctx, UpdateLinksHandleParams{UserID: userID, Handle: "@alice"})
	if err != nil {
		t.Fatalf("UpdateLinksHandle: %v", err)
	}
	row, err := q.GetLinksByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("GetLinksByUserID: %v", err)
	}
	if row.HandleUpdatedAt.Valid {
		t.Error("first handle set must leave handle_updated_at NULL")
	}

	// Change: caller supplies the stamp.
	now := time.Now().UTC()
	err = q.UpdateLinksHandle(ctx, UpdateLinksHandleParams{
		UserID:          userID,
		Handle:          "@alice2",
		HandleUpdatedAt: sql.NullTime{Time: now, Valid: true},
	})
	if err != nil {
		t.Fatalf("UpdateLinksHandle (change): %v", err)
	}
	row, err = q.GetLinksByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("GetLinksByUserID: %v", err)
	}
	if !row.HandleUpdatedAt.Valid {
		t.Error("handle change should stamp handle_updated_at")
	}
}

func TestSetLinksPublishedAndDelete(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	ctx := context.Background()
	q := New(db)
	userID := testUser(t, q, "alice@example.com")

	affected, err := q.SetLinksPublished(ctx, userID, true)
	if err != nil {
		t.Fatalf("SetLinksPublished: %v", err)
	}
	if affected != 0 {
		t.Errorf("publishing an absent row affected %d rows, want 0", affected)
	}

	if err := q.UpsertLinks(ctx, UpsertLinksParams{UserID: userID, SocialsJSON: "[]", BlocksJSON: "[]"}); err != nil {
		t.Fatalf("UpsertLinks: %v", err)
	}
	affected, err = q.SetLinksPublished(ctx, userID, true)
	if err != nil {
		t.Fatalf("SetLinksPublished: %v", err)
	}
	if affected != 1 {
		t.Errorf("affected = %d, want 1", affected)
	}

	affected, err = q.DeleteLinks(ctx, userID)
	if err != nil {
		t.Fatalf("DeleteLinks: %v", err)
	}
	if affected != 1 {
		t.Errorf("delete affected = %d, want 1", affected)
	}

	// Second delete is a clean no-op.
	affected, err = q.DeleteLinks(ctx, userID)
	if err != nil {
		t.Fatalf("DeleteLinks (repeat): %v", err)
	}
	if affected != 0 {
		t.Errorf("repeat delete affected = %d, want 0", affected)
	}
}

func TestArticleSlugScoping(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	ctx := context.Background()
	q := New(db)
	alice := testUser(t, q, "alice@example.com")
	bob := testUser(t, q, "bob@example.com")

	_, err := q.CreateArticle(ctx, CreateArticleParams{
		AuthorID: alice, Title: "Hello", Slug: "hello", Visibility: "public", TagsJSON: "[]",
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}

	// Same slug under another author is fine; uniqueness is author-scoped.
	_, err = q.CreateArticle(ctx, CreateArticleParams{
		AuthorID: bob, Title: "Hello", Slug: "hello", Visibility: "public", TagsJSON: "[]",
	})
	if err != nil {
		t.Fatalf("CreateArticle (other author, same slug): %v", err)
	}

	count, err := q.CountArticleSlug(ctx, alice, "hello", 0)
	if err != nil {
		t.Fatalf("CountArticleSlug: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestEventsCreateAndPrune(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	ctx := context.Background()
	q := New(db)

	err := q.CreateEvent(ctx, CreateEventParams{
		Level:    "warning",
		Category: "system",
		Message:  "something odd",
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	events, err := q.ListRecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}

	// A cutoff in the future prunes everything.
	pruned, err := q.PruneEvents(ctx, time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("PruneEvents: %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}
}
