// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/linkfolio-go/internal/apperr"
	"github.com/olegiv/linkfolio-go/internal/model"
)

func TestArticleCreateDerivesTitleAndExcerpt(t *testing.T) {
	db := testDB(t)
	svc := NewArticleService(db)
	author := createUser(t, db, "alice@example.com", "Alice")
	ctx := context.Background()

	article, err := svc.Create(ctx, author.ID, ArticleInput{
		Content: "<h1>My First Post</h1><p>Some body text that fills the excerpt.</p>",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if article.Title != "My First Post" {
		t.Errorf("Title = %q, want derived from h1", article.Title)
	}
	if article.Slug != "my-first-post" {
		t.Errorf("Slug = %q, want %q", article.Slug, "my-first-post")
	}
	if !strings.Contains(article.Excerpt, "My First Post") {
		t.Errorf("Excerpt = %q, want generated from content", article.Excerpt)
	}
	if article.Visibility != model.VisibilityPublic {
		t.Errorf("Visibility = %q, want default public", article.Visibility)
	}
}

func TestArticleCreateUntitledFallback(t *testing.T) {
	db := testDB(t)
	svc := NewArticleService(db)
	author := createUser(t, db, "alice@example.com", "Alice")

	article, err := svc.Create(context.Background(), author.ID, ArticleInput{
		Content: "<p>no heading anywhere</p>",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if article.Title != "Untitled" {
		t.Errorf("Title = %q, want Untitled", article.Title)
	}
}

func TestArticleSlugCollisionSuffix(t *testing.T) {
	db := testDB(t)
	svc := NewArticleService(db)
	author := createUser(t, db, "alice@example.com", "Alice")
	ctx := context.Background()

	first, err := svc.Create(ctx, author.ID, ArticleInput{Title: "Same Title", Content: "<p>first body</p>"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := svc.Create(ctx, author.ID, ArticleInput{Title: "Same Title", Content: "<p>second body</p>"})
	if err != nil {
		t.Fatalf("Create (second): %v", err)
	}
	if first.Slug != "same-title" {
		t.Errorf("first slug = %q", first.Slug)
	}
	if second.Slug != "same-title-2" {
		t.Errorf("second slug = %q, want same-title-2", second.Slug)
	}
}

func TestArticleContentIsSanitized(t *testing.T) {
	db := testDB(t)
	svc := NewArticleService(db)
	author := createUser(t, db, "alice@example.com", "Alice")

	article, err := svc.Create(context.Background(), author.ID, ArticleInput{
		Title:   "Post",
		Content: `<p>fine</p><script>alert(1)</script>`,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if strings.Contains(article.Content, "<script") {
		t.Errorf("stored content not sanitized: %q", article.Content)
	}
}

func TestArticleRejectsContentThatStripsToNothing(t *testing.T) {
	db := testDB(t)
	svc := NewArticleService(db)
	author := createUser(t, db, "alice@example.com", "Alice")
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"whitespace only", "<p>   </p>"},
		{"script only", "<script>alert(1)</script>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, author.ID, ArticleInput{Title: "Post", Content: tt.content})
			if !apperr.Is(err, apperr.CodeValidation) {
				t.Errorf("Create err = %v, want validation", err)
			}
		})
	}

	// Update must not hollow out an existing article either.
	article, err := svc.Create(ctx, author.ID, ArticleInput{Title: "Post", Content: "<p>real body</p>"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = svc.Update(ctx, author.ID, article.ID, ArticleInput{Title: "Post", Content: "<script>x</script>"})
	if !apperr.Is(err, apperr.CodeValidation) {
		t.Errorf("Update err = %v, want validation", err)
	}
}

func TestArticlePastScheduleMeansPublishNow(t *testing.T) {
	db := testDB(t)
	svc := NewArticleService(db)
	author := createUser(t, db, "alice@example.com", "Alice")

	past := time.Now().Add(-time.Hour)
	article, err := svc.Create(context.Background(), author.ID, ArticleInput{
		Title:        "Backdated",
		Content:      "<p>from the archive</p>",
		ScheduledFor: &past,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !article.Published {
		t.Error("a past schedule should publish immediately")
	}
	if article.ScheduledFor.Valid {
		t.Error("immediate publish should clear the schedule")
	}
}

func TestArticlePublishDue(t *testing.T) {
	db := testDB(t)
	svc := NewArticleService(db)
	author := createUser(t, db, "alice@example.com", "Alice")
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	future := base.Add(time.Hour)
	article, err := svc.Create(ctx, author.ID, ArticleInput{
		Title:        "Scheduled",
		Content:      "<p>coming soon</p>",
		ScheduledFor: &future,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if article.Published {
		t.Fatal("future-scheduled article must start unpublished")
	}

	// Before the schedule passes nothing fires.
	published, err := svc.PublishDue(ctx)
	if err != nil {
		t.Fatalf("PublishDue: %v", err)
	}
	if published != 0 {
		t.Errorf("published = %d, want 0", published)
	}

	svc.now = func() time.Time { return base.Add(2 * time.Hour) }
	published, err = svc.PublishDue(ctx)
	if err != nil {
		t.Fatalf("PublishDue (after): %v", err)
	}
	if published != 1 {
		t.Errorf("published = %d, want 1", published)
	}

	got, err := svc.Get(ctx, author.ID, article.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Published || !got.PublishedAt.Valid {
		t.Error("scheduled article should be published with a stamp")
	}
}

func TestArticleOwnership(t *testing.T) {
	db := testDB(t)
	svc := NewArticleService(db)
	alice := createUser(t, db, "alice@example.com", "Alice")
	bob := createUser(t, db, "bob@example.com", "Bob")
	ctx := context.Background()

	article, err := svc.Create(ctx, alice.ID, ArticleInput{Title: "Mine", Content: "<p>mine</p>"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Update(ctx, bob.ID, article.ID, ArticleInput{Title: "Hijacked"})
	if !apperr.Is(err, apperr.CodeForbidden) {
		t.Errorf("Update by non-author err = %v, want forbidden", err)
	}
	if err := svc.Delete(ctx, bob.ID, article.ID); !apperr.Is(err, apperr.CodeForbidden) {
		t.Errorf("Delete by non-author err = %v, want forbidden", err)
	}
}

func TestArticleVisibility(t *testing.T) {
	db := testDB(t)
	svc := NewArticleService(db)
	alice := createUser(t, db, "alice@example.com", "Alice")
	bob := createUser(t, db, "bob@example.com", "Bob")
	ctx := context.Background()

	private, err := svc.Create(ctx, alice.ID, ArticleInput{
		Title:      "Secret",
		Content:    "<p>for my eyes</p>",
		Visibility: model.VisibilityPrivate,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Get(ctx, alice.ID, private.ID); err != nil {
		t.Errorf("author should read own private article: %v", err)
	}
	if _, err := svc.Get(ctx, bob.ID, private.ID); !apperr.Is(err, apperr.CodeForbidden) {
		t.Errorf("Get private by other err = %v, want forbidden", err)
	}

	_, err = svc.Create(ctx, alice.ID, ArticleInput{Title: "x", Content: "<p>x</p>", Visibility: "everyone"})
	if !apperr.Is(err, apperr.CodeValidation) {
		t.Errorf("unknown visibility err = %v, want validation", err)
	}
}

func TestArticleListHidesDraftsFromOthers(t *testing.T) {
	db := testDB(t)
	svc := NewArticleService(db)
	alice := createUser(t, db, "alice@example.com", "Alice")
	bob := createUser(t, db, "bob@example.com", "Bob")
	ctx := context.Background()

	if _, err := svc.Create(ctx, alice.ID, ArticleInput{Title: "Draft", Content: "<p>wip</p>"}); err != nil {
		t.Fatalf("Create draft: %v", err)
	}
	if _, err := svc.Create(ctx, alice.ID, ArticleInput{Title: "Live", Content: "<p>shipped</p>", Published: true}); err != nil {
		t.Fatalf("Create published: %v", err)
	}

	own, total, err := svc.List(ctx, alice.ID, alice.ID, 10, 0)
	if err != nil {
		t.Fatalf("List (own): %v", err)
	}
	if len(own) != 2 || total != 2 {
		t.Errorf("own list = %d/%d, want 2/2", len(own), total)
	}

	theirs, total, err := svc.List(ctx, bob.ID, alice.ID, 10, 0)
	if err != nil {
		t.Fatalf("List (other viewer): %v", err)
	}
	if len(theirs) != 1 || total != 1 {
		t.Errorf("visible list = %d/%d, want 1/1", len(theirs), total)
	}
}

func TestArticleTrackView(t *testing.T) {
	db := testDB(t)
	svc := NewArticleService(db)
	alice := createUser(t, db, "alice@example.com", "Alice")
	ctx := context.Background()

	article, err := svc.Create(ctx, alice.ID, ArticleInput{Title: "Counted", Content: "<p>views</p>", Published: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for range 3 {
		if err := svc.TrackView(ctx, article.ID); err != nil {
			t.Fatalf("TrackView: %v", err)
		}
	}
	got, err := svc.Get(ctx, alice.ID, article.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ViewCount != 3 {
		t.Errorf("ViewCount = %d, want 3", got.ViewCount)
	}
}
