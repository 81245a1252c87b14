// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package upload

import (
	"strings"
	"testing"
	"time"

	"github.com/olegiv/linkfolio-go/internal/apperr"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestMintAndVerify(t *testing.T) {
	s := NewSigner(testSecret, "https://media.example.com", 5*time.Minute)

	ticket, err := s.Mint(42, KindAvatar)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if ticket.Folder != "u42/avatars" {
		t.Errorf("Folder = %q, want %q", ticket.Folder, "u42/avatars")
	}
	if ticket.Key == "" {
		t.Error("Key should be minted server-side")
	}
	if !strings.HasPrefix(ticket.UploadURL, "https://media.example.com/u42/avatars/") {
		t.Errorf("UploadURL = %q", ticket.UploadURL)
	}
	if err := s.Verify(ticket); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestMintRejectsUnknownKind(t *testing.T) {
	s := NewSigner(testSecret, "https://media.example.com", 5*time.Minute)
	_, err := s.Mint(42, "backups")
	if !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("error = %v, want validation", err)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	s := NewSigner(testSecret, "https://media.example.com", 5*time.Minute)
	ticket, err := s.Mint(42, KindBlock)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	tampered := ticket
	tampered.Folder = "u1/avatars"
	if err := s.Verify(tampered); !apperr.Is(err, apperr.CodeForbidden) {
		t.Errorf("tampered folder err = %v, want forbidden", err)
	}

	tampered = ticket
	tampered.ExpiresAt += 3600
	if err := s.Verify(tampered); !apperr.Is(err, apperr.CodeForbidden) {
		t.Errorf("extended expiry err = %v, want forbidden", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	s := NewSigner(testSecret, "https://media.example.com", 5*time.Minute)
	ticket, err := s.Mint(42, KindArticle)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	s.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	if err := s.Verify(ticket); !apperr.Is(err, apperr.CodeValidation) {
		t.Errorf("expired ticket err = %v, want validation", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	s := NewSigner(testSecret, "https://media.example.com", 5*time.Minute)
	other := NewSigner("another-secret-entirely-32-bytes", "https://media.example.com", 5*time.Minute)

	ticket, err := s.Mint(42, KindAvatar)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := other.Verify(ticket); !apperr.Is(err, apperr.CodeForbidden) {
		t.Errorf("cross-secret verify err = %v, want forbidden", err)
	}
}
