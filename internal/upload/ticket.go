// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package upload mints short-lived signed tickets authorizing direct uploads
// to the media host. The server only authorizes byte streams, it never
// proxies them.
package upload

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/linkfolio-go/internal/apperr"
)

// Upload kinds map to folders on the media host.
const (
	KindAvatar  = "avatars"
	KindBlock   = "blocks"
	KindArticle = "articles"
)

var validKinds = map[string]struct{}{
	KindAvatar:  {},
	KindBlock:   {},
	KindArticle: {},
}

// Ticket authorizes one upload of one object key into one folder, until it
// expires.
type Ticket struct {
	Folder    string `json:"folder"`
	Key       string `json:"key"`
	ExpiresAt int64  `json:"expiresAt"` // Unix seconds
	Signature string `json:"signature"`
	UploadURL string `json:"uploadUrl"`
}

// Signer mints and verifies upload tickets.
type Signer struct {
	secret  []byte
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

// NewSigner creates a ticket signer. baseURL is the media host endpoint the
// client uploads to.
func NewSigner(secret string, baseURL string, ttl time.Duration) *Signer {
	return &Signer{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Mint issues a ticket scoped to the user's folder for the given upload kind.
// The object key is minted server-side so clients cannot choose arbitrary
// destinations.
func (s *Signer) Mint(userID int64, kind string) (Ticket, error) {
	if _, ok := validKinds[kind]; !ok {
		return Ticket{}, apperr.Validation("unknown upload kind %q", kind)
	}

	folder := fmt.Sprintf("u%d/%s", userID, kind)
	key := uuid.New().String()
	expiresAt := s.now().Add(s.ttl).Unix()

	return Ticket{
		Folder:    folder,
		Key:       key,
		ExpiresAt: expiresAt,
		Signature: s.sign(folder, key, expiresAt),
		UploadURL: fmt.Sprintf("%s/%s/%s", s.baseURL, folder, key),
	}, nil
}

// Verify checks a ticket's signature and expiry.
func (s *Signer) Verify(t Ticket) error {
	if s.now().Unix() > t.ExpiresAt {
		return apperr.Validation("upload ticket has expired")
	}
	expected := s.sign(t.Folder, t.Key, t.ExpiresAt)
	if !hmac.Equal([]byte(expected), []byte(t.Signature)) {
		return apperr.Forbidden("upload ticket signature mismatch")
	}
	return nil
}

// sign computes the HMAC-SHA256 signature over the scoped fields.
func (s *Signer) sign(folder, key string, expiresAt int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%s\n%d", folder, key, expiresAt)
	return hex.EncodeToString(mac.Sum(nil))
}
