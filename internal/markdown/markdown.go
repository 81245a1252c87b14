// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package markdown converts markdown to sanitized article HTML, used by the
// composer's import endpoint.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"

	"github.com/olegiv/linkfolio-go/internal/sanitize"
)

// ToHTML converts markdown to HTML and runs the result through the article
// sanitizer, so imported content obeys the same allow-list as editor output.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return sanitize.Sanitize(buf.String()), nil
}
