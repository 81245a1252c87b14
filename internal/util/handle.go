// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose utility functions including handle
// normalization and URL slug generation with Unicode normalization support.
package util

import "strings"

// Handle length bounds, excluding the @ prefix.
const (
	HandleMinLen = 2
	HandleMaxLen = 30
)

// NormalizeHandle trims whitespace and ensures the @ prefix. Handles are
// always stored and compared in @-prefixed form; input is accepted with or
// without the leading @.
func NormalizeHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return ""
	}
	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}
	return handle
}

// IsValidHandle checks a normalized (@-prefixed) handle: letters, digits,
// underscores, dots and hyphens, with a sensible length.
func IsValidHandle(handle string) bool {
	if !strings.HasPrefix(handle, "@") {
		return false
	}
	name := handle[1:]
	if len(name) < HandleMinLen || len(name) > HandleMaxLen {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '.' || r == '-':
		default:
			return false
		}
	}
	return true
}
