// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sanitize cleans user-supplied article HTML before storage and
// before every render. Policies are allow-list based: unknown markup is
// stripped while its text content is preserved.
package sanitize

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// allowedTags is the tag allow-list shared by both policies.
var allowedTags = []string{
	"h1", "h2", "h3", "h4", "h5", "h6",
	"p", "br", "hr",
	"strong", "b", "em", "i", "u", "s", "strike", "del", "mark",
	"a", "img",
	"ul", "ol", "li",
	"blockquote", "pre", "code",
	"table", "thead", "tbody", "tr", "th", "td",
	"div", "span",
}

// allowedAttrs is the attribute allow-list for article content.
var allowedAttrs = []string{"href", "target", "rel", "src", "alt", "title", "class"}

// allowedSchemes restricts URL attributes. Relative URLs are additionally
// allowed on both policies.
var allowedSchemes = []string{"http", "https", "mailto", "tel", "callto", "sms", "cid", "xmpp"}

var (
	articlePolicy = newPolicy(allowedAttrs)
	// generalPolicy additionally permits id and data-type, which the editor
	// uses to address nodes.
	generalPolicy = newPolicy(append(allowedAttrs, "id", "data-type"))
	strictPolicy  = bluemonday.StrictPolicy()
)

func newPolicy(attrs []string) *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(allowedTags...)
	p.AllowAttrs(attrs...).Globally()
	p.AllowURLSchemes(allowedSchemes...)
	p.AllowRelativeURLs(true)
	p.RequireParseableURLs(true)
	return p
}

// Sanitize cleans article HTML with the article allow-list. The operation is
// idempotent: sanitizing already-sanitized content is a no-op. Script, style,
// iframe, object, embed and form tags are always removed, as are all
// on-prefixed event handler attributes, but the text inside stripped tags
// survives.
func Sanitize(htmlContent string) string {
	return articlePolicy.Sanitize(htmlContent)
}

// SanitizeGeneral is the general-purpose variant that also keeps id and
// data-type attributes.
func SanitizeGeneral(htmlContent string) string {
	return generalPolicy.Sanitize(htmlContent)
}

// StripHTML removes all markup, leaving plain text. The content passes
// through the article policy first so the result matches what a render of the
// same input would show.
func StripHTML(htmlContent string) string {
	stripped := strictPolicy.Sanitize(Sanitize(htmlContent))
	return strings.TrimSpace(html.UnescapeString(stripped))
}

// GenerateExcerpt strips markup and truncates at the last whitespace boundary
// at or before maxLength. An ellipsis is appended only when truncation
// occurred; words are never split.
func GenerateExcerpt(htmlContent string, maxLength int) string {
	text := StripHTML(htmlContent)
	if maxLength <= 0 || len(text) <= maxLength {
		return text
	}

	// Back up to a rune boundary first so multi-byte text is never split
	// mid-rune.
	cutAt := maxLength
	for cutAt > 0 && !utf8.RuneStart(text[cutAt]) {
		cutAt--
	}
	cut := text[:cutAt]
	if idx := strings.LastIndexAny(cut, " \t\n"); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " \t\n") + "..."
}
