// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content renders user-supplied Markdown (course and ebook
// descriptions) into sanitized HTML.
package content

import (
	"bytes"
	"html"
	"html/template"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// htmlSanitizer strips anything outside bluemonday's UGC policy from the
// rendered Markdown.
var htmlSanitizer = bluemonday.UGCPolicy()

var md = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
)

// RenderMarkdown converts Markdown to sanitized HTML safe for templates.
// Rendering errors fall back to the escaped source text.
func RenderMarkdown(src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		slog.Warn("failed to render markdown", "error", err)
		return template.HTML(template.HTMLEscapeString(src))
	}

	// #nosec G203 -- output is sanitized by bluemonday
	return template.HTML(htmlSanitizer.SanitizeBytes(buf.Bytes()))
}

// Excerpt returns the plain-text start of src, cut at a word boundary
// near maxRunes.
func Excerpt(src string, maxRunes int) string {
	text := html.UnescapeString(bluemonday.StrictPolicy().Sanitize(string(RenderMarkdown(src))))
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return text
	}

	cut := string(runes[:maxRunes])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
