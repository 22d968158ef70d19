// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides small pure helpers shared by the editors and list
// views: video URL normalization, case-insensitive matching and identifier
// validation.
package util

import "regexp"

// YouTubeEmbedBase is the prefix of an embeddable YouTube player URL.
const YouTubeEmbedBase = "https://www.youtube.com/embed/"

// youTubeIDRegex recognizes watch, share (youtu.be), /v/, /e/ and /embed/
// URLs and captures the 11-character video identifier.
var youTubeIDRegex = regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)

// YouTubeID extracts the video identifier from a YouTube URL.
// Returns false when the URL is not recognized.
func YouTubeID(raw string) (string, bool) {
	m := youTubeIDRegex.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// EmbedURL rewrites a recognizable YouTube URL into its embeddable form.
// Unrecognized input, including the empty string, is returned unchanged.
func EmbedURL(raw string) string {
	if raw == "" {
		return ""
	}
	id, ok := YouTubeID(raw)
	if !ok {
		return raw
	}
	return YouTubeEmbedBase + id
}
