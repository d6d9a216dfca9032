// Package utils provides shared utilities for text and logging.
package utils

import "unicode/utf8"

// Truncate returns s truncated to at most maxLen bytes, with "..." appended
// if truncated. The cut never splits a multibyte rune, so the result is
// always valid UTF-8. If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:TruncateIndex(s, maxLen)] + "..."
}

// TruncateIndex returns the largest byte index <= maxLen that falls on a
// rune boundary of s.
func TruncateIndex(s string, maxLen int) int {
	if maxLen >= len(s) {
		return len(s)
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return cut
}
