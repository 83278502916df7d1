package main

import (
	"strings"
	"unicode/utf8"
)

func joinTags(tags []string) string {
	return truncate(strings.Join(tags, ", "), 40)
}

// truncate shortens s to at most maxLen runes, marking the cut with "...".
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}
