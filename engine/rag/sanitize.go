package rag

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	arabicScript  = regexp.MustCompile("[؀-ۿ]")
)

// Sanitize normalizes raw user input: trims, truncates to maxLen characters,
// strips NUL bytes, and collapses whitespace runs to single spaces. An empty
// result means the query is invalid and must short-circuit before retrieval.
func Sanitize(query string, maxLen int) string {
	query = strings.TrimSpace(query)
	if runes := []rune(query); len(runes) > maxLen {
		query = string(runes[:maxLen])
	}
	query = strings.ReplaceAll(query, "\x00", "")
	return whitespaceRun.ReplaceAllString(query, " ")
}

// DetectLanguage reports "ar" when the text contains Arabic script, "fr"
// otherwise. Used for logging and future routing only, never translation.
func DetectLanguage(text string) string {
	if arabicScript.MatchString(text) {
		return "ar"
	}
	return "fr"
}
