package rag

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"trims", "  Où est Carthage ?  ", "Où est Carthage ?"},
		{"strips nul", "Car\x00thage", "Carthage"},
		{"collapses whitespace", "Où \t est\n\nCarthage", "Où est Carthage"},
		{"empty", "   ", ""},
		{"nul only", "\x00\x00", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.in, MaxInputLength); got != tc.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitize_TruncatesRunes(t *testing.T) {
	long := strings.Repeat("é", MaxInputLength+100)
	got := Sanitize(long, MaxInputLength)
	if n := utf8.RuneCountInString(got); n != MaxInputLength {
		t.Errorf("rune count = %d, want %d", n, MaxInputLength)
	}
	if !utf8.ValidString(got) {
		t.Error("truncation split a rune")
	}
}

func TestDetectLanguage(t *testing.T) {
	if got := DetectLanguage("أين تقع قرطاج؟"); got != "ar" {
		t.Errorf("arabic query detected as %q", got)
	}
	if got := DetectLanguage("Où se trouve Carthage ?"); got != "fr" {
		t.Errorf("french query detected as %q", got)
	}
}

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("Quels sont les sites de la période punique ?")
	want := map[string]bool{"période": true, "punique": true}
	if len(got) != len(want) {
		t.Fatalf("keywords = %v", got)
	}
	for _, k := range got {
		if !want[k] {
			t.Errorf("unexpected keyword %q", k)
		}
	}
}
