// Package markdown derives display strings from a markdown body without a
// full parser: the effective title, a plain-text preview and a minimal
// HTML rendering. Every function is pure and total.
package markdown

import (
	"strings"
	"unicode/utf8"
)

var markerStripper = strings.NewReplacer("#", "", "*", "", "_", "")

// ExtractTitle returns the text of the first heading line in body, or
// fallback when there is none.
func ExtractTitle(body, fallback string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		if title := strings.TrimSpace(strings.TrimLeft(trimmed, "#")); title != "" {
			return title
		}
	}
	return fallback
}

// PreviewText returns the first paragraph of body with the markdown
// markers '#', '*' and '_' removed and line breaks folded into spaces.
// Paragraphs made only of heading lines are passed over since they already
// serve as the title; a body made only of headings previews its heading
// text instead.
func PreviewText(body string) string {
	for _, para := range strings.Split(body, "\n\n") {
		if headingsOnly(para) {
			continue
		}
		if p := preview(para); p != "" {
			return p
		}
	}
	return preview(body)
}

func preview(body string) string {
	cleaned := strings.TrimSpace(markerStripper.Replace(body))
	for _, para := range strings.Split(cleaned, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		return strings.ReplaceAll(para, "\n", " ")
	}
	return cleaned
}

// headingsOnly reports whether every non-blank line of para is a heading.
// A blank paragraph is not.
func headingsOnly(para string) bool {
	seen := false
	for _, line := range strings.Split(para, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			return false
		}
		seen = true
	}
	return seen
}

// Truncate shortens s to at most n runes, ending with an ellipsis when
// anything was cut. It is meant for list displays of PreviewText.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:n]), " ") + "…"
}
