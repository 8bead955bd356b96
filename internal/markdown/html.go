package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	htmlHead = `<!DOCTYPE html><html><head><meta charset="utf-8"><title></title></head><body>`
	htmlTail = `</body></html>`
	spacer   = `<div class="spacer"></div>`
)

var (
	codeSpanRe = regexp.MustCompile("`([^`]+)`")
	linkRe     = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
)

// Renderer turns a markdown body into an HTML document.
type Renderer interface {
	Render(body string) string
}

// LineRenderer is the line-scanning Renderer used everywhere in Eleph.
type LineRenderer struct{}

// Render implements Renderer.
func (LineRenderer) Render(body string) string { return ToHTML(body) }

var _ Renderer = LineRenderer{}

// ToHTML renders body line by line inside a minimal HTML document.
//
// Each line is classified on its own, first match wins: heading, list
// item, blockquote, bold, italic, plain text, blank. Bold and italic are
// line-scoped: when a marker appears anywhere, every marker of that kind is
// removed and the whole line takes the style, so a line mixing several
// spans renders as a single styled run. Body text is not HTML-escaped;
// callers rendering untrusted content must escape it first.
func ToHTML(body string) string {
	var sb strings.Builder
	sb.WriteString(htmlHead)
	sb.WriteString("\n")
	for _, line := range strings.Split(body, "\n") {
		sb.WriteString(renderLine(line))
		sb.WriteString("\n")
	}
	sb.WriteString(htmlTail)
	return sb.String()
}

func renderLine(line string) string {
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == "":
		return spacer

	case strings.HasPrefix(trimmed, "#"):
		level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
		text := strings.TrimSpace(trimmed[level:])
		level = min(max(level, 1), 6)
		return fmt.Sprintf("<h%d>%s</h%d>", level, inline(text), level)

	case strings.HasPrefix(trimmed, "-"), strings.HasPrefix(trimmed, "*"):
		return "<li>" + inline(strings.TrimSpace(trimmed[1:])) + "</li>"

	case strings.HasPrefix(trimmed, ">"):
		return "<blockquote>" + inline(strings.TrimSpace(trimmed[1:])) + "</blockquote>"

	case strings.Contains(trimmed, "**"):
		return "<p><strong>" + strings.ReplaceAll(trimmed, "**", "") + "</strong></p>"
	case strings.Contains(trimmed, "__"):
		return "<p><strong>" + strings.ReplaceAll(trimmed, "__", "") + "</strong></p>"

	case strings.Contains(trimmed, "*"):
		return "<p><em>" + strings.ReplaceAll(trimmed, "*", "") + "</em></p>"
	case strings.Contains(trimmed, "_"):
		return "<p><em>" + strings.ReplaceAll(trimmed, "_", "") + "</em></p>"

	default:
		return "<p>" + inline(trimmed) + "</p>"
	}
}

// inline converts `code` spans and [text](url) links.
func inline(s string) string {
	s = codeSpanRe.ReplaceAllString(s, "<code>$1</code>")
	return linkRe.ReplaceAllString(s, `<a href="$2">$1</a>`)
}
