// Package sanitize scrubs user-supplied chat content before it reaches the
// agent or the persistence pipeline.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

var (
	scriptTagPattern = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	protocolPattern  = regexp.MustCompile(`(?i)(javascript|vbscript|data|file):`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// Content strips script tags and dangerous URI protocols, escapes the
// remaining HTML, and collapses whitespace runs.
func Content(input string) string {
	cleaned := scriptTagPattern.ReplaceAllString(input, "")
	cleaned = protocolPattern.ReplaceAllString(cleaned, "")
	cleaned = html.EscapeString(cleaned)
	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// Map sanitizes every string value in a flat argument map.
func Map(args map[string]any) map[string]any {
	if len(args) == 0 {
		return args
	}
	out := make(map[string]any, len(args))
	for key, value := range args {
		if s, ok := value.(string); ok {
			out[key] = Content(s)
			continue
		}
		out[key] = value
	}
	return out
}
