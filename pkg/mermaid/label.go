package mermaid

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripMarkup flattens a source label to plain text. Labels may carry HTML
// markup from the diagram editor; tags become spaces (so "a<br>b" keeps its
// word break), entities are unescaped, and whitespace runs collapse.
func StripMarkup(label string) string {
	label = tagPattern.ReplaceAllString(label, " ")
	label = html.UnescapeString(label)
	label = whitespacePattern.ReplaceAllString(label, " ")
	return strings.TrimSpace(label)
}

// labelEscaper rewrites characters that would terminate a bracket pair or
// break block syntax inside a quoted label. Mermaid reads #...; entity
// escapes inside quoted strings.
var labelEscaper = strings.NewReplacer(
	`"`, "#quot;",
	"{", "#123;",
	"}", "#125;",
	"[", "#91;",
	"]", "#93;",
	"(", "#40;",
	")", "#41;",
)

// QuoteLabel renders a label as a quoted string safe to embed in a
// declaration or connector line.
func QuoteLabel(label string) string {
	return `"` + labelEscaper.Replace(StripMarkup(label)) + `"`
}
