package mxgraph

import "strings"

// Style is a parsed draw.io style string: a semicolon-separated list of
// tokens, each either a bare flag ("ellipse") or a key=value pair
// ("rounded=1"). Bare flags are stored with an empty value.
type Style struct {
	values map[string]string
}

// ParseStyle tokenizes a style string. Tokens are trimmed; empty tokens are
// dropped. On duplicate keys the first occurrence wins, matching how the
// source editor resolves them.
func ParseStyle(s string) Style {
	values := make(map[string]string)
	for _, token := range strings.Split(s, ";") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		key, value, _ := strings.Cut(token, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, exists := values[key]; !exists {
			values[key] = strings.TrimSpace(value)
		}
	}
	return Style{values: values}
}

// Has reports whether the token appears as a bare flag or a key.
func (s Style) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Get returns the value for a key=value token. Bare flags return "" with
// ok=true.
func (s Style) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Enabled reports whether a token is present as a bare flag or set to "1",
// the form draw.io uses for boolean style switches (e.g. "rounded=1",
// "dashed=1").
func (s Style) Enabled(key string) bool {
	v, ok := s.values[key]
	return ok && (v == "" || v == "1")
}

// Len returns the number of parsed tokens.
func (s Style) Len() int {
	return len(s.values)
}
