package mermaid

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/matzehuels/flowmaid/pkg/errors"
	"github.com/matzehuels/flowmaid/pkg/graph"
)

// mermaidKeywords are identifiers with special meaning in the target syntax.
// A canonical identifier must never collide with one of these, or the
// resulting document would parse as something else entirely ("end" closes a
// subgraph, "o"/"x" change edge endpoints, and so on).
var mermaidKeywords = map[string]bool{
	"graph":     true,
	"flowchart": true,
	"subgraph":  true,
	"end":       true,
	"direction": true,
	"style":     true,
	"classdef":  true,
	"class":     true,
	"linkstyle": true,
	"click":     true,
	"default":   true,
	"o":         true,
	"x":         true,
}

// Allocator assigns canonical output identifiers to nodes. Its state is a
// value created fresh per conversion; uniqueness is scoped to one page.
type Allocator struct {
	reserved map[string]bool
	taken    map[string]bool
}

// NewAllocator creates an allocator that avoids the built-in target-syntax
// keywords plus any configured extra reserved words (matched
// case-insensitively, since candidates are lower-cased).
func NewAllocator(extraReserved []string) *Allocator {
	reserved := make(map[string]bool, len(mermaidKeywords)+len(extraReserved))
	for w := range mermaidKeywords {
		reserved[w] = true
	}
	for _, w := range extraReserved {
		reserved[strings.ToLower(w)] = true
	}
	return &Allocator{
		reserved: reserved,
		taken:    make(map[string]bool),
	}
}

// Allocate assigns a canonical identifier to every node, in creation order,
// and returns the immutable sourceID → canonicalID mapping.
//
// Candidates derive from labels: lower-cased, non-alphanumeric runs collapsed
// to a single underscore. An empty candidate falls back to a positional
// placeholder. Reserved keywords and already-taken candidates get a numeric
// suffix, retried with an increasing counter until unique — which always
// terminates, guaranteeing pairwise-distinct identifiers by construction.
//
// Reserved-word collisions are auto-resolved and reported as informational
// warnings.
func (a *Allocator) Allocate(m *graph.Model) (map[string]string, []graph.Warning) {
	ids := make(map[string]string, len(m.Order))
	var warnings []graph.Warning

	for pos, sourceID := range m.Order {
		node := m.Nodes[sourceID]

		candidate := Slugify(node.Label)
		if candidate == "" {
			candidate = fmt.Sprintf("node_%d", pos+1)
		}

		if a.reserved[candidate] {
			warnings = append(warnings, graph.Warning{
				Code:     errors.ErrCodeReservedWord,
				SourceID: sourceID,
				Detail:   fmt.Sprintf("label collides with reserved word %q, suffixed", candidate),
			})
		}

		assigned := candidate
		for n := 2; a.reserved[assigned] || a.taken[assigned]; n++ {
			assigned = fmt.Sprintf("%s_%d", candidate, n)
		}

		a.taken[assigned] = true
		ids[sourceID] = assigned
	}

	return ids, warnings
}

// Slugify derives an identifier candidate from a label: markup stripped,
// lower-cased, every run of non-alphanumeric characters collapsed to a
// single underscore, leading/trailing underscores trimmed.
func Slugify(label string) string {
	label = StripMarkup(label)

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(label) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		} else {
			pendingSep = true
		}
	}
	return b.String()
}
