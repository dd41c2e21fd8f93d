package mermaid

import (
	"testing"

	"github.com/matzehuels/flowmaid/pkg/errors"
	"github.com/matzehuels/flowmaid/pkg/graph"
)

func modelWithLabels(labels ...string) *graph.Model {
	m := &graph.Model{Nodes: make(map[string]*graph.Node)}
	for i, label := range labels {
		id := string(rune('a' + i))
		m.Nodes[id] = &graph.Node{ID: id, Label: label}
		m.Order = append(m.Order, id)
	}
	return m
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Start", "start"},
		{"Should Run?", "should_run"},
		{"HTTP/2 Gateway", "http_2_gateway"},
		{"  spaced  out  ", "spaced_out"},
		{"<b>Bold</b> name", "bold_name"},
		{"???", ""},
		{"", ""},
		{"Ünïcode Läbel", "ünïcode_läbel"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := Slugify(tt.label); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestAllocate(t *testing.T) {
	m := modelWithLabels("Start", "End", "start", "")
	ids, warnings := NewAllocator(nil).Allocate(m)

	if got := ids["a"]; got != "start" {
		t.Errorf(`ids[a] = %q, want "start"`, got)
	}
	// "end" is a target-syntax keyword: suffixed, never emitted bare.
	if got := ids["b"]; got != "end_2" {
		t.Errorf(`ids[b] = %q, want "end_2"`, got)
	}
	// Same slug as node a: suffixed for uniqueness.
	if got := ids["c"]; got != "start_2" {
		t.Errorf(`ids[c] = %q, want "start_2"`, got)
	}
	// Empty label: positional placeholder.
	if got := ids["d"]; got != "node_4" {
		t.Errorf(`ids[d] = %q, want "node_4"`, got)
	}

	var reservedWarnings int
	for _, w := range warnings {
		if w.Code == errors.ErrCodeReservedWord {
			reservedWarnings++
			if w.SourceID != "b" {
				t.Errorf("reserved-word warning SourceID = %q, want b", w.SourceID)
			}
		}
	}
	if reservedWarnings != 1 {
		t.Errorf("reserved-word warnings = %d, want 1", reservedWarnings)
	}
}

func TestAllocatePairwiseDistinct(t *testing.T) {
	labels := []string{"x", "x", "x", "X", "x?", "", "", "end", "End", "END"}
	m := modelWithLabels(labels...)
	ids, _ := NewAllocator(nil).Allocate(m)

	seen := make(map[string]string)
	for src, id := range ids {
		if prev, dup := seen[id]; dup {
			t.Errorf("canonical id %q assigned to both %q and %q", id, prev, src)
		}
		seen[id] = src
	}
	if len(ids) != len(labels) {
		t.Errorf("len(ids) = %d, want %d", len(ids), len(labels))
	}
}

func TestAllocateConfiguredReservedWords(t *testing.T) {
	m := modelWithLabels("Gateway", "Other")
	ids, warnings := NewAllocator([]string{"gateway"}).Allocate(m)

	if got := ids["a"]; got == "gateway" {
		t.Error("configured reserved word was assigned")
	}
	if got := ids["a"]; got != "gateway_2" {
		t.Errorf(`ids[a] = %q, want "gateway_2"`, got)
	}
	if len(warnings) != 1 || warnings[0].Code != errors.ErrCodeReservedWord {
		t.Errorf("warnings = %+v, want one RESERVED_WORD", warnings)
	}
}

func TestAllocateDeterministic(t *testing.T) {
	m := modelWithLabels("a", "b", "a", "end")

	first, _ := NewAllocator(nil).Allocate(m)
	second, _ := NewAllocator(nil).Allocate(m)

	for src, id := range first {
		if second[src] != id {
			t.Errorf("allocation not deterministic: %q vs %q for %q", id, second[src], src)
		}
	}
}
