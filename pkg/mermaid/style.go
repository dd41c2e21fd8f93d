package mermaid

import (
	"fmt"
	"sort"

	"github.com/matzehuels/flowmaid/pkg/errors"
	"github.com/matzehuels/flowmaid/pkg/graph"
	"github.com/matzehuels/flowmaid/pkg/mxgraph"
)

// ShapeKind is the closed set of node shapes the target syntax supports.
type ShapeKind int

const (
	// ShapeRect is the plain rectangle, the default when no marker matches.
	ShapeRect ShapeKind = iota
	// ShapeRound is a rectangle with rounded corners.
	ShapeRound
	// ShapeEllipse is a circle/ellipse (start and end markers, typically).
	ShapeEllipse
	// ShapeDiamond is the decision rhombus.
	ShapeDiamond
	// ShapeCustom carries a bracket pair from a configured shape override.
	ShapeCustom
)

// ShapeDescriptor is the typed result of node style mapping: the shape kind
// plus the bracket pair that wraps the label in a declaration line.
type ShapeDescriptor struct {
	Kind  ShapeKind
	Open  string
	Close string
}

var (
	shapeRect    = ShapeDescriptor{Kind: ShapeRect, Open: "[", Close: "]"}
	shapeRound   = ShapeDescriptor{Kind: ShapeRound, Open: "(", Close: ")"}
	shapeEllipse = ShapeDescriptor{Kind: ShapeEllipse, Open: "((", Close: "))"}
	shapeDiamond = ShapeDescriptor{Kind: ShapeDiamond, Open: "{", Close: "}"}
)

// bracketTokens are the bracket-pair tokens accepted in shape overrides.
var bracketTokens = map[string]ShapeDescriptor{
	"[]":   shapeRect,
	"()":   shapeRound,
	"(())": shapeEllipse,
	"{}":   shapeDiamond,
	"{{}}": {Kind: ShapeCustom, Open: "{{", Close: "}}"},
	"([])": {Kind: ShapeCustom, Open: "([", Close: "])"},
	"[[]]": {Kind: ShapeCustom, Open: "[[", Close: "]]"},
	"[()]": {Kind: ShapeCustom, Open: "[(", Close: ")]"},
	">]":   {Kind: ShapeCustom, Open: ">", Close: "]"},
}

// ParseShapeOverrides validates a marker → bracket-pair-token mapping from
// configuration and resolves it to typed descriptors.
func ParseShapeOverrides(overrides map[string]string) (map[string]ShapeDescriptor, error) {
	if len(overrides) == 0 {
		return nil, nil
	}
	out := make(map[string]ShapeDescriptor, len(overrides))
	for marker, token := range overrides {
		desc, ok := bracketTokens[token]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidOption,
				"unknown bracket pair %q for shape override %q", token, marker)
		}
		out[marker] = desc
	}
	return out, nil
}

// Style markers recognized by the built-in node rules.
var (
	decisionMarkers = []string{"rhombus", "decision"}
	roundedMarkers  = []string{"stadium"}
	ellipseMarkers  = []string{"ellipse", "doubleEllipse", "circle"}
)

// knownShapeValues lists the shape= values covered by the rule table; any
// other explicit value triggers an UNRECOGNIZED_STYLE warning.
var knownShapeValues = map[string]bool{
	"rhombus": true, "decision": true, "stadium": true,
	"ellipse": true, "doubleEllipse": true, "circle": true,
	"rect": true, "rectangle": true,
}

// MapNodeStyle resolves a node's parsed style to a shape descriptor.
//
// Rules are tested in a fixed order so that style strings carrying several
// markers resolve deterministically: configured overrides first (sorted by
// marker for determinism), then decision markers, rounded markers, ellipse
// markers, and finally the plain rectangle.
//
// A warning is returned for an explicit shape= value no rule covers; the
// node falls back to the rectangle in that case.
func MapNodeStyle(n *graph.Node, overrides map[string]ShapeDescriptor) (ShapeDescriptor, *graph.Warning) {
	style := n.Style

	if len(overrides) > 0 {
		markers := make([]string, 0, len(overrides))
		for m := range overrides {
			markers = append(markers, m)
		}
		sort.Strings(markers)
		for _, m := range markers {
			if hasMarker(style, m) {
				return overrides[m], nil
			}
		}
	}

	for _, m := range decisionMarkers {
		if hasMarker(style, m) {
			return shapeDiamond, nil
		}
	}

	if style.Enabled("rounded") {
		return shapeRound, nil
	}
	for _, m := range roundedMarkers {
		if hasMarker(style, m) {
			return shapeRound, nil
		}
	}

	for _, m := range ellipseMarkers {
		if hasMarker(style, m) {
			return shapeEllipse, nil
		}
	}

	if shape, ok := style.Get("shape"); ok && shape != "" && !knownShapeValues[shape] {
		return shapeRect, &graph.Warning{
			Code:     errors.ErrCodeUnrecognizedStyle,
			SourceID: n.ID,
			Detail:   fmt.Sprintf("shape %q has no mapping, using rectangle", shape),
		}
	}

	return shapeRect, nil
}

// hasMarker matches a marker either as a bare style token or as the value of
// the shape= key, the two spellings the source editor uses.
func hasMarker(style mxgraph.Style, marker string) bool {
	if style.Has(marker) {
		return true
	}
	shape, _ := style.Get("shape")
	return shape == marker
}

// ArrowHead is an edge terminal decoration.
type ArrowHead int

const (
	// ArrowNone suppresses the arrowhead.
	ArrowNone ArrowHead = iota
	// ArrowNormal is the standard directed arrowhead.
	ArrowNormal
)

// ArrowDescriptor is the typed result of edge style mapping.
type ArrowDescriptor struct {
	Dashed bool
	Start  ArrowHead
	End    ArrowHead
}

// Undirected reports whether arrowheads are suppressed at both ends; such a
// connector renders as a plain line.
func (a ArrowDescriptor) Undirected() bool {
	return a.Start == ArrowNone && a.End == ArrowNone
}

// Bidirectional reports whether the connector carries an arrowhead at its
// origin end. The target syntax has no two-headed arrow primitive, so these
// connectors are approximated by two directed lines, one per direction.
func (a ArrowDescriptor) Bidirectional() bool {
	return a.Start == ArrowNormal
}

// MapEdgeStyle resolves an edge's parsed style to an arrow descriptor. The
// source format's defaults apply: no start arrowhead, a normal end
// arrowhead, solid line.
func MapEdgeStyle(e *graph.Edge) ArrowDescriptor {
	desc := ArrowDescriptor{
		Dashed: e.Style.Enabled("dashed"),
		Start:  ArrowNone,
		End:    ArrowNormal,
	}

	if v, ok := e.Style.Get("startArrow"); ok && v != "" && v != "none" {
		desc.Start = ArrowNormal
	}
	if v, ok := e.Style.Get("endArrow"); ok && v == "none" {
		desc.End = ArrowNone
	}

	return desc
}
