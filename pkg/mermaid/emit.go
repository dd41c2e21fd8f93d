package mermaid

import (
	"fmt"
	"strings"

	"github.com/matzehuels/flowmaid/pkg/errors"
	"github.com/matzehuels/flowmaid/pkg/graph"
)

// indent is one nesting level of block indentation.
const indent = "    "

// Input bundles everything the emitter consumes: the containment forest, the
// canonical identifier map, and the typed style descriptors. Shapes is keyed
// by source id; Arrows is parallel to Model.Edges.
type Input struct {
	Model  *graph.Model
	IDs    map[string]string
	Shapes map[string]ShapeDescriptor
	Arrows []ArrowDescriptor
}

// Options configures emission.
type Options struct {
	// Direction is the header layout direction ("TD" or "LR"). Resolve it
	// with [Orient] or a configuration override before calling Emit.
	Direction string

	// DropContainerEdges skips connectors whose endpoint is a container.
	// By default such edges are kept; the target syntax permits connectors
	// that cross block boundaries.
	DropContainerEdges bool
}

// Emit renders one page as Mermaid flowchart text.
//
// Nodes come first: the forest is walked depth-first with an explicit stack
// (pathological nesting cannot exhaust the call stack), containers open
// nested subgraph blocks, leaves emit declaration lines. Edges follow in
// input order. Every classified node is declared exactly once; output is
// deterministic for a given input.
//
// Dangling edges are skipped with a DANGLING_EDGE warning; strict-mode
// escalation is the caller's policy.
func Emit(in Input, opts Options) (string, []graph.Warning) {
	var (
		b        strings.Builder
		warnings []graph.Warning
	)

	direction := opts.Direction
	if direction == "" {
		direction = DirectionTopDown
	}
	fmt.Fprintf(&b, "flowchart %s\n", direction)

	emitNodes(&b, in)
	warnings = append(warnings, emitEdges(&b, in, opts)...)

	return b.String(), warnings
}

// frame is one explicit-stack entry: a node about to be emitted, or the
// pending close of a container block.
type frame struct {
	id    string
	depth int
	close bool
}

func emitNodes(b *strings.Builder, in Input) {
	m := in.Model

	stack := make([]frame, 0, len(m.Order))
	for i := len(m.Roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{id: m.Roots[i]})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		pad := strings.Repeat(indent, f.depth)
		if f.close {
			b.WriteString(pad + "end\n")
			continue
		}

		node := m.Nodes[f.id]
		id := in.IDs[f.id]

		if node.Container {
			if label := StripMarkup(node.Label); label != "" {
				fmt.Fprintf(b, "%ssubgraph %s[%s]\n", pad, id, QuoteLabel(node.Label))
			} else {
				fmt.Fprintf(b, "%ssubgraph %s\n", pad, id)
			}
			stack = append(stack, frame{id: f.id, depth: f.depth, close: true})
			for i := len(node.Children) - 1; i >= 0; i-- {
				stack = append(stack, frame{id: node.Children[i], depth: f.depth + 1})
			}
			continue
		}

		shape := in.Shapes[f.id]
		label := node.Label
		if StripMarkup(label) == "" {
			// A blank box still needs visible text in the output.
			label = id
		}
		fmt.Fprintf(b, "%s%s%s%s%s\n", pad, id, shape.Open, QuoteLabel(label), shape.Close)
	}
}

func emitEdges(b *strings.Builder, in Input, opts Options) []graph.Warning {
	m := in.Model
	var warnings []graph.Warning

	for i, e := range m.Edges {
		src, srcOK := in.IDs[e.Source]
		dst, dstOK := in.IDs[e.Target]
		if !srcOK || !dstOK {
			missing := e.Source
			if srcOK {
				missing = e.Target
			}
			warnings = append(warnings, graph.Warning{
				Code:     errors.ErrCodeDanglingEdge,
				SourceID: e.ID,
				Detail:   fmt.Sprintf("endpoint %q does not resolve to a node, edge dropped", missing),
			})
			continue
		}

		if opts.DropContainerEdges && (m.Nodes[e.Source].Container || m.Nodes[e.Target].Container) {
			continue
		}

		arrow := in.Arrows[i]
		label := StripMarkup(e.Label)

		if arrow.Bidirectional() {
			// No two-headed arrow primitive exists; approximate with one
			// directed connector per direction. The label rides on the
			// forward connector.
			fmt.Fprintf(b, "%s %s %s\n", src, connector(arrow, label), dst)
			fmt.Fprintf(b, "%s %s %s\n", dst, connector(arrow, ""), src)
			continue
		}

		fmt.Fprintf(b, "%s %s %s\n", src, connector(arrow, label), dst)
	}

	return warnings
}

// connector builds the arrow token, embedding the label when present:
// "-->", "-- "l" -->", "-.->", "-. "l" .->", "---", "-.-" and their
// combinations.
func connector(a ArrowDescriptor, label string) string {
	directed := !a.Undirected()

	var bare, labeled string
	switch {
	case a.Dashed && directed:
		bare, labeled = "-.->", "-. %s .->"
	case a.Dashed:
		bare, labeled = "-.-", "-. %s .-"
	case directed:
		bare, labeled = "-->", "-- %s -->"
	default:
		bare, labeled = "---", "-- %s ---"
	}

	if label == "" {
		return bare
	}
	return fmt.Sprintf(labeled, QuoteLabel(label))
}
