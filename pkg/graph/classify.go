package graph

import (
	"fmt"

	"github.com/matzehuels/flowmaid/pkg/errors"
	"github.com/matzehuels/flowmaid/pkg/mxgraph"
)

// Classify turns one page's flat cell list into the intermediate model.
// The two structural sentinel cells are discarded. Vertex cells become
// nodes, edge cells become edges, and anything else is skipped with an
// UNSUPPORTED_ELEMENT warning. Input order is preserved for both nodes and
// edges.
func Classify(cells []mxgraph.Cell) (*Model, []Warning) {
	m := &Model{
		Nodes: make(map[string]*Node),
	}
	var warnings []Warning

	for _, cell := range cells {
		if cell.IsSentinel() {
			continue
		}

		switch {
		case cell.Vertex:
			node := &Node{
				ID:       cell.ID,
				Label:    cell.Value,
				Style:    mxgraph.ParseStyle(cell.Style),
				RawStyle: cell.Style,
				Parent:   cell.Parent,
				Geometry: cell.Geometry,
			}
			if _, dup := m.Nodes[cell.ID]; dup {
				warnings = append(warnings, Warning{
					Code:     errors.ErrCodeUnsupportedElement,
					SourceID: cell.ID,
					Detail:   "duplicate cell id, keeping first occurrence",
				})
				continue
			}
			m.Nodes[cell.ID] = node
			m.Order = append(m.Order, cell.ID)

		case cell.Edge:
			m.Edges = append(m.Edges, Edge{
				ID:     cell.ID,
				Source: cell.Source,
				Target: cell.Target,
				Label:  cell.Value,
				Style:  mxgraph.ParseStyle(cell.Style),
			})

		default:
			warnings = append(warnings, Warning{
				Code:     errors.ErrCodeUnsupportedElement,
				SourceID: cell.ID,
				Detail:   fmt.Sprintf("cell %q is neither vertex nor edge", cell.ID),
			})
		}
	}

	return m, warnings
}
