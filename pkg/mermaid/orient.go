package mermaid

import "github.com/matzehuels/flowmaid/pkg/graph"

// Layout directions for the flowchart header.
const (
	DirectionTopDown     = "TD"
	DirectionLeftToRight = "LR"
)

// Orient picks a layout direction from node positions: when the diagram's
// horizontal span exceeds its vertical span, left-to-right reads better,
// otherwise top-down. Only leaf extents count — container boxes are large by
// construction and would skew the comparison. Without any positioned leaf
// the choice defaults to top-down.
func Orient(m *graph.Model) string {
	var (
		minX, minY, maxX, maxY float64
		seen                   bool
	)

	for _, id := range m.Order {
		n := m.Nodes[id]
		if n.Container || n.Geometry == nil {
			continue
		}
		g := n.Geometry
		if !seen {
			minX, minY = g.X, g.Y
			maxX, maxY = g.X+g.Width, g.Y+g.Height
			seen = true
			continue
		}
		minX = min(minX, g.X)
		minY = min(minY, g.Y)
		maxX = max(maxX, g.X+g.Width)
		maxY = max(maxY, g.Y+g.Height)
	}

	if seen && maxX-minX > maxY-minY {
		return DirectionLeftToRight
	}
	return DirectionTopDown
}
