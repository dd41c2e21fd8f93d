package graph

import (
	"github.com/matzehuels/flowmaid/pkg/errors"
	"github.com/matzehuels/flowmaid/pkg/mxgraph"
)

// Node is a classified vertex cell. Children and Container are populated by
// [BuildHierarchy]; until then Children is nil and Container reflects only
// the zero value.
type Node struct {
	ID       string
	Label    string
	Style    mxgraph.Style
	RawStyle string
	Parent   string // source parent id; may reference a layer rather than a node

	// Geometry is nil for vertices without position information.
	Geometry *mxgraph.Geometry

	// Children holds child node ids in document order.
	Children []string

	// Container marks group/swimlane nodes that emit as nested blocks.
	Container bool
}

// Edge is a classified edge cell. Source and Target reference cell ids and
// are not guaranteed to resolve to known nodes (dangling edges are handled
// downstream).
type Edge struct {
	ID     string
	Source string
	Target string
	Label  string
	Style  mxgraph.Style
}

// Model is the intermediate representation of one diagram page.
type Model struct {
	// Nodes maps source id to node. Use Order for deterministic iteration.
	Nodes map[string]*Node

	// Order lists node ids in document (creation) order.
	Order []string

	// Edges lists edges in document order.
	Edges []Edge

	// Roots lists forest root node ids in document order. Populated by
	// [BuildHierarchy].
	Roots []string
}

// Node returns the node with the given source id, or nil.
func (m *Model) Node(id string) *Node {
	return m.Nodes[id]
}

// HasNode reports whether a source id resolves to a classified node.
func (m *Model) HasNode(id string) bool {
	_, ok := m.Nodes[id]
	return ok
}

// Warning is a recoverable conversion finding reported alongside the output.
type Warning struct {
	Code     errors.Code `json:"code"`
	SourceID string      `json:"source_id,omitempty"`
	Detail   string      `json:"detail"`
}
