package graph

import (
	"github.com/matzehuels/flowmaid/pkg/errors"
)

// containerMarkers are the style tokens that mark a vertex as a grouping
// element in the source vocabulary.
var containerMarkers = []string{"group", "swimlane", "lane"}

// BuildHierarchy resolves parent references into the containment forest and
// tags containers.
//
// A node is a container when its style carries a group/lane marker OR it has
// at least one child; either condition alone is sufficient, so a
// group-styled node with no children still opens an (empty) block and a
// plain-styled node that happens to have children is treated as their
// container.
//
// Nodes whose parent is not a classified node (typically the default layer)
// become forest roots. A cycle in the parent chain is a fatal
// CYCLIC_HIERARCHY error; the model is unusable in that case.
func BuildHierarchy(m *Model) error {
	for _, id := range m.Order {
		node := m.Nodes[id]
		if parent, ok := m.Nodes[node.Parent]; ok {
			parent.Children = append(parent.Children, id)
		} else {
			m.Roots = append(m.Roots, id)
		}
	}

	if err := checkAcyclic(m); err != nil {
		return err
	}

	for _, id := range m.Order {
		node := m.Nodes[id]
		node.Container = hasContainerMarker(node) || len(node.Children) > 0
	}

	return nil
}

func hasContainerMarker(n *Node) bool {
	for _, marker := range containerMarkers {
		if n.Style.Has(marker) {
			return true
		}
	}
	return false
}

// checkAcyclic walks every node's ancestor chain. The chain must terminate
// at a non-node parent (the default layer or root sentinel); revisiting an
// id before that means the containment structure is not a forest.
func checkAcyclic(m *Model) error {
	// done holds ids whose chains are already known to terminate, so the
	// total work stays linear in the node count.
	done := make(map[string]bool, len(m.Order))

	for _, start := range m.Order {
		if done[start] {
			continue
		}

		visited := make(map[string]bool)
		for id := start; ; {
			if done[id] {
				break
			}
			if visited[id] {
				return errors.NewWithSource(errors.ErrCodeCyclicHierarchy, id,
					"containment cycle detected in parent chain")
			}
			visited[id] = true

			node, ok := m.Nodes[id]
			if !ok {
				break
			}
			next, ok := m.Nodes[node.Parent]
			if !ok {
				break
			}
			id = next.ID
		}

		for id := range visited {
			done[id] = true
		}
	}

	return nil
}
