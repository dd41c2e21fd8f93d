// Package graph builds the converter's intermediate model from raw mxgraph
// cells: typed nodes and edges, plus the containment forest that drives
// nested block emission.
//
// # Pipeline position
//
// [Classify] consumes the flat cell list of one page and produces a [Model]
// holding nodes (keyed by source id, creation order preserved) and edges.
// [BuildHierarchy] then resolves parent references into child lists, tags
// each node as container or leaf, and verifies the forest property: every
// node appears exactly once and no containment cycle exists.
//
// Both steps are pure functions of their input. All state is owned by the
// returned Model and discarded with it; nothing persists across conversions.
package graph
