// Package mermaid renders the intermediate graph model as Mermaid flowchart
// text.
//
// # Components
//
// The package is the back half of the conversion pipeline:
//
//   - Style mapping ([MapNodeStyle], [MapEdgeStyle]): parse the source style
//     vocabulary once into typed shape and arrow descriptors. Downstream code
//     pattern-matches on a closed set of variants, never on raw style text.
//   - Identifier allocation ([Allocator]): derive collision-free,
//     keyword-safe canonical identifiers from node labels.
//   - Orientation ([Orient]): pick a layout direction from leaf positions.
//   - Emission ([Emit]): walk the containment forest iteratively and write
//     nested subgraph blocks, node declarations, and connections in
//     deterministic order.
//
// All functions are pure; converting the same model twice yields
// byte-identical output.
package mermaid
