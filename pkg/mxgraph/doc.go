// Package mxgraph loads draw.io (diagrams.net) documents into a flat cell
// model that the converter consumes.
//
// A draw.io file is an <mxfile> wrapper holding one <diagram> element per
// page. Page content is either plain <mxGraphModel> XML or a base64-encoded,
// DEFLATE-compressed (and sometimes URL-encoded) payload of the same XML.
// [ExtractPages] unwraps every page it can; [ParseModel] turns one page's XML
// into []Cell.
//
// The package performs no interpretation of cells beyond lexical parsing.
// Classification into nodes and edges is the job of the graph package.
package mxgraph
