// Package pipeline provides the core conversion pipeline for Flowmaid.
//
// This package implements the complete decode → classify → emit pipeline
// that is shared by the CLI and the HTTP server. Centralizing it keeps
// behavior consistent across entry points and avoids code duplication.
//
// # Architecture
//
// A conversion runs in four stages per page:
//
//  1. Decode: extract pages from the source file and decompress payloads
//  2. Classify: turn raw cells into a node/edge model with a hierarchy
//  3. Map: allocate identifiers and resolve shapes and arrows
//  4. Emit: write the flowchart text
//
// Stage boundaries match the package boundaries of mxgraph, graph, and
// mermaid; the pipeline only sequences them and adds caching.
//
// # Usage
//
// Create a Runner and convert a document:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{AllPages: true}
//	result, err := runner.Convert(ctx, data, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Pages[0].Mermaid)
package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowmaid/pkg/cache"
	"github.com/matzehuels/flowmaid/pkg/errors"
	"github.com/matzehuels/flowmaid/pkg/graph"
	"github.com/matzehuels/flowmaid/pkg/mermaid"
)

// Options contains all configuration for a conversion run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Direction forces the layout direction ("TD" or "LR"). Empty selects
	// automatically from page geometry.
	Direction string `json:"direction,omitempty"`

	// Strict promotes the first recoverable warning on a page to an error.
	Strict bool `json:"strict,omitempty"`

	// DropContainerEdges omits connectors with a container endpoint.
	DropContainerEdges bool `json:"drop_container_edges,omitempty"`

	// ShapeOverrides maps style tokens to bracket pairs, e.g.
	// "hexagon" -> "{{}}".
	ShapeOverrides map[string]string `json:"shape_overrides,omitempty"`

	// ReservedWords extends the identifier blocklist.
	ReservedWords []string `json:"reserved_words,omitempty"`

	// Page selects a single page by zero-based index. Ignored when
	// AllPages is set.
	Page int `json:"page,omitempty"`

	// AllPages converts every decodable page.
	AllPages bool `json:"all_pages,omitempty"`

	// Refresh bypasses the cache for both read and write.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// shapes holds the parsed ShapeOverrides after validation.
	shapes map[string]mermaid.ShapeDescriptor

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks option fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidateDirection(o.Direction); err != nil {
		return err
	}
	for _, word := range o.ReservedWords {
		if err := errors.ValidateReservedWord(word); err != nil {
			return err
		}
	}
	if o.Page < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "page index must not be negative, got %d", o.Page)
	}

	shapes, err := mermaid.ParseShapeOverrides(o.ShapeOverrides)
	if err != nil {
		return err
	}
	o.shapes = shapes

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// keyOpts returns the option fields that participate in the cache key.
func (o *Options) keyOpts() cache.ConversionKeyOpts {
	return cache.ConversionKeyOpts{
		Direction:          o.Direction,
		Strict:             o.Strict,
		DropContainerEdges: o.DropContainerEdges,
		ShapeOverrides:     o.ShapeOverrides,
		ReservedWords:      o.ReservedWords,
		Page:               o.Page,
		AllPages:           o.AllPages,
	}
}

// Result contains the outputs of a conversion run.
type Result struct {
	// Pages holds one entry per converted page, in document order.
	Pages []PageResult `json:"pages"`

	// Skipped lists pages whose payload could not be decoded. The rest of
	// the document still converts.
	Skipped []SkippedPage `json:"skipped,omitempty"`

	// CacheHit reports whether the whole result came from cache.
	CacheHit bool `json:"cache_hit,omitempty"`
}

// PageResult is the conversion output for a single page.
type PageResult struct {
	Index    int             `json:"index"`
	Name     string          `json:"name,omitempty"`
	Mermaid  string          `json:"mermaid"`
	Warnings []graph.Warning `json:"warnings,omitempty"`
	Stats    PageStats       `json:"stats"`
}

// PageStats counts what a page contained.
type PageStats struct {
	Nodes      int `json:"nodes"`
	Edges      int `json:"edges"`
	Containers int `json:"containers"`
}

// SkippedPage records a page that failed to decode.
type SkippedPage struct {
	Index  int    `json:"index"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}
