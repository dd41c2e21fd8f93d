package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowmaid/pkg/cache"
	"github.com/matzehuels/flowmaid/pkg/errors"
	"github.com/matzehuels/flowmaid/pkg/graph"
	"github.com/matzehuels/flowmaid/pkg/mermaid"
	"github.com/matzehuels/flowmaid/pkg/mxgraph"
	"github.com/matzehuels/flowmaid/pkg/observability"
)

// Runner encapsulates conversion with caching.
// Both CLI and server use this to avoid duplicating cache logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely share one Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// A nil keyer uses the DefaultKeyer; a nil cache disables caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Convert runs the complete decode → classify → emit pipeline with caching.
// input is the raw source file content, compressed or not.
func (r *Runner) Convert(ctx context.Context, input string, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	cacheKey := r.Keyer.ConversionKey([]byte(input), opts.keyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached Result
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "convert")
				opts.Logger.Debug("conversion served from cache", "key", cacheKey)
				cached.CacheHit = true
				return &cached, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "convert")
	}

	result, err := r.convert(ctx, input, opts)
	if err != nil {
		return nil, err
	}

	if !opts.Refresh {
		if data, err := json.Marshal(result); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLConversion)
			observability.Cache().OnCacheSet(ctx, "convert", len(data))
		}
	}

	return result, nil
}

func (r *Runner) convert(ctx context.Context, input string, opts Options) (*Result, error) {
	decodeStart := time.Now()
	observability.Conversion().OnDecodeStart(ctx, len(input))
	doc, err := mxgraph.ExtractPages(input)
	decodeTime := time.Since(decodeStart)
	if err != nil {
		observability.Conversion().OnDecodeComplete(ctx, 0, 0, decodeTime, err)
		return nil, err
	}
	observability.Conversion().OnDecodeComplete(ctx, len(doc.Pages), len(doc.Failed), decodeTime, nil)

	opts.Logger.Info("decoded document",
		"pages", len(doc.Pages),
		"failed", len(doc.Failed),
		"duration", decodeTime)

	if opts.Strict && len(doc.Failed) > 0 {
		return nil, doc.Failed[0].Err
	}

	pages, err := selectPages(doc, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, pe := range doc.Failed {
		result.Skipped = append(result.Skipped, SkippedPage{
			Index:  pe.Index,
			Name:   pe.Name,
			Reason: errors.UserMessage(pe.Err),
		})
	}

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageStart := time.Now()
		observability.Conversion().OnPageStart(ctx, page.Index, page.Name)
		pr, err := r.convertPage(page, opts)
		pageTime := time.Since(pageStart)
		if err != nil {
			observability.Conversion().OnPageComplete(ctx, page.Index, page.Name, 0, pageTime, err)
			return nil, err
		}
		observability.Conversion().OnPageComplete(ctx, page.Index, page.Name, len(pr.Warnings), pageTime, nil)

		opts.Logger.Info("converted page",
			"page", page.Index,
			"name", page.Name,
			"nodes", pr.Stats.Nodes,
			"edges", pr.Stats.Edges,
			"warnings", len(pr.Warnings),
			"duration", pageTime)

		if opts.Strict && len(pr.Warnings) > 0 {
			w := pr.Warnings[0]
			return nil, errors.NewWithSource(w.Code, w.SourceID, "%s", w.Detail)
		}

		result.Pages = append(result.Pages, *pr)
	}

	return result, nil
}

// selectPages resolves the page selection against the decoded document.
// Page indices refer to positions in the original document, so a selected
// page that failed to decode surfaces its decode error.
func selectPages(doc *mxgraph.Document, opts Options) ([]mxgraph.Page, error) {
	if opts.AllPages {
		return doc.Pages, nil
	}

	total := len(doc.Pages) + len(doc.Failed)
	if err := errors.ValidatePageIndex(opts.Page, total); err != nil {
		return nil, err
	}
	for _, page := range doc.Pages {
		if page.Index == opts.Page {
			return []mxgraph.Page{page}, nil
		}
	}
	for _, pe := range doc.Failed {
		if pe.Index == opts.Page {
			return nil, pe.Err
		}
	}
	return nil, errors.New(errors.ErrCodeInternal, "page %d missing from decoded document", opts.Page)
}

// convertPage turns one decoded page into flowchart text.
func (r *Runner) convertPage(page mxgraph.Page, opts Options) (*PageResult, error) {
	cells, err := mxgraph.ParseModel(page.XML)
	if err != nil {
		return nil, err
	}

	model, warnings := graph.Classify(cells)
	if err := graph.BuildHierarchy(model); err != nil {
		return nil, err
	}

	ids, idWarnings := mermaid.NewAllocator(opts.ReservedWords).Allocate(model)
	warnings = append(warnings, idWarnings...)

	shapes := make(map[string]mermaid.ShapeDescriptor, len(model.Order))
	containers := 0
	for _, id := range model.Order {
		node := model.Nodes[id]
		if node.Container {
			containers++
		}
		desc, w := mermaid.MapNodeStyle(node, opts.shapes)
		if w != nil {
			warnings = append(warnings, *w)
		}
		shapes[id] = desc
	}

	arrows := make([]mermaid.ArrowDescriptor, len(model.Edges))
	for i := range model.Edges {
		arrows[i] = mermaid.MapEdgeStyle(&model.Edges[i])
	}

	direction := opts.Direction
	if direction == "" {
		direction = mermaid.Orient(model)
	}

	text, emitWarnings := mermaid.Emit(mermaid.Input{
		Model:  model,
		IDs:    ids,
		Shapes: shapes,
		Arrows: arrows,
	}, mermaid.Options{
		Direction:          direction,
		DropContainerEdges: opts.DropContainerEdges,
	})
	warnings = append(warnings, emitWarnings...)

	return &PageResult{
		Index:    page.Index,
		Name:     page.Name,
		Mermaid:  text,
		Warnings: warnings,
		Stats: PageStats{
			Nodes:      len(model.Order) - containers,
			Edges:      len(model.Edges),
			Containers: containers,
		},
	}, nil
}

// Close releases resources held by the runner, primarily the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
