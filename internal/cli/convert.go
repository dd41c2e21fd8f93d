package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowmaid/pkg/config"
	"github.com/matzehuels/flowmaid/pkg/pipeline"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	output             string
	direction          string
	strict             bool
	page               int
	allPages           bool
	dropContainerEdges bool
	reserved           []string
	shapes             []string
	refresh            bool
	noCache            bool
	configPath         string
}

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	o := &convertOpts{}

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a diagram file to flowchart text",
		Long: `Convert a drawio diagram file into a Mermaid flowchart definition.

The input may be a plain XML file or a compressed export; pass "-" to read
from stdin. By default the first page is converted and written to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd, args[0], o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "write output to a file instead of stdout")
	f.StringVarP(&o.direction, "direction", "d", "", "layout direction: TD or LR (default: auto)")
	f.BoolVar(&o.strict, "strict", false, "treat recoverable warnings as errors")
	f.IntVarP(&o.page, "page", "p", 0, "zero-based page index to convert")
	f.BoolVarP(&o.allPages, "all-pages", "a", false, "convert every page in the document")
	f.BoolVar(&o.dropContainerEdges, "drop-container-edges", false, "omit connectors attached to containers")
	f.StringArrayVar(&o.reserved, "reserved-word", nil, "additional reserved identifier (repeatable)")
	f.StringArrayVar(&o.shapes, "shape", nil, "shape override as marker=brackets (repeatable)")
	f.BoolVar(&o.refresh, "refresh", false, "bypass the result cache")
	f.BoolVar(&o.noCache, "no-cache", false, "disable caching entirely")
	f.StringVar(&o.configPath, "config", "", "config file path")

	return cmd
}

func (c *CLI) runConvert(cmd *cobra.Command, path string, o *convertOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return err
	}
	opts, err := o.pipelineOptions(cmd, cfg)
	if err != nil {
		return err
	}
	opts.Logger = logger

	input, err := readInput(path)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(cfg, o.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	track := newProgress(logger)
	sp := newSpinner(ctx, "Converting "+path)
	sp.Start()
	result, err := runner.Convert(ctx, input, opts)
	sp.Stop()
	if err != nil {
		return err
	}
	track.done(fmt.Sprintf("Converted %d page(s)", len(result.Pages)))

	for _, skipped := range result.Skipped {
		printWarning("page %d (%s) skipped: %s", skipped.Index, skipped.Name, skipped.Reason)
	}
	nodes, edges := 0, 0
	for _, page := range result.Pages {
		nodes += page.Stats.Nodes
		edges += page.Stats.Edges
		for _, w := range page.Warnings {
			printWarning("page %d: %s [%s, cell %s]", page.Index, w.Detail, w.Code, w.SourceID)
		}
	}

	if err := o.writeOutput(result); err != nil {
		return err
	}
	if o.output != "" {
		printStats(nodes, edges, result.CacheHit)
	}
	return nil
}

// pipelineOptions merges the config file with explicitly set flags.
// Flags win; list-valued flags extend the config rather than replacing it.
func (o *convertOpts) pipelineOptions(cmd *cobra.Command, cfg *config.Config) (pipeline.Options, error) {
	opts := pipeline.Options{
		Direction:          cfg.Direction,
		Strict:             cfg.Strict,
		DropContainerEdges: cfg.DropContainerEdges,
		ReservedWords:      cfg.ReservedWords,
		ShapeOverrides:     cfg.ShapeOverrides,
		Page:               o.page,
		AllPages:           o.allPages,
		Refresh:            o.refresh,
	}

	flags := cmd.Flags()
	if flags.Changed("direction") {
		opts.Direction = o.direction
	}
	if flags.Changed("strict") {
		opts.Strict = o.strict
	}
	if flags.Changed("drop-container-edges") {
		opts.DropContainerEdges = o.dropContainerEdges
	}
	if len(o.reserved) > 0 {
		opts.ReservedWords = append(append([]string{}, opts.ReservedWords...), o.reserved...)
	}
	if len(o.shapes) > 0 {
		overrides, err := parseShapeFlags(o.shapes)
		if err != nil {
			return opts, err
		}
		merged := make(map[string]string, len(opts.ShapeOverrides)+len(overrides))
		for k, v := range opts.ShapeOverrides {
			merged[k] = v
		}
		for k, v := range overrides {
			merged[k] = v
		}
		opts.ShapeOverrides = merged
	}

	return opts, nil
}

func (o *convertOpts) writeOutput(result *pipeline.Result) error {
	if o.output == "" {
		for i, page := range result.Pages {
			if len(result.Pages) > 1 {
				if i > 0 {
					fmt.Println()
				}
				fmt.Println(pageHeader(page))
			}
			fmt.Print(page.Mermaid)
		}
		return nil
	}

	if len(result.Pages) == 1 {
		if err := os.WriteFile(o.output, []byte(result.Pages[0].Mermaid), 0o644); err != nil {
			return err
		}
		printFile(o.output)
		return nil
	}

	for _, page := range result.Pages {
		path := pageOutputPath(o.output, page.Index)
		if err := os.WriteFile(path, []byte(page.Mermaid), 0o644); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// pageHeader renders a comment line separating pages in stdout output.
func pageHeader(page pipeline.PageResult) string {
	if page.Name == "" {
		return fmt.Sprintf("%%%% page %d", page.Index)
	}
	return fmt.Sprintf("%%%% page %d: %s", page.Index, page.Name)
}

// pageOutputPath derives a per-page file name from the output flag by
// inserting the page index before the extension: out.mmd -> out-2.mmd.
func pageOutputPath(base string, index int) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s-%d%s", stem, index, ext)
}
