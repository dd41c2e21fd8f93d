// Package cli implements the flowmaid command-line interface.
//
// This package provides commands for converting diagram files to flowchart
// text, listing document pages, serving the conversion API over HTTP, and
// managing the result cache. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - convert: Convert a diagram file to flowchart text
//   - pages: List the pages of a diagram file
//   - serve: Run the HTTP conversion server
//   - cache: Manage the conversion result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/matzehuels/flowmaid/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowmaid/pkg/buildinfo"
	"github.com/matzehuels/flowmaid/pkg/cache"
	"github.com/matzehuels/flowmaid/pkg/config"
	"github.com/matzehuels/flowmaid/pkg/errors"
	"github.com/matzehuels/flowmaid/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "flowmaid"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Flowmaid converts diagram files to flowchart text",
		Long:         `Flowmaid is a CLI tool for converting drawio diagram files into Mermaid flowchart definitions, preserving shapes, containers, and connector styles.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.convertCommand())
	root.AddCommand(c.pagesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

func newCache(cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache || !cfg.Cache.Enabled {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.RedisAddr != "" {
		return cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB), nil
	}
	return cache.NewFileCache(cfg.CacheDir())
}

// loadConfig loads an explicit config file, or searches the defaults when
// path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}

// readInput reads the source file, or stdin when path is "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "reading stdin")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "input file %s", path)
		}
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "reading %s", path)
	}
	return string(data), nil
}

// parseShapeFlags parses repeated marker=brackets flags into a map.
func parseShapeFlags(flags []string) (map[string]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(flags))
	for _, f := range flags {
		marker, brackets, ok := strings.Cut(f, "=")
		if !ok || marker == "" || brackets == "" {
			return nil, errors.New(errors.ErrCodeInvalidOption,
				"shape override %q must have the form marker=brackets", f)
		}
		out[marker] = brackets
	}
	return out, nil
}
