package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowmaid/internal/server"
	"github.com/matzehuels/flowmaid/pkg/config"
	"github.com/matzehuels/flowmaid/pkg/pipeline"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		listen     string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion server",
		Long: `Run an HTTP server exposing the conversion pipeline.

The server offers POST /v1/convert and POST /v1/pages with JSON bodies, and
GET /healthz for liveness checks. With a Redis address configured, results
are cached in Redis so multiple instances share one cache.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Server.Listen = listen
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", ":8080", "bind address")
	cmd.Flags().StringVar(&configPath, "config", "", "config file path")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg *config.Config) error {
	store, err := newCache(cfg, false)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(store, nil, c.Logger)
	defer runner.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           server.New(runner, c.Logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("server listening", "addr", cfg.Server.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
