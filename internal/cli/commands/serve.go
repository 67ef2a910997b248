package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/loglens/pkg/config"
	"github.com/ccollicutt/loglens/pkg/server"
	"github.com/ccollicutt/loglens/pkg/source"
)

// ServeOptions holds command-line options for the serve command.
type ServeOptions struct {
	PipelineOptions

	Addr  string
	Title string
	Watch bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve <log-file>",
		Short: "Serve a decoded log file as an HTML page",
		Long: `Decode a log file and serve it as a browsable HTML page.

Routes:
  /         the decoded document
  /healthz  load status
  /metrics  Prometheus metrics

With --watch the page is rebuilt whenever the file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args, opts)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default from config, :8080)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "Page title")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Reload when the file changes")

	return cmd
}

func runServe(cmd *cobra.Command, args []string, opts *ServeOptions) error {
	logFile := args[0]

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := opts.loadConfig(ctx, cmd, func(cfg *config.Config) {
		if opts.Addr != "" {
			cfg.Server.Addr = opts.Addr
		}
		if opts.Title != "" {
			cfg.Server.Title = opts.Title
		}
		if opts.Watch {
			cfg.Server.Watch = true
		}
	})
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	srv := server.New(func(ctx context.Context) (*source.Document, error) {
		return source.Load(ctx, logFile, p.sourceOptions())
	}, server.Options{
		Title:   cfg.Server.Title,
		Logger:  p.logger,
		Metrics: p.metrics,
	})

	if err := srv.Reload(ctx); err != nil {
		return fmt.Errorf("loading log: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Server.Addr)
	})
	if cfg.Server.Watch {
		g.Go(func() error {
			return srv.Watch(gctx, logFile, server.DefaultDebounce)
		})
	}

	return g.Wait()
}
