package commands

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/loglens/pkg/config"
	"github.com/ccollicutt/loglens/pkg/output"
	"github.com/ccollicutt/loglens/pkg/source"
	"github.com/ccollicutt/loglens/pkg/webhook"
)

// DumpOptions holds command-line options for the dump command.
type DumpOptions struct {
	PipelineOptions

	Output  string
	Verbose bool
	Quiet   bool
	Strict  bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewDumpCommand creates the dump command.
func NewDumpCommand() *cobra.Command {
	opts := &DumpOptions{}

	cmd := &cobra.Command{
		Use:   "dump <file|glob>...",
		Short: "Decode log lines into structured values",
		Long: `Decode every line of the given log files into typed values.

Each line is tried as:
  - a shell command (curl and friends)
  - JSON
  - a literal (dicts, lists, strings, numbers, records such as Point(1, 2))
  - keyword arguments (name='Alice', age=30)
  - key/value segments (a=1; b: two)
and falls back to raw text. Repeated lines are collapsed into one line
with a repeat count.

Files are decoded concurrently and printed in argument order.

Exit codes:
  0 - Success
  1 - Raw lines found (with --strict)
  2 - Configuration or runtime error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd, args, opts)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json|tree|html)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show the strategy that decoded each line")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Exit 1 when any line could not be decoded")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "always", "When to fire webhook (always|on_raw|never)")

	return cmd
}

func runDump(cmd *cobra.Command, args []string, opts *DumpOptions) error {
	ctx := commandContext(cmd)
	start := time.Now()

	cfg, err := opts.loadConfig(ctx, cmd)
	if err != nil {
		return err
	}

	formatter, err := output.New(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
		Title:   cfg.Server.Title,
	})
	if err != nil {
		return err
	}

	hooks, err := collectWebhooks(cfg, opts)
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	files, err := source.ExpandGlobs(args)
	if err != nil {
		return fmt.Errorf("expanding log files: %w", err)
	}

	docs := make([]*source.Document, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			doc, err := source.Load(gctx, file, p.sourceOptions())
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("loading logs: %w", err)
	}

	report := output.NewReport(docs, output.Metadata{
		ConfigFile:  opts.ConfigPath,
		Grammar:     cfg.Profile().Name,
		GeneratedAt: time.Now(),
		Duration:    time.Since(start),
	})

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Webhook failures are logged but don't fail the dump
	webhook.NewClient(p.logger).Dispatch(ctx, report, hooks)

	if opts.Strict && report.HasRaw() {
		ExitCode = 1
	}

	return nil
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *DumpOptions) ([]config.WebhookConfig, error) {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL == "" {
		return webhooks, nil
	}

	cli := config.WebhookConfig{
		Name:    "cli",
		URL:     opts.WebhookURL,
		Token:   opts.WebhookToken,
		Trigger: config.WebhookTrigger(opts.WebhookTrigger),
	}
	if err := config.ValidateWebhook(&cli); err != nil {
		return nil, fmt.Errorf("invalid webhook flags: %w", err)
	}

	return append(webhooks, cli), nil
}
