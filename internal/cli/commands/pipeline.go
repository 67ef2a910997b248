package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/loglens/internal/logging"
	"github.com/ccollicutt/loglens/pkg/classify"
	"github.com/ccollicutt/loglens/pkg/config"
	"github.com/ccollicutt/loglens/pkg/metrics"
	"github.com/ccollicutt/loglens/pkg/reconcile"
	"github.com/ccollicutt/loglens/pkg/source"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// PipelineOptions holds the flags shared by every command that decodes logs.
// Flags that were set override the configuration file.
type PipelineOptions struct {
	ConfigPath string
	Grammar    string
	Reconcile  bool
	Sentinel   string
	NoDedup    bool
	NoJoin     bool
	LogLevel   string
}

func (o *PipelineOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.ConfigPath, "config", "c", "", "Configuration file (defaults apply when omitted)")
	cmd.Flags().StringVar(&o.Grammar, "grammar", "", "Literal grammar (extended|python)")
	cmd.Flags().BoolVar(&o.Reconcile, "reconcile", false, "Reconstruct streamed fragments before decoding")
	cmd.Flags().StringVar(&o.Sentinel, "sentinel", "", "Section marker line skipped while reconciling")
	cmd.Flags().BoolVar(&o.NoDedup, "no-dedup", false, "Do not collapse repeated lines")
	cmd.Flags().BoolVar(&o.NoJoin, "no-join", false, "Do not join backslash continuation lines")
	cmd.Flags().StringVar(&o.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
}

// loadConfig loads the configuration file and applies flag overrides, then
// any command specific overrides, before validating the result.
func (o *PipelineOptions) loadConfig(ctx context.Context, cmd *cobra.Command, overrides ...func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(ctx, o.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("grammar") {
		cfg.Grammar = o.Grammar
	}
	if o.Reconcile {
		cfg.Reconcile.Enabled = true
	}
	if flags.Changed("sentinel") {
		cfg.Reconcile.Sentinel = o.Sentinel
	}
	if o.NoDedup {
		cfg.Preprocess.Dedup = false
	}
	if o.NoJoin {
		cfg.Preprocess.JoinContinuations = false
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.LogLevel
	}
	for _, override := range overrides {
		override(cfg)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// pipeline is everything needed to load and decode documents.
type pipeline struct {
	cfg        *config.Config
	logger     *logrus.Logger
	metrics    *metrics.Metrics
	classifier *classify.Classifier
	reconciler *reconcile.Reconciler
}

func newPipeline(cfg *config.Config, stderr io.Writer) (*pipeline, error) {
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	m := metrics.New()
	p := &pipeline{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		classifier: classify.New(
			classify.WithProfile(cfg.Profile()),
			classify.WithContinuations(cfg.Preprocess.JoinContinuations),
			classify.WithDedup(cfg.Preprocess.Dedup),
			classify.WithObserver(m.ObserveStrategy),
		),
	}

	if cfg.Reconcile.Enabled {
		// Fragment lines are not counted by the strategy observer.
		p.reconciler = p.newReconciler()
	}
	return p, nil
}

func (p *pipeline) newReconciler() *reconcile.Reconciler {
	return reconcile.New(
		classify.New(classify.WithProfile(p.cfg.Profile())),
		reconcile.WithSentinel(p.cfg.Reconcile.Sentinel),
	)
}

func (p *pipeline) sourceOptions() source.Options {
	return source.Options{
		Classifier: p.classifier,
		Reconciler: p.reconciler,
		Logger:     p.logger,
		Metrics:    p.metrics,
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
