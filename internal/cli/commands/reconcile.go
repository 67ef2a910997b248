package commands

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/loglens/internal/logging"
	"github.com/ccollicutt/loglens/pkg/source"
)

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand() *cobra.Command {
	opts := &PipelineOptions{}

	cmd := &cobra.Command{
		Use:   "reconcile <log-file>",
		Short: "Rebuild complete values from streamed fragments",
		Long: `Scan a log that records incremental generation output and print one
line per recovered field:

  model, prompt.<role>, prompt.sequence, prompt.raw,
  response.reasoning, response.content, response.text

Overlapping fragments are spliced once, repeated fragments are dropped.
Each value is printed as a quoted literal so the output can be fed back
into loglens dump.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Configuration file (defaults apply when omitted)")
	cmd.Flags().StringVar(&opts.Grammar, "grammar", "", "Literal grammar (extended|python)")
	cmd.Flags().StringVar(&opts.Sentinel, "sentinel", "", "Section marker line to skip")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")

	return cmd
}

func runReconcile(cmd *cobra.Command, args []string, opts *PipelineOptions) error {
	logFile := args[0]
	ctx := commandContext(cmd)

	cfg, err := opts.loadConfig(ctx, cmd)
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	lines, err := source.ReadLines(ctx, logFile)
	if err != nil {
		return fmt.Errorf("reading log: %w", err)
	}

	result := p.newReconciler().Reconcile(strings.Join(lines, "\n"))

	logging.For(p.logger, logging.ComponentReconcile).WithFields(logrus.Fields{
		"path":           logFile,
		"fragment_lines": len(lines),
		"fields":         result.LineCount,
	}).Debug("reconciled")

	if result.LineCount == 0 {
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Text)
	return err
}
