package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/loglens/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a loglens configuration file without decoding any logs.

Checks:
  - YAML syntax
  - Grammar name
  - Reconcile sentinel
  - Listen address
  - Logging level and format
  - Webhook URLs and triggers`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := commandContext(cmd)
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Grammar:     %s\n", cfg.Profile().Name)
	fmt.Fprintf(w, "  Preprocess:  join_continuations=%t dedup=%t\n",
		cfg.Preprocess.JoinContinuations, cfg.Preprocess.Dedup)
	if cfg.Reconcile.Enabled {
		fmt.Fprintf(w, "  Reconcile:   enabled (sentinel %q)\n", cfg.Reconcile.Sentinel)
	} else {
		fmt.Fprintf(w, "  Reconcile:   disabled\n")
	}
	fmt.Fprintf(w, "  Server:      %s (watch=%t)\n", cfg.Server.Addr, cfg.Server.Watch)
	fmt.Fprintf(w, "  Logging:     %s/%s\n", cfg.Logging.Level, cfg.Logging.Format)
	fmt.Fprintf(w, "  Webhooks:    %d\n", len(cfg.Webhooks))

	for i, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}
		fmt.Fprintf(w, "  %d. [%s] %s (timeout %s)\n", i+1, wh.Trigger, name, wh.Timeout)
	}

	return nil
}
