package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/loglens/pkg/detector"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	ShowAll     bool
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <log-file>",
		Short: "Detect which literal grammar decodes a log file best",
		Long: `Sample a log file and decode it with every literal grammar.

Reports the share of lines each grammar decodes, which decoding
strategies matched, and a ready-to-use YAML configuration snippet.

Optionally generates a starter config file with --write-config.

Grammars:
  - extended (single and double quotes, JSON escapes, null/true/false)
  - python   (single quotes, None/True/False)

Example:
  loglens detect /var/log/agent.log
  loglens detect --sample 500 /var/log/large.log
  loglens detect -w loglens.yaml /var/log/agent.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", detector.DefaultSampleSize, "Number of lines to sample")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show every grammar, not just the best match")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	logFile := args[0]
	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		return fmt.Errorf("log file not found: %s", logFile)
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize))

	result, err := d.DetectFromFile(ctx, logFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	if opts.WriteConfig != "" {
		if err := writeStarterConfig(out, result, opts.WriteConfig); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(out, result, logFile, opts)
	case "text":
		return outputDetectText(out, result, logFile, opts)
	default:
		return fmt.Errorf("invalid output format %q (must be text or json)", opts.Output)
	}
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, logFile string, opts *DetectOptions) error {
	fmt.Fprintln(w, "=== Grammar Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", logFile)
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintf(w, "Lines decoded: %d\n", result.StructuredLines)
	fmt.Fprintln(w)

	if !result.HasMatch() {
		fmt.Fprintln(w, "No lines could be decoded.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: The file may be plain prose. loglens dump will still show it as raw text.")
		return nil
	}

	best := result.BestMatch()
	fmt.Fprintf(w, "Detected Grammar: %s\n", best.Profile.Name)
	fmt.Fprintf(w, "Confidence: %.1f%% (%d/%d lines decoded)\n",
		best.Confidence*100, best.MatchCount, result.SampledLines)
	fmt.Fprintf(w, "Strategies: %s\n", formatStrategies(best.Strategies))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sample match:\n  %s\n", best.SampleLine)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "--- Configuration snippet (copy to your config file) ---")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "grammar: %s\n", best.Profile.Name)
	fmt.Fprintln(w)

	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Fprintln(w, "--- Other grammars ---")
		for i, m := range result.Matches[1:] {
			fmt.Fprintf(w, "%d. %s (%.1f%% confidence)\n", i+2, m.Profile.Name, m.Confidence*100)
			fmt.Fprintf(w, "   strategies: %s\n", formatStrategies(m.Strategies))
		}
		fmt.Fprintln(w)
	}

	return nil
}

// formatStrategies renders strategy counts as "name=n" pairs sorted by name.
func formatStrategies(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, counts[name])
	}
	return strings.Join(parts, ", ")
}

// JSONMatch represents a grammar match in JSON output.
type JSONMatch struct {
	Grammar    string         `json:"grammar"`
	Confidence float64        `json:"confidence"`
	MatchCount int            `json:"match_count"`
	SampleLine string         `json:"sample_line"`
	Strategies map[string]int `json:"strategies"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File            string      `json:"file"`
	Matches         []JSONMatch `json:"matches"`
	SampledLines    int         `json:"sampled_lines"`
	StructuredLines int         `json:"structured_lines"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, logFile string, opts *DetectOptions) error {
	output := JSONOutput{
		File:            logFile,
		SampledLines:    result.SampledLines,
		StructuredLines: result.StructuredLines,
		Matches:         make([]JSONMatch, 0),
	}

	matches := result.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = matches[:1] // Only show best match
	}

	for _, m := range matches {
		output.Matches = append(output.Matches, JSONMatch{
			Grammar:    m.Profile.Name,
			Confidence: m.Confidence,
			MatchCount: m.MatchCount,
			SampleLine: m.SampleLine,
			Strategies: m.Strategies,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// writeStarterConfig generates a starter config file with the detected grammar.
func writeStarterConfig(w io.Writer, result *detector.DetectionResult, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	if !result.HasMatch() {
		return fmt.Errorf("cannot generate config: no lines could be decoded")
	}

	config := generateStarterConfig(result.BestMatch())

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	abs := configPath
	if p, err := filepath.Abs(configPath); err == nil {
		abs = p
	}
	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", abs)
	return nil
}

// generateStarterConfig creates a YAML config template.
func generateStarterConfig(match *detector.ProfileMatch) string {
	return fmt.Sprintf(`# loglens configuration
# Generated by: loglens detect
# Detected grammar: %s (%.0f%% of sampled lines decoded)

grammar: %s

preprocess:
  join_continuations: true
  dedup: true

# Reconstruct streamed generation output before decoding.
reconcile:
  enabled: false
  sentinel: "---"

server:
  addr: ":8080"
  title: "loglens"
  watch: false

logging:
  level: info
  format: text

# webhooks:
#   - name: ci
#     url: https://hooks.example.com/loglens
#     token: ${LOGLENS_TOKEN}
#     trigger: on_raw
#     timeout: 10s
`, match.Profile.Name, match.Confidence*100, match.Profile.Name)
}
