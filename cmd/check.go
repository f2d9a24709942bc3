package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/robworks/fencer/internal/config"
	"github.com/robworks/fencer/internal/diagnostics"
	"github.com/robworks/fencer/internal/types"
)

var checkCmd = &cobra.Command{
	Use:     "check [file.md ...]",
	Aliases: []string{"c"},
	Short:   "Validate widget blocks without writing output",
	Long: `Run the full pipeline over the docs tree, including the client
runtime's payload decode pass, but write nothing. Any error-severity
diagnostic makes the command exit non-zero, so check is the strict-mode
gate for CI.

Examples:
  fencer check                    # Styled console report
  fencer check -f json            # Machine-readable diagnostics
  fencer check docs/intro.md      # Check a single document`,
	RunE: runCheck,
}

var (
	checkFlags  *StandardFlags
	checkVerify bool
)

func init() {
	rootCmd.AddCommand(checkCmd)

	checkFlags = AddStandardFlags(checkCmd, "output")
	checkCmd.Flags().String("source", "docs", "Docs source directory")
	checkCmd.Flags().Int("workers", 0, "Concurrent document workers (0 = one per CPU)")
	checkCmd.Flags().BoolVar(&checkVerify, "verify-hydration", true, "Run the client runtime's decode pass over emitted pages")

	AddFlagValidation(checkCmd, "format", func(format string) error {
		return ValidateFormatWithSuggestion(format, []string{"console", "json", "yaml"})
	})
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.TargetFiles = args
	applyDocsFlags(cmd, cfg)

	if err := checkFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	agg := diagnostics.NewAggregator()
	if _, _, err := runPipeline(context.Background(), cfg, agg, checkVerify); err != nil {
		return err
	}

	if !checkFlags.Quiet {
		if err := outputDiagnostics(os.Stdout, checkFlags.Format, agg); err != nil {
			return err
		}
	}

	if agg.HasErrors() {
		return fmt.Errorf("check failed: %s", agg.Summary())
	}
	return nil
}

func outputDiagnostics(w io.Writer, format string, agg *diagnostics.Aggregator) error {
	switch format {
	case "json":
		return outputDiagnosticsJSON(w, agg.All())
	case "yaml":
		return outputDiagnosticsYAML(w, agg.All())
	default:
		agg.WriteReport(w)
		return nil
	}
}

func outputDiagnosticsJSON(w io.Writer, diags []types.Diagnostic) error {
	if diags == nil {
		diags = []types.Diagnostic{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(diags)
}

func outputDiagnosticsYAML(w io.Writer, diags []types.Diagnostic) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	return encoder.Encode(diags)
}
