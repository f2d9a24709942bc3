package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/robworks/fencer/internal/config"
	"github.com/robworks/fencer/internal/diagnostics"
	"github.com/robworks/fencer/internal/registry"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List all discovered widgets",
	Long: `List every widget discovered in the docs tree with its identity,
document, source line, tag, and title. Blocks that fail validation are
omitted; run check to see their diagnostics.

Examples:
  fencer list                     # List all widgets in table format
  fencer list -f json             # Output as JSON
  fencer list -f yaml             # Output as YAML
  fencer list -f csv              # Output as CSV`,
	RunE: runList,
}

var listFlags *StandardFlags

func init() {
	rootCmd.AddCommand(listCmd)

	listFlags = AddStandardFlags(listCmd, "output")
	listCmd.Flags().String("source", "docs", "Docs source directory")

	AddFlagValidation(listCmd, "format", func(format string) error {
		return ValidateFormatWithSuggestion(format, []string{"table", "json", "yaml", "csv"})
	})
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyDocsFlags(cmd, cfg)

	if err := listFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	agg := diagnostics.NewAggregator()
	results, _, err := runPipeline(context.Background(), cfg, agg, false)
	if err != nil {
		return err
	}

	widgetRegistry := registry.NewWidgetRegistry()
	for _, result := range results {
		for _, node := range result.Widgets {
			widgetRegistry.Register(node)
		}
	}

	summaries := widgetRegistry.Summaries()
	if len(summaries) == 0 {
		fmt.Println("No widgets found.")
		return nil
	}

	format := listFlags.Format
	if format == "console" {
		// The output flag group defaults to console; list renders a table.
		format = "table"
	}

	switch strings.ToLower(format) {
	case "json":
		return outputListJSON(os.Stdout, summaries)
	case "yaml":
		return outputListYAML(os.Stdout, summaries)
	case "table":
		return outputListTable(os.Stdout, summaries)
	case "csv":
		return outputListCSV(os.Stdout, summaries)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func outputListJSON(w io.Writer, summaries []registry.Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summaries)
}

func outputListYAML(w io.Writer, summaries []registry.Summary) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	return encoder.Encode(summaries)
}

func outputListTable(w io.Writer, summaries []registry.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tDOCUMENT\tLINE\tTAG\tTITLE")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", s.ID, s.Document, s.Line, s.Tag, s.Title)
	}

	fmt.Fprintf(tw, "\nTotal: %d widgets\n", len(summaries))
	return nil
}

func outputListCSV(w io.Writer, summaries []registry.Summary) error {
	fmt.Fprintln(w, "id,document,line,tag,title")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s,%s,%d,%s,%s\n", s.ID, s.Document, s.Line, s.Tag, csvEscape(s.Title))
	}
	return nil
}

func csvEscape(field string) string {
	if !strings.ContainsAny(field, ",\"\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
