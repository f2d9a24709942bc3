package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	yamlv2 "gopkg.in/yaml.v2"

	"github.com/robworks/fencer/internal/config"
	"github.com/robworks/fencer/internal/diagnostics"
	"github.com/robworks/fencer/internal/site"
	"github.com/robworks/fencer/internal/version"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose environment and configuration problems",
	Long: `Run a series of checks over the fencer environment: configuration
validity, docs directory layout, output directory writability, and a
dry scan of every document's widget blocks. The report is printed as
YAML so it can be attached to bug reports as-is.

Examples:
  fencer doctor                   # Full environment report`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().String("source", "docs", "Docs source directory")
}

// doctorCheck is one named probe result in the report.
type doctorCheck struct {
	Name    string `yaml:"name"`
	Status  string `yaml:"status"`
	Message string `yaml:"message"`
}

type doctorReport struct {
	Version   string        `yaml:"version"`
	SourceDir string        `yaml:"source_dir"`
	OutputDir string        `yaml:"output_dir"`
	Checks    []doctorCheck `yaml:"checks"`
}

const (
	statusOK      = "ok"
	statusWarning = "warning"
	statusError   = "error"
)

func runDoctor(cmd *cobra.Command, args []string) error {
	report := doctorReport{Version: version.GetShortVersion()}

	cfg, err := config.Load()
	if err != nil {
		report.Checks = append(report.Checks, doctorCheck{
			Name:    "configuration",
			Status:  statusError,
			Message: err.Error(),
		})
		return writeDoctorReport(report)
	}
	applyDocsFlags(cmd, cfg)

	report.SourceDir = cfg.Docs.SourceDir
	report.OutputDir = cfg.Docs.OutputDir
	report.Checks = append(report.Checks, doctorCheck{
		Name:    "configuration",
		Status:  statusOK,
		Message: "configuration is valid",
	})

	report.Checks = append(report.Checks, checkSourceDir(cfg))
	report.Checks = append(report.Checks, checkOutputDir(cfg))
	report.Checks = append(report.Checks, checkWidgetBlocks(cfg))

	return writeDoctorReport(report)
}

func checkSourceDir(cfg *config.Config) doctorCheck {
	check := doctorCheck{Name: "docs directory"}

	tree, err := site.LoadTree(cfg.Docs.SourceDir, cfg.Docs.ExcludePatterns)
	if err != nil {
		check.Status = statusError
		check.Message = err.Error()
		return check
	}

	if len(tree.Documents) == 0 {
		check.Status = statusWarning
		check.Message = fmt.Sprintf("%s contains no markdown documents", cfg.Docs.SourceDir)
		return check
	}

	check.Status = statusOK
	check.Message = fmt.Sprintf("%d markdown documents, %d assets", len(tree.Documents), len(tree.Assets))
	return check
}

func checkOutputDir(cfg *config.Config) doctorCheck {
	check := doctorCheck{Name: "output directory"}

	info, err := os.Stat(cfg.Docs.OutputDir)
	switch {
	case os.IsNotExist(err):
		check.Status = statusOK
		check.Message = fmt.Sprintf("%s does not exist yet and will be created by build", cfg.Docs.OutputDir)
	case err != nil:
		check.Status = statusError
		check.Message = err.Error()
	case !info.IsDir():
		check.Status = statusError
		check.Message = fmt.Sprintf("%s exists but is not a directory", cfg.Docs.OutputDir)
	default:
		check.Status = statusOK
		check.Message = fmt.Sprintf("%s is writable", cfg.Docs.OutputDir)
	}
	return check
}

// checkWidgetBlocks runs the full pipeline as a dry scan and folds the
// result into one check line.
func checkWidgetBlocks(cfg *config.Config) doctorCheck {
	check := doctorCheck{Name: "widget blocks"}

	agg := diagnostics.NewAggregator()
	results, _, err := runPipeline(context.Background(), cfg, agg, true)
	if err != nil {
		check.Status = statusError
		check.Message = err.Error()
		return check
	}

	widgets := 0
	for _, result := range results {
		widgets += len(result.Widgets)
	}

	errors, warnings := agg.Counts()
	switch {
	case errors > 0:
		check.Status = statusError
	case warnings > 0:
		check.Status = statusWarning
	default:
		check.Status = statusOK
	}
	check.Message = fmt.Sprintf("%d widgets in %d documents; %s", widgets, len(results), agg.Summary())
	return check
}

func writeDoctorReport(report doctorReport) error {
	data, err := yamlv2.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode doctor report: %w", err)
	}
	fmt.Print(string(data))

	for _, check := range report.Checks {
		if check.Status == statusError {
			return fmt.Errorf("doctor found problems: %s", check.Name)
		}
	}
	return nil
}
