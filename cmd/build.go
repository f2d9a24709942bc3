package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/robworks/fencer/internal/config"
	"github.com/robworks/fencer/internal/diagnostics"
	"github.com/robworks/fencer/internal/pipeline"
	"github.com/robworks/fencer/internal/site"
	"github.com/robworks/fencer/internal/types"
)

var buildCmd = &cobra.Command{
	Use:     "build [file.md ...]",
	Aliases: []string{"b"},
	Short:   "Build the docs tree, replacing widget blocks with HTML fragments",
	Long: `Build every Markdown document under the docs source directory. Widget
fences are validated and replaced with interactive HTML fragments; all
other content, including non-Markdown assets, passes through untouched.

With file arguments, only those documents are built and assets are not
copied.

Examples:
  fencer build                    # Build docs/ into site/
  fencer build --strict           # Any validation error fails the build
  fencer build -o public          # Build to a specific output directory
  fencer build docs/intro.md      # Build a single document`,
	RunE: runBuild,
}

var buildVerify bool

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().String("source", "docs", "Docs source directory")
	buildCmd.Flags().StringP("output", "o", "site", "Output directory")
	buildCmd.Flags().Int("workers", 0, "Concurrent document workers (0 = one per CPU)")
	buildCmd.Flags().Bool("strict", false, "Exit non-zero when any validation error exists")
	buildCmd.Flags().BoolVar(&buildVerify, "verify-hydration", false, "Run the client runtime's decode pass over emitted pages")
}

// applyDocsFlags copies explicitly-set docs and build flags over the
// loaded configuration. Several commands define the same flags, so they
// override per invocation rather than through a shared viper binding.
func applyDocsFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("source") {
		cfg.Docs.SourceDir, _ = cmd.Flags().GetString("source")
	}
	if cmd.Flags().Changed("output") {
		cfg.Docs.OutputDir, _ = cmd.Flags().GetString("output")
	}
	if cmd.Flags().Changed("workers") {
		cfg.Build.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("strict") {
		cfg.Build.Strict, _ = cmd.Flags().GetBool("strict")
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.TargetFiles = args
	applyDocsFlags(cmd, cfg)

	ctx := context.Background()
	log := newLogger()
	logger := log.WithComponent("build")
	perf := log.StartOperation("build")

	agg := diagnostics.NewAggregator()
	results, assets, err := runPipeline(ctx, cfg, agg, buildVerify)
	if err != nil {
		perf.EndWithError(ctx, err)
		return err
	}

	widgets := 0
	for _, result := range results {
		if err := writePage(cfg.Docs.OutputDir, result.DocumentID, []byte(result.Output)); err != nil {
			perf.EndWithError(ctx, err)
			return err
		}
		widgets += len(result.Widgets)
	}
	for _, asset := range assets {
		if err := writePage(cfg.Docs.OutputDir, asset.Path, asset.Data); err != nil {
			perf.EndWithError(ctx, err)
			return err
		}
	}

	logger.Info(ctx, "build finished",
		"documents", len(results),
		"assets", len(assets),
		"widgets", widgets,
		"diagnostics", agg.Len(),
		"output", cfg.Docs.OutputDir)
	perf.End(ctx)

	agg.WriteReport(os.Stdout)

	if cfg.Build.Strict && agg.HasErrors() {
		return fmt.Errorf("build failed in strict mode: %s", agg.Summary())
	}
	return nil
}

// runPipeline loads the configured documents and runs them through the
// pipeline, recording into agg. Shared by build, check, and list.
func runPipeline(ctx context.Context, cfg *config.Config, agg *diagnostics.Aggregator, verify bool) ([]pipeline.DocumentResult, []site.Asset, error) {
	pl := pipeline.New(agg, pipeline.Options{
		Workers:        cfg.Build.Workers,
		QuizAllowRetry: cfg.Widgets.Quiz.AllowRetry,
	})

	docs, assets, err := loadDocuments(cfg)
	if err != nil {
		return nil, nil, err
	}

	results, err := pl.ProcessAll(ctx, docs)
	if err != nil {
		return nil, nil, err
	}

	if verify {
		for _, result := range results {
			agg.RecordAll(pl.VerifyHydration(result))
		}
	}
	return results, assets, nil
}

func loadDocuments(cfg *config.Config) ([]types.Document, []site.Asset, error) {
	if len(cfg.TargetFiles) == 0 {
		tree, err := site.LoadTree(cfg.Docs.SourceDir, cfg.Docs.ExcludePatterns)
		if err != nil {
			return nil, nil, err
		}
		return tree.Documents, tree.Assets, nil
	}

	docs := make([]types.Document, 0, len(cfg.TargetFiles))
	for _, path := range cfg.TargetFiles {
		if !site.IsMarkdown(path) {
			return nil, nil, fmt.Errorf("%s is not a markdown file", path)
		}
		doc, err := site.LoadDocument(cfg.Docs.SourceDir, path)
		if err != nil {
			return nil, nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil, nil
}

func writePage(outputDir, relPath string, data []byte) error {
	dest := filepath.Join(outputDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", relPath, err)
	}
	return nil
}
