// Package cmd provides the command-line interface for fencer with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --strict, etc.) - highest priority
//	2. FENCER_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (FENCER_BUILD_STRICT, etc.)
//	4. Configuration files (.fencer.yml) - lowest priority
//
// Environment Variables:
//
//	FENCER_CONFIG_FILE: Path to custom configuration file
//	FENCER_DOCS_SOURCE_DIR: Override docs source directory
//	FENCER_BUILD_STRICT: Turn validation diagnostics into build failures
//	FENCER_SERVER_PORT: Override preview server port
//	And more following the FENCER_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/robworks/fencer/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fencer",
	Short: "Interactive-widget pipeline for Markdown documentation",
	Long: `Fencer turns declarative YAML fenced blocks embedded in Markdown into
interactive widgets: quizzes, simulated terminals, exercises, command
builders, and annotated code walkthroughs.

Recognized fence tags:
  quiz, terminal, exercise, command-builder, code-walkthrough

Quick Start:
  fencer build                    Build the docs tree into the output directory
  fencer check                    Validate widget blocks without writing output
  fencer list                     List all discovered widgets
  fencer serve                    Preview server with live reload
  fencer doctor                   Environment and configuration report

Command Aliases (for faster typing):
  build (b), check (c), list (l), serve (s)`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .fencer.yml, can also use FENCER_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig initializes the configuration system.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. FENCER_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .fencer.yml in current directory
//
// A .env file in the working directory is loaded first, so it can feed
// the FENCER_ environment bindings; a missing .env is not an error.
func initConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "Warning: could not load .env file:", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("FENCER_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".fencer")
	}

	// Enable automatic environment variable binding with FENCER_ prefix
	// Examples: FENCER_BUILD_STRICT, FENCER_SERVER_PORT, FENCER_DOCS_SOURCE_DIR
	viper.SetEnvPrefix("FENCER")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// If the file doesn't exist, viper falls back to defaults without failing
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the command logger from the persistent log flags.
func newLogger() *logging.FencerLogger {
	level, err := logging.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = logging.LevelInfo
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: viper.GetString("log-format"),
	})
}
