// Package cmd provides the command-line interface for fencer.
//
// This package implements all CLI commands using the Cobra framework,
// with configuration binding through Viper and structured flag
// validation. Commands:
//
//   - build: run the widget pipeline over the docs tree and write the
//     substituted pages to the output directory
//   - check: validation-only pass with console, JSON, or YAML reports
//   - list: inventory of every discovered widget
//   - doctor: environment and configuration sanity report
//   - serve: preview server with file watching and live reload
//   - version: build and version information
//
// Every command follows the RunE convention and returns errors rather
// than exiting directly, so main owns the process exit status.
package cmd
