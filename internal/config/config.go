// Package config provides configuration management for fencer using
// Viper for flexible loading from files, environment variables, and
// command-line flags.
//
// Configuration comes from .fencer.yml, environment variables with the
// FENCER_ prefix, and flags bound by the commands. It covers the docs
// source and output directories, build behavior (worker count, strict
// mode), the preview server, and per-widget behavior knobs.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Docs    DocsConfig    `yaml:"docs" mapstructure:"docs"`
	Build   BuildConfig   `yaml:"build" mapstructure:"build"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Widgets WidgetsConfig `yaml:"widgets" mapstructure:"widgets"`
	// TargetFiles are CLI arguments, not from the config file
	TargetFiles []string `yaml:"-" mapstructure:"-"`
}

type DocsConfig struct {
	SourceDir       string   `yaml:"source_dir" mapstructure:"source_dir"`
	OutputDir       string   `yaml:"output_dir" mapstructure:"output_dir"`
	ExcludePatterns []string `yaml:"exclude_patterns" mapstructure:"exclude_patterns"`
}

type BuildConfig struct {
	Workers    int  `yaml:"workers" mapstructure:"workers"`
	Strict     bool `yaml:"strict" mapstructure:"strict"`
	DebounceMs int  `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	Host           string   `yaml:"host" mapstructure:"host"`
	Open           bool     `yaml:"open" mapstructure:"open"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

type WidgetsConfig struct {
	Quiz QuizConfig `yaml:"quiz" mapstructure:"quiz"`
}

type QuizConfig struct {
	AllowRetry bool `yaml:"allow_retry" mapstructure:"allow_retry"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Apply defaults if not set
	if config.Docs.SourceDir == "" {
		config.Docs.SourceDir = "docs"
	}
	if config.Docs.OutputDir == "" {
		config.Docs.OutputDir = "site"
	}
	if len(config.Docs.ExcludePatterns) == 0 {
		config.Docs.ExcludePatterns = []string{"node_modules", ".git"}
	}

	// Handle exclude patterns set via viper (workaround for viper slice handling)
	if viper.IsSet("docs.exclude_patterns") {
		if patterns := viper.GetStringSlice("docs.exclude_patterns"); len(patterns) > 0 {
			config.Docs.ExcludePatterns = patterns
		}
	}

	if config.Build.DebounceMs == 0 {
		config.Build.DebounceMs = 300
	}

	// Handle bool settings set via viper (workaround for viper bool handling)
	if viper.IsSet("build.strict") {
		config.Build.Strict = viper.GetBool("build.strict")
	}
	if viper.IsSet("widgets.quiz.allow_retry") {
		config.Widgets.Quiz.AllowRetry = viper.GetBool("widgets.quiz.allow_retry")
	}
	if viper.IsSet("server.open") {
		config.Server.Open = viper.GetBool("server.open")
	}

	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validateDocsConfig(&config.Docs); err != nil {
		return fmt.Errorf("docs config: %w", err)
	}
	if err := validateBuildConfig(&config.Build); err != nil {
		return fmt.Errorf("build config: %w", err)
	}
	return nil
}

func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}

	return nil
}

func validateDocsConfig(config *DocsConfig) error {
	for _, dir := range []string{config.SourceDir, config.OutputDir} {
		cleanPath := filepath.Clean(dir)
		if strings.Contains(cleanPath, "..") {
			return fmt.Errorf("directory contains path traversal: %s", dir)
		}
	}
	if filepath.Clean(config.SourceDir) == filepath.Clean(config.OutputDir) {
		return fmt.Errorf("source_dir and output_dir must differ, both are %s", config.SourceDir)
	}
	return nil
}

func validateBuildConfig(config *BuildConfig) error {
	if config.Workers < 0 {
		return fmt.Errorf("workers %d is negative", config.Workers)
	}
	if config.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms %d is negative", config.DebounceMs)
	}
	return nil
}
