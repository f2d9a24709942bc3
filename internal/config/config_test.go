package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "docs", cfg.Docs.SourceDir)
	assert.Equal(t, "site", cfg.Docs.OutputDir)
	assert.Equal(t, []string{"node_modules", ".git"}, cfg.Docs.ExcludePatterns)
	assert.Equal(t, 0, cfg.Build.Workers)
	assert.False(t, cfg.Build.Strict)
	assert.Equal(t, 300, cfg.Build.DebounceMs)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.False(t, cfg.Widgets.Quiz.AllowRetry)
}

func TestLoadOverrides(t *testing.T) {
	resetViper(t)
	viper.Set("docs.source_dir", "content")
	viper.Set("docs.output_dir", "public")
	viper.Set("build.strict", true)
	viper.Set("build.workers", 4)
	viper.Set("widgets.quiz.allow_retry", true)
	viper.Set("server.port", 3000)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "content", cfg.Docs.SourceDir)
	assert.Equal(t, "public", cfg.Docs.OutputDir)
	assert.True(t, cfg.Build.Strict)
	assert.Equal(t, 4, cfg.Build.Workers)
	assert.True(t, cfg.Widgets.Quiz.AllowRetry)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadRejectsBadPort(t *testing.T) {
	resetViper(t)
	viper.Set("server.port", 70000)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in valid range")
}

func TestLoadRejectsDangerousHost(t *testing.T) {
	resetViper(t)
	viper.Set("server.host", "localhost;rm -rf /")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dangerous character")
}

func TestLoadRejectsPathTraversal(t *testing.T) {
	resetViper(t)
	viper.Set("docs.output_dir", "../../etc")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path traversal")
}

func TestLoadRejectsSameSourceAndOutput(t *testing.T) {
	resetViper(t)
	viper.Set("docs.source_dir", "docs")
	viper.Set("docs.output_dir", "./docs")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestLoadRejectsNegativeWorkers(t *testing.T) {
	resetViper(t)
	viper.Set("build.workers", -1)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative")
}
