package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, 120*time.Second, cfg.Server.RequestTimeout)
	require.Equal(t, 100*time.Millisecond, cfg.Pipeline.StreamDelay)
	require.Equal(t, 3, cfg.Planner.MaxAttempts)
	require.Equal(t, 20*time.Second, cfg.Planner.RetryDelay)
	require.Equal(t, 5, cfg.Search.MaxResults)
	require.Equal(t, "google", cfg.Defaults.Provider)
	require.Equal(t, "tavily", cfg.Defaults.SearchProvider)
	require.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DEEP_RESEARCH_SERVER_ADDR", ":9999")
	t.Setenv("DEEP_RESEARCH_DEFAULTS_SEARCH_PROVIDER", "duckduckgo")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.Server.Addr)
	require.Equal(t, "duckduckgo", cfg.Defaults.SearchProvider)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deep-research.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"server:\n  addr: \":7070\"\nplanner:\n  max_attempts: 5\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.Server.Addr)
	require.Equal(t, 5, cfg.Planner.MaxAttempts)
	// Untouched keys keep their defaults.
	require.Equal(t, 5, cfg.Search.MaxResults)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
