package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, ":8000", cfg.Addr)
	require.Equal(t, "gpt-5-mini", cfg.Model)
	require.EqualValues(t, 32<<20, cfg.MaxUploadBytes)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9000\"\nrate_limit: 2\n"), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.Addr)
	require.Equal(t, 2.0, cfg.RateLimit)
	// Untouched keys keep their defaults.
	require.Equal(t, "static", cfg.StaticDir)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("CHRONICLED_ADDR", ":7777")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, ":7777", cfg.Addr)
	require.Equal(t, "sk-test", cfg.APIKey)
}

func TestConfigValidate(t *testing.T) {
	cfg := defaultConfig()
	cfg.APIKey = "sk-test"
	require.NoError(t, cfg.Validate())

	missing := cfg
	missing.APIKey = ""
	require.Error(t, missing.Validate())

	badRate := cfg
	badRate.RateLimit = 0
	require.Error(t, badRate.Validate())
}
