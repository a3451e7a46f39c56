package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"budget/internal/config"
)

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := SetupLogger("debug", &buf)
	logger.Debug("hello")

	require.Contains(t, buf.String(), "msg=hello")
	require.Contains(t, buf.String(), "component=cli")
}

func TestSetupLoggerUnknownLevel(t *testing.T) {
	var buf bytes.Buffer

	SetupLogger("chatty", &buf)

	require.Contains(t, buf.String(), "Unknown log level")
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("BUDGET_TABLE=from_env_file\n"), 0o644))
	t.Setenv("BUDGET_TABLE", "")
	os.Unsetenv("BUDGET_TABLE")

	LoadEnvFile(path)

	require.Equal(t, "from_env_file", os.Getenv("BUDGET_TABLE"))
	LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "info")

	cfg, err := LoadAndValidateConfig(func(c *config.Config) { c.DefaultTable = "holiday" })
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.DataBackend)
	require.Equal(t, "holiday", cfg.DefaultTable)

	_, err = LoadAndValidateConfig(func(c *config.Config) { c.DataBackend = "sheets" })
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "invalid data backend"))
}

func TestInitBackend(t *testing.T) {
	cfg := &config.Config{
		DataBackend: "json",
		ItemsFile:   filepath.Join(t.TempDir(), "items.json"),
	}

	result, err := InitBackend(context.Background(), nil, cfg)
	require.NoError(t, err)
	defer result.Cleanup()

	tables, err := result.Service.Tables(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"_default"}, tables)
}
