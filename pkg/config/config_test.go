package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ProviderWorkflow, cfg.OptimizerProvider)
	assert.Equal(t, 5*time.Second, cfg.Notices.Success())
	assert.Equal(t, 3*time.Second, cfg.Notices.LowEmphasis())
	assert.Equal(t, time.Hour, cfg.JWTTTL())
	assert.Equal(t, time.Hour, cfg.Notices.SessionIdle())
	assert.Equal(t, int64(15<<20), cfg.Uploads.MaxBytes)
}

func TestLoadFileThenEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfig(t, `
port: "9000"
workflow:
  base_url: https://flows.example.fr
  timeout_seconds: 10
optimizer_provider: openrouter
notices:
  success_ms: 1000
`))
	t.Setenv("WORKFLOW_API_KEY", "k")
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "https://flows.example.fr", cfg.Workflow.BaseURL)
	assert.Equal(t, "k", cfg.Workflow.APIKey)
	assert.Equal(t, 10*time.Second, cfg.WorkflowTimeout())
	assert.Equal(t, ProviderOpenRouter, cfg.OptimizerProvider)
	assert.Equal(t, time.Second, cfg.Notices.Success())
	assert.Equal(t, 3*time.Second, cfg.Notices.LowEmphasis())
}

func TestLoadRejects(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfig(t, "port: [unclosed"))
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("CONFIG_FILE", writeConfig(t, "parser_provider: magic"))
	_, err = Load()
	assert.ErrorContains(t, err, "unknown provider")
}
