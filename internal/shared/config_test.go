package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
project:
  visibility: Open-Source
  environment: internal
analysis:
  workers: 4
  max_file_bytes: 2048
  checkpoint_packs: ["packs/custom.yaml"]
rules:
  severity_threshold: MEDIUM
  disabled: [DBG-DEBUG-OUTPUT]
severity:
  context_rules:
    - category: Secrets
      visibility: open-source
      set: CRITICAL
api:
  session_ttl: 30m
`

func TestLoadConfigDefaults(t *testing.T) {
	c, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
	assert.Equal(t, "proprietary", c.Project.Visibility)
	assert.Equal(t, int64(1<<20), c.Analysis.MaxFileBytes)
	assert.Equal(t, "CRITICAL", c.Rules.Gate)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oversight.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "open-source", c.Project.Visibility)
	assert.Equal(t, "internal", c.Project.Environment)
	assert.Equal(t, 4, c.Analysis.Workers)
	assert.Equal(t, int64(2048), c.Analysis.MaxFileBytes)
	assert.Equal(t, 50, c.Analysis.MaxMatchesPerCheckpoint)
	assert.Equal(t, []string{"packs/custom.yaml"}, c.Analysis.CheckpointPacks)
	assert.Equal(t, "MEDIUM", c.Rules.SeverityThreshold)
	assert.Equal(t, []string{"DBG-DEBUG-OUTPUT"}, c.Rules.Disabled)
	require.Len(t, c.Severity.ContextRules, 1)
	assert.Equal(t, "CRITICAL", c.Severity.ContextRules[0].Set)
	assert.Equal(t, 30*time.Minute, c.API.SessionTTL)
	assert.Equal(t, ":8080", c.API.Addr)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oversight.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	t.Setenv("OVERSIGHT_DB_DSN", "/var/lib/oversight.db")
	t.Setenv("OVERSIGHT_LOG_FORMAT", "console")
	t.Setenv("OVERSIGHT_LOG_LEVEL", "debug")
	t.Setenv("OVERSIGHT_OUT_DIR", "/tmp/reports")
	t.Setenv("OVERSIGHT_VISIBILITY", "PROPRIETARY")
	t.Setenv("OVERSIGHT_ENVIRONMENT", "production")
	t.Setenv("OVERSIGHT_WORKERS", "not-a-number")

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/oversight.db", c.Database.DSN)
	assert.Equal(t, "console", c.Logging.Format)
	assert.Equal(t, "debug", c.Logging.Level)
	assert.Equal(t, "/tmp/reports", c.Reporting.OutDir)
	assert.Equal(t, "proprietary", c.Project.Visibility)
	assert.Equal(t, "production", c.Project.Environment)
	assert.Equal(t, 4, c.Analysis.Workers)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("project: ["), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)
}
