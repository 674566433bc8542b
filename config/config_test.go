package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "claude", cfg.Collaborator.Backend)
	assert.Equal(t, 120*time.Second, cfg.Collaborator.Timeout)
	assert.Equal(t, "yaml", cfg.Store.Kind)
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.Equal(t, 5, cfg.Feed.Limit)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
collaborator:
  backend: gemini
  timeout: 30s
gemini:
  model: gemini-2.5-pro
store:
  kind: sqlite
  sqlite_path: /tmp/x.db
log:
  level: debug
`), 0644))
	t.Setenv("PROJECT_ID", "my-project")
	t.Setenv("CHARAGEN_OUTPUT_DIR", "/tmp/out")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Collaborator.Backend)
	assert.Equal(t, 30*time.Second, cfg.Collaborator.Timeout)
	assert.Equal(t, "my-project", cfg.Gemini.Project)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
	assert.Equal(t, "us-central1", cfg.Gemini.Location)
	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
	assert.Equal(t, "/tmp/x.db", cfg.Store.SQLitePath)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("collaborator:\n  backend: gpt\nstore:\n  kind: redis\nlog:\n  level: loud\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collaborator.backend")
	assert.Contains(t, err.Error(), "store.kind")
	assert.Contains(t, err.Error(), "log.level")
}

func TestValidate_GeminiNeedsProject(t *testing.T) {
	cfg := Default()
	cfg.Collaborator.Backend = "gemini"
	assert.ErrorContains(t, cfg.Validate(), "gemini.project")

	cfg.Gemini.Project = "p"
	assert.NoError(t, cfg.Validate())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".charagen", "a.db"), expandPath("~/.charagen/a.db"))
	assert.Equal(t, "/abs", expandPath("/abs"))
	assert.Equal(t, "rel/x", expandPath("rel/x"))
}
