package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "adminhub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.APIServer.Port)
	assert.Equal(t, "adminhub", cfg.APIServer.Name)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "adminhub.db", cfg.Store.Path)
	assert.Equal(t, "memory", cfg.Cache.Mode)
	assert.Equal(t, "0 3 * * *", cfg.Sweep.CRON)
	assert.Equal(t, "none", cfg.Metrics.Exporter)
	assert.Empty(t, cfg.Lists)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	writeConfigFile(t, dir, `
server:
  port: 9999
  name: custom
  read_timeout: 45s
sweep:
  retention_days: 5
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.APIServer.Port)
	assert.Equal(t, "custom", cfg.APIServer.Name)
	assert.Equal(t, 45*time.Second, cfg.APIServer.ReadTimeout)
	assert.Equal(t, 5, cfg.Sweep.RetentionDays)

	// Everything the file leaves out keeps its default.
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "0 3 * * *", cfg.Sweep.CRON)
}

func TestLoad_ExplicitPath(t *testing.T) {
	t.Chdir(t.TempDir())

	other := t.TempDir()
	path := writeConfigFile(t, other, "server:\n  port: 6061\n")
	t.Setenv("ADMINHUB_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 6061, cfg.APIServer.Port)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	writeConfigFile(t, dir, "server:\n  port: 9999\n")
	t.Setenv("ADMINHUB_SERVER_PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.APIServer.Port)
}

func TestLoad_ListsSection(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	writeConfigFile(t, dir, `
lists:
  - key: posts
    label: Post
    fields:
      - name: title
        type: text
        required: true
      - name: published
        type: checkbox
        default: false
        access:
          update: session.isAdmin
    access:
      delete: session.isAdmin
`)

	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.Lists, 1)
	assert.Equal(t, "posts", cfg.Lists[0].Key)
	assert.Equal(t, "Post", cfg.Lists[0].Label)
	require.Len(t, cfg.Lists[0].Fields, 2)
	assert.Equal(t, "title", cfg.Lists[0].Fields[0].Name)
	assert.True(t, cfg.Lists[0].Fields[0].Required)
	assert.Equal(t, "session.isAdmin", cfg.Lists[0].Fields[1].Access.Update)
	assert.Equal(t, "session.isAdmin", cfg.Lists[0].Access.Delete)
}

func TestLoad_BadFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	writeConfigFile(t, dir, "server: [not a mapping\n")

	_, err := Load()
	require.Error(t, err)
}
