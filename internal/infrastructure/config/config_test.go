package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, ":3000", cfg.Server.Address())
	assert.Equal(t, "./taskList.json", cfg.Storage.Path)
	assert.Equal(t, "public", cfg.Server.PublicDir)
	assert.Equal(t, "http://localhost:3000", cfg.Client.ServerURL)
	assert.Equal(t, "America/New_York", cfg.Client.TimeZone)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.App.IsDevelopment())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("TASKLIST_FILE", "/tmp/tasks.json")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "/tmp/tasks.json", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "tasklist.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 4000\nclient:\n  time_zone: Europe/London\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	loc, err := cfg.Client.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/London", loc.String())
}

func TestValidate(t *testing.T) {
	t.Run("bad port", func(t *testing.T) {
		cfg := Default()
		cfg.Server.Port = 0
		assert.Error(t, Validate(cfg))
	})

	t.Run("unknown zone", func(t *testing.T) {
		cfg := Default()
		cfg.Client.TimeZone = "Mars/Olympus_Mons"
		assert.Error(t, Validate(cfg))
	})

	t.Run("file output without filename", func(t *testing.T) {
		cfg := Default()
		cfg.Logger.Output = "file"
		assert.Error(t, Validate(cfg))
	})

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, Validate(Default()))
	})
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
