package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	// when
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	// then
	require.NoError(t, err)
	assert.Equal(t, ":8181", cfg.Listen)
	assert.Equal(t, 64.0, cfg.Layout.HourHeight)
	assert.Equal(t, 20.0, cfg.Layout.MinHeight)
	assert.Equal(t, 95.0, cfg.Layout.MaxWidth)
	assert.Equal(t, 1.0, cfg.Layout.Gap)
	assert.Equal(t, 10, cfg.View.WeekMaxEvents)
	assert.Equal(t, 62, cfg.View.CacheDays)
	assert.Equal(t, time.Hour, cfg.Event.EndCorrection)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "application.yaml")
	content := `
layout:
  hourheight: 48
view:
  weekstartson: monday
db:
  host: db.internal
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// when
	cfg, err := Load(path)

	// then
	require.NoError(t, err)
	assert.Equal(t, 48.0, cfg.Layout.HourHeight)
	assert.Equal(t, 20.0, cfg.Layout.MinHeight)
	assert.Equal(t, "monday", cfg.View.WeekStartsOn)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	// given
	t.Setenv("SCHEDULER_DB_NAME", "from_env")
	t.Setenv("SCHEDULER_LISTEN", ":9000")

	// when
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	// then
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.Database.Name)
	assert.Equal(t, ":9000", cfg.Listen)
}

func TestLoad_InvalidYaml(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "application.yaml")
	require.NoError(t, os.WriteFile(path, []byte("layout: [unclosed"), 0o600))

	// when
	_, err := Load(path)

	// then
	assert.Error(t, err)
}
