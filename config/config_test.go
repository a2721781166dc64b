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
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: abc\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.Token)
	assert.Equal(t, 500*time.Millisecond, cfg.Intake.QuietPeriod)
	assert.Equal(t, 4, cfg.Intake.MaxPhotos)
	assert.Equal(t, 1.9, cfg.Layout.TargetRatio)
	assert.Equal(t, "sqlite", cfg.State.Backend)
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `token: xyz
admins: ["1", "2"]
intake:
  quiet_period: 2s
  max_photos: 6
layout:
  target_ratio: 2.1
locations:
  - id: 1
    name: Workshop
    responsible_text: J. Doe
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, cfg.Admins)
	assert.Equal(t, 2*time.Second, cfg.Intake.QuietPeriod)
	assert.Equal(t, 6, cfg.Intake.MaxPhotos)
	assert.Equal(t, 2.1, cfg.Layout.TargetRatio)
	require.Len(t, cfg.Locations, 1)
	assert.Equal(t, "Workshop", cfg.Locations[0].Name)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
