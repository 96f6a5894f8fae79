package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutPath(t *testing.T) {
	t.Setenv("WORLD_CONFIG", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
world:
  seed: 7
loader:
  radius: 2
generator:
  kind: wave
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.World.Seed)
	assert.Equal(t, 2, cfg.Loader.Radius)
	assert.Equal(t, "wave", cfg.Generator.Kind)
	assert.Equal(t, 1, cfg.Loader.LoadsPerStep, "незаданные поля берутся по умолчанию")
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  tick_rate: 10\n"), 0644))
	t.Setenv("WORLD_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Engine.TickRate)
	assert.Equal(t, int64(100_000_000), cfg.Engine.TickInterval().Nanoseconds())
}

func TestValidateRejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("loader:\n  workers: 0\ngenerator:\n  kind: voronoi\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loader.workers")
	assert.Contains(t, err.Error(), "voronoi")
}

func TestPortFallback(t *testing.T) {
	a := APIConfig{}
	t.Setenv("WORLD_API_PORT", "9100")
	assert.Equal(t, 9100, a.GetPort())

	a.Port = 7000
	assert.Equal(t, 7000, a.GetPort())

	t.Setenv("WORLD_API_PORT", "nope")
	assert.Equal(t, 8088, (&APIConfig{}).GetPort())
}
