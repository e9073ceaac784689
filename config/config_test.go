package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "openweather", cfg.Weather.Provider)
	assert.Equal(t, "bangalore", cfg.Weather.DefaultCity)
	assert.Equal(t, "metric", cfg.Weather.Units)
	assert.Equal(t, 10*time.Second, cfg.Weather.Timeout)
	assert.Equal(t, 8046, cfg.API.Port)
	assert.True(t, cfg.API.Enabled)
	assert.Equal(t, "./web", cfg.API.WebPath)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, "weather-panel", cfg.MQTT.TopicPrefix)
	assert.Equal(t, "./weather-panel.db", cfg.Database.Path)
	assert.Equal(t, 720*time.Hour, cfg.Database.Retention)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "panel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
weather:
  provider: openmeteo
  default_city: Lisbon
  units: imperial
  timeout: 3s
api:
  port: 9000
`), 0644))

	t.Setenv("WEATHER_PANEL_WEATHER_API_KEY", "from-env")
	t.Setenv("WEATHER_PANEL_API_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openmeteo", cfg.Weather.Provider)
	assert.Equal(t, "Lisbon", cfg.Weather.DefaultCity)
	assert.Equal(t, "imperial", cfg.Weather.Units)
	assert.Equal(t, 3*time.Second, cfg.Weather.Timeout)
	assert.Equal(t, "from-env", cfg.Weather.APIKey)
	assert.Equal(t, 9100, cfg.API.Port)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WEATHER_PANEL_WEATHER_DEFAULT_CITY=Quito\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("WEATHER_PANEL_WEATHER_DEFAULT_CITY") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Quito", cfg.Weather.DefaultCity)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
