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
	t.Setenv("APP_ENV", "")
	t.Setenv("REQUEST_TIMEOUT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.Equal(t, 30*time.Second, cfg.Registry.RequestTimeout)
	assert.Equal(t, PrefsFile, cfg.Console.PrefsBackend)
	assert.Equal(t, "0 3 1 * *", cfg.Export.Schedule)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MAINTENANCE", "true")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example,")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("REGISTRY_API_URL", "https://registry.example/api")
	t.Setenv("CONSOLE_PREFS", "redis")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.App.Maintenance)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.App.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.Registry.RequestTimeout)
	assert.Equal(t, PrefsRedis, cfg.Console.PrefsBackend)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown env":      {"APP_ENV": "qa"},
		"bad api url":      {"REGISTRY_API_URL": "http://bad host"},
		"bad prefs":        {"CONSOLE_PREFS": "sqlite"},
		"tiny timeout":     {"REQUEST_TIMEOUT": "10ms"},
		"production key":   {"APP_ENV": "production"},
		"zero concurrency": {"EXPORT_CONCURRENCY": "0"},
		"zero timeout":     {"REQUEST_TIMEOUT": "0s"},
		"zero url expiry":  {"MINIO_URL_EXPIRY": "0s"},
		"long url expiry":  {"MINIO_URL_EXPIRY": "720h"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "x")
	t.Setenv("MINIO_URL_EXPIRY", "forever")
	t.Setenv("MAINTENANCE", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 24*time.Hour, cfg.MinIO.URLExpiry)
	assert.False(t, cfg.App.Maintenance)
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("IDS_DOTENV_PROBE=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("IDS_DOTENV_PROBE") })

	require.NoError(t, LoadDotenv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "loaded", os.Getenv("IDS_DOTENV_PROBE"))

	assert.NoError(t, LoadDotenv(filepath.Join(dir, "missing.env")))
}
