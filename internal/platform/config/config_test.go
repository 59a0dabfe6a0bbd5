package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedVars = []string{
	"ENVIRONMENT",
	"LOG_LEVEL",
	"GOOGLE_CLOUD_PROJECT",
	"PORT",
	"HTTP_READ_TIMEOUT",
	"HTTP_READ_HEADER_TIMEOUT",
	"HTTP_WRITE_TIMEOUT",
	"HTTP_IDLE_TIMEOUT",
	"HTTP_MAX_HEADER_BYTES",
	"HTTP_MAX_BODY_BYTES",
	"HTTP_SHUTDOWN_TIMEOUT",
	"CORS_ALLOWED_ORIGINS",
	"CORS_MAX_AGE",
	"METRICS_ENABLED",
	"METRICS_PATH",
}

// clearEnv unsets every variable Config reads and restores them after the test.
// Files loaded by godotenv write straight to the process environment, so this
// also undoes their effect.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range managedVars {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.ProjectID)
	assert.Equal(t, "8000", cfg.HTTP.Port)
	assert.Equal(t, ":8000", cfg.Addr())
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 2*time.Second, cfg.HTTP.ReadHeaderTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.HTTP.IdleTimeout)
	assert.Equal(t, 64<<10, cfg.HTTP.MaxHeaderBytes)
	assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodyBytes)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 600, cfg.CORS.MaxAge)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://galactica.example")
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("METRICS_PATH", "/internal/metrics")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:3000", "https://galactica.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/internal/metrics", cfg.Metrics.Path)
}

func TestLoadReadsDefaultEnvFile(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(DefaultEnvFile, []byte("PORT=7000\nENVIRONMENT=staging\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.HTTP.Port)
	assert.Equal(t, "staging", cfg.Environment)
}

func TestLoadEnvironmentWinsOverFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9999")
	path := filepath.Join(t.TempDir(), "custom.env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=7000\nLOG_LEVEL=warn\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.HTTP.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.env")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non numeric port", "PORT", "http"},
		{"port out of range", "PORT", "70000"},
		{"wildcard origin", "CORS_ALLOWED_ORIGINS", "*"},
		{"blank origins", "CORS_ALLOWED_ORIGINS", " , "},
		{"negative max age", "CORS_MAX_AGE", "-1"},
		{"bad duration", "HTTP_READ_TIMEOUT", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestValidateMetricsPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("METRICS_PATH", "metrics")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "METRICS_PATH")
}

func TestValidateRejectsMetricsPathOnServedRoutes(t *testing.T) {
	for _, path := range []string{"/", "/health", "/health/", "/api/hello", "/docs", "/docs/x", "/openapi.json", "/openapi.yaml", "/schemas/WelcomeData.json"} {
		t.Run(path, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("METRICS_ENABLED", "true")
			t.Setenv("METRICS_PATH", path)

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "collides")
		})
	}
}

func TestValidateAcceptsMetricsPathOffServedRoutes(t *testing.T) {
	for _, path := range []string{"/metrics", "/internal/metrics", "/api/metrics", "/healthz", "/documents"} {
		t.Run(path, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("METRICS_ENABLED", "true")
			t.Setenv("METRICS_PATH", path)

			cfg, err := Load("")
			require.NoError(t, err)
			assert.Equal(t, path, cfg.Metrics.Path)
		})
	}
}

func TestValidateIgnoresMetricsPathWhenDisabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("METRICS_PATH", "/health")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Metrics.Enabled)
}
