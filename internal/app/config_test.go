package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for _, key := range []string{"APP_ENV", "REPORT_TIMEZONE", "RATE_LIMIT_PER_MINUTE", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	isolateEnv(t)
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigDefaults(t *testing.T) {
	isolateEnv(t)
	t.Setenv("AUTH_JWT_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 30*time.Second, cfg.AppRequestTimeout)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, "0 2 * * *", cfg.ReconcileCron)
	assert.Equal(t, 48*time.Hour, cfg.IdempotencyRetention)
	assert.Equal(t, ":9091", cfg.WorkerMetricsAddr)
	assert.False(t, cfg.IsProduction())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())
}

func TestLoadConfigReadsEnvFile(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("AUTH_JWT_SECRET=from-file\nCORS_ALLOWED_ORIGINS=https://a.test,https://b.test\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("AUTH_JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("AUTH_JWT_SECRET"))
	t.Cleanup(func() {
		_ = os.Unsetenv("AUTH_JWT_SECRET")
		_ = os.Unsetenv("CORS_ALLOWED_ORIGINS")
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.AuthJWTSecret)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfigRejectsUnknownTimezone(t *testing.T) {
	isolateEnv(t)
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("REPORT_TIMEZONE", "Mars/Olympus")

	_, err := LoadConfig()
	assert.Error(t, err)
}
