package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 4*time.Hour, cfg.Session.MaxAge)
	assert.Equal(t, 30*time.Minute, cfg.Session.NearExpiry)
	assert.Equal(t, CacheDriverMemory, cfg.Cache.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.DefaultTTL)
	assert.Equal(t, 100, cfg.Cache.MaxEntries)
	assert.Equal(t, 300*time.Millisecond, cfg.Sync.Debounce)
	assert.Equal(t, 3, cfg.Sync.MinQueryLength)
	assert.Equal(t, 5, cfg.Sync.StudentPageSize)
	assert.Equal(t, 8, cfg.Sync.YearPageSize)
	assert.Equal(t, 50, cfg.Sync.GlobalSearchLimit)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ODOO_HOST", "https://odoo.example.com/")
	t.Setenv("ODOO_DATABASE", "school")
	t.Setenv("SYNC_DEBOUNCE", "150ms")
	t.Setenv("SYNC_STUDENT_PAGE_SIZE", "0")
	t.Setenv("CACHE_DRIVER", "REDIS")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://odoo.example.com", cfg.Odoo.Host)
	assert.Equal(t, "school", cfg.Odoo.Database)
	assert.Equal(t, 150*time.Millisecond, cfg.Sync.Debounce)
	assert.Equal(t, 5, cfg.Sync.StudentPageSize)
	assert.Equal(t, CacheDriverRedis, cfg.Cache.Driver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Second, parseDuration("", time.Second))
	assert.Equal(t, time.Second, parseDuration("soon", time.Second))
	assert.Equal(t, 2*time.Minute, parseDuration("2m", time.Second))
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
