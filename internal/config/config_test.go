package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("PORT", "8080")
	t.Setenv("CONTENT_PROJECT_ID", "abc123")
	t.Setenv("CONTENT_DATASET", "production")
	t.Setenv("GO_ENV", "dev")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "2025-01-13", cfg.ContentAPIVersion)
	assert.Equal(t, StorageBackendPostgres, cfg.StorageBackend)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 2*time.Second, cfg.CheckoutDelay)
	assert.Equal(t, []int{16, 32, 64}, cfg.PageSizes)
	assert.True(t, cfg.CookieSecure)
	assert.False(t, cfg.ContentUseCDN)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", ":9000")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CHECKOUT_DELAY", "500ms")
	t.Setenv("PAGE_SIZES", "12, 24")
	t.Setenv("CONTENT_USE_CDN", "true")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, StorageBackendRedis, cfg.StorageBackend)
	assert.Equal(t, 500*time.Millisecond, cfg.CheckoutDelay)
	assert.Equal(t, []int{12, 24}, cfg.PageSizes)
	assert.True(t, cfg.ContentUseCDN)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing port":        {"PORT": ""},
		"missing project":     {"CONTENT_PROJECT_ID": ""},
		"missing dataset":     {"CONTENT_DATASET": ""},
		"unknown backend":     {"STORAGE_BACKEND": "mongo"},
		"redis without url":   {"STORAGE_BACKEND": "redis", "REDIS_URL": ""},
		"bad duration":        {"CACHE_TTL": "soon"},
		"negative duration":   {"CHECKOUT_DELAY": "-1s"},
		"bad page sizes":      {"PAGE_SIZES": "16,x"},
		"zero page size":      {"PAGE_SIZES": "0"},
		"bad bool":            {"COOKIE_SECURE": "maybe"},
		"prod without secret": {"GO_ENV": "prod", "AUTH_JWT_SECRET": ""},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			for k, v := range env {
				t.Setenv(k, v)
			}

			_, err := Load()

			assert.Error(t, err)
		})
	}
}

func TestLoadContent(t *testing.T) {
	t.Setenv("CONTENT_PROJECT_ID", "abc123")
	t.Setenv("CONTENT_DATASET", "production")
	t.Setenv("CONTENT_TOKEN", "tok")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cs, err := LoadContent()

	require.NoError(t, err)
	assert.Equal(t, "tok", cs.Token)
	assert.Equal(t, "redis://localhost:6379/0", cs.RedisURL)

	t.Setenv("CONTENT_DATASET", "")
	_, err = LoadContent()
	assert.Error(t, err)
}
