package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DSN", "REDIS_URL", "CATEGORY_CACHE_TTL", "COOKIE_SECURE", "API_BASE_URL", "MEDIA_DIR"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "storefront.db", cfg.DBDSN)
	assert.Equal(t, "", cfg.RedisURL)
	assert.Equal(t, 10*time.Minute, cfg.CategoryCacheTTL)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, "http://localhost:8081", cfg.APIBaseURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CATEGORY_CACHE_TTL", "30s")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("LOG_FILE", "")
	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.CategoryCacheTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, "", cfg.LogFile)
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("CATEGORY_CACHE_TTL", "soon")
	assert.Equal(t, 10*time.Minute, Load().CategoryCacheTTL)
}
