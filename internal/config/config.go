package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	applog "storefront/internal/log"
)

type Config struct {
	Port             string
	DBDSN            string
	LogFile          string
	MediaDir         string
	RedisURL         string
	CategoryCacheTTL time.Duration
	CookieSecure     bool
	APIBaseURL       string
}

func Load() Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := Config{
		Port:             getEnv("PORT", "8081"),
		DBDSN:            getEnv("DB_DSN", "storefront.db"), // sqlite file in project root
		LogFile:          lookupEnv("LOG_FILE", "./storefront.log"),
		MediaDir:         getEnv("MEDIA_DIR", "./web/media"),
		RedisURL:         os.Getenv("REDIS_URL"),
		CategoryCacheTTL: getDuration("CATEGORY_CACHE_TTL", 10*time.Minute),
		CookieSecure:     getBool("COOKIE_SECURE", false),
		APIBaseURL:       getEnv("API_BASE_URL", "http://localhost:8081"),
	}
	applog.Info(nil, "config.loaded", map[string]any{
		"port":               cfg.Port,
		"db_dsn":             cfg.DBDSN,
		"log_file":           cfg.LogFile,
		"media_dir":          cfg.MediaDir,
		"redis":              cfg.RedisURL != "",
		"category_cache_ttl": cfg.CategoryCacheTTL.String(),
	})
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// lookupEnv keeps an explicitly empty value, so LOG_FILE= disables file logging.
func lookupEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		applog.Security(nil, "config.invalid", map[string]any{"key": key, "value": v})
		return def
	}
	return d
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
