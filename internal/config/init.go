package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv             string
	AppPort            string
	DBDSN              string
	TablePrefix        string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	JWTSecret          string
	ChangeFeedInterval time.Duration
	BatchSize          int
	// SiteLocation is the timezone the site writes post_date and post_modified in.
	SiteLocation *time.Location
	// EnvFileLoaded is false when no .env file could be read.
	EnvFileLoaded bool
}

const defaultBatchSize = 100

// PostsTable is the name of the posts table.
func (c *Config) PostsTable() string {
	return c.TablePrefix + "posts"
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	// بارگذاری .env
	envErr := godotenv.Load()

	cfg := &Config{
		EnvFileLoaded: envErr == nil,
		AppEnv:        os.Getenv("APP_ENV"),
		AppPort:       getenv("APP_PORT", "8080"),
		DBDSN:         os.Getenv("DB_DSN"),
		TablePrefix:   getenv("DB_TABLE_PREFIX", "wp_"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
	}

	var missing []string
	if cfg.DBDSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if cfg.RedisAddr == "" {
		missing = append(missing, "REDIS_ADDR")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if raw := os.Getenv("REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", raw, err)
		}
		cfg.RedisDB = db
	}

	interval, err := time.ParseDuration(getenv("CHANGEFEED_INTERVAL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHANGEFEED_INTERVAL: %w", err)
	}
	cfg.ChangeFeedInterval = interval

	cfg.BatchSize, err = strconv.Atoi(os.Getenv("BATCH_SIZE"))
	if err != nil || cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize // مقدار پیش‌فرض
	}

	site, err := time.LoadLocation(getenv("SITE_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid SITE_TIMEZONE: %w", err)
	}
	cfg.SiteLocation = site

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
