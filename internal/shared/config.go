package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MetricsAddr    string
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	AuthBase       string
	AuthSecret     string
	AuthToken      string // persisted session token to resume at start, if any
	SessionRefresh time.Duration
	CacheTTL       time.Duration
	SeedFile       string
	Workers        int
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ":9100"),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/staybooker?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		AuthBase:       env("AUTH_BASE_URL", "http://localhost:9096"),
		AuthSecret:     env("AUTH_SECRET", ""),
		AuthToken:      env("AUTH_TOKEN", ""),
		SessionRefresh: time.Duration(atoi("SESSION_REFRESH_SECONDS", 300)) * time.Second,
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		SeedFile:       env("SEED_FILE", "seed/hotels.json"),
		Workers:        atoi("SEED_WORKERS", 8),
	}
	if c.AuthSecret == "" {
		log.Warn().Msg("AUTH_SECRET is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
