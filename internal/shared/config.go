package shared

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv            string
	HTTPAddr          string
	MetricsAddr       string
	MySQLDSN          string
	DBMaxOpenConns    int
	DBQueryTimeout    time.Duration
	RedisAddr         string
	RedisDB           int
	RedisPass         string
	SummaryCacheTTL   time.Duration
	IdentityBase      string
	IdentityRPS       int
	DefaultTenant     string
	FallbackTablePath string
	WarmWorkers       int
	WarmTenants       []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first; real environment variables win over it.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg(".env could not be read")
	}
	return fromEnv()
}

func fromEnv() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:            env("APP_ENV", "prod"),
		HTTPAddr:          env("HTTP_ADDR", ":8080"),
		MetricsAddr:       env("METRICS_ADDR", ""),
		MySQLDSN:          env("MYSQL_DSN", "root:root@tcp(localhost:3306)/revenue?parseTime=true&loc=UTC"),
		DBMaxOpenConns:    atoi("DB_MAX_OPEN_CONNS", 20),
		DBQueryTimeout:    time.Duration(atoi("DB_QUERY_TIMEOUT_MS", 2000)) * time.Millisecond,
		RedisAddr:         env("REDIS_ADDR", "localhost:6379"),
		RedisDB:           atoi("REDIS_DB", 0),
		RedisPass:         env("REDIS_PASSWORD", ""),
		SummaryCacheTTL:   time.Duration(atoi("SUMMARY_CACHE_TTL_SECONDS", 60)) * time.Second,
		IdentityBase:      env("IDENTITY_BASE_URL", ""),
		IdentityRPS:       atoi("IDENTITY_RPS", 50),
		DefaultTenant:     env("DEFAULT_TENANT", "default_tenant"),
		FallbackTablePath: env("FALLBACK_TABLE_PATH", ""),
		WarmWorkers:       atoi("WARM_WORKERS", 4),
		WarmTenants:       splitList(env("WARM_TENANTS", "tenant-a,tenant-b")),
	}
	if c.IdentityBase == "" {
		log.Warn().Msg("IDENTITY_BASE_URL is empty; trusting X-Tenant-ID header")
	}
	if c.WarmWorkers <= 0 {
		c.WarmWorkers = 1
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
