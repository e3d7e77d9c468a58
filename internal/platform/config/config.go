package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	pkgstrings "bizverify/pkg/platform/strings"
)

// Config is the full runtime configuration. FromEnv fills it; CLI flags may
// override individual fields afterwards.
type Config struct {
	Server   Server
	Source   SourceConfig
	Policy   PolicyConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
	Log      LogConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// SourceConfig describes where the submissions export is fetched from.
type SourceConfig struct {
	URL      string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// PolicyConfig tunes normalization and deduplication.
type PolicyConfig struct {
	Timezone        string
	RequireIdentity bool
}

// RedisConfig enables the shared dataset cache when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig enables persistent run history when URL is set.
type PostgresConfig struct {
	URL      string
	MaxConns int
}

// KafkaConfig enables run events when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

// DefaultCacheTTL is how long a fetched export is reused before re-fetching.
const DefaultCacheTTL = 5 * time.Minute

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var errs []string
	duration := func(key string, def time.Duration) time.Duration {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			errs = append(errs, fmt.Sprintf("%s: invalid duration %q", key, v))
			return def
		}
		return d
	}
	integer := func(key string, def int) int {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Sprintf("%s: invalid integer %q", key, v))
			return def
		}
		return n
	}

	cfg := Config{
		Server: Server{
			Addr:            envOr("BIZVERIFY_ADDR", ":8080"),
			ShutdownTimeout: duration("BIZVERIFY_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Source: SourceConfig{
			URL:      os.Getenv("BIZVERIFY_SOURCE_URL"),
			Timeout:  duration("BIZVERIFY_SOURCE_TIMEOUT", 30*time.Second),
			CacheTTL: duration("BIZVERIFY_CACHE_TTL", DefaultCacheTTL),
		},
		Policy: PolicyConfig{
			Timezone:        envOr("BIZVERIFY_TIMEZONE", "Africa/Nairobi"),
			RequireIdentity: os.Getenv("BIZVERIFY_REQUIRE_IDENTITY") == "true",
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL:      os.Getenv("DATABASE_URL"),
			MaxConns: integer("DATABASE_MAX_CONNS", 4),
		},
		Kafka: KafkaConfig{
			Brokers: pkgstrings.SplitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   envOr("KAFKA_TOPIC", "bizverify.runs"),
		},
		Log: LogConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
	}

	if len(errs) > 0 {
		return cfg, fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// Location resolves the policy timezone.
func (p PolicyConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", p.Timezone, err)
	}
	return loc, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
