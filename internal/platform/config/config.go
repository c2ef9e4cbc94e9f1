package config

import (
	"os"
	"strings"
	"time"

	platformstrings "drivewise/pkg/platform/strings"
)

// Config captures everything the server needs from the environment so main
// stays lean.
type Config struct {
	Addr            string
	PostgresDSN     string
	MigrationsPath  string
	Redis           RedisConfig
	KafkaBrokers    []string
	KafkaTopic      string
	RegistryBaseURL string
	SIMBaseURL      string
	CloudBaseURL    string
	RemoteTimeout   time.Duration
	ShutdownTimeout time.Duration
}

// RedisConfig tunes the cached-device store connection. An empty URL disables
// Redis and the server falls back to the in-memory store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:            getenv("DRIVEWISE_ADDR", ":8080"),
		PostgresDSN:     os.Getenv("DRIVEWISE_POSTGRES_DSN"),
		MigrationsPath:  getenv("DRIVEWISE_MIGRATIONS_PATH", "migrations"),
		Redis:           redisFromEnv(),
		KafkaBrokers:    splitList(os.Getenv("DRIVEWISE_KAFKA_BROKERS")),
		KafkaTopic:      getenv("DRIVEWISE_KAFKA_TOPIC", "device-lifecycle-events"),
		RegistryBaseURL: os.Getenv("DRIVEWISE_REGISTRY_URL"),
		SIMBaseURL:      os.Getenv("DRIVEWISE_SIM_URL"),
		CloudBaseURL:    os.Getenv("DRIVEWISE_CLOUD_URL"),
		RemoteTimeout:   duration("DRIVEWISE_REMOTE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: duration("DRIVEWISE_SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

func redisFromEnv() RedisConfig {
	return RedisConfig{
		URL:          os.Getenv("DRIVEWISE_REDIS_URL"),
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	out := platformstrings.DedupeAndTrim(strings.Split(v, ","))
	if len(out) == 0 {
		return nil
	}
	return out
}
