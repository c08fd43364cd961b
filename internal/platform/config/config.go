// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
	JWTSigningKey   string
}

// PostgresConfig captures database connection settings.
type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig captures cache connection settings. An empty URL disables the
// attendance record cache; the service runs fine without it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// BadgeConfig captures the gamification service hookup. An empty URL swaps in
// the no-op notifier.
type BadgeConfig struct {
	URL       string
	InboxSize int
	Timeout   time.Duration
}

// Config is the full application configuration.
type Config struct {
	Server         Server
	Postgres       PostgresConfig
	Redis          RedisConfig
	Badge          BadgeConfig
	AuditInboxSize int
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	jwtSigningKey := os.Getenv("MUSTER_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Config{
		Server: Server{
			Addr:            envString("MUSTER_ADDR", ":8080"),
			ShutdownTimeout: envDuration("MUSTER_SHUTDOWN_TIMEOUT", 10*time.Second),
			JWTSigningKey:   jwtSigningKey,
		},
		Postgres: PostgresConfig{
			URL:             os.Getenv("MUSTER_POSTGRES_URL"),
			MaxOpenConns:    envInt("MUSTER_POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("MUSTER_POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("MUSTER_POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("MUSTER_REDIS_URL"),
			PoolSize:     envInt("MUSTER_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("MUSTER_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("MUSTER_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("MUSTER_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("MUSTER_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Badge: BadgeConfig{
			URL:       os.Getenv("MUSTER_BADGE_URL"),
			InboxSize: envInt("MUSTER_BADGE_INBOX_SIZE", 256),
			Timeout:   envDuration("MUSTER_BADGE_TIMEOUT", 2*time.Second),
		},
		AuditInboxSize: envInt("MUSTER_AUDIT_INBOX_SIZE", 1024),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
