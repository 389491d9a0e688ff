// Package config loads process configuration from the environment. It is
// parsed once in main and passed down.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Secret registry backends.
const (
	SecretsMemory = "memory"
	SecretsRedis  = "redis"
	SecretsSQL    = "sql"
)

// Config is the full process configuration.
type Config struct {
	Store       string `env:"ELECTION_STORE"        envDefault:"sqlite"`
	DBDriver    string `env:"ELECTION_DB_DRIVER"    envDefault:"postgres"`
	DatabaseURL string `env:"ELECTION_DATABASE_URL" envDefault:"election.db"`
	Secrets     string `env:"ELECTION_SECRETS"      envDefault:"sql"`

	Argon ArgonConfig
	Redis RedisConfig
	Audit   AuditConfig
	Metrics MetricsConfig
	Log     LogConfig
}

// ArgonConfig sets the national ID obfuscation cost. It must not change once
// voters are registered.
type ArgonConfig struct {
	Time      uint32 `env:"ELECTION_ARGON_TIME"       envDefault:"2"`
	MemoryKiB uint32 `env:"ELECTION_ARGON_MEMORY_KIB" envDefault:"19456"`
	Threads   uint8  `env:"ELECTION_ARGON_THREADS"    envDefault:"1"`
}

// RedisConfig configures the go-redis client used by the redis secret registry.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE"      envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"1"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT"   envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT"   envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT"  envDefault:"3s"`
}

// AuditConfig enables the Kafka audit sink when Brokers is non-empty.
type AuditConfig struct {
	Brokers []string `env:"ELECTION_AUDIT_BROKERS" envSeparator:","`
	Topic   string   `env:"ELECTION_AUDIT_TOPIC"   envDefault:"election-audit"`
}

// MetricsConfig enables pushing metrics to a Prometheus Pushgateway when
// PushgatewayURL is set.
type MetricsConfig struct {
	PushgatewayURL string        `env:"ELECTION_METRICS_PUSHGATEWAY"`
	Job            string        `env:"ELECTION_METRICS_JOB"          envDefault:"election"`
	PushTimeout    time.Duration `env:"ELECTION_METRICS_PUSH_TIMEOUT" envDefault:"5s"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load parses and validates the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown backends and incomplete backend settings.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite, StorePostgres:
	default:
		return fmt.Errorf("ELECTION_STORE: unknown store %q", c.Store)
	}
	if c.Store == StorePostgres && c.DBDriver != "postgres" && c.DBDriver != "pgx" {
		return fmt.Errorf("ELECTION_DB_DRIVER: unknown driver %q", c.DBDriver)
	}
	if c.Store != StoreMemory && strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("ELECTION_DATABASE_URL is required for the %s store", c.Store)
	}
	switch c.Secrets {
	case SecretsMemory, SecretsRedis:
	case SecretsSQL:
		if c.Store == StoreMemory {
			return fmt.Errorf("ELECTION_SECRETS=sql needs a sql store")
		}
	default:
		return fmt.Errorf("ELECTION_SECRETS: unknown registry %q", c.Secrets)
	}
	if c.Secrets == SecretsRedis && c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required for the redis secret registry")
	}
	if c.Metrics.PushgatewayURL != "" && strings.TrimSpace(c.Metrics.Job) == "" {
		return fmt.Errorf("ELECTION_METRICS_JOB is required when pushing metrics")
	}
	return nil
}

// SQLDriver is the database/sql driver for the configured store.
func (c Config) SQLDriver() string {
	if c.Store == StoreSQLite {
		return "sqlite"
	}
	return c.DBDriver
}
