package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "election.db", cfg.DatabaseURL)
	assert.Equal(t, SecretsSQL, cfg.Secrets)
	assert.Equal(t, "sqlite", cfg.SQLDriver())
	assert.Equal(t, uint32(19456), cfg.Argon.MemoryKiB)
	assert.Equal(t, "election-audit", cfg.Audit.Topic)
	assert.Empty(t, cfg.Audit.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Redis.DialTimeout)
	assert.Empty(t, cfg.Metrics.PushgatewayURL)
	assert.Equal(t, "election", cfg.Metrics.Job)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ELECTION_STORE", "postgres")
	t.Setenv("ELECTION_DB_DRIVER", "pgx")
	t.Setenv("ELECTION_DATABASE_URL", "postgres://localhost/election")
	t.Setenv("ELECTION_SECRETS", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ELECTION_AUDIT_BROKERS", "a:9092,b:9092")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("ELECTION_METRICS_PUSHGATEWAY", "http://pushgateway:9091")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "pgx", cfg.SQLDriver())
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Audit.Brokers)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "http://pushgateway:9091", cfg.Metrics.PushgatewayURL)
}

func TestValidate(t *testing.T) {
	base := Config{Store: StoreSQLite, DBDriver: "postgres", DatabaseURL: "x.db", Secrets: SecretsSQL}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown store", func(c *Config) { c.Store = "mongo" }},
		{"unknown driver", func(c *Config) { c.Store = StorePostgres; c.DBDriver = "mysql" }},
		{"missing dsn", func(c *Config) { c.DatabaseURL = " " }},
		{"sql secrets on memory store", func(c *Config) { c.Store = StoreMemory }},
		{"unknown secrets", func(c *Config) { c.Secrets = "vault" }},
		{"redis without url", func(c *Config) { c.Secrets = SecretsRedis }},
		{"pushgateway without job", func(c *Config) { c.Metrics.PushgatewayURL = "http://pg:9091"; c.Metrics.Job = "" }},
	}
	require.NoError(t, base.Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
