package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 6, cfg.Search.DefaultLimit)
	assert.Equal(t, 50, cfg.Search.MaxLimit)
	assert.Equal(t, 10, cfg.Catalog.DefaultLimit)
	assert.Equal(t, "memory", cfg.Contact.Store)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9999
  readTimeout: 3s
redis:
  enabled: true
  addr: cache:6379
  cacheTTL: 1m
logging:
  level: debug
  format: text
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched sections keep defaults
	assert.Equal(t, 6, cfg.Search.DefaultLimit)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9999\n")
	t.Setenv("LH_SERVER_PORT", "7070")
	t.Setenv("LH_KAFKA_ENABLED", "true")
	t.Setenv("LH_KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("LH_CORS_ALLOWED_ORIGINS", "https://hub.example,https://www.hub.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"https://hub.example", "https://www.hub.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [port")
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"search default above max", func(c *Config) { c.Search.DefaultLimit = 100 }},
		{"catalog default zero", func(c *Config) { c.Catalog.DefaultLimit = 0 }},
		{"rate limit zero", func(c *Config) { c.Auth.RateLimit = 0 }},
		{"unknown contact store", func(c *Config) { c.Contact.Store = "mongo" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestPostgresDSN(t *testing.T) {
	p := Default().Postgres
	assert.Equal(t,
		"host=localhost port=5432 user=learninghub password=localdev dbname=learninghub sslmode=disable",
		p.DSN(),
	)
}

func TestLoad_ShippedConfigs(t *testing.T) {
	for _, name := range []string{"development.yaml", "docker.yaml"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(filepath.Join("..", "..", "configs", name))
			require.NoError(t, err)
			assert.Equal(t, 8080, cfg.Server.Port)
		})
	}
}
