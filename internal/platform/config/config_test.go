package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORTAL_ADDR", "PORTAL_ENV", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "SCHEME_CACHE_TTL", "TRUSTED_PROXIES", "PORTAL_LOCALE", "DATABASE_AUTO_MIGRATE", "METRICS_TOKEN_HASH"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "en-IN", cfg.Locale)
	assert.Empty(t, cfg.Database.URL)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "portal.audit.events", cfg.Kafka.AuditTopic)
	assert.Equal(t, 5*time.Minute, cfg.Schemes.CacheTTL)
	assert.Empty(t, cfg.TrustedProxies)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Empty(t, cfg.MetricsTokenHash)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORTAL_ADDR", ":9090")
	t.Setenv("PORTAL_ENV", "production")
	t.Setenv("KAFKA_BROKERS", "kafka:9092")
	t.Setenv("SCHEME_CACHE_TTL", "30s")
	t.Setenv("AUDIT_BUFFER_SIZE", "256")
	t.Setenv("SEED_DEMO_DATA", "true")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.0.1")
	t.Setenv("REQUEST_TIMEOUT", "not-a-duration")
	t.Setenv("DATABASE_AUTO_MIGRATE", "true")
	t.Setenv("METRICS_TOKEN_HASH", "$2a$10$hash")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, 30*time.Second, cfg.Schemes.CacheTTL)
	assert.Equal(t, 256, cfg.Audit.BufferSize)
	assert.True(t, cfg.SeedDemoData)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.0.1"}, cfg.TrustedProxies)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout, "unparseable values fall back to the default")
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "$2a$10$hash", cfg.MetricsTokenHash)
}
