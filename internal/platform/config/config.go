package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	Locale         string
	JWTSigningKey  string
	JWTIssuer      string
	JWTAudience    string
	TokenTTL       time.Duration
	RequestTimeout time.Duration
	SeedDemoData   bool
	TrustedProxies []string

	// MetricsTokenHash is the bcrypt hash of the /metrics bearer token.
	// Empty leaves /metrics open.
	MetricsTokenHash string

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Audit    AuditConfig
	Schemes  SchemeConfig
}

// DatabaseConfig is empty-URL tolerant: no URL means in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers    string
	AuditTopic string
}

// Enabled reports whether the outbox worker should run.
func (k KafkaConfig) Enabled() bool {
	return strings.TrimSpace(k.Brokers) != ""
}

type AuditConfig struct {
	BufferSize int
}

type SchemeConfig struct {
	CacheTTL time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:           envString("PORTAL_ADDR", ":8080"),
		Environment:    envString("PORTAL_ENV", "development"),
		LogLevel:       envString("LOG_LEVEL", "info"),
		Locale:         envString("PORTAL_LOCALE", "en-IN"),
		JWTSigningKey:  jwtSigningKey,
		JWTIssuer:      envString("JWT_ISSUER", "http://localhost:8080"),
		JWTAudience:    envString("JWT_AUDIENCE", "scheme-portal"),
		TokenTTL:       envDuration("TOKEN_TTL", 15*time.Minute),
		RequestTimeout: envDuration("REQUEST_TIMEOUT", 30*time.Second),
		SeedDemoData:   envBool("SEED_DEMO_DATA", false),
		TrustedProxies: envList("TRUSTED_PROXIES"),

		MetricsTokenHash: os.Getenv("METRICS_TOKEN_HASH"),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			AutoMigrate:     envBool("DATABASE_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    os.Getenv("KAFKA_BROKERS"),
			AuditTopic: envString("KAFKA_AUDIT_TOPIC", "portal.audit.events"),
		},
		Audit: AuditConfig{
			BufferSize: envInt("AUDIT_BUFFER_SIZE", 0),
		},
		Schemes: SchemeConfig{
			CacheTTL: envDuration("SCHEME_CACHE_TTL", 5*time.Minute),
		},
	}
}

// IsProduction gates behaviour that must never run outside development.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
