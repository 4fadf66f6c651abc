//go:build integration

// Package containers starts the Postgres, Redis and Kafka fixtures used by
// integration tests. Each container is started once per test binary and
// shared by every suite in the package.
package containers

import (
	"sync"
	"testing"
)

// lazy starts its container on first use. A failed start fails the calling
// test and is retried by the next caller.
type lazy[C any] struct {
	mu    sync.Mutex
	value *C
}

func (l *lazy[C]) get(t *testing.T, start func(*testing.T) *C) *C {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.value == nil {
		l.value = start(t)
	}
	return l.value
}

type Manager struct {
	postgres lazy[PostgresContainer]
	redis    lazy[RedisContainer]
	kafka    lazy[KafkaContainer]
}

var shared = sync.OnceValue(func() *Manager { return &Manager{} })

// GetManager returns the process-wide container manager.
func GetManager() *Manager {
	return shared()
}

// GetPostgres returns a migrated Postgres container.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	return m.postgres.get(t, NewPostgresContainer)
}

// GetRedis returns a Redis container.
func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	return m.redis.get(t, NewRedisContainer)
}

// GetKafka returns a Redpanda broker with topic auto-creation enabled.
func (m *Manager) GetKafka(t *testing.T) *KafkaContainer {
	t.Helper()
	return m.kafka.get(t, NewKafkaContainer)
}
