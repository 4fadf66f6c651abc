package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// HealthChecker asks the cluster for its broker list.
type HealthChecker struct {
	admin   *kadm.Client
	client  *kgo.Client
	timeout time.Duration
}

// NewHealthChecker opens an admin client against brokers.
func NewHealthChecker(brokers []string) (*HealthChecker, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}
	client, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return nil, fmt.Errorf("create kafka admin client: %w", err)
	}
	return &HealthChecker{
		admin:   kadm.NewClient(client),
		client:  client,
		timeout: 5 * time.Second,
	}, nil
}

// Check fails when broker metadata cannot be fetched or lists no brokers.
func (h *HealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	meta, err := h.admin.BrokerMetadata(ctx)
	if err != nil {
		return fmt.Errorf("kafka metadata: %w", err)
	}
	if len(meta.Brokers) == 0 {
		return errors.New("no kafka brokers reachable")
	}
	return nil
}

func (h *HealthChecker) Name() string {
	return "kafka"
}

func (h *HealthChecker) Close() {
	h.client.Close()
}
