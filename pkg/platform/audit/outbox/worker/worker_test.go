package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemeportal/internal/platform/kafka/producer"
	"schemeportal/pkg/platform/audit/outbox"
	"schemeportal/pkg/platform/audit/outbox/metrics"
	"schemeportal/pkg/platform/audit/outbox/store/memory"
)

type recordingProducer struct {
	mu       sync.Mutex
	messages []*producer.Message
	failFor  map[string]bool
}

func (p *recordingProducer) Produce(_ context.Context, msg *producer.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failFor[msg.Headers["aggregate_id"]] {
		return errors.New("broker unavailable")
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingProducer) sent() []*producer.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*producer.Message(nil), p.messages...)
}

func seed(t *testing.T, store *memory.Store, aggregateIDs ...string) {
	t.Helper()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, aggID := range aggregateIDs {
		entry := outbox.NewEntry("application", aggID, "application_status_changed", []byte(`{}`), base.Add(time.Duration(i)*time.Second))
		require.NoError(t, store.Append(context.Background(), entry))
	}
}

func TestPollPublishesAndMarks(t *testing.T) {
	store := memory.New()
	prod := &recordingProducer{}
	seed(t, store, "a1", "a2", "a3")
	w := New(store, prod, WithTopic("portal.test"), WithBatchSize(2))

	assert.Equal(t, 2, w.poll(context.Background()))
	assert.Equal(t, 1, w.poll(context.Background()))
	assert.Equal(t, 0, w.poll(context.Background()))

	sent := prod.sent()
	require.Len(t, sent, 3)
	assert.Equal(t, "portal.test", sent[0].Topic)
	assert.Equal(t, "application:a1", string(sent[0].Key))
	assert.Equal(t, "application_status_changed", sent[0].Headers["event_type"])

	pending, err := store.CountPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func TestFailedEntryStaysPending(t *testing.T) {
	store := memory.New()
	prod := &recordingProducer{failFor: map[string]bool{"bad": true}}
	seed(t, store, "bad", "good")
	w := New(store, prod)

	assert.Equal(t, 1, w.poll(context.Background()))

	pending, err := store.CountPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)
}

func TestStopDrainsAndTerminates(t *testing.T) {
	store := memory.New()
	prod := &recordingProducer{failFor: map[string]bool{"stuck": true}}
	seed(t, store, "a1", "stuck")
	w := New(store, prod, WithPollInterval(time.Hour))
	w.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))

	// a1 went out during the drain; stuck did not block shutdown.
	assert.Len(t, prod.sent(), 1)
}

func TestMetricsTrackBacklogAndFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := memory.New()
	prod := &recordingProducer{failFor: map[string]bool{"bad": true}}
	seed(t, store, "bad", "good")
	w := New(store, prod, WithMetrics(metrics.NewWith(reg)))

	w.poll(context.Background())
	require.NoError(t, w.UpdateMetrics(context.Background()))

	got := gather(t, reg)
	assert.Equal(t, 1.0, got["portal_outbox_published_total{aggregate=application}"])
	assert.Equal(t, 1.0, got["portal_outbox_failures_total{stage=publish}"])
	assert.Equal(t, 1.0, got["portal_outbox_pending"])
	assert.Greater(t, got["portal_outbox_oldest_pending_seconds"], 0.0)
}

func gather(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, l := range m.GetLabel() {
				key += "{" + l.GetName() + "=" + l.GetValue() + "}"
			}
			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			}
		}
	}
	return out
}
