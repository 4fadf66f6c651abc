package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "schemeportal/pkg/domain-errors"
	audit "schemeportal/pkg/platform/audit"
	"schemeportal/pkg/platform/audit/metrics"
	"schemeportal/pkg/platform/audit/store/memory"
)

type failingStore struct {
	err error
}

func (s *failingStore) Append(context.Context, audit.Event) error { return s.err }

func (s *failingStore) ListBySubject(context.Context, string, string) ([]audit.Event, error) {
	return nil, nil
}

func (s *failingStore) ListRecent(context.Context, int) ([]audit.Event, error) { return nil, nil }

// blockingStore holds Append until release is closed.
type blockingStore struct {
	release chan struct{}
}

func (s *blockingStore) Append(context.Context, audit.Event) error {
	<-s.release
	return nil
}

func (s *blockingStore) ListBySubject(context.Context, string, string) ([]audit.Event, error) {
	return nil, nil
}

func (s *blockingStore) ListRecent(context.Context, int) ([]audit.Event, error) { return nil, nil }

func statusChanged(subjectID string) audit.Event {
	return audit.Event{
		Action:      audit.EventApplicationStatusChanged.String(),
		SubjectType: "application",
		SubjectID:   subjectID,
	}
}

func TestPublisher_EmitStoresEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	subject := uuid.NewString()

	require.NoError(t, pub.Emit(context.Background(), statusChanged(subject)))

	events, err := pub.ListBySubject(context.Background(), "application", subject)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEqual(t, uuid.Nil, events[0].ID)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	custom := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	event := statusChanged("a1")
	event.Timestamp = custom

	require.NoError(t, pub.Emit(context.Background(), event))

	events, err := pub.ListBySubject(context.Background(), "application", "a1")
	require.NoError(t, err)
	assert.Equal(t, custom, events[0].Timestamp)
}

func TestPublisher_EmitReturnsStoreError(t *testing.T) {
	storeErr := errors.New("append failed")
	pub := NewPublisher(&failingStore{err: storeErr})

	err := pub.Emit(context.Background(), statusChanged("a1"))
	require.ErrorIs(t, err, storeErr)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))

	for range 5 {
		require.NoError(t, pub.Emit(context.Background(), statusChanged("a1")))
	}
	pub.Close()
	pub.Close()

	events, err := store.ListBySubject(context.Background(), "application", "a1")
	require.NoError(t, err)
	assert.Len(t, events, 5)
}

func TestPublisher_AsyncBufferFull(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()
	defer close(store.release)

	// The worker takes the first event and blocks in Append; the second fills
	// the buffer; eventually one Emit has nowhere to go.
	var err error
	for range 10 {
		if err = pub.Emit(context.Background(), statusChanged("a1")); err != nil {
			break
		}
	}
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestPublisher_MetricsByCategory(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWith(reg)

	pub := NewPublisher(memory.NewInMemoryStore(), WithPublisherMetrics(m))
	require.NoError(t, pub.Emit(context.Background(), statusChanged(uuid.NewString())))

	failing := NewPublisher(&failingStore{err: errors.New("disk full")}, WithPublisherMetrics(m))
	require.Error(t, failing.Emit(context.Background(), audit.Event{Action: audit.EventSchemeCreated.String()}))

	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				values[mf.GetName()+"/"+metric.GetLabel()[0].GetValue()] = c.GetValue()
			}
		}
	}
	assert.Equal(t, 1.0, values["portal_audit_events_persisted_total/compliance"])
	assert.Equal(t, 1.0, values["portal_audit_persist_failures_total/operations"])
}
