package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	dErrors "schemeportal/pkg/domain-errors"
	audit "schemeportal/pkg/platform/audit"
	"schemeportal/pkg/platform/audit/metrics"
)

// Publisher captures structured audit events. It is append-only and persists
// through an audit.Store so tests can swap sinks.
type Publisher struct {
	store   audit.Store
	events  chan audit.Event
	wg      sync.WaitGroup
	logger  *slog.Logger
	metrics *metrics.Metrics
	async   bool
	once    sync.Once
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer queues events and persists them from a background goroutine.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan audit.Event, size)
			p.async = true
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithPublisherMetrics(m *metrics.Metrics) PublisherOption {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// NewPublisher writes events to store, synchronously unless WithAsyncBuffer is given.
func NewPublisher(store audit.Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		p.metrics.Dequeued()
		_ = p.persist(context.Background(), event)
	}
}

func (p *Publisher) persist(ctx context.Context, event audit.Event) error {
	start := time.Now()
	err := p.store.Append(ctx, event)
	p.metrics.Persisted(string(event.Category), time.Since(start).Seconds(), err)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("failed to persist audit event",
				"error", err,
				"action", event.Action,
				"request_id", event.RequestID,
			)
		}
		return err
	}
	return nil
}

// Close stops accepting events and waits for the queue to drain.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.async && p.events != nil {
			close(p.events)
			p.wg.Wait()
		}
	})
}

// Emit assigns an ID and timestamp if missing, then persists or enqueues.
// A full async buffer drops the event and returns an internal error.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	start := time.Now()
	defer func() {
		p.metrics.ObserveEmit(time.Since(start).Seconds())
	}()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if !p.async {
		return p.persist(ctx, event)
	}

	select {
	case p.events <- event:
		p.metrics.Enqueued(string(event.Category))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.metrics.Dropped(string(event.Category))
		if p.logger != nil {
			p.logger.Warn("audit buffer full, event dropped",
				"action", event.Action,
				"request_id", event.RequestID,
			)
		}
		return dErrors.New(dErrors.CodeInternal, "audit buffer full")
	}
}

// ListBySubject exposes the audit trail of one record.
func (p *Publisher) ListBySubject(ctx context.Context, subjectType, subjectID string) ([]audit.Event, error) {
	return p.store.ListBySubject(ctx, subjectType, subjectID)
}
