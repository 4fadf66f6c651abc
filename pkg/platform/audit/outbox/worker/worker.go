package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"schemeportal/internal/platform/kafka/producer"
	"schemeportal/pkg/platform/audit/outbox"
	"schemeportal/pkg/platform/audit/outbox/metrics"
)

// Producer publishes one message and waits for the broker acknowledgement.
// Satisfied by *producer.Producer and *producer.NoopProducer.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// Worker polls the outbox table and publishes entries to Kafka.
// Delivery is at-least-once: an entry published but not marked is sent again.
type Worker struct {
	store        outbox.Store
	producer     Producer
	topic        string
	batchSize    int
	pollInterval time.Duration
	drainTimeout time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Worker)

// WithTopic sets the Kafka topic entries are relayed to.
func WithTopic(topic string) Option {
	return func(w *Worker) {
		w.topic = topic
	}
}

// WithBatchSize bounds how many entries one poll fetches.
func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

// WithPollInterval sets the delay between polls.
func WithPollInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.pollInterval = interval
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// New builds a relay from store to producer.
func New(store outbox.Store, prod Producer, opts ...Option) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		store:        store,
		producer:     prod,
		topic:        "portal.audit.events",
		batchSize:    100,
		pollInterval: 200 * time.Millisecond,
		drainTimeout: 10 * time.Second,
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins the polling loop in a background goroutine.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *Worker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.drain()
			return
		case <-ticker.C:
			w.poll(w.ctx)
		}
	}
}

// poll relays one batch and reports how many entries were marked processed.
// A failed entry stays pending and is retried on the next poll.
func (w *Worker) poll(ctx context.Context) int {
	start := time.Now()

	entries, err := w.store.FetchUnprocessed(ctx, w.batchSize)
	if err != nil {
		w.logError("failed to fetch outbox entries", "error", err)
		w.metrics.Failed(metrics.StageFetch)
		return 0
	}
	if len(entries) == 0 {
		return 0
	}

	published := 0
	for _, entry := range entries {
		sent := time.Now()
		if err := w.producer.Produce(ctx, w.message(entry)); err != nil {
			w.logError("failed to publish outbox entry",
				"id", entry.ID,
				"event_type", entry.EventType,
				"error", err,
			)
			w.metrics.Failed(metrics.StagePublish)
			continue
		}
		elapsed := time.Since(sent).Seconds()
		if err := w.store.MarkProcessed(ctx, entry.ID, time.Now().UTC()); err != nil {
			w.logError("failed to mark entry as processed", "id", entry.ID, "error", err)
			w.metrics.Failed(metrics.StageMark)
			continue
		}
		published++
		w.metrics.Published(entry.AggregateType, elapsed)
	}

	w.metrics.Polled(len(entries), time.Since(start).Seconds())
	return published
}

// message keys by aggregate so one application's events stay ordered within a partition.
func (w *Worker) message(entry *outbox.Entry) *producer.Message {
	return &producer.Message{
		Topic: w.topic,
		Key:   []byte(entry.AggregateType + ":" + entry.AggregateID),
		Value: entry.Payload,
		Headers: map[string]string{
			"outbox_id":      entry.ID.String(),
			"aggregate_type": entry.AggregateType,
			"aggregate_id":   entry.AggregateID,
			"event_type":     entry.EventType,
		},
	}
}

// drain publishes what is left at shutdown. It stops when the outbox is
// empty, when a batch makes no progress, or when drainTimeout elapses.
func (w *Worker) drain() {
	if w.logger != nil {
		w.logger.Info("draining outbox worker")
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.drainTimeout)
	defer cancel()

	for ctx.Err() == nil {
		if w.poll(ctx) == 0 {
			return
		}
	}
}

// Stop cancels polling, drains, and waits for the loop to exit.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateMetrics refreshes the backlog gauges. It is a no-op without metrics.
func (w *Worker) UpdateMetrics(ctx context.Context) error {
	if w.metrics == nil {
		return nil
	}
	count, err := w.store.CountPending(ctx)
	if err != nil {
		return err
	}
	oldest, ok, err := w.store.OldestPending(ctx)
	if err != nil {
		return err
	}
	age := 0.0
	if ok {
		age = time.Since(oldest).Seconds()
	}
	w.metrics.Backlog(count, age)
	return nil
}

func (w *Worker) logError(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Error(msg, args...)
	}
}
