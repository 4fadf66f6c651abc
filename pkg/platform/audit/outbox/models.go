package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a pending event in the outbox table. It is written in the same
// transaction as the audit row and published to Kafka later by the worker.
type Entry struct {
	ID            uuid.UUID
	AggregateType string // application, scheme, staff_member, insight
	AggregateID   string
	EventType     string // audit action, e.g. application_status_changed
	Payload       []byte // JSON-encoded event
	CreatedAt     time.Time
	ProcessedAt   *time.Time // nil until published
}

func (e *Entry) IsPending() bool {
	return e.ProcessedAt == nil
}

// NewEntry returns a pending entry with a fresh id.
func NewEntry(aggregateType, aggregateID, eventType string, payload []byte, now time.Time) *Entry {
	return &Entry{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	}
}
