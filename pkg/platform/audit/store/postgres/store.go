package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "schemeportal/pkg/domain"
	audit "schemeportal/pkg/platform/audit"
	"schemeportal/pkg/platform/audit/outbox"
	outboxpg "schemeportal/pkg/platform/audit/outbox/store/postgres"
)

// Store implements audit.Store using PostgreSQL. When an outbox is attached,
// every appended event is also queued for Kafka in the same transaction.
type Store struct {
	db     *sql.DB
	outbox *outboxpg.Store
}

type Option func(*Store)

// WithOutbox enables the transactional outbox write.
func WithOutbox(o *outboxpg.Store) Option {
	return func(s *Store) {
		s.outbox = o
	}
}

// New constructs a PostgreSQL-backed audit store.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const insertEvent = `
	INSERT INTO audit_events (
		id, category, occurred_at, action, actor_id, actor_role,
		subject_type, subject_id, from_status, to_status, notes_length,
		reason, request_id, client_ip_prefix, device
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (id) DO NOTHING
`

// outboxPayload is the Kafka message body for an audit event.
type outboxPayload struct {
	ID          string `json:"id"`
	OccurredAt  string `json:"occurred_at"`
	Category    string `json:"category"`
	Action      string `json:"action"`
	ActorID     string `json:"actor_id,omitempty"`
	ActorRole   string `json:"actor_role,omitempty"`
	SubjectType string `json:"subject_type"`
	SubjectID   string `json:"subject_id"`
	FromStatus  string `json:"from_status,omitempty"`
	ToStatus    string `json:"to_status,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// Append writes the audit row and, when an outbox is configured, its outbox
// entry in one transaction.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var actorID *uuid.UUID
	if !event.ActorID.IsNil() {
		uid := uuid.UUID(event.ActorID)
		actorID = &uid
	}

	if _, err := tx.ExecContext(ctx, insertEvent,
		event.ID,
		string(event.Category),
		event.Timestamp,
		event.Action,
		actorID,
		string(event.ActorRole),
		event.SubjectType,
		event.SubjectID,
		event.FromStatus,
		event.ToStatus,
		event.NotesLength,
		event.Reason,
		event.RequestID,
		event.ClientIPPrefix,
		event.Device,
	); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	if s.outbox != nil {
		payload, err := json.Marshal(outboxPayload{
			ID:          event.ID.String(),
			OccurredAt:  event.Timestamp.UTC().Format(time.RFC3339Nano),
			Category:    string(event.Category),
			Action:      event.Action,
			ActorID:     optionalID(event.ActorID),
			ActorRole:   string(event.ActorRole),
			SubjectType: event.SubjectType,
			SubjectID:   event.SubjectID,
			FromStatus:  event.FromStatus,
			ToStatus:    event.ToStatus,
			RequestID:   event.RequestID,
		})
		if err != nil {
			return fmt.Errorf("encode outbox payload: %w", err)
		}
		entry := outbox.NewEntry(event.SubjectType, event.SubjectID, event.Action, payload, event.Timestamp)
		if err := s.outbox.AppendTx(ctx, tx, entry); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit tx: %w", err)
	}
	return nil
}

const selectEvents = `
	SELECT id, category, occurred_at, action, actor_id, actor_role,
		subject_type, subject_id, from_status, to_status, notes_length,
		reason, request_id, client_ip_prefix, device
	FROM audit_events
`

// ListBySubject returns events for one record, newest first.
func (s *Store) ListBySubject(ctx context.Context, subjectType, subjectID string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectEvents+`
		WHERE subject_type = $1 AND subject_id = $2
		ORDER BY occurred_at DESC, seq DESC
	`, subjectType, subjectID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListRecent returns up to limit events, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectEvents+`
		ORDER BY occurred_at DESC, seq DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			e         audit.Event
			category  string
			actorRole string
			actorID   *uuid.UUID
		)
		if err := rows.Scan(
			&e.ID, &category, &e.Timestamp, &e.Action, &actorID, &actorRole,
			&e.SubjectType, &e.SubjectID, &e.FromStatus, &e.ToStatus, &e.NotesLength,
			&e.Reason, &e.RequestID, &e.ClientIPPrefix, &e.Device,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		e.ActorRole = id.Role(actorRole)
		if actorID != nil {
			e.ActorID = id.UserID(*actorID)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

func optionalID(u id.UserID) string {
	if u.IsNil() {
		return ""
	}
	return u.String()
}
