package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"schemeportal/internal/insight/models"
	"schemeportal/internal/platform/database"
	id "schemeportal/pkg/domain"
	"schemeportal/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed insight store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const insightColumns = `id, title, body, recommendation, metric_name, severity, confidence, status,
	created_by, decided_by, decision_notes, created_at, decided_at`

func (s *PostgresStore) Create(ctx context.Context, in *models.Insight) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO insights (`+insightColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULL, NULL, $10, NULL)
	`,
		uuid.UUID(in.ID),
		in.Title,
		in.Body,
		in.Recommendation,
		in.MetricName,
		string(in.Severity),
		in.Confidence,
		string(in.Status),
		uuid.UUID(in.CreatedBy),
		in.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("insight id must be unique: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create insight: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, insightID id.InsightID) (*models.Insight, error) {
	in, err := scanInsight(s.db.QueryRowContext(ctx, `SELECT `+insightColumns+` FROM insights WHERE id = $1`, uuid.UUID(insightID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find insight: %w", err)
	}
	return in, nil
}

// List returns insights newest first. An empty status lists every insight.
func (s *PostgresStore) List(ctx context.Context, status models.Status) ([]*models.Insight, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+insightColumns+`
		FROM insights
		WHERE $1::text = '' OR status = $1::text
		ORDER BY created_at DESC
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	defer rows.Close()

	var out []*models.Insight
	for rows.Next() {
		in, err := scanInsight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate insights: %w", err)
	}
	return out, nil
}

// Decide updates the row only while it still has the expected status.
func (s *PostgresStore) Decide(ctx context.Context, insightID id.InsightID, expected models.Status, decision models.Decision) (*models.Insight, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE insights
		SET status = $3, decided_by = $4, decision_notes = $5, decided_at = $6
		WHERE id = $1 AND status = $2
		RETURNING `+insightColumns,
		uuid.UUID(insightID),
		string(expected),
		string(decision.To),
		uuid.UUID(decision.By),
		decision.Notes,
		decision.At,
	)
	in, err := scanInsight(row)
	if err == nil {
		return in, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("decide insight: %w", err)
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM insights WHERE id = $1)`, uuid.UUID(insightID)).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check insight: %w", err)
	}
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return nil, sentinel.ErrConflict
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInsight(row rowScanner) (*models.Insight, error) {
	var (
		in                 models.Insight
		insightID, creator uuid.UUID
		decidedBy          uuid.NullUUID
		severity, status   string
		notes              sql.NullString
		decidedAt          sql.NullTime
	)
	err := row.Scan(&insightID, &in.Title, &in.Body, &in.Recommendation, &in.MetricName, &severity,
		&in.Confidence, &status, &creator, &decidedBy, &notes, &in.CreatedAt, &decidedAt)
	if err != nil {
		return nil, err
	}
	in.ID = id.InsightID(insightID)
	in.CreatedBy = id.UserID(creator)
	in.Severity = models.Severity(severity)
	in.Status = models.Status(status)
	if decidedBy.Valid {
		by := id.UserID(decidedBy.UUID)
		in.DecidedBy = &by
	}
	if notes.Valid {
		in.DecisionNotes = &notes.String
	}
	if decidedAt.Valid {
		in.DecidedAt = &decidedAt.Time
	}
	return &in, nil
}
