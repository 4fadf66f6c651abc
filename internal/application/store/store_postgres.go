package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"schemeportal/internal/application/models"
	"schemeportal/internal/platform/database"
	schememodels "schemeportal/internal/scheme/models"
	"schemeportal/internal/workflow"
	id "schemeportal/pkg/domain"
	"schemeportal/pkg/platform/sentinel"
)

// PostgresStore persists applications in PostgreSQL. Status changes use a
// conditional UPDATE keyed by (id, expected status) so concurrent reviewers
// cannot both win.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed application store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const applicationColumns = `id, scheme_id, citizen_id, application_data, status,
	reviewed_by, review_notes, submitted_at, reviewed_at, updated_at`

// Create maps the (citizen_id, scheme_id) unique index to sentinel.ErrAlreadyUsed.
func (s *PostgresStore) Create(ctx context.Context, app *models.Application) error {
	data, err := json.Marshal(app.Data)
	if err != nil {
		return fmt.Errorf("encode application data: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications (id, scheme_id, citizen_id, application_data, status, submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		uuid.UUID(app.ID),
		uuid.UUID(app.SchemeID),
		uuid.UUID(app.CitizenID),
		data,
		string(app.Status),
		app.SubmittedAt,
		app.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("one application per citizen and scheme: %w", sentinel.ErrAlreadyUsed)
		}
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("scheme does not exist: %w", sentinel.ErrNotFound)
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	app, err := scanApplication(s.db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, uuid.UUID(applicationID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find application by id: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) ListByCitizen(ctx context.Context, citizenID id.UserID) ([]*models.Application, error) {
	return s.query(ctx, `SELECT `+applicationColumns+` FROM applications
		WHERE citizen_id = $1 ORDER BY submitted_at DESC, id DESC`, uuid.UUID(citizenID))
}

// Exists reports whether an application for the pair exists.
func (s *PostgresStore) Exists(ctx context.Context, citizenID id.UserID, schemeID id.SchemeID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications WHERE citizen_id = $1 AND scheme_id = $2)`,
		uuid.UUID(citizenID), uuid.UUID(schemeID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check existing application: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.Filter) ([]*models.Application, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, strings.Replace(clause, "?", "$"+strconv.Itoa(len(args)), 1))
	}
	if filter.SchemeID != nil {
		add("scheme_id = ?", uuid.UUID(*filter.SchemeID))
	}
	if filter.Status != "" {
		add("status = ?", string(filter.Status))
	}
	if filter.From != nil {
		add("submitted_at >= ?", *filter.From)
	}
	if filter.To != nil {
		add("submitted_at <= ?", *filter.To)
	}

	query := `SELECT ` + applicationColumns + ` FROM applications`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY submitted_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	return s.query(ctx, query, args...)
}

// Counts returns totals per status across all schemes.
func (s *PostgresStore) Counts(ctx context.Context) (schememodels.ApplicationCounts, error) {
	var c schememodels.ApplicationCounts
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM applications GROUP BY status`)
	if err != nil {
		return c, fmt.Errorf("count applications: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return c, fmt.Errorf("scan application count: %w", err)
		}
		tally(&c, workflow.Status(status), n)
	}
	if err := rows.Err(); err != nil {
		return c, fmt.Errorf("iterate application counts: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) CountsByScheme(ctx context.Context) (map[id.SchemeID]schememodels.ApplicationCounts, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT scheme_id, status, COUNT(*) FROM applications GROUP BY scheme_id, status`)
	if err != nil {
		return nil, fmt.Errorf("count applications by scheme: %w", err)
	}
	defer rows.Close()

	out := make(map[id.SchemeID]schememodels.ApplicationCounts)
	for rows.Next() {
		var (
			schemeID uuid.UUID
			status   string
			n        int
		)
		if err := rows.Scan(&schemeID, &status, &n); err != nil {
			return nil, fmt.Errorf("scan application count: %w", err)
		}
		c := out[id.SchemeID(schemeID)]
		tally(&c, workflow.Status(status), n)
		out[id.SchemeID(schemeID)] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate application counts: %w", err)
	}
	return out, nil
}

// Transition updates the row with WHERE id = $1 AND status = $2 and appends
// the history row in the same transaction. Zero rows affected is ErrNotFound
// or ErrConflict, depending on whether the application exists.
func (s *PostgresStore) Transition(ctx context.Context, applicationID id.ApplicationID, expected workflow.Status, review models.Review) (*models.Application, error) {
	var updated *models.Application
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		app, err := scanApplication(tx.QueryRowContext(ctx, `
			UPDATE applications
			SET status = $3, reviewed_by = $4, review_notes = COALESCE($5, review_notes),
				reviewed_at = $6, updated_at = $6
			WHERE id = $1 AND status = $2
			RETURNING `+applicationColumns,
			uuid.UUID(applicationID),
			string(expected),
			string(review.To),
			uuid.UUID(review.ActorID),
			review.Notes,
			review.At,
		))
		if errors.Is(err, sql.ErrNoRows) {
			return missingOrStale(ctx, tx, applicationID)
		}
		if err != nil {
			return fmt.Errorf("update application status: %w", err)
		}

		t := models.NewTransition(applicationID, expected, review)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO application_transitions (application_id, from_status, to_status, actor_id, actor_role, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			uuid.UUID(t.ApplicationID),
			string(t.From),
			string(t.To),
			uuid.UUID(t.ActorID),
			string(t.ActorRole),
			t.Notes,
			t.At,
		); err != nil {
			return fmt.Errorf("append application transition: %w", err)
		}
		updated = app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// missingOrStale explains why the conditional update matched nothing.
func missingOrStale(ctx context.Context, tx *sql.Tx, applicationID id.ApplicationID) error {
	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)`, uuid.UUID(applicationID),
	).Scan(&exists); err != nil {
		return fmt.Errorf("check application existence: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrConflict
}

// History returns transitions oldest first.
func (s *PostgresStore) History(ctx context.Context, applicationID id.ApplicationID) ([]models.Transition, error) {
	if _, err := s.FindByID(ctx, applicationID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT from_status, to_status, actor_id, actor_role, notes, created_at
		FROM application_transitions
		WHERE application_id = $1
		ORDER BY created_at ASC, id ASC
	`, uuid.UUID(applicationID))
	if err != nil {
		return nil, fmt.Errorf("list application transitions: %w", err)
	}
	defer rows.Close()

	out := []models.Transition{}
	for rows.Next() {
		var (
			t        models.Transition
			from, to string
			actorID  uuid.UUID
			role     string
		)
		if err := rows.Scan(&from, &to, &actorID, &role, &t.Notes, &t.At); err != nil {
			return nil, fmt.Errorf("scan application transition: %w", err)
		}
		t.ApplicationID = applicationID
		t.From = workflow.Status(from)
		t.To = workflow.Status(to)
		t.ActorID = id.UserID(actorID)
		t.ActorRole = id.Role(role)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate application transitions: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*models.Application, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return out, nil
}

type applicationRow interface {
	Scan(dest ...any) error
}

func scanApplication(row applicationRow) (*models.Application, error) {
	var (
		app         models.Application
		appID       uuid.UUID
		schemeID    uuid.UUID
		citizenID   uuid.UUID
		dataRaw     []byte
		status      string
		reviewedBy  uuid.NullUUID
		reviewNotes sql.NullString
		reviewedAt  sql.NullTime
	)
	if err := row.Scan(&appID, &schemeID, &citizenID, &dataRaw, &status,
		&reviewedBy, &reviewNotes, &app.SubmittedAt, &reviewedAt, &app.UpdatedAt); err != nil {
		return nil, err
	}
	app.ID = id.ApplicationID(appID)
	app.SchemeID = id.SchemeID(schemeID)
	app.CitizenID = id.UserID(citizenID)
	app.Status = workflow.Status(status)
	if reviewedBy.Valid {
		v := id.UserID(reviewedBy.UUID)
		app.ReviewedBy = &v
	}
	if reviewNotes.Valid {
		v := reviewNotes.String
		app.ReviewNotes = &v
	}
	if reviewedAt.Valid {
		v := reviewedAt.Time
		app.ReviewedAt = &v
	}
	if err := json.Unmarshal(dataRaw, &app.Data); err != nil {
		return nil, fmt.Errorf("decode application data: %w", err)
	}
	return &app, nil
}
