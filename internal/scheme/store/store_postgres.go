package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	eligibility "schemeportal/internal/eligibility/models"
	"schemeportal/internal/platform/database"
	"schemeportal/internal/scheme/models"
	id "schemeportal/pkg/domain"
	"schemeportal/pkg/platform/sentinel"
)

// PostgresStore persists schemes in PostgreSQL. Benefits and criteria are
// stored as JSONB.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed scheme store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const schemeColumns = `id, name, ministry, description, benefits, eligibility_criteria,
	benefit_amount, status, created_by, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, scheme *models.Scheme) error {
	benefits, criteria, err := encodeJSON(scheme)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO schemes (`+schemeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		uuid.UUID(scheme.ID),
		scheme.Name,
		scheme.Ministry,
		scheme.Description,
		benefits,
		criteria,
		scheme.BenefitAmount,
		string(scheme.Status),
		nullableUser(scheme.CreatedBy),
		scheme.CreatedAt,
		scheme.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("scheme id must be unique: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create scheme: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, schemeID id.SchemeID) (*models.Scheme, error) {
	scheme, err := scanScheme(s.db.QueryRowContext(ctx,
		`SELECT `+schemeColumns+` FROM schemes WHERE id = $1`, uuid.UUID(schemeID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find scheme by id: %w", err)
	}
	return scheme, nil
}

func (s *PostgresStore) Update(ctx context.Context, scheme *models.Scheme) error {
	benefits, criteria, err := encodeJSON(scheme)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE schemes
		SET name = $2, ministry = $3, description = $4, benefits = $5,
			eligibility_criteria = $6, benefit_amount = $7, status = $8, updated_at = $9
		WHERE id = $1
	`,
		uuid.UUID(scheme.ID),
		scheme.Name,
		scheme.Ministry,
		scheme.Description,
		benefits,
		criteria,
		scheme.BenefitAmount,
		string(scheme.Status),
		scheme.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update scheme: %w", err)
	}
	return requireRow(res, "update scheme")
}

// Delete returns sentinel.ErrNotFound when no row was removed and
// sentinel.ErrConflict while applications still reference the scheme.
func (s *PostgresStore) Delete(ctx context.Context, schemeID id.SchemeID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM schemes WHERE id = $1`, uuid.UUID(schemeID))
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("scheme has applications: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("delete scheme: %w", err)
	}
	return requireRow(res, "delete scheme")
}

// ListActive returns active schemes, newest first.
func (s *PostgresStore) ListActive(ctx context.Context) ([]*models.Scheme, error) {
	return s.list(ctx, `SELECT `+schemeColumns+` FROM schemes WHERE status = 'active' ORDER BY created_at DESC`)
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]*models.Scheme, error) {
	return s.list(ctx, `SELECT `+schemeColumns+` FROM schemes ORDER BY created_at DESC`)
}

func (s *PostgresStore) list(ctx context.Context, query string) ([]*models.Scheme, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list schemes: %w", err)
	}
	defer rows.Close()

	var out []*models.Scheme
	for rows.Next() {
		scheme, err := scanScheme(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scheme: %w", err)
		}
		out = append(out, scheme)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schemes: %w", err)
	}
	return out, nil
}

type schemeRow interface {
	Scan(dest ...any) error
}

func scanScheme(row schemeRow) (*models.Scheme, error) {
	var (
		scheme        models.Scheme
		schemeID      uuid.UUID
		createdBy     uuid.NullUUID
		benefitsRaw   []byte
		criteriaRaw   []byte
		benefitAmount sql.NullFloat64
		status        string
	)
	if err := row.Scan(&schemeID, &scheme.Name, &scheme.Ministry, &scheme.Description,
		&benefitsRaw, &criteriaRaw, &benefitAmount, &status, &createdBy,
		&scheme.CreatedAt, &scheme.UpdatedAt); err != nil {
		return nil, err
	}
	scheme.ID = id.SchemeID(schemeID)
	scheme.Status = models.Status(status)
	if createdBy.Valid {
		scheme.CreatedBy = id.UserID(createdBy.UUID)
	}
	if benefitAmount.Valid {
		v := benefitAmount.Float64
		scheme.BenefitAmount = &v
	}
	if err := json.Unmarshal(benefitsRaw, &scheme.Benefits); err != nil {
		return nil, fmt.Errorf("decode benefits: %w", err)
	}
	var criteria eligibility.Criteria
	if err := json.Unmarshal(criteriaRaw, &criteria); err != nil {
		return nil, fmt.Errorf("decode eligibility criteria: %w", err)
	}
	scheme.Criteria = criteria
	return &scheme, nil
}

func encodeJSON(scheme *models.Scheme) (benefits, criteria []byte, err error) {
	list := scheme.Benefits
	if list == nil {
		list = []string{}
	}
	if benefits, err = json.Marshal(list); err != nil {
		return nil, nil, fmt.Errorf("encode benefits: %w", err)
	}
	if criteria, err = json.Marshal(scheme.Criteria); err != nil {
		return nil, nil, fmt.Errorf("encode eligibility criteria: %w", err)
	}
	return benefits, criteria, nil
}

func nullableUser(u id.UserID) uuid.NullUUID {
	if u.IsNil() {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(u), Valid: true}
}

func requireRow(res sql.Result, op string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
