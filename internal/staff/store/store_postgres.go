package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"schemeportal/internal/platform/database"
	"schemeportal/internal/staff/models"
	id "schemeportal/pkg/domain"
	"schemeportal/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed staff store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const memberColumns = `user_id, email, full_name, role, is_active, created_at, updated_at`

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.Member, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM staff_members WHERE user_id = $1`, uuid.UUID(userID))
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find staff member: %w", err)
	}
	return m, nil
}

// Upsert inserts or updates by user id. The email unique index maps to
// sentinel.ErrAlreadyUsed.
func (s *PostgresStore) Upsert(ctx context.Context, member *models.Member) error {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO staff_members (`+memberColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			email = EXCLUDED.email,
			full_name = EXCLUDED.full_name,
			role = EXCLUDED.role,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`,
		uuid.UUID(member.UserID),
		member.Email,
		member.FullName,
		string(member.Role),
		member.IsActive,
		member.CreatedAt,
		member.UpdatedAt,
	)
	if err := row.Scan(&member.CreatedAt); err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("staff email must be unique: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("upsert staff member: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, member *models.Member) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE staff_members
		SET email = $2, full_name = $3, role = $4, is_active = $5, updated_at = $6
		WHERE user_id = $1
	`,
		uuid.UUID(member.UserID),
		member.Email,
		member.FullName,
		string(member.Role),
		member.IsActive,
		member.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("staff email must be unique: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("update staff member: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update staff member: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// List returns members ordered by email.
func (s *PostgresStore) List(ctx context.Context) ([]*models.Member, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+memberColumns+` FROM staff_members ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list staff members: %w", err)
	}
	defer rows.Close()

	var out []*models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan staff member: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staff members: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*models.Member, error) {
	var (
		m      models.Member
		userID uuid.UUID
		role   string
	)
	if err := row.Scan(&userID, &m.Email, &m.FullName, &role, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.UserID = id.UserID(userID)
	m.Role = id.Role(role)
	return &m, nil
}
