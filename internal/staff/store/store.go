// Package store persists staff profiles.
//
// FindByID and Update return sentinel.ErrNotFound for unknown users. Upsert
// returns sentinel.ErrAlreadyUsed when another user already holds the email.
package store

import (
	"context"

	"schemeportal/internal/staff/models"
	id "schemeportal/pkg/domain"
)

type Store interface {
	FindByID(ctx context.Context, userID id.UserID) (*models.Member, error)
	// Upsert inserts the member or replaces email, name, role and active flag.
	// CreatedAt is kept from the existing row.
	Upsert(ctx context.Context, member *models.Member) error
	Update(ctx context.Context, member *models.Member) error
	// List returns members ordered by email.
	List(ctx context.Context) ([]*models.Member, error)
}
