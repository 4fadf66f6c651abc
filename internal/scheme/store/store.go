// Package store persists scheme definitions.
//
// Error contract: FindByID, Update and Delete return sentinel.ErrNotFound for
// unknown ids; Delete returns sentinel.ErrConflict when applications still
// reference the scheme (postgres only; the service checks first in memory mode).
package store

import (
	"context"

	"schemeportal/internal/scheme/models"
	id "schemeportal/pkg/domain"
)

type Store interface {
	Create(ctx context.Context, scheme *models.Scheme) error
	FindByID(ctx context.Context, schemeID id.SchemeID) (*models.Scheme, error)
	Update(ctx context.Context, scheme *models.Scheme) error
	Delete(ctx context.Context, schemeID id.SchemeID) error
	// ListActive returns active schemes, newest first.
	ListActive(ctx context.Context) ([]*models.Scheme, error)
	// ListAll returns every scheme, newest first.
	ListAll(ctx context.Context) ([]*models.Scheme, error)
}
