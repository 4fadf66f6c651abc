// Package store persists advisory insights.
//
// Decide is a compare-and-set on status: it returns sentinel.ErrNotFound for
// an unknown id and sentinel.ErrConflict when the stored status is no longer
// the expected one.
package store

import (
	"context"

	"schemeportal/internal/insight/models"
	id "schemeportal/pkg/domain"
)

type Store interface {
	Create(ctx context.Context, insight *models.Insight) error
	FindByID(ctx context.Context, insightID id.InsightID) (*models.Insight, error)
	// List returns insights newest first. An empty status matches all.
	List(ctx context.Context, status models.Status) ([]*models.Insight, error)
	Decide(ctx context.Context, insightID id.InsightID, expected models.Status, decision models.Decision) (*models.Insight, error)
}
