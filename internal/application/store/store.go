// Package store persists applications and their status history.
//
// Error contract:
//   - Create returns sentinel.ErrAlreadyUsed when the citizen already applied
//     to the scheme.
//   - FindByID returns sentinel.ErrNotFound for unknown ids.
//   - Transition returns sentinel.ErrNotFound for unknown ids and
//     sentinel.ErrConflict when the stored status no longer equals expected.
package store

import (
	"context"

	"schemeportal/internal/application/models"
	schememodels "schemeportal/internal/scheme/models"
	"schemeportal/internal/workflow"
	id "schemeportal/pkg/domain"
)

type Store interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error)
	// ListByCitizen returns the citizen's applications, newest first.
	ListByCitizen(ctx context.Context, citizenID id.UserID) ([]*models.Application, error)
	Exists(ctx context.Context, citizenID id.UserID, schemeID id.SchemeID) (bool, error)
	// List returns applications matching filter, newest first.
	List(ctx context.Context, filter models.Filter) ([]*models.Application, error)
	Counts(ctx context.Context) (schememodels.ApplicationCounts, error)
	CountsByScheme(ctx context.Context) (map[id.SchemeID]schememodels.ApplicationCounts, error)
	// Transition applies review only if the stored status equals expected and
	// appends the history row in the same atomic step.
	Transition(ctx context.Context, applicationID id.ApplicationID, expected workflow.Status, review models.Review) (*models.Application, error)
	// History returns status changes, oldest first.
	History(ctx context.Context, applicationID id.ApplicationID) ([]models.Transition, error)
}

// tally adds n applications in status to c.
func tally(c *schememodels.ApplicationCounts, status workflow.Status, n int) {
	c.Total += n
	switch status {
	case workflow.StatusPending:
		c.Pending += n
	case workflow.StatusUnderReview:
		c.UnderReview += n
	case workflow.StatusForwardedToAdmin:
		c.Forwarded += n
	case workflow.StatusApproved:
		c.Approved += n
	case workflow.StatusRejected:
		c.Rejected += n
	}
}
