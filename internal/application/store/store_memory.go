package store

import (
	"context"
	"maps"
	"sort"
	"sync"

	"schemeportal/internal/application/models"
	schememodels "schemeportal/internal/scheme/models"
	"schemeportal/internal/workflow"
	id "schemeportal/pkg/domain"
	"schemeportal/pkg/platform/sentinel"
	psync "schemeportal/pkg/platform/sync"
)

type citizenScheme struct {
	citizen id.UserID
	scheme  id.SchemeID
}

// InMemoryStore keeps applications in maps. Transitions serialize per
// application on a sharded mutex so compare-and-set is atomic.
type InMemoryStore struct {
	mu      sync.RWMutex
	apps    map[id.ApplicationID]*models.Application
	byOwner map[citizenScheme]id.ApplicationID
	history map[id.ApplicationID][]models.Transition
	locks   *psync.ShardedMutex
}

// NewInMemoryStore constructs an empty in-memory application store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		apps:    make(map[id.ApplicationID]*models.Application),
		byOwner: make(map[citizenScheme]id.ApplicationID),
		history: make(map[id.ApplicationID][]models.Transition),
		locks:   psync.NewShardedMutex(),
	}
}

// Create returns sentinel.ErrAlreadyUsed when the citizen already applied to the scheme.
func (s *InMemoryStore) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := citizenScheme{citizen: app.CitizenID, scheme: app.SchemeID}
	if _, exists := s.byOwner[key]; exists {
		return sentinel.ErrAlreadyUsed
	}
	if _, exists := s.apps[app.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.apps[app.ID] = clone(app)
	s.byOwner[key] = app.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[applicationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(app), nil
}

func (s *InMemoryStore) ListByCitizen(_ context.Context, citizenID id.UserID) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Application
	for _, app := range s.apps {
		if app.CitizenID == citizenID {
			out = append(out, clone(app))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemoryStore) Exists(_ context.Context, citizenID id.UserID, schemeID id.SchemeID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byOwner[citizenScheme{citizen: citizenID, scheme: schemeID}]
	return ok, nil
}

// List applies filter and returns newest first.
func (s *InMemoryStore) List(_ context.Context, filter models.Filter) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Application
	for _, app := range s.apps {
		if filter.Matches(app) {
			out = append(out, clone(app))
		}
	}
	sortNewestFirst(out)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *InMemoryStore) Counts(_ context.Context) (schememodels.ApplicationCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var c schememodels.ApplicationCounts
	for _, app := range s.apps {
		tally(&c, app.Status, 1)
	}
	return c, nil
}

// CountsByScheme groups application counts by scheme id.
func (s *InMemoryStore) CountsByScheme(_ context.Context) (map[id.SchemeID]schememodels.ApplicationCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.SchemeID]schememodels.ApplicationCounts)
	for _, app := range s.apps {
		c := out[app.SchemeID]
		tally(&c, app.Status, 1)
		out[app.SchemeID] = c
	}
	return out, nil
}

// Transition applies review only while the stored status equals expected.
// The status update and its history row are written under one shard lock.
func (s *InMemoryStore) Transition(_ context.Context, applicationID id.ApplicationID, expected workflow.Status, review models.Review) (*models.Application, error) {
	key := applicationID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	s.mu.RLock()
	current, ok := s.apps[applicationID]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if current.Status != expected {
		return nil, sentinel.ErrConflict
	}

	updated := review.Apply(*clone(current))
	s.mu.Lock()
	s.apps[applicationID] = &updated
	s.history[applicationID] = append(s.history[applicationID], models.NewTransition(applicationID, expected, review))
	s.mu.Unlock()

	return clone(&updated), nil
}

// History returns the status changes for an application, oldest first.
func (s *InMemoryStore) History(_ context.Context, applicationID id.ApplicationID) ([]models.Transition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.apps[applicationID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	rows := s.history[applicationID]
	out := make([]models.Transition, len(rows))
	copy(out, rows)
	return out, nil
}

func sortNewestFirst(apps []*models.Application) {
	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].SubmittedAt.Equal(apps[j].SubmittedAt) {
			return apps[i].ID.String() > apps[j].ID.String()
		}
		return apps[i].SubmittedAt.After(apps[j].SubmittedAt)
	})
}

func clone(app *models.Application) *models.Application {
	c := *app
	if app.ReviewedBy != nil {
		v := *app.ReviewedBy
		c.ReviewedBy = &v
	}
	if app.ReviewNotes != nil {
		v := *app.ReviewNotes
		c.ReviewNotes = &v
	}
	if app.ReviewedAt != nil {
		v := *app.ReviewedAt
		c.ReviewedAt = &v
	}
	c.Data.Extra = maps.Clone(app.Data.Extra)
	return &c
}
