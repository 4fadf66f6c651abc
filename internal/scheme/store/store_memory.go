package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"schemeportal/internal/scheme/models"
	id "schemeportal/pkg/domain"
	"schemeportal/pkg/platform/sentinel"
)

// InMemoryStore keeps schemes in a map. Records are copied on the way in and
// out so callers cannot mutate stored state.
type InMemoryStore struct {
	mu      sync.RWMutex
	schemes map[id.SchemeID]*models.Scheme
}

// NewInMemoryStore constructs an empty in-memory scheme store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{schemes: make(map[id.SchemeID]*models.Scheme)}
}

func (s *InMemoryStore) Create(_ context.Context, scheme *models.Scheme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.schemes[scheme.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.schemes[scheme.ID] = clone(scheme)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, schemeID id.SchemeID) (*models.Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scheme, ok := s.schemes[schemeID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(scheme), nil
}

func (s *InMemoryStore) Update(_ context.Context, scheme *models.Scheme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schemes[scheme.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.schemes[scheme.ID] = clone(scheme)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, schemeID id.SchemeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schemes[schemeID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.schemes, schemeID)
	return nil
}

// ListActive returns active schemes, newest first.
func (s *InMemoryStore) ListActive(_ context.Context) ([]*models.Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Scheme, 0, len(s.schemes))
	for _, scheme := range s.schemes {
		if scheme.IsActive() {
			out = append(out, clone(scheme))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemoryStore) ListAll(_ context.Context) ([]*models.Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Scheme, 0, len(s.schemes))
	for _, scheme := range s.schemes {
		out = append(out, clone(scheme))
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(schemes []*models.Scheme) {
	sort.Slice(schemes, func(i, j int) bool { return schemes[i].CreatedAt.After(schemes[j].CreatedAt) })
}

func clone(s *models.Scheme) *models.Scheme {
	cp := *s
	cp.Benefits = slices.Clone(s.Benefits)
	cp.Criteria.AllowedOccupations = slices.Clone(s.Criteria.AllowedOccupations)
	cp.Criteria.ResidenceType = slices.Clone(s.Criteria.ResidenceType)
	if s.Criteria.MinAge != nil {
		v := *s.Criteria.MinAge
		cp.Criteria.MinAge = &v
	}
	if s.Criteria.MaxAge != nil {
		v := *s.Criteria.MaxAge
		cp.Criteria.MaxAge = &v
	}
	if s.Criteria.MaxIncome != nil {
		v := *s.Criteria.MaxIncome
		cp.Criteria.MaxIncome = &v
	}
	if s.BenefitAmount != nil {
		v := *s.BenefitAmount
		cp.BenefitAmount = &v
	}
	return &cp
}
