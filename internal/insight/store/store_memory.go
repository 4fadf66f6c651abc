package store

import (
	"context"
	"sort"
	"sync"

	"schemeportal/internal/insight/models"
	id "schemeportal/pkg/domain"
	"schemeportal/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.Mutex
	insights map[id.InsightID]models.Insight
}

// NewInMemoryStore constructs an empty in-memory insight store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{insights: make(map[id.InsightID]models.Insight)}
}

func (s *InMemoryStore) Create(_ context.Context, insight *models.Insight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.insights[insight.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.insights[insight.ID] = *insight
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, insightID id.InsightID) (*models.Insight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.insights[insightID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &in, nil
}

// List returns insights with the given status, or all when status is empty, newest first.
func (s *InMemoryStore) List(_ context.Context, status models.Status) ([]*models.Insight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Insight, 0, len(s.insights))
	for _, in := range s.insights {
		if status == "" || in.Status == status {
			out = append(out, &in)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Decide records decision only while the stored status equals expected;
// otherwise it returns sentinel.ErrConflict.
func (s *InMemoryStore) Decide(_ context.Context, insightID id.InsightID, expected models.Status, decision models.Decision) (*models.Insight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.insights[insightID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if in.Status != expected {
		return nil, sentinel.ErrConflict
	}
	in = decision.Apply(in)
	s.insights[insightID] = in
	return &in, nil
}
