package store

import (
	"context"
	"sort"
	"sync"

	"schemeportal/internal/staff/models"
	id "schemeportal/pkg/domain"
	"schemeportal/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	members map[id.UserID]models.Member
}

// NewInMemoryStore constructs an empty in-memory staff store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{members: make(map[id.UserID]models.Member)}
}

func (s *InMemoryStore) FindByID(_ context.Context, userID id.UserID) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &m, nil
}

// Upsert creates or replaces a member, keeping the original CreatedAt.
// An email held by another member is sentinel.ErrAlreadyUsed.
func (s *InMemoryStore) Upsert(_ context.Context, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(member.Email, member.UserID) {
		return sentinel.ErrAlreadyUsed
	}
	if existing, ok := s.members[member.UserID]; ok {
		member.CreatedAt = existing.CreatedAt
	}
	s.members[member.UserID] = *member
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[member.UserID]; !ok {
		return sentinel.ErrNotFound
	}
	if s.emailTaken(member.Email, member.UserID) {
		return sentinel.ErrAlreadyUsed
	}
	s.members[member.UserID] = *member
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// emailTaken must be called with the lock held.
func (s *InMemoryStore) emailTaken(email string, owner id.UserID) bool {
	for userID, m := range s.members {
		if userID != owner && m.Email == email {
			return true
		}
	}
	return false
}
