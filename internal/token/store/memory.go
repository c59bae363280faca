// Package store persists tokens.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"trouwen/internal/token/models"
	id "trouwen/pkg/domain"
	"trouwen/pkg/platform/sentinel"
)

type InMemory struct {
	mu     sync.RWMutex
	tokens map[id.TokenID]*models.Token
}

func NewInMemory() *InMemory {
	return &InMemory{tokens: make(map[id.TokenID]*models.Token)}
}

func (s *InMemory) Create(_ context.Context, t *models.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tokens[t.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, tokenID id.TokenID) (*models.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[tokenID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *InMemory) ListByObject(_ context.Context, objectType string, objectID uuid.UUID) ([]*models.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Token
	for _, t := range s.tokens {
		if t.ObjectType == objectType && t.ObjectID == objectID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// MarkUsed sets UsedAt unless the token was already used.
func (s *InMemory) MarkUsed(_ context.Context, tokenID id.TokenID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[tokenID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if t.UsedAt != nil {
		return sentinel.ErrAlreadyUsed
	}
	t.UsedAt = &at
	return nil
}
