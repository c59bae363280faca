// Package store persists officiant assignments.
package store

import (
	"context"
	"sort"
	"sync"

	"trouwen/internal/officiant/models"
	id "trouwen/pkg/domain"
	"trouwen/pkg/platform/sentinel"
)

type InMemory struct {
	mu         sync.RWMutex
	officiants map[id.OfficiantID]*models.Officiant
}

func NewInMemory() *InMemory {
	return &InMemory{officiants: make(map[id.OfficiantID]*models.Officiant)}
}

// Create stores o. It returns sentinel.ErrAlreadyUsed when o is primary and
// its marriage already has a primary officiant.
func (s *InMemory) Create(_ context.Context, o *models.Officiant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.primaryTaken(o) {
		return sentinel.ErrAlreadyUsed
	}
	cp := *o
	s.officiants[o.ID] = &cp
	return nil
}

func (s *InMemory) Update(_ context.Context, o *models.Officiant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.officiants[o.ID]; !ok {
		return sentinel.ErrNotFound
	}
	if s.primaryTaken(o) {
		return sentinel.ErrAlreadyUsed
	}
	cp := *o
	s.officiants[o.ID] = &cp
	return nil
}

func (s *InMemory) primaryTaken(o *models.Officiant) bool {
	if !o.Primary {
		return false
	}
	for _, other := range s.officiants {
		if other.ID != o.ID && other.Primary && other.Marriage == o.Marriage {
			return true
		}
	}
	return false
}

func (s *InMemory) Delete(_ context.Context, officiantID id.OfficiantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.officiants[officiantID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.officiants, officiantID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, officiantID id.OfficiantID) (*models.Officiant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.officiants[officiantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *InMemory) List(_ context.Context, filter models.Filter) ([]*models.Officiant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Officiant
	for _, o := range s.officiants {
		if !filter.Marriage.IsNil() && o.Marriage != filter.Marriage {
			continue
		}
		if filter.SourceOrganization != "" && o.SourceOrganization != filter.SourceOrganization {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	desc := filter.CreatedOrder == "desc"
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[j].CreatedAt.Before(out[i].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
