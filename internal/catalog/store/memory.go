// Package store persists the marriage-type catalog.
package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"trouwen/internal/catalog/models"
	id "trouwen/pkg/domain"
	"trouwen/pkg/platform/sentinel"
)

type InMemory struct {
	mu    sync.RWMutex
	types map[id.MarriageTypeID]*models.MarriageType
}

func NewInMemory() *InMemory {
	return &InMemory{types: make(map[id.MarriageTypeID]*models.MarriageType)}
}

func (s *InMemory) Create(_ context.Context, t *models.MarriageType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identifierTaken(t) {
		return sentinel.ErrAlreadyUsed
	}
	s.types[t.ID] = clone(t)
	return nil
}

func (s *InMemory) Update(_ context.Context, t *models.MarriageType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.types[t.ID]; !ok {
		return sentinel.ErrNotFound
	}
	if s.identifierTaken(t) {
		return sentinel.ErrAlreadyUsed
	}
	s.types[t.ID] = clone(t)
	return nil
}

// identifierTaken reports whether another entry of the same organization
// already uses t's identifier. Empty identifiers never collide.
func (s *InMemory) identifierTaken(t *models.MarriageType) bool {
	if t.Identifier == "" {
		return false
	}
	for _, other := range s.types {
		if other.ID != t.ID && other.Identifier == t.Identifier && other.SourceOrganization == t.SourceOrganization {
			return true
		}
	}
	return false
}

func (s *InMemory) Delete(_ context.Context, typeID id.MarriageTypeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.types[typeID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.types, typeID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, typeID id.MarriageTypeID) (*models.MarriageType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.types[typeID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(t), nil
}

func (s *InMemory) List(_ context.Context, filter models.Filter) ([]*models.MarriageType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.MarriageType
	for _, t := range s.types {
		if filter.SourceOrganization != "" && t.SourceOrganization != filter.SourceOrganization {
			continue
		}
		if filter.Identifier != "" && t.Identifier != filter.Identifier {
			continue
		}
		out = append(out, clone(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func clone(t *models.MarriageType) *models.MarriageType {
	cp := *t
	cp.ExtraProducts = slices.Clone(t.ExtraProducts)
	cp.Locations = slices.Clone(t.Locations)
	cp.Officiants = slices.Clone(t.Officiants)
	return &cp
}
