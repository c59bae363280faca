// Package store persists roles.
package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"trouwen/internal/role/models"
	id "trouwen/pkg/domain"
	"trouwen/pkg/platform/sentinel"
)

// InMemory keeps roles in an arena keyed by ID, with a parent index for child
// lookups.
type InMemory struct {
	mu       sync.RWMutex
	roles    map[id.RoleID]*models.Role
	children map[id.RoleID][]id.RoleID
}

func NewInMemory() *InMemory {
	return &InMemory{
		roles:    make(map[id.RoleID]*models.Role),
		children: make(map[id.RoleID][]id.RoleID),
	}
}

// Create stores r. It returns sentinel.ErrNotFound when r's parent does not
// exist.
func (s *InMemory) Create(_ context.Context, r *models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.HasParent() {
		if _, ok := s.roles[r.Parent]; !ok {
			return sentinel.ErrNotFound
		}
	}
	cp := *r
	s.roles[r.ID] = &cp
	s.link(r.ID, r.Parent)
	return nil
}

func (s *InMemory) Update(_ context.Context, r *models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.roles[r.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if r.HasParent() {
		if _, ok := s.roles[r.Parent]; !ok {
			return sentinel.ErrNotFound
		}
	}
	s.unlink(r.ID, old.Parent)
	cp := *r
	s.roles[r.ID] = &cp
	s.link(r.ID, r.Parent)
	return nil
}

// Delete removes a leaf role. Roles with children yield
// sentinel.ErrHasDependents.
func (s *InMemory) Delete(_ context.Context, roleID id.RoleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roles[roleID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if len(s.children[roleID]) > 0 {
		return sentinel.ErrHasDependents
	}
	s.unlink(roleID, r.Parent)
	delete(s.roles, roleID)
	delete(s.children, roleID)
	return nil
}

func (s *InMemory) link(child, parent id.RoleID) {
	if parent.IsNil() {
		return
	}
	s.children[parent] = append(s.children[parent], child)
}

func (s *InMemory) unlink(child, parent id.RoleID) {
	if parent.IsNil() {
		return
	}
	s.children[parent] = slices.DeleteFunc(s.children[parent], func(c id.RoleID) bool { return c == child })
	if len(s.children[parent]) == 0 {
		delete(s.children, parent)
	}
}

func (s *InMemory) FindByID(_ context.Context, roleID id.RoleID) (*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[roleID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *InMemory) List(_ context.Context, filter models.Filter) ([]*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Role
	if !filter.Parent.IsNil() {
		for _, childID := range s.children[filter.Parent] {
			r := s.roles[childID]
			if filter.Marriage.IsNil() || r.Marriage == filter.Marriage {
				cp := *r
				out = append(out, &cp)
			}
		}
	} else {
		for _, r := range s.roles {
			if filter.Marriage.IsNil() || r.Marriage == filter.Marriage {
				cp := *r
				out = append(out, &cp)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
