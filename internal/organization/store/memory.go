// Package store persists organizations and persons.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"trouwen/internal/organization/models"
	id "trouwen/pkg/domain"
	"trouwen/pkg/platform/sentinel"
)

// OrganizationMemory keeps organizations indexed by ID and RSIN.
type OrganizationMemory struct {
	mu     sync.RWMutex
	byID   map[id.OrganizationID]*models.Organization
	byRSIN map[id.RSIN]id.OrganizationID
}

func NewOrganizationMemory() *OrganizationMemory {
	return &OrganizationMemory{
		byID:   make(map[id.OrganizationID]*models.Organization),
		byRSIN: make(map[id.RSIN]id.OrganizationID),
	}
}

func (s *OrganizationMemory) Create(_ context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byRSIN[org.RSIN]; taken {
		return sentinel.ErrAlreadyUsed
	}
	cp := *org
	s.byID[org.ID] = &cp
	s.byRSIN[org.RSIN] = org.ID
	return nil
}

func (s *OrganizationMemory) Update(_ context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[org.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if other, taken := s.byRSIN[org.RSIN]; taken && other != org.ID {
		return sentinel.ErrAlreadyUsed
	}
	delete(s.byRSIN, existing.RSIN)
	cp := *org
	s.byID[org.ID] = &cp
	s.byRSIN[org.RSIN] = org.ID
	return nil
}

func (s *OrganizationMemory) Delete(_ context.Context, orgID id.OrganizationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[orgID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byRSIN, existing.RSIN)
	delete(s.byID, orgID)
	return nil
}

func (s *OrganizationMemory) FindByID(_ context.Context, orgID id.OrganizationID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.byID[orgID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *org
	return &cp, nil
}

func (s *OrganizationMemory) FindByRSIN(_ context.Context, rsin id.RSIN) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orgID, ok := s.byRSIN[rsin]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[orgID]
	return &cp, nil
}

// List returns matching organizations, by creation time unless a name order is set.
func (s *OrganizationMemory) List(_ context.Context, filter models.OrganizationFilter) ([]*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Organization, 0, len(s.byID))
	for _, org := range s.byID {
		if filter.RSIN != "" && org.RSIN != filter.RSIN {
			continue
		}
		cp := *org
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		switch filter.NameOrder {
		case "asc":
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		case "desc":
			return strings.ToLower(out[i].Name) > strings.ToLower(out[j].Name)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// PersonMemory keeps persons indexed by ID.
type PersonMemory struct {
	mu   sync.RWMutex
	byID map[id.PersonID]*models.Person
}

func NewPersonMemory() *PersonMemory {
	return &PersonMemory{byID: make(map[id.PersonID]*models.Person)}
}

func (s *PersonMemory) Create(_ context.Context, p *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.byID[p.ID] = &cp
	return nil
}

func (s *PersonMemory) Update(_ context.Context, p *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *p
	s.byID[p.ID] = &cp
	return nil
}

func (s *PersonMemory) Delete(_ context.Context, personID id.PersonID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[personID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byID, personID)
	return nil
}

func (s *PersonMemory) FindByID(_ context.Context, personID id.PersonID) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[personID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *PersonMemory) List(_ context.Context, filter models.PersonFilter) ([]*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Person, 0)
	for _, p := range s.byID {
		if !filter.Organization.IsNil() && p.Organization != filter.Organization {
			continue
		}
		if filter.Email != "" && !strings.EqualFold(p.Email, filter.Email) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.Before(out[j].RegisteredAt) })
	return out, nil
}

func (s *PersonMemory) CountByOrganization(_ context.Context, orgID id.OrganizationID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.byID {
		if p.Organization == orgID {
			n++
		}
	}
	return n, nil
}
