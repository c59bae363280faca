// Package store persists registered applications.
package store

import (
	"context"
	"sync"

	"trouwen/internal/application/models"
	id "trouwen/pkg/domain"
	"trouwen/pkg/platform/sentinel"
)

type InMemory struct {
	mu         sync.RWMutex
	byID       map[id.ApplicationID]*models.Application
	byClientID map[string]id.ApplicationID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:       make(map[id.ApplicationID]*models.Application),
		byClientID: make(map[string]id.ApplicationID),
	}
}

// Create stores app. Returns sentinel.ErrAlreadyUsed if the client id is taken.
func (s *InMemory) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byClientID[app.ClientID]; taken {
		return sentinel.ErrAlreadyUsed
	}
	cp := *app
	s.byID[app.ID] = &cp
	s.byClientID[app.ClientID] = app.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, appID id.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.byID[appID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *app
	return &cp, nil
}

func (s *InMemory) FindByClientID(_ context.Context, clientID string) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	appID, ok := s.byClientID[clientID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[appID]
	return &cp, nil
}
