package event

import (
	"context"
	"sync"

	"muster/internal/checkin/models"
	id "muster/pkg/domain"
	"muster/pkg/platform/sentinel"
)

// InMemoryStore holds events for tests and local development.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.EventID]models.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.EventID]models.Event)}
}

func (s *InMemoryStore) Put(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = *event
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, eventID id.EventID) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.events[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &event, nil
}
