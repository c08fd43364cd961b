package session

import (
	"context"
	"sync"

	"muster/internal/checkin/models"
	id "muster/pkg/domain"
	"muster/pkg/platform/sentinel"
)

// InMemoryStore holds event sessions for tests and local development.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]models.EventSession
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[id.SessionID]models.EventSession)}
}

func (s *InMemoryStore) Put(_ context.Context, session *models.EventSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, sessionID id.SessionID) (*models.EventSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &session, nil
}
