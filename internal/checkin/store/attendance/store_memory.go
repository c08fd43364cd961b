package attendance

import (
	"context"
	"sync"

	"muster/internal/checkin/models"
	id "muster/pkg/domain"
	"muster/pkg/platform/sentinel"
)

type pairKey struct {
	eventID     id.EventID
	volunteerID id.VolunteerID
}

// InMemoryStore enforces the one-checked-in-record-per-pair rule under a
// single mutex, mirroring what the partial unique index does in PostgreSQL.
type InMemoryStore struct {
	mu      sync.Mutex
	records map[pairKey]models.AttendanceRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[pairKey]models.AttendanceRecord)}
}

func (s *InMemoryStore) TryInsertCheckedIn(_ context.Context, record *models.AttendanceRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{eventID: record.EventID, volunteerID: record.VolunteerID}
	if existing, ok := s.records[key]; ok && existing.Status == models.StatusCheckedIn {
		return false, nil
	}
	s.records[key] = *record
	return true, nil
}

func (s *InMemoryStore) FindCheckedIn(_ context.Context, eventID id.EventID, volunteerID id.VolunteerID) (*models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[pairKey{eventID: eventID, volunteerID: volunteerID}]
	if !ok || record.Status != models.StatusCheckedIn {
		return nil, sentinel.ErrNotFound
	}
	return &record, nil
}
