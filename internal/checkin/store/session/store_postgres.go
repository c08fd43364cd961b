package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"muster/internal/checkin/models"
	"muster/internal/geofence"
	id "muster/pkg/domain"
	"muster/pkg/platform/sentinel"
)

// PostgresStore reads sessions from the event-management schema. Read-only
// from this service's point of view.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByID(ctx context.Context, sessionID id.SessionID) (*models.EventSession, error) {
	query := `
		SELECT id, event_id, name, latitude, longitude, geofence_radius_meters
		FROM event_sessions
		WHERE id = $1
	`

	var (
		session models.EventSession
		sID     uuid.UUID
		evID    uuid.UUID
		lat     sql.NullFloat64
		lng     sql.NullFloat64
		radius  sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(sessionID)).Scan(
		&sID, &evID, &session.Name, &lat, &lng, &radius,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find session by id: %w", err)
	}

	session.ID = id.SessionID(sID)
	session.EventID = id.EventID(evID)
	if lat.Valid && lng.Valid {
		session.Location = &geofence.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
	}
	if radius.Valid {
		session.RadiusMeters = &radius.Float64
	}
	return &session, nil
}
