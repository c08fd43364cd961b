package event

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

// PostgresStore reads events from the event-management schema. This service
// never writes events.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	query := `
		SELECT id, name, latitude, longitude, geofence_radius_meters, starts_at
		FROM events
		WHERE id = $1
	`

	var (
		event  models.Event
		evID   uuid.UUID
		lat    sql.NullFloat64
		lng    sql.NullFloat64
		radius sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(eventID)).Scan(
		&evID, &event.Name, &lat, &lng, &radius, &event.StartsAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find event by id: %w", err)
	}

	event.ID = id.EventID(evID)
	if lat.Valid && lng.Valid {
		event.Location = &geofence.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
	}
	if radius.Valid {
		event.RadiusMeters = &radius.Float64
	}
	return &event, nil
}
