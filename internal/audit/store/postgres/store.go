package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"muster/internal/audit"
	id "muster/pkg/domain"
	txcontext "muster/pkg/platform/tx"
)

// Store implements audit.Store on PostgreSQL. Rows are append-only; there is
// no update or delete path.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO checkin_audit (
			id, action, timestamp, volunteer_id, event_id, session_id,
			request_id, reason, distance_meters, radius_meters
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	var sessionID *uuid.UUID
	if !event.SessionID.IsNil() {
		sid := uuid.UUID(event.SessionID)
		sessionID = &sid
	}

	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(event.Action),
		event.Timestamp,
		uuid.UUID(event.VolunteerID),
		uuid.UUID(event.EventID),
		sessionID,
		event.RequestID,
		event.Reason,
		event.DistanceMeters,
		event.RadiusMeters,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByEvent(ctx context.Context, eventID id.EventID) ([]audit.Event, error) {
	query := `
		SELECT action, timestamp, volunteer_id, event_id, session_id,
			   request_id, reason, distance_meters, radius_meters
		FROM checkin_audit
		WHERE event_id = $1
		ORDER BY timestamp DESC
	`

	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(eventID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event       audit.Event
			action      string
			volunteerID uuid.UUID
			evID        uuid.UUID
			sessionID   *uuid.UUID
		)
		err := rows.Scan(
			&action,
			&event.Timestamp,
			&volunteerID,
			&evID,
			&sessionID,
			&event.RequestID,
			&event.Reason,
			&event.DistanceMeters,
			&event.RadiusMeters,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Action = audit.Action(action)
		event.VolunteerID = id.VolunteerID(volunteerID)
		event.EventID = id.EventID(evID)
		if sessionID != nil {
			event.SessionID = id.SessionID(*sessionID)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
