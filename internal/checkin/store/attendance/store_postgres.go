package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"muster/internal/checkin/models"
	id "muster/pkg/domain"
	"muster/pkg/platform/sentinel"
	txcontext "muster/pkg/platform/tx"
)

// PostgresStore persists attendance records. Uniqueness of checked-in rows
// per (event, volunteer) is enforced by a partial unique index, so concurrent
// inserts resolve in the database rather than in application code:
//
//	CREATE UNIQUE INDEX attendance_checked_in_once
//	    ON attendance (event_id, volunteer_id)
//	    WHERE status = 'checked_in';
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// TryInsertCheckedIn inserts the record unless a checked-in row already
// exists for the pair. Returns inserted=false on conflict; the loser of a
// concurrent race sees the same answer as a plain duplicate.
func (s *PostgresStore) TryInsertCheckedIn(ctx context.Context, record *models.AttendanceRecord) (bool, error) {
	query := `
		INSERT INTO attendance (
			id, event_id, volunteer_id, status, method,
			checked_in_at, latitude, longitude, location_verified
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (event_id, volunteer_id) WHERE status = 'checked_in' DO NOTHING
	`

	result, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(record.ID),
		uuid.UUID(record.EventID),
		uuid.UUID(record.VolunteerID),
		string(record.Status),
		string(record.Method),
		record.CheckedInAt,
		record.RecordedLocation.Lat,
		record.RecordedLocation.Lng,
		record.LocationVerified,
	)
	if err != nil {
		return false, fmt.Errorf("insert attendance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert attendance rows affected: %w", err)
	}
	return affected == 1, nil
}

func (s *PostgresStore) FindCheckedIn(ctx context.Context, eventID id.EventID, volunteerID id.VolunteerID) (*models.AttendanceRecord, error) {
	query := `
		SELECT id, event_id, volunteer_id, status, method,
			   checked_in_at, latitude, longitude, location_verified
		FROM attendance
		WHERE event_id = $1 AND volunteer_id = $2 AND status = 'checked_in'
	`

	var (
		record      models.AttendanceRecord
		recordID    uuid.UUID
		evID        uuid.UUID
		volID       uuid.UUID
		status      string
		method      string
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(eventID), uuid.UUID(volunteerID)).Scan(
		&recordID, &evID, &volID, &status, &method,
		&record.CheckedInAt,
		&record.RecordedLocation.Lat,
		&record.RecordedLocation.Lng,
		&record.LocationVerified,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find attendance: %w", err)
	}

	record.ID = id.AttendanceID(recordID)
	record.EventID = id.EventID(evID)
	record.VolunteerID = id.VolunteerID(volID)
	record.Status = models.AttendanceStatus(status)
	record.Method = models.CheckInMethod(method)
	return &record, nil
}
