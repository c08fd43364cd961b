// Package domain defines typed identifiers used across the service.
//
// Each ID is a distinct type over uuid.UUID so the compiler rejects passing a
// volunteer ID where an event ID is expected. Parse functions are the single
// trust boundary: handlers parse raw strings exactly once and services only
// ever see typed IDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "muster/pkg/domain-errors"
)

type (
	// VolunteerID identifies a volunteer. Issued by the external identity
	// provider; this service never mints one.
	VolunteerID uuid.UUID

	// EventID identifies an event.
	EventID uuid.UUID

	// SessionID identifies an event session.
	SessionID uuid.UUID

	// AttendanceID identifies an attendance record.
	AttendanceID uuid.UUID
)

func (id VolunteerID) String() string  { return uuid.UUID(id).String() }
func (id EventID) String() string      { return uuid.UUID(id).String() }
func (id SessionID) String() string    { return uuid.UUID(id).String() }
func (id AttendanceID) String() string { return uuid.UUID(id).String() }

func (id VolunteerID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id AttendanceID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewAttendanceID mints a fresh attendance record identifier.
func NewAttendanceID() AttendanceID {
	return AttendanceID(uuid.New())
}

// parseUUID enforces the shared invariant: IDs must be valid, non-empty,
// non-nil UUIDs. Every Parse function funnels through here so all ID types
// validate identically.
func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id is required", kind)
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id is not a valid uuid", kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id must not be the nil uuid", kind)
	}
	return parsed, nil
}

// ParseVolunteerID parses and validates a raw volunteer ID string.
func ParseVolunteerID(raw string) (VolunteerID, error) {
	parsed, err := parseUUID(raw, "volunteer")
	if err != nil {
		return VolunteerID{}, err
	}
	return VolunteerID(parsed), nil
}

// ParseEventID parses and validates a raw event ID string.
func ParseEventID(raw string) (EventID, error) {
	parsed, err := parseUUID(raw, "event")
	if err != nil {
		return EventID{}, err
	}
	return EventID(parsed), nil
}

// ParseSessionID parses and validates a raw session ID string.
func ParseSessionID(raw string) (SessionID, error) {
	parsed, err := parseUUID(raw, "session")
	if err != nil {
		return SessionID{}, err
	}
	return SessionID(parsed), nil
}

// ParseAttendanceID parses and validates a raw attendance record ID string.
func ParseAttendanceID(raw string) (AttendanceID, error) {
	parsed, err := parseUUID(raw, "attendance")
	if err != nil {
		return AttendanceID{}, err
	}
	return AttendanceID(parsed), nil
}
