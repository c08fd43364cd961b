// Package models holds the check-in domain entities. Event and EventSession
// are owned by the event-management subsystem and are read-only here; only
// AttendanceRecord is created by this service.
package models

import (
	"time"

	"muster/internal/geofence"
	id "muster/pkg/domain"
)

// AttendanceStatus is the lifecycle state of an attendance record.
type AttendanceStatus string

const (
	StatusCheckedIn  AttendanceStatus = "checked_in"
	StatusCheckedOut AttendanceStatus = "checked_out"
	StatusAbsent     AttendanceStatus = "absent"
)

// CheckInMethod records how the volunteer checked in.
type CheckInMethod string

// MethodQRCode is the only method this flow produces.
const MethodQRCode CheckInMethod = "qr_code"

// Event is the event-management subsystem's view of an event, reduced to the
// fields check-in needs. Location and RadiusMeters are optional because
// operators can create events before pinning a venue.
type Event struct {
	ID           id.EventID
	Name         string
	Location     *geofence.Coordinates
	RadiusMeters *float64
	StartsAt     time.Time
}

// EventSession is an optional sub-division of an event (e.g. a morning shift
// at a different site). Its location and radius, when present, override the
// event's for geofence evaluation.
type EventSession struct {
	ID           id.SessionID
	EventID      id.EventID
	Name         string
	Location     *geofence.Coordinates
	RadiusMeters *float64
}

// AttendanceRecord is the persisted fact of a check-in. Never mutated or
// deleted by this service after creation; check-out belongs to another flow.
type AttendanceRecord struct {
	ID               id.AttendanceID
	EventID          id.EventID
	VolunteerID      id.VolunteerID
	Status           AttendanceStatus
	Method           CheckInMethod
	CheckedInAt      time.Time
	RecordedLocation geofence.Coordinates
	LocationVerified bool
}

// NewCheckedInRecord builds the record for a freshly admitted check-in. The
// claimed location is stored verbatim for audit, not snapped to the venue.
func NewCheckedInRecord(eventID id.EventID, volunteerID id.VolunteerID, claimed geofence.Coordinates, now time.Time) *AttendanceRecord {
	return &AttendanceRecord{
		ID:               id.NewAttendanceID(),
		EventID:          eventID,
		VolunteerID:      volunteerID,
		Status:           StatusCheckedIn,
		Method:           MethodQRCode,
		CheckedInAt:      now,
		RecordedLocation: claimed,
		LocationVerified: true,
	}
}

// CheckInResult is what the recorder returns to the transport layer.
type CheckInResult struct {
	Record           *AttendanceRecord
	AlreadyCheckedIn bool
}

// ResolveReference picks the geofence reference location: the session's
// coordinates when present, otherwise the event's. The second return is false
// when neither carries a location, which callers must treat as a
// configuration fault rather than a denial.
func ResolveReference(event *Event, session *EventSession) (geofence.Coordinates, bool) {
	if session != nil && session.Location != nil {
		return *session.Location, true
	}
	if event.Location != nil {
		return *event.Location, true
	}
	return geofence.Coordinates{}, false
}

// ResolveRadius picks the geofence radius: session override, then event,
// then the policy default.
func ResolveRadius(event *Event, session *EventSession) float64 {
	if session != nil && session.RadiusMeters != nil {
		return *session.RadiusMeters
	}
	if event.RadiusMeters != nil {
		return *event.RadiusMeters
	}
	return geofence.DefaultRadiusMeters
}
