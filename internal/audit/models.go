// Package audit captures structured check-in events. Domain services hand
// events to a Publisher; a background Worker drains them into a Store so the
// request path never blocks on the sink.
package audit

import (
	"context"
	"time"

	id "muster/pkg/domain"
)

// Action identifies what happened. Values appear verbatim in the audit trail.
type Action string

const (
	// ActionCheckInRecorded marks a successful first check-in.
	ActionCheckInRecorded Action = "checkin_recorded"

	// ActionCheckInDuplicate marks a repeated check-in treated as a no-op.
	ActionCheckInDuplicate Action = "checkin_duplicate"

	// ActionCheckInDenied marks a geofence denial.
	ActionCheckInDenied Action = "checkin_denied"

	// ActionCheckInConfigError marks a check-in that failed because the event
	// is misconfigured (missing location, degenerate radius). Alerting keys
	// off this action; it is an operator fault, not volunteer behavior.
	ActionCheckInConfigError Action = "checkin_config_error"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Action      Action
	Timestamp   time.Time
	VolunteerID id.VolunteerID
	EventID     id.EventID
	SessionID   id.SessionID
	RequestID   string
	// Reason carries the denial or fault detail.
	Reason string
	// DistanceMeters and RadiusMeters are populated for geofence outcomes.
	DistanceMeters float64
	RadiusMeters   float64
}

// Store persists audit events. Append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByEvent(ctx context.Context, eventID id.EventID) ([]Event, error)
}
