package handler

import (
	"strings"

	"muster/internal/geofence"
	id "muster/pkg/domain"
	dErrors "muster/pkg/domain-errors"
)

// CheckInRequest is the HTTP request body for POST /events/{eventID}/check-in.
type CheckInRequest struct {
	SessionID string          `json:"session_id,omitempty"`
	Location  LocationPayload `json:"location"`

	// Parsed values (populated by Validate)
	parsedSessionID *id.SessionID
}

// LocationPayload carries the claimed device coordinates. Pointers
// distinguish an absent field from a legitimate zero coordinate.
type LocationPayload struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CheckInRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	if r.Location.Lat == nil {
		return dErrors.New(dErrors.CodeValidation, "location.lat is required")
	}
	if r.Location.Lng == nil {
		return dErrors.New(dErrors.CodeValidation, "location.lng is required")
	}
	if err := r.Coordinates().Validate(); err != nil {
		return err
	}

	r.SessionID = strings.TrimSpace(r.SessionID)
	if r.SessionID != "" {
		sessionID, err := id.ParseSessionID(r.SessionID)
		if err != nil {
			return err
		}
		r.parsedSessionID = &sessionID
	}
	return nil
}

// Coordinates returns the claimed location. Only valid after Validate.
func (r *CheckInRequest) Coordinates() geofence.Coordinates {
	return geofence.Coordinates{Lat: *r.Location.Lat, Lng: *r.Location.Lng}
}

// ParsedSessionID returns the optional session ID. Only valid after Validate.
func (r *CheckInRequest) ParsedSessionID() *id.SessionID {
	return r.parsedSessionID
}
