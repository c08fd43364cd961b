package handler

import (
	"time"

	"muster/internal/checkin/models"
)

// AttendanceResponse is the HTTP shape of an attendance record.
type AttendanceResponse struct {
	ID               string    `json:"id"`
	EventID          string    `json:"event_id"`
	VolunteerID      string    `json:"volunteer_id"`
	Status           string    `json:"status"`
	Method           string    `json:"method"`
	CheckedInAt      time.Time `json:"checked_in_at"`
	LocationVerified bool      `json:"location_verified"`
}

// CheckInResponse is returned from POST /events/{eventID}/check-in.
type CheckInResponse struct {
	AttendanceResponse
	AlreadyCheckedIn bool `json:"already_checked_in"`
}

func fromRecord(record *models.AttendanceRecord) AttendanceResponse {
	return AttendanceResponse{
		ID:               record.ID.String(),
		EventID:          record.EventID.String(),
		VolunteerID:      record.VolunteerID.String(),
		Status:           string(record.Status),
		Method:           string(record.Method),
		CheckedInAt:      record.CheckedInAt,
		LocationVerified: record.LocationVerified,
	}
}

func fromResult(result *models.CheckInResult) CheckInResponse {
	return CheckInResponse{
		AttendanceResponse: fromRecord(result.Record),
		AlreadyCheckedIn:   result.AlreadyCheckedIn,
	}
}
