package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muster/internal/geofence"
	id "muster/pkg/domain"
)

func ptr[T any](v T) *T { return &v }

func TestResolveReference(t *testing.T) {
	eventLoc := geofence.Coordinates{Lat: 25.2048, Lng: 55.2708}
	sessionLoc := geofence.Coordinates{Lat: 25.1000, Lng: 55.2000}

	t.Run("session location wins over event location", func(t *testing.T) {
		event := &Event{Location: &eventLoc}
		session := &EventSession{Location: &sessionLoc}

		ref, ok := ResolveReference(event, session)
		require.True(t, ok)
		assert.Equal(t, sessionLoc, ref)
	})

	t.Run("falls back to event location when session has none", func(t *testing.T) {
		event := &Event{Location: &eventLoc}
		session := &EventSession{}

		ref, ok := ResolveReference(event, session)
		require.True(t, ok)
		assert.Equal(t, eventLoc, ref)
	})

	t.Run("event location used when no session given", func(t *testing.T) {
		ref, ok := ResolveReference(&Event{Location: &eventLoc}, nil)
		require.True(t, ok)
		assert.Equal(t, eventLoc, ref)
	})

	t.Run("reports missing when neither carries a location", func(t *testing.T) {
		_, ok := ResolveReference(&Event{}, &EventSession{})
		assert.False(t, ok)
	})
}

func TestResolveRadius(t *testing.T) {
	t.Run("session radius wins", func(t *testing.T) {
		event := &Event{RadiusMeters: ptr(800.0)}
		session := &EventSession{RadiusMeters: ptr(150.0)}
		assert.Equal(t, 150.0, ResolveRadius(event, session))
	})

	t.Run("event radius when session has none", func(t *testing.T) {
		event := &Event{RadiusMeters: ptr(800.0)}
		assert.Equal(t, 800.0, ResolveRadius(event, &EventSession{}))
	})

	t.Run("default when nothing configured", func(t *testing.T) {
		assert.Equal(t, geofence.DefaultRadiusMeters, ResolveRadius(&Event{}, nil))
	})
}

func TestNewCheckedInRecord(t *testing.T) {
	eventID := id.EventID(uuid.New())
	volunteerID := id.VolunteerID(uuid.New())
	claimed := geofence.Coordinates{Lat: 25.2048, Lng: 55.2708}
	now := time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC)

	record := NewCheckedInRecord(eventID, volunteerID, claimed, now)

	assert.False(t, record.ID.IsNil())
	assert.Equal(t, eventID, record.EventID)
	assert.Equal(t, volunteerID, record.VolunteerID)
	assert.Equal(t, StatusCheckedIn, record.Status)
	assert.Equal(t, MethodQRCode, record.Method)
	assert.Equal(t, now, record.CheckedInAt)
	assert.Equal(t, claimed, record.RecordedLocation, "claimed location stored verbatim")
	assert.True(t, record.LocationVerified)
}
