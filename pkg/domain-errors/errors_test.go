package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode_WalksWrappedChains(t *testing.T) {
	base := New(CodeNotFound, "event missing")
	wrapped := fmt.Errorf("loading event: %w", base)

	assert.True(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(wrapped, CodeConflict))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "attendance insert failed")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, CodeInternal, CodeOf(err))
}

func TestCodeOf_DefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("unclassified")))
}

func TestWithDetail_AccumulatesAndSurvivesWrapping(t *testing.T) {
	err := New(CodeGeofenceViolation, "outside geofence").
		WithDetail("distance_meters", 612.4).
		WithDetail("radius_meters", 500.0)
	outer := fmt.Errorf("check-in rejected: %w", err)

	details := DetailsOf(outer)
	require.NotNil(t, details)
	assert.Equal(t, 612.4, details["distance_meters"])
	assert.Equal(t, 500.0, details["radius_meters"])
}
