package jwtauth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "muster/pkg/domain"
	dErrors "muster/pkg/domain-errors"
)

func TestValidator_RoundTrip(t *testing.T) {
	v := NewValidator("test-signing-key", "muster-test")
	volunteerID := id.VolunteerID(uuid.New())

	token, err := v.IssueForTest(volunteerID, time.Minute)
	require.NoError(t, err)

	got, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, volunteerID, got)
}

func TestValidator_ExpiredToken(t *testing.T) {
	v := NewValidator("test-signing-key", "muster-test")

	token, err := v.IssueForTest(id.VolunteerID(uuid.New()), -time.Minute)
	require.NoError(t, err)

	_, err = v.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidator_WrongKey(t *testing.T) {
	issuer := NewValidator("key-one", "muster-test")
	verifier := NewValidator("key-two", "muster-test")

	token, err := issuer.IssueForTest(id.VolunteerID(uuid.New()), time.Minute)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidator_GarbageToken(t *testing.T) {
	v := NewValidator("test-signing-key", "muster-test")

	_, err := v.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidator_MissingVolunteerClaim(t *testing.T) {
	v := NewValidator("test-signing-key", "muster-test")

	token, err := v.IssueForTest(id.VolunteerID{}, time.Minute)
	require.NoError(t, err)

	_, err = v.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
