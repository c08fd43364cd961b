package handler

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muster/internal/checkin/models"
	"muster/internal/checkin/service"
	"muster/internal/checkin/store/attendance"
	"muster/internal/checkin/store/event"
	"muster/internal/checkin/store/session"
	"muster/internal/geofence"
	id "muster/pkg/domain"
	"muster/pkg/requestcontext"
	"muster/pkg/testutil"
)

var (
	venue   = geofence.Coordinates{Lat: 25.2048, Lng: 55.2708}
	nearby  = geofence.Coordinates{Lat: 25.2050, Lng: 55.2708}
	farAway = geofence.Coordinates{Lat: 25.2100, Lng: 55.2708}
)

type fixture struct {
	router      chi.Router
	events      *event.InMemoryStore
	sessions    *session.InMemoryStore
	volunteerID id.VolunteerID
}

// newFixture wires the handler to a real service over in-memory stores, with
// a middleware standing in for JWT auth.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	events := event.NewInMemoryStore()
	sessions := session.NewInMemoryStore()
	records := attendance.NewInMemoryStore()

	svc := service.New(events, sessions, records, service.WithLogger(slog.Default()))
	h := New(svc, slog.Default())

	volunteerID := id.VolunteerID(uuid.New())
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithVolunteerID(r.Context(), volunteerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	h.Register(router)

	return &fixture{router: router, events: events, sessions: sessions, volunteerID: volunteerID}
}

func (f *fixture) addEvent(t *testing.T, loc *geofence.Coordinates, radius *float64) id.EventID {
	t.Helper()
	eventID := id.EventID(uuid.New())
	err := f.events.Put(context.Background(), &models.Event{
		ID:           eventID,
		Name:         "Beach Cleanup",
		Location:     loc,
		RadiusMeters: radius,
		StartsAt:     time.Now(),
	})
	require.NoError(t, err)
	return eventID
}

func checkInBody(loc geofence.Coordinates) map[string]any {
	return map[string]any{
		"location": map[string]float64{"lat": loc.Lat, "lng": loc.Lng},
	}
}

func TestCheckIn_FirstAttemptCreates(t *testing.T) {
	f := newFixture(t)
	eventID := f.addEvent(t, &venue, nil)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/events/"+eventID.String()+"/check-in", checkInBody(nearby))
	rr := testutil.DoRequest(f.router, req)

	testutil.AssertStatus(t, rr, http.StatusCreated)
	resp := testutil.UnmarshalResponse[CheckInResponse](t, rr)
	assert.False(t, resp.AlreadyCheckedIn)
	assert.Equal(t, eventID.String(), resp.EventID)
	assert.Equal(t, f.volunteerID.String(), resp.VolunteerID)
	assert.Equal(t, "checked_in", resp.Status)
	assert.Equal(t, "qr_code", resp.Method)
	assert.True(t, resp.LocationVerified)
}

func TestCheckIn_RepeatAnswers200(t *testing.T) {
	f := newFixture(t)
	eventID := f.addEvent(t, &venue, nil)

	first := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost,
		"/events/"+eventID.String()+"/check-in", checkInBody(nearby)))
	testutil.AssertStatus(t, first, http.StatusCreated)
	firstResp := testutil.UnmarshalResponse[CheckInResponse](t, first)

	second := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost,
		"/events/"+eventID.String()+"/check-in", checkInBody(nearby)))
	testutil.AssertStatus(t, second, http.StatusOK)
	secondResp := testutil.UnmarshalResponse[CheckInResponse](t, second)

	assert.True(t, secondResp.AlreadyCheckedIn)
	assert.Equal(t, firstResp.ID, secondResp.ID, "repeat returns the original record")
}

func TestCheckIn_OutsideFenceIs403WithDetails(t *testing.T) {
	f := newFixture(t)
	eventID := f.addEvent(t, &venue, nil)

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost,
		"/events/"+eventID.String()+"/check-in", checkInBody(farAway)))

	testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "geofence_violation")
	errResp := testutil.UnmarshalErrorResponse(t, rr)
	assert.InDelta(t, 578, errResp["distance_meters"].(float64), 10)
	assert.Equal(t, 500.0, errResp["radius_meters"])
}

func TestCheckIn_UnknownEventIs404(t *testing.T) {
	f := newFixture(t)

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost,
		"/events/"+uuid.NewString()+"/check-in", checkInBody(nearby)))

	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}

func TestCheckIn_MalformedEventIDIs400(t *testing.T) {
	f := newFixture(t)

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost,
		"/events/not-a-uuid/check-in", checkInBody(nearby)))

	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
}

func TestCheckIn_UnparseableBodyIs400(t *testing.T) {
	f := newFixture(t)
	eventID := f.addEvent(t, &venue, nil)

	rr := testutil.DoRequest(f.router, testutil.NewRequestWithBody(t, http.MethodPost,
		"/events/"+eventID.String()+"/check-in", "{not json"))

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestCheckIn_MissingCoordinateIs422(t *testing.T) {
	f := newFixture(t)
	eventID := f.addEvent(t, &venue, nil)

	body := map[string]any{"location": map[string]float64{"lat": 25.2048}}
	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost,
		"/events/"+eventID.String()+"/check-in", body))

	testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "validation_error")
}

func TestCheckIn_SessionOfOtherEventIs409(t *testing.T) {
	f := newFixture(t)
	eventID := f.addEvent(t, &venue, nil)
	otherEventID := f.addEvent(t, &venue, nil)

	sessionID := id.SessionID(uuid.New())
	require.NoError(t, f.sessions.Put(context.Background(), &models.EventSession{
		ID:      sessionID,
		EventID: otherEventID,
		Name:    "Morning Shift",
	}))

	body := checkInBody(nearby)
	body["session_id"] = sessionID.String()
	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost,
		"/events/"+eventID.String()+"/check-in", body))

	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
}

func TestCheckIn_MisconfiguredEventHidesDetail(t *testing.T) {
	f := newFixture(t)
	eventID := f.addEvent(t, nil, nil) // no venue configured

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost,
		"/events/"+eventID.String()+"/check-in", checkInBody(nearby)))

	testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "configuration_error")
	errResp := testutil.UnmarshalErrorResponse(t, rr)
	_, leaked := errResp["error_description"]
	assert.False(t, leaked, "operator faults must not leak detail to clients")
}

func TestMyAttendance_BeforeAndAfterCheckIn(t *testing.T) {
	f := newFixture(t)
	eventID := f.addEvent(t, &venue, nil)
	path := "/events/" + eventID.String() + "/attendance/me"

	before := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, path))
	testutil.AssertStatusAndError(t, before, http.StatusNotFound, "not_found")

	checkin := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost,
		"/events/"+eventID.String()+"/check-in", checkInBody(nearby)))
	testutil.AssertStatus(t, checkin, http.StatusCreated)

	after := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, path))
	testutil.AssertStatus(t, after, http.StatusOK)
	resp := testutil.UnmarshalResponse[AttendanceResponse](t, after)
	assert.Equal(t, "checked_in", resp.Status)
	assert.Equal(t, f.volunteerID.String(), resp.VolunteerID)
}
