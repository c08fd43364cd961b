package badge

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "muster/pkg/domain"
)

type recordingNotifier struct {
	mu       sync.Mutex
	triggers []Trigger
	calls    int
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, trigger Trigger) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if n.err != nil {
		return n.err
	}
	n.triggers = append(n.triggers, trigger)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.triggers)
}

func (n *recordingNotifier) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

func (n *recordingNotifier) setErr(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

func TestDispatcher_DeliversEnqueuedTrigger(t *testing.T) {
	notifier := &recordingNotifier{}
	d := NewDispatcher(notifier, 8, slog.Default(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx) //nolint:errcheck

	d.Enqueue(Trigger{
		VolunteerID: id.VolunteerID(uuid.New()),
		EventID:     id.EventID(uuid.New()),
		CheckedInAt: time.Now(),
	})

	require.Eventually(t, func() bool { return notifier.count() == 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	// No worker running, inbox of one: the second enqueue must drop.
	d := NewDispatcher(&recordingNotifier{}, 1, slog.Default(), nil)

	done := make(chan struct{})
	go func() {
		d.Enqueue(Trigger{VolunteerID: id.VolunteerID(uuid.New())})
		d.Enqueue(Trigger{VolunteerID: id.VolunteerID(uuid.New())})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full inbox")
	}
}

func TestDispatcher_NotifierFailureIsSwallowed(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("badge service down")}
	d := NewDispatcher(notifier, 8, slog.Default(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx) //nolint:errcheck

	d.Enqueue(Trigger{VolunteerID: id.VolunteerID(uuid.New())})
	require.Eventually(t, func() bool { return notifier.callCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	// The worker must keep running after a failure.
	notifier.setErr(nil)
	d.Enqueue(Trigger{VolunteerID: id.VolunteerID(uuid.New())})

	require.Eventually(t, func() bool { return notifier.count() == 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestDispatcher_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("badge service down")}
	d := NewDispatcher(notifier, 8, slog.Default(), nil)

	for i := 0; i < 5; i++ {
		d.deliver(Trigger{VolunteerID: id.VolunteerID(uuid.New())})
	}
	require.True(t, d.breaker.IsOpen())

	// With the circuit open, triggers are skipped rather than attempted.
	attempted := notifier.callCount()
	for i := 0; i < probeEvery-1; i++ {
		d.deliver(Trigger{VolunteerID: id.VolunteerID(uuid.New())})
	}
	assert.Equal(t, attempted, notifier.callCount())
}

func TestDispatcher_CircuitClosesViaProbes(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("badge service down")}
	d := NewDispatcher(notifier, 8, slog.Default(), nil)

	for i := 0; i < 5; i++ {
		d.deliver(Trigger{VolunteerID: id.VolunteerID(uuid.New())})
	}
	require.True(t, d.breaker.IsOpen())

	// Once the badge service recovers, periodic probes close the circuit
	// after two successful deliveries.
	notifier.setErr(nil)
	for i := 0; i < 2*probeEvery; i++ {
		d.deliver(Trigger{VolunteerID: id.VolunteerID(uuid.New())})
	}

	assert.False(t, d.breaker.IsOpen())
	assert.Equal(t, 2, notifier.count())
}

func TestHTTPNotifier_PostsTrigger(t *testing.T) {
	var got triggerPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/triggers", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	volunteerID := id.VolunteerID(uuid.New())
	n := NewHTTPNotifier(srv.URL, time.Second)
	err := n.Notify(context.Background(), Trigger{
		VolunteerID: volunteerID,
		EventID:     id.EventID(uuid.New()),
		CheckedInAt: time.Now(),
	})

	require.NoError(t, err)
	assert.Equal(t, volunteerID.String(), got.VolunteerID)
	assert.Equal(t, "event_checkin", got.Trigger)
}

func TestHTTPNotifier_ServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewHTTPNotifier(srv.URL, time.Second)
	err := n.Notify(context.Background(), Trigger{})
	require.Error(t, err)
}
