package attendance

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muster/internal/checkin/models"
	"muster/internal/geofence"
	id "muster/pkg/domain"
	"muster/pkg/platform/sentinel"
)

func newRecord(eventID id.EventID, volunteerID id.VolunteerID) *models.AttendanceRecord {
	return models.NewCheckedInRecord(eventID, volunteerID,
		geofence.Coordinates{Lat: 25.2048, Lng: 55.2708}, time.Now())
}

func TestInMemoryStore_InsertAndFind(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	eventID := id.EventID(uuid.New())
	volunteerID := id.VolunteerID(uuid.New())

	record := newRecord(eventID, volunteerID)
	inserted, err := store.TryInsertCheckedIn(ctx, record)
	require.NoError(t, err)
	assert.True(t, inserted)

	found, err := store.FindCheckedIn(ctx, eventID, volunteerID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)
	assert.Equal(t, models.StatusCheckedIn, found.Status)
}

func TestInMemoryStore_SecondInsertIsRejected(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	eventID := id.EventID(uuid.New())
	volunteerID := id.VolunteerID(uuid.New())

	first := newRecord(eventID, volunteerID)
	inserted, err := store.TryInsertCheckedIn(ctx, first)
	require.NoError(t, err)
	require.True(t, inserted)

	second := newRecord(eventID, volunteerID)
	inserted, err = store.TryInsertCheckedIn(ctx, second)
	require.NoError(t, err)
	assert.False(t, inserted, "duplicate insert must report not-inserted, not fail")

	// The original record survives.
	found, err := store.FindCheckedIn(ctx, eventID, volunteerID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestInMemoryStore_PairsAreIndependent(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	volunteerID := id.VolunteerID(uuid.New())
	eventA := id.EventID(uuid.New())
	eventB := id.EventID(uuid.New())

	inserted, err := store.TryInsertCheckedIn(ctx, newRecord(eventA, volunteerID))
	require.NoError(t, err)
	require.True(t, inserted)

	// Same volunteer, different event: allowed.
	inserted, err = store.TryInsertCheckedIn(ctx, newRecord(eventB, volunteerID))
	require.NoError(t, err)
	assert.True(t, inserted)

	// Different volunteer, first event: allowed.
	inserted, err = store.TryInsertCheckedIn(ctx, newRecord(eventA, id.VolunteerID(uuid.New())))
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestInMemoryStore_FindMissingReturnsNotFound(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.FindCheckedIn(context.Background(), id.EventID(uuid.New()), id.VolunteerID(uuid.New()))
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
}

func TestInMemoryStore_ConcurrentInsertsYieldExactlyOne(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	eventID := id.EventID(uuid.New())
	volunteerID := id.VolunteerID(uuid.New())

	const goroutines = 50
	var inserted atomic.Int64
	errs := make(chan error, goroutines)
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := store.TryInsertCheckedIn(ctx, newRecord(eventID, volunteerID))
			if err != nil {
				errs <- err
				return
			}
			if ok {
				inserted.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), inserted.Load(), "exactly one goroutine must win the insert")
}
