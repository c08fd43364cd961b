package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "muster/pkg/domain"
	"muster/pkg/requestcontext"
)

// AuthedContext returns a context carrying a fresh authenticated volunteer ID,
// as the auth middleware would have set it.
func AuthedContext(ctx context.Context) (context.Context, id.VolunteerID) {
	volunteerID := id.VolunteerID(uuid.New())
	return requestcontext.WithVolunteerID(ctx, volunteerID), volunteerID
}

// FrozenContext returns a context with a pinned request time so assertions on
// timestamps are deterministic.
func FrozenContext(ctx context.Context, t time.Time) context.Context {
	return requestcontext.WithTime(ctx, t)
}
