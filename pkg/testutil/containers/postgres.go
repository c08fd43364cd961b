//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// schema is the subset of the application schema these tests touch. events
// and event_sessions are owned by event management; attendance and
// checkin_audit are owned by this service.
const schema = `
CREATE TABLE IF NOT EXISTS events (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	latitude DOUBLE PRECISION,
	longitude DOUBLE PRECISION,
	geofence_radius_meters DOUBLE PRECISION,
	starts_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS event_sessions (
	id UUID PRIMARY KEY,
	event_id UUID NOT NULL REFERENCES events(id),
	name TEXT NOT NULL,
	latitude DOUBLE PRECISION,
	longitude DOUBLE PRECISION,
	geofence_radius_meters DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS attendance (
	id UUID PRIMARY KEY,
	event_id UUID NOT NULL,
	volunteer_id UUID NOT NULL,
	status TEXT NOT NULL,
	method TEXT NOT NULL,
	checked_in_at TIMESTAMPTZ NOT NULL,
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	location_verified BOOLEAN NOT NULL DEFAULT false
);

CREATE UNIQUE INDEX IF NOT EXISTS attendance_checked_in_once
	ON attendance (event_id, volunteer_id)
	WHERE status = 'checked_in';

CREATE TABLE IF NOT EXISTS checkin_audit (
	id UUID PRIMARY KEY,
	action TEXT NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL,
	volunteer_id UUID NOT NULL,
	event_id UUID NOT NULL,
	session_id UUID,
	request_id TEXT NOT NULL DEFAULT '',
	reason TEXT NOT NULL DEFAULT '',
	distance_meters DOUBLE PRECISION NOT NULL DEFAULT 0,
	radius_meters DOUBLE PRECISION NOT NULL DEFAULT 0
);
`

// PostgresContainer wraps a testcontainers PostgreSQL instance with an open
// database handle.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a PostgreSQL container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("muster_test"),
		tcpostgres.WithUsername("muster"),
		tcpostgres.WithPassword("muster"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	// Container lifetime is managed by the singleton Manager and shared
	// across suites; Ryuk handles final cleanup.

	return &PostgresContainer{Container: container, DSN: dsn, DB: db}
}

// TruncateTables clears the given tables between tests.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	query := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", "))
	_, err := p.DB.ExecContext(ctx, query)
	return err
}
