// Package service implements the attendance recorder: it validates a claimed
// location against the event geofence and records at most one check-in per
// volunteer per event.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"muster/internal/audit"
	"muster/internal/badge"
	checkinmetrics "muster/internal/checkin/metrics"
	"muster/internal/checkin/models"
	"muster/internal/geofence"
	id "muster/pkg/domain"
	dErrors "muster/pkg/domain-errors"
	"muster/pkg/platform/sentinel"
	"muster/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

const (
	loadTimeout    = 3 * time.Second
	persistTimeout = 5 * time.Second
)

// EventStore loads events owned by the event-management subsystem.
type EventStore interface {
	FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error)
}

// SessionStore loads event sessions.
type SessionStore interface {
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.EventSession, error)
}

// AttendanceStore persists attendance records. TryInsertCheckedIn reports
// inserted=false when a checked-in record already exists for the pair; the
// store enforces that uniqueness, not the service.
type AttendanceStore interface {
	TryInsertCheckedIn(ctx context.Context, record *models.AttendanceRecord) (bool, error)
	FindCheckedIn(ctx context.Context, eventID id.EventID, volunteerID id.VolunteerID) (*models.AttendanceRecord, error)
}

// RecordCache is a best-effort read-through cache for checked-in records.
// Misses and cache errors fall back to the store; Get returns
// sentinel.ErrNotFound on a miss.
type RecordCache interface {
	Get(ctx context.Context, eventID id.EventID, volunteerID id.VolunteerID) (*models.AttendanceRecord, error)
	Put(ctx context.Context, record *models.AttendanceRecord) error
}

// BadgeDispatcher receives triggers for successful first check-ins.
type BadgeDispatcher interface {
	Enqueue(trigger badge.Trigger)
}

// AuditPublisher hands audit events to the background audit pipeline.
type AuditPublisher interface {
	Emit(event audit.Event)
}

// Service orchestrates check-in recording.
type Service struct {
	events     EventStore
	sessions   SessionStore
	attendance AttendanceStore
	cache      RecordCache
	badges     BadgeDispatcher
	auditor    AuditPublisher
	logger     *slog.Logger
	metrics    *checkinmetrics.Metrics
	tracer     trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *checkinmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithRecordCache(cache RecordCache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithBadgeDispatcher(d BadgeDispatcher) Option {
	return func(s *Service) { s.badges = d }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditor = p }
}

// New constructs a Service.
func New(events EventStore, sessions SessionStore, attendance AttendanceStore, opts ...Option) *Service {
	s := &Service{
		events:     events,
		sessions:   sessions,
		attendance: attendance,
		logger:     slog.Default(),
		tracer:     otel.Tracer("checkin"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckIn records attendance for the authenticated volunteer at an event.
// sessionID is optional; when present its location and radius override the
// event's for geofence evaluation.
//
// Repeating a check-in is not an error: the existing record is returned with
// AlreadyCheckedIn set, and no badge trigger fires again.
func (s *Service) CheckIn(ctx context.Context, eventID id.EventID, sessionID *id.SessionID, claimed geofence.Coordinates) (*models.CheckInResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "checkin.CheckIn",
		trace.WithAttributes(attribute.String("event.id", eventID.String())))
	defer span.End()

	volunteerID := requestcontext.VolunteerID(ctx)
	if volunteerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "no authenticated volunteer")
	}
	span.SetAttributes(attribute.String("volunteer.id", volunteerID.String()))

	if err := claimed.Validate(); err != nil {
		s.metrics.IncrementOutcome("invalid")
		return nil, err
	}

	event, session, err := s.loadTargets(ctx, eventID, sessionID)
	if err != nil {
		s.metrics.IncrementOutcome("error")
		return nil, err
	}
	if session != nil && session.EventID != event.ID {
		s.metrics.IncrementOutcome("error")
		return nil, dErrors.New(dErrors.CodeConflict, "session does not belong to this event")
	}

	// Duplicate fast path before any geofence work: a volunteer who already
	// checked in gets the same success answer no matter where they stand now.
	if existing, found, err := s.findExisting(ctx, eventID, volunteerID); err != nil {
		s.metrics.IncrementOutcome("error")
		return nil, err
	} else if found {
		s.emitAudit(ctx, audit.ActionCheckInDuplicate, volunteerID, event, session, "already checked in", nil)
		s.metrics.IncrementOutcome("duplicate")
		s.metrics.ObserveLatency(time.Since(start))
		return &models.CheckInResult{Record: existing, AlreadyCheckedIn: true}, nil
	}

	decision, err := s.evaluateFence(ctx, claimed, event, session, volunteerID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Float64("geofence.distance_meters", decision.DistanceMeters),
		attribute.Float64("geofence.radius_meters", decision.RadiusMeters),
		attribute.Bool("geofence.admitted", decision.Admitted),
	)
	s.metrics.ObserveDistance(decision.DistanceMeters)

	if !decision.Admitted {
		s.emitAudit(ctx, audit.ActionCheckInDenied, volunteerID, event, session,
			fmt.Sprintf("distance %.0fm exceeds radius %.0fm", decision.DistanceMeters, decision.RadiusMeters), &decision)
		s.metrics.IncrementOutcome("denied")
		return nil, dErrors.New(dErrors.CodeGeofenceViolation, "location is outside the event check-in area").
			WithDetail("distance_meters", decision.DistanceMeters).
			WithDetail("radius_meters", decision.RadiusMeters)
	}

	record := models.NewCheckedInRecord(eventID, volunteerID, claimed, requestcontext.Now(ctx))

	persistCtx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()
	inserted, err := s.attendance.TryInsertCheckedIn(persistCtx, record)
	if err != nil {
		s.metrics.IncrementOutcome("error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record check-in")
	}
	if !inserted {
		// Lost a concurrent race for the same pair. Same answer as the
		// duplicate fast path.
		existing, _, ferr := s.findExisting(ctx, eventID, volunteerID)
		if ferr != nil || existing == nil {
			existing = record
			existing.ID = id.AttendanceID{}
		}
		s.emitAudit(ctx, audit.ActionCheckInDuplicate, volunteerID, event, session, "concurrent duplicate", nil)
		s.metrics.IncrementOutcome("duplicate")
		s.metrics.ObserveLatency(time.Since(start))
		return &models.CheckInResult{Record: existing, AlreadyCheckedIn: true}, nil
	}

	s.cacheRecord(ctx, record)
	if s.badges != nil {
		s.badges.Enqueue(badge.Trigger{
			VolunteerID: volunteerID,
			EventID:     eventID,
			CheckedInAt: record.CheckedInAt,
		})
	}
	s.emitAudit(ctx, audit.ActionCheckInRecorded, volunteerID, event, session, "", &decision)
	s.logger.InfoContext(ctx, "check-in recorded",
		"event_id", eventID.String(),
		"volunteer_id", volunteerID.String(),
		"distance_meters", decision.DistanceMeters,
	)
	s.metrics.IncrementOutcome("recorded")
	s.metrics.ObserveLatency(time.Since(start))

	return &models.CheckInResult{Record: record}, nil
}

// Attendance returns the authenticated volunteer's checked-in record for an
// event, or a not-found error when they have not checked in.
func (s *Service) Attendance(ctx context.Context, eventID id.EventID) (*models.AttendanceRecord, error) {
	volunteerID := requestcontext.VolunteerID(ctx)
	if volunteerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "no authenticated volunteer")
	}

	record, found, err := s.findExisting(ctx, eventID, volunteerID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, dErrors.New(dErrors.CodeNotFound, "no attendance record for this event")
	}
	return record, nil
}

// loadTargets fetches the event and the optional session in parallel.
func (s *Service) loadTargets(ctx context.Context, eventID id.EventID, sessionID *id.SessionID) (*models.Event, *models.EventSession, error) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	var event *models.Event
	g.Go(func() error {
		e, err := s.events.FindByID(gctx, eventID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "event not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
		}
		event = e
		return nil
	})

	var session *models.EventSession
	if sessionID != nil {
		sid := *sessionID
		g.Go(func() error {
			se, err := s.sessions.FindByID(gctx, sid)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return dErrors.New(dErrors.CodeNotFound, "session not found")
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
			}
			session = se
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return event, session, nil
}

// findExisting checks the cache first, then the store. Cache errors are
// treated as misses; the store is authoritative.
func (s *Service) findExisting(ctx context.Context, eventID id.EventID, volunteerID id.VolunteerID) (*models.AttendanceRecord, bool, error) {
	if s.cache != nil {
		if record, err := s.cache.Get(ctx, eventID, volunteerID); err == nil {
			return record, true, nil
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "attendance cache read failed", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()
	record, err := s.attendance.FindCheckedIn(ctx, eventID, volunteerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load attendance")
	}
	s.cacheRecord(ctx, record)
	return record, true, nil
}

// evaluateFence resolves the reference location and radius, then evaluates.
// Configuration faults are logged at error level and audited; they page the
// operator, not the volunteer.
func (s *Service) evaluateFence(ctx context.Context, claimed geofence.Coordinates, event *models.Event, session *models.EventSession, volunteerID id.VolunteerID) (geofence.Decision, error) {
	reference, ok := models.ResolveReference(event, session)
	if !ok {
		err := dErrors.New(dErrors.CodeConfiguration, "event has no location configured")
		s.faultConfig(ctx, err, event, session, volunteerID)
		return geofence.Decision{}, err
	}

	decision, err := geofence.Evaluate(claimed, reference, models.ResolveRadius(event, session))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConfiguration) {
			s.faultConfig(ctx, err, event, session, volunteerID)
			return geofence.Decision{}, err
		}
		s.metrics.IncrementOutcome("invalid")
		return geofence.Decision{}, err
	}
	return decision, nil
}

func (s *Service) faultConfig(ctx context.Context, err error, event *models.Event, session *models.EventSession, volunteerID id.VolunteerID) {
	s.logger.ErrorContext(ctx, "event geofence misconfigured",
		"error", err,
		"event_id", event.ID.String(),
	)
	s.emitAudit(ctx, audit.ActionCheckInConfigError, volunteerID, event, session, err.Error(), nil)
	s.metrics.IncrementOutcome("config_error")
}

func (s *Service) cacheRecord(ctx context.Context, record *models.AttendanceRecord) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, record); err != nil {
		s.logger.WarnContext(ctx, "attendance cache write failed", "error", err)
	}
}

func (s *Service) emitAudit(ctx context.Context, action audit.Action, volunteerID id.VolunteerID, event *models.Event, session *models.EventSession, reason string, decision *geofence.Decision) {
	if s.auditor == nil {
		return
	}
	e := audit.Event{
		Action:      action,
		VolunteerID: volunteerID,
		EventID:     event.ID,
		RequestID:   requestcontext.RequestID(ctx),
		Reason:      reason,
	}
	if session != nil {
		e.SessionID = session.ID
	}
	if decision != nil {
		e.DistanceMeters = decision.DistanceMeters
		e.RadiusMeters = decision.RadiusMeters
	}
	s.auditor.Emit(e)
}
