package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"muster/internal/checkin/models"
	"muster/internal/geofence"
	id "muster/pkg/domain"
	"muster/pkg/platform/httputil"
	"muster/pkg/requestcontext"
)

// Service defines the interface for check-in operations.
type Service interface {
	CheckIn(ctx context.Context, eventID id.EventID, sessionID *id.SessionID, claimed geofence.Coordinates) (*models.CheckInResult, error)
	Attendance(ctx context.Context, eventID id.EventID) (*models.AttendanceRecord, error)
}

// Handler wires check-in endpoints to the check-in service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a check-in handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts check-in endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/events/{eventID}/check-in", h.HandleCheckIn)
	r.Get("/events/{eventID}/attendance/me", h.HandleMyAttendance)
}

// HandleCheckIn handles POST /events/{eventID}/check-in requests.
// A first check-in answers 201; a repeat answers 200 with
// already_checked_in set.
func (h *Handler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[CheckInRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.CheckIn(ctx, eventID, req.ParsedSessionID(), req.Coordinates())
	if err != nil {
		h.logger.WarnContext(ctx, "check-in rejected",
			"request_id", requestID,
			"event_id", eventID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "check-in handled",
		"request_id", requestID,
		"event_id", eventID.String(),
		"already_checked_in", result.AlreadyCheckedIn,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	status := http.StatusCreated
	if result.AlreadyCheckedIn {
		status = http.StatusOK
	}
	httputil.WriteJSON(w, status, fromResult(result))
}

// HandleMyAttendance handles GET /events/{eventID}/attendance/me requests.
func (h *Handler) HandleMyAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.Attendance(ctx, eventID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromRecord(record))
}
