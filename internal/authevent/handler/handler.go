package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vigil/internal/authevent/models"
	"vigil/internal/authevent/recorder"
	"vigil/internal/detect"
	"vigil/internal/platform/middleware"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/httputil"
	"vigil/pkg/validation"
)

// Recorder accepts authentication events for best-effort persistence.
type Recorder interface {
	LogEvent(ctx context.Context, p recorder.LogEventParams) error
}

// Stats answers statistics and filtered-listing queries over stored events.
type Stats interface {
	GetStatistics(ctx context.Context, start, end time.Time) (*models.Statistics, error)
	ListEvents(ctx context.Context, filter models.Filter) ([]models.Event, error)
}

// Detector ranks the window's suspicious-activity alerts.
type Detector interface {
	GetSuspiciousActivity(ctx context.Context, start, end time.Time) ([]detect.Alert, error)
}

type Handler struct {
	recorder Recorder
	stats    Stats
	detector Detector
	logger   *slog.Logger
}

func New(recorder Recorder, stats Stats, detector Detector, logger *slog.Logger) *Handler {
	return &Handler{recorder: recorder, stats: stats, detector: detector, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/auth-events", h.HandleLogEvent)
	r.Get("/auth-events", h.HandleListEvents)
	r.Get("/auth-events/statistics", h.HandleStatistics)
	r.Get("/auth-events/suspicious-activity", h.HandleSuspiciousActivity)
}

// LogEventRequest is the body posted by the authentication platform for each
// auth outcome. The raw IP address is hashed before storage and the user
// agent is reduced to a coarse device description.
type LogEventRequest struct {
	Type      models.EventType `json:"type" validate:"required,oneof=login logout lockout password_reset password_change mfa_challenge"`
	Email     string           `json:"email" validate:"required,notblank"`
	Success   bool             `json:"success"`
	UserID    *uuid.UUID       `json:"user_id,omitempty"`
	UserRole  string           `json:"user_role,omitempty"`
	IPAddress string           `json:"ip_address,omitempty"`
	UserAgent string           `json:"user_agent,omitempty"`
}

// HandleLogEvent accepts one authentication event. The write is best effort:
// a storage failure still yields 202 so the authentication flow is never
// blocked by the audit trail.
func (h *Handler) HandleLogEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeJSON[LogEventRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}
	if err := validation.Validate(req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	err := h.recorder.LogEvent(ctx, recorder.LogEventParams{
		Type:      req.Type,
		Email:     req.Email,
		Success:   req.Success,
		UserID:    req.UserID,
		UserRole:  req.UserRole,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "log auth event failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// HandleListEvents returns stored events matching the query filters, newest
// first, capped at max_results.
func (h *Handler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	filter, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.stats.ListEvents(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "list auth events failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}

func (h *Handler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	start, end, err := windowFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	stats, err := h.stats.GetStatistics(ctx, start, end)
	if err != nil {
		h.logger.ErrorContext(ctx, "auth statistics failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) HandleSuspiciousActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	start, end, err := windowFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	alerts, err := h.detector.GetSuspiciousActivity(ctx, start, end)
	if err != nil {
		h.logger.ErrorContext(ctx, "suspicious activity scan failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// windowFromQuery parses the required start/end RFC3339 bounds. The end
// defaults to now so dashboards can poll with only a start.
func windowFromQuery(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()

	startRaw := q.Get("start")
	if startRaw == "" {
		return time.Time{}, time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "start is required")
	}
	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "start must be RFC3339")
	}

	end := time.Now().UTC()
	if v := q.Get("end"); v != "" {
		end, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "end must be RFC3339")
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "end must not precede start")
	}
	return start, end, nil
}

func filterFromQuery(r *http.Request) (models.Filter, error) {
	q := r.URL.Query()
	var filter models.Filter

	if v := q.Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeInvalidInput, "start must be RFC3339")
		}
		filter.Start = t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeInvalidInput, "end must be RFC3339")
		}
		filter.End = t
	}
	if v := q.Get("type"); v != "" {
		t := models.EventType(v)
		filter.Type = &t
	}
	if q.Has("user_role") {
		role := q.Get("user_role")
		filter.UserRole = &role
	}
	if v := q.Get("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeInvalidInput, "user_id must be a UUID")
		}
		filter.UserID = &id
	}
	if q.Has("success") {
		b, err := strconv.ParseBool(q.Get("success"))
		if err != nil {
			return filter, dErrors.New(dErrors.CodeInvalidInput, "success must be a boolean")
		}
		filter.Success = &b
	}
	if v := q.Get("max_results"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return filter, dErrors.New(dErrors.CodeInvalidInput, "max_results must be a positive integer")
		}
		filter.MaxResults = n
	}
	return filter, nil
}
