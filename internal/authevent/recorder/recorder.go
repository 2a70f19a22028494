// Package recorder builds and persists immutable authentication events.
//
// Recording is best-effort by policy: a login must never fail because the
// audit store is down. Persistence failures are logged and swallowed here;
// caller cancellation is the one outcome that still propagates.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	authmetrics "vigil/internal/authevent/metrics"
	"vigil/internal/authevent/models"
	"vigil/internal/platform/privacy"
)

// EventStore is the write side of the authentication-event port.
type EventStore interface {
	Add(ctx context.Context, event models.Event) error
}

// Recorder constructs authentication events and hands them to the store.
type Recorder struct {
	store   EventStore
	hasher  *privacy.IPHasher
	logger  *slog.Logger
	metrics *authmetrics.Metrics
	now     func() time.Time
}

type Option func(*Recorder)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

func WithMetrics(m *authmetrics.Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

func New(store EventStore, hasher *privacy.IPHasher, opts ...Option) (*Recorder, error) {
	if store == nil {
		return nil, fmt.Errorf("event store is required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("ip hasher is required")
	}

	r := &Recorder{
		store:  store,
		hasher: hasher,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// LogEventParams carries the caller-supplied fields for one event.
// Optional fields stay zero-valued when unknown.
type LogEventParams struct {
	Type      models.EventType
	Email     string
	Success   bool
	UserID    *uuid.UUID
	UserRole  string
	IPAddress string
	UserAgent string
}

// LogEvent records one authentication event. A persistence failure is logged
// as a warning and swallowed - the returned error is non-nil only when the
// caller's own context was cancelled, which is not a persistence failure.
func (r *Recorder) LogEvent(ctx context.Context, p LogEventParams) error {
	event := models.Event{
		ID:        uuid.New(),
		Type:      p.Type,
		Email:     p.Email,
		Success:   p.Success,
		UserID:    p.UserID,
		UserRole:  p.UserRole,
		IPHash:    r.hasher.Hash(p.IPAddress),
		UserAgent: p.UserAgent,
		Device:    describeDevice(p.UserAgent),
		CreatedAt: r.now().UTC(),
	}

	if err := r.store.Add(ctx, event); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		r.logger.WarnContext(ctx, "authentication event write failed, dropping event",
			"error", err,
			"event_type", string(p.Type),
			"email", p.Email,
			"source", privacy.AnonymizeIP(p.IPAddress),
		)
		if r.metrics != nil {
			r.metrics.EventWriteFailures.Inc()
		}
		return nil
	}

	if r.metrics != nil {
		r.metrics.EventsRecorded.WithLabelValues(string(p.Type), strconv.FormatBool(p.Success)).Inc()
	}
	return nil
}
