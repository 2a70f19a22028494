// Package detect classifies aggregate authentication counts into ranked
// suspicious-activity alerts. It never mutates stored data and holds no state
// between calls, so it is safe to invoke concurrently.
package detect

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	detectmetrics "vigil/internal/detect/metrics"
	dErrors "vigil/pkg/domain-errors"
)

// AggregateReader is the aggregate-count side of the authentication-event
// port. The store performs the per-key counting and threshold restriction
// server-side; this service only classifies what comes back.
type AggregateReader interface {
	GetFailedAttemptsByIP(ctx context.Context, start, end time.Time, minCount int) (map[string]int, error)
	GetRapidLoginAttempts(ctx context.Context, start, end time.Time, minCount int) (map[string]int, error)
}

// Service detects brute-force and credential-stuffing signatures.
type Service struct {
	events  AggregateReader
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *detectmetrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *detectmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer allows injecting a custom OpenTelemetry tracer.
// Useful for testing or when a pre-configured tracer is available.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(events AggregateReader, opts ...Option) (*Service, error) {
	if events == nil {
		return nil, fmt.Errorf("aggregate reader is required")
	}

	s := &Service{events: events, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("vigil/detect")
	}
	return s, nil
}

// GetSuspiciousActivity returns the window's alerts ranked by descending
// severity, then descending count. Any read failure propagates: an empty
// result must always mean "nothing detected", never "the store was down".
func (s *Service) GetSuspiciousActivity(ctx context.Context, start, end time.Time) ([]Alert, error) {
	ctx, span := s.tracer.Start(ctx, "detect.GetSuspiciousActivity", trace.WithAttributes(
		attribute.String("window.start", start.Format(time.RFC3339)),
		attribute.String("window.end", end.Format(time.RFC3339)),
	))
	defer span.End()

	var (
		failedByIP map[string]int
		rapid      map[string]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		failedByIP, err = s.events.GetFailedAttemptsByIP(gctx, start, end, FailedAttemptFloor)
		return err
	})
	g.Go(func() error {
		var err error
		rapid, err = s.events.GetRapidLoginAttempts(gctx, start, end, RapidAttemptFloor)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authentication aggregates")
	}

	alerts := make([]Alert, 0, len(failedByIP)+len(rapid))
	for ipHash, count := range failedByIP {
		alerts = append(alerts, Alert{
			Type:     ActivityBruteForce,
			Key:      ipHash,
			Count:    count,
			Severity: classify(count, bruteForceBands),
		})
	}
	for account, count := range rapid {
		alerts = append(alerts, Alert{
			Type:     ActivityRapidAttempts,
			Key:      account,
			Count:    count,
			Severity: classify(count, rapidAttemptBands),
		})
	}

	sortAlerts(alerts)

	if s.metrics != nil {
		s.metrics.ScansRun.Inc()
		for _, alert := range alerts {
			s.metrics.AlertsDetected.WithLabelValues(string(alert.Type), alert.Severity.String()).Inc()
		}
	}

	span.SetAttributes(attribute.Int("alerts.count", len(alerts)))
	if len(alerts) > 0 {
		s.logger.InfoContext(ctx, "suspicious activity detected",
			"alerts", len(alerts),
			"top_severity", alerts[0].Severity.String(),
		)
	}
	return alerts, nil
}

// sortAlerts orders by severity descending, then count descending. The key is
// a final tie-break only so identical inputs produce identical output.
func sortAlerts(alerts []Alert) {
	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].Severity != alerts[j].Severity {
			return alerts[i].Severity > alerts[j].Severity
		}
		if alerts[i].Count != alerts[j].Count {
			return alerts[i].Count > alerts[j].Count
		}
		return alerts[i].Key < alerts[j].Key
	})
}
