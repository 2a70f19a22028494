// Package stats aggregates authentication events into window summaries.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vigil/internal/authevent/models"
	dErrors "vigil/pkg/domain-errors"
)

// EventReader is the read side of the authentication-event port used by the
// aggregator.
type EventReader interface {
	GetByDateRange(ctx context.Context, start, end time.Time) ([]models.Event, error)
	GetCountsByType(ctx context.Context, start, end time.Time) (map[models.EventType]int, error)
	GetFiltered(ctx context.Context, filter models.Filter) ([]models.Event, error)
}

// Service computes authentication statistics. Pure read; storage errors
// propagate because a masked failure would look like a quiet window.
type Service struct {
	events EventReader
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(events EventReader, opts ...Option) (*Service, error) {
	if events == nil {
		return nil, fmt.Errorf("event reader is required")
	}

	s := &Service{events: events, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetStatistics summarizes one window. Login success/failure is partitioned
// from the raw events; lockout and reset totals come from the per-type count
// map so the store can serve them from an index.
func (s *Service) GetStatistics(ctx context.Context, start, end time.Time) (*models.Statistics, error) {
	events, err := s.events.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authentication events")
	}

	counts, err := s.events.GetCountsByType(ctx, start, end)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event counts")
	}

	result := &models.Statistics{
		WindowStart:    start,
		WindowEnd:      end,
		Lockouts:       counts[models.EventLockout],
		PasswordResets: counts[models.EventPasswordReset],
	}
	for _, event := range events {
		if event.Type != models.EventLogin {
			continue
		}
		if event.Success {
			result.SuccessfulLogins++
		} else {
			result.FailedLogins++
		}
	}
	return result, nil
}

// ListEvents returns a filtered event listing for compliance review. Unset
// filter fields are not applied; the result cap defaults to 100.
func (s *Service) ListEvents(ctx context.Context, filter models.Filter) ([]models.Event, error) {
	events, err := s.events.GetFiltered(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list authentication events")
	}
	return events, nil
}
