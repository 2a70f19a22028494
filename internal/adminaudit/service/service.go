// Package service records and queries privileged administrative actions.
//
// Writes here are compliance-critical: a lost admin audit log is a policy
// violation, so persistence failures always surface to the caller. This is
// the deliberate opposite of the authentication-event recorder's best-effort
// posture.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	auditmetrics "vigil/internal/adminaudit/metrics"
	"vigil/internal/adminaudit/models"
	dErrors "vigil/pkg/domain-errors"
)

// Store is the admin-audit side of the persistence port.
type Store interface {
	Add(ctx context.Context, log models.AuditLog) (*models.AuditLog, error)
	GetFiltered(ctx context.Context, filter models.Filter) ([]models.AuditLog, error)
	GetByEntity(ctx context.Context, entityType, entityID string) ([]models.AuditLog, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	GetForArchival(ctx context.Context, cutoff time.Time, batchSize int) ([]models.AuditLog, error)
}

// Service orchestrates admin audit logging, retrieval, and retention.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *auditmetrics.Metrics
	now     func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *auditmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("audit log store is required")
	}

	s := &Service{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// LogActionParams carries the caller-supplied fields for one admin action.
type LogActionParams struct {
	AdminUserID   string
	Action        string
	EntityType    string
	EntityID      string
	Success       bool
	Details       string
	FailureReason string
	IPAddress     string
}

// LogAction persists one admin audit log and returns the stored record.
// A FailureReason passed alongside Success=true is discarded: the invariant
// "failure reason present only on failure" holds at write time, not read time.
func (s *Service) LogAction(ctx context.Context, p LogActionParams) (*models.AuditLog, error) {
	if p.AdminUserID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "admin user id is required")
	}
	if p.Action == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "action is required")
	}

	failureReason := p.FailureReason
	if p.Success {
		failureReason = ""
	}

	record := models.AuditLog{
		ID:            uuid.New(),
		AdminUserID:   p.AdminUserID,
		Action:        p.Action,
		EntityType:    p.EntityType,
		EntityID:      p.EntityID,
		Success:       p.Success,
		Details:       p.Details,
		FailureReason: failureReason,
		IPAddress:     p.IPAddress,
		CreatedAt:     s.now().UTC(),
	}

	stored, err := s.store.Add(ctx, record)
	if err != nil {
		if s.metrics != nil {
			s.metrics.LogWriteFailures.Inc()
		}
		s.logger.ErrorContext(ctx, "admin audit write failed",
			"error", err,
			"action", p.Action,
			"admin_user_id", p.AdminUserID,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeAuditWriteFailed, "failed to persist admin audit log")
	}

	if s.metrics != nil {
		s.metrics.ActionsLogged.WithLabelValues(p.Action, strconv.FormatBool(p.Success)).Inc()
	}
	return stored, nil
}

// Query returns audit logs matching the filter. Unset filter fields are not
// applied; the result cap defaults to 100 and is always forwarded to the store.
func (s *Service) Query(ctx context.Context, filter models.Filter) ([]models.AuditLog, error) {
	logs, err := s.store.GetFiltered(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query audit logs")
	}
	return logs, nil
}

// GetByResource returns the full history for one resource, oldest first,
// for incident timelines. No result cap applies.
func (s *Service) GetByResource(ctx context.Context, entityType, entityID string) ([]models.AuditLog, error) {
	if entityType == "" || entityID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "entity type and id are required")
	}
	logs, err := s.store.GetByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load resource history")
	}
	return logs, nil
}

// PurgeOldLogs deletes logs older than the retention window and returns the
// count the store reports. The cutoff comparison itself belongs to the store.
func (s *Service) PurgeOldLogs(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "retention days must be positive")
	}
	cutoff := s.now().UTC().AddDate(0, 0, -retentionDays)

	deleted, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to purge audit logs")
	}

	if s.metrics != nil {
		s.metrics.LogsPurged.Add(float64(deleted))
	}
	s.logger.InfoContext(ctx, "purged old audit logs",
		"deleted", deleted,
		"cutoff", cutoff,
	)
	return deleted, nil
}

// GetLogsForArchival returns one batch of logs past the retention window so
// an external archiver can drain them before purge.
func (s *Service) GetLogsForArchival(ctx context.Context, retentionDays, batchSize int) ([]models.AuditLog, error) {
	if retentionDays <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "retention days must be positive")
	}
	cutoff := s.now().UTC().AddDate(0, 0, -retentionDays)

	logs, err := s.store.GetForArchival(ctx, cutoff, batchSize)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load logs for archival")
	}
	return logs, nil
}
