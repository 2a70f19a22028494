package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"vigil/internal/adminaudit/models"
	"vigil/internal/adminaudit/service"
	"vigil/internal/platform/middleware"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/httputil"
	"vigil/pkg/validation"
)

// Service defines the interface for admin-audit operations.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	LogAction(ctx context.Context, p service.LogActionParams) (*models.AuditLog, error)
	LogCustomerProfileAccess(ctx context.Context, p service.SensitiveAccessParams) (*models.AuditLog, error)
	LogPayoutDetailsAccess(ctx context.Context, p service.SensitiveAccessParams) (*models.AuditLog, error)
	LogKYCDocumentAccess(ctx context.Context, p service.SensitiveAccessParams) (*models.AuditLog, error)
	LogStoreDetailsAccess(ctx context.Context, p service.SensitiveAccessParams) (*models.AuditLog, error)
	Query(ctx context.Context, filter models.Filter) ([]models.AuditLog, error)
	GetByResource(ctx context.Context, entityType, entityID string) ([]models.AuditLog, error)
	PurgeOldLogs(ctx context.Context, retentionDays int) (int, error)
	GetLogsForArchival(ctx context.Context, retentionDays, batchSize int) ([]models.AuditLog, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/audit-logs", h.HandleLogAction)
	r.Get("/admin/audit-logs", h.HandleQuery)
	r.Get("/admin/audit-logs/resource/{entityType}/{entityID}", h.HandleGetByResource)
	r.Post("/admin/audit-logs/purge", h.HandlePurge)
	r.Get("/admin/audit-logs/archival", h.HandleArchival)
	r.Post("/admin/sensitive-access/{category}", h.HandleSensitiveAccess)
}

// LogActionRequest is the body for recording a privileged admin action.
type LogActionRequest struct {
	Action        string `json:"action" validate:"required,notblank"`
	EntityType    string `json:"entity_type"`
	EntityID      string `json:"entity_id"`
	Success       bool   `json:"success"`
	Details       string `json:"details,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
	IPAddress     string `json:"ip_address,omitempty"`
}

// HandleLogAction records one admin action. The acting admin is taken from
// the verified token, never from the request body.
func (h *Handler) HandleLogAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeJSON[LogActionRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}
	if err := validation.Validate(req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	log, err := h.service.LogAction(ctx, service.LogActionParams{
		AdminUserID:   middleware.GetAdminID(ctx),
		Action:        req.Action,
		EntityType:    req.EntityType,
		EntityID:      req.EntityID,
		Success:       req.Success,
		Details:       req.Details,
		FailureReason: req.FailureReason,
		IPAddress:     req.IPAddress,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "log admin action failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, log)
}

// SensitiveAccessRequest is the body for recording a sensitive-resource view.
type SensitiveAccessRequest struct {
	EntityID  string `json:"entity_id" validate:"required,notblank"`
	Success   bool   `json:"success"`
	Reason    string `json:"reason,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
}

// HandleSensitiveAccess records an access to one of the named sensitive
// resource categories.
func (h *Handler) HandleSensitiveAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeJSON[SensitiveAccessRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}
	if err := validation.Validate(req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	params := service.SensitiveAccessParams{
		AdminUserID: middleware.GetAdminID(ctx),
		EntityID:    req.EntityID,
		Success:     req.Success,
		Reason:      req.Reason,
		IPAddress:   req.IPAddress,
	}

	var (
		log *models.AuditLog
		err error
	)
	switch chi.URLParam(r, "category") {
	case "customer-profile":
		log, err = h.service.LogCustomerProfileAccess(ctx, params)
	case "payout-details":
		log, err = h.service.LogPayoutDetailsAccess(ctx, params)
	case "kyc-document":
		log, err = h.service.LogKYCDocumentAccess(ctx, params)
	case "store-details":
		log, err = h.service.LogStoreDetailsAccess(ctx, params)
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "unknown sensitive resource category"))
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "log sensitive access failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, log)
}

// HandleQuery lists audit logs matching the query-string filters. Absent
// parameters are not applied as filters.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	filter, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	logs, err := h.service.Query(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit log query failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"audit_logs": logs,
		"count":      len(logs),
	})
}

// HandleGetByResource returns the full history for one resource, oldest first.
func (h *Handler) HandleGetByResource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	logs, err := h.service.GetByResource(ctx, chi.URLParam(r, "entityType"), chi.URLParam(r, "entityID"))
	if err != nil {
		h.logger.ErrorContext(ctx, "resource history failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"audit_logs": logs,
		"count":      len(logs),
	})
}

// PurgeRequest is the body for the retention purge.
type PurgeRequest struct {
	RetentionDays int `json:"retention_days"`
}

func (h *Handler) HandlePurge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeJSON[PurgeRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	deleted, err := h.service.PurgeOldLogs(ctx, req.RetentionDays)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit log purge failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (h *Handler) HandleArchival(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	retentionDays, err := intQuery(r, "retention_days", 90)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	batchSize, err := intQuery(r, "batch_size", 1000)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	logs, err := h.service.GetLogsForArchival(ctx, retentionDays, batchSize)
	if err != nil {
		h.logger.ErrorContext(ctx, "archival batch failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"audit_logs": logs,
		"count":      len(logs),
	})
}

func filterFromQuery(r *http.Request) (models.Filter, error) {
	q := r.URL.Query()
	var filter models.Filter

	if v := q.Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeInvalidInput, "start must be RFC3339")
		}
		filter.Start = &t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeInvalidInput, "end must be RFC3339")
		}
		filter.End = &t
	}
	// Presence of the key distinguishes "filter by empty" from "no filter".
	for key, dst := range map[string]**string{
		"admin_user_id": &filter.AdminUserID,
		"entity_type":   &filter.EntityType,
		"action":        &filter.Action,
		"entity_id":     &filter.EntityID,
	} {
		if q.Has(key) {
			v := q.Get(key)
			*dst = &v
		}
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

func intQuery(r *http.Request, key string, fallback int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, key+" must be a positive integer")
	}
	return n, nil
}
