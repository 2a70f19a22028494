package service

import (
	"context"
	"fmt"

	"vigil/internal/adminaudit/models"
)

// Sensitive-access logging. Every view of a named sensitive resource produces
// an audit log whose Details string contains the resource identifier
// verbatim: compliance search resolves "who looked at X" by substring, so the
// identifier in Details is a contract, not a nicety.

// SensitiveAccessParams carries the common fields for a sensitive-resource view.
type SensitiveAccessParams struct {
	AdminUserID string
	EntityID    string
	Success     bool
	Reason      string // populated only when the access failed
	IPAddress   string
}

// LogCustomerProfileAccess records an admin viewing a customer profile.
func (s *Service) LogCustomerProfileAccess(ctx context.Context, p SensitiveAccessParams) (*models.AuditLog, error) {
	return s.logSensitiveAccess(ctx, models.ActionViewCustomerProfile, models.EntityCustomerProfile, "customer profile", p)
}

// LogPayoutDetailsAccess records an admin viewing a seller's payout details.
func (s *Service) LogPayoutDetailsAccess(ctx context.Context, p SensitiveAccessParams) (*models.AuditLog, error) {
	return s.logSensitiveAccess(ctx, models.ActionViewPayoutDetails, models.EntityPayoutDetails, "payout details", p)
}

// LogKYCDocumentAccess records an admin viewing a KYC document.
func (s *Service) LogKYCDocumentAccess(ctx context.Context, p SensitiveAccessParams) (*models.AuditLog, error) {
	return s.logSensitiveAccess(ctx, models.ActionViewKYCDocument, models.EntityKYCDocument, "KYC document", p)
}

// LogStoreDetailsAccess records an admin viewing a store's details.
func (s *Service) LogStoreDetailsAccess(ctx context.Context, p SensitiveAccessParams) (*models.AuditLog, error) {
	return s.logSensitiveAccess(ctx, models.ActionViewStoreDetails, models.EntityStoreDetails, "store details", p)
}

func (s *Service) logSensitiveAccess(ctx context.Context, action, entityType, label string, p SensitiveAccessParams) (*models.AuditLog, error) {
	return s.LogAction(ctx, LogActionParams{
		AdminUserID:   p.AdminUserID,
		Action:        action,
		EntityType:    entityType,
		EntityID:      p.EntityID,
		Success:       p.Success,
		Details:       fmt.Sprintf("Accessed %s %s", label, p.EntityID),
		FailureReason: p.Reason,
		IPAddress:     p.IPAddress,
	})
}
