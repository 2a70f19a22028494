package testutil

import (
	"time"

	"github.com/google/uuid"

	auditmodels "vigil/internal/adminaudit/models"
	authmodels "vigil/internal/authevent/models"
)

// EventBuilder provides a fluent interface for building authentication events.
type EventBuilder struct {
	event authmodels.Event
}

// NewEventBuilder creates an EventBuilder with sensible defaults: a failed
// login from a hashed address, timestamped now.
func NewEventBuilder() *EventBuilder {
	return &EventBuilder{
		event: authmodels.Event{
			ID:        uuid.New(),
			Type:      authmodels.EventLogin,
			Email:     "merchant@example.com",
			Success:   false,
			IPHash:    "hash-default",
			CreatedAt: time.Now().UTC(),
		},
	}
}

func (b *EventBuilder) WithType(t authmodels.EventType) *EventBuilder {
	b.event.Type = t
	return b
}

func (b *EventBuilder) WithEmail(email string) *EventBuilder {
	b.event.Email = email
	return b
}

func (b *EventBuilder) WithSuccess(success bool) *EventBuilder {
	b.event.Success = success
	return b
}

func (b *EventBuilder) WithIPHash(hash string) *EventBuilder {
	b.event.IPHash = hash
	return b
}

func (b *EventBuilder) WithCreatedAt(t time.Time) *EventBuilder {
	b.event.CreatedAt = t
	return b
}

func (b *EventBuilder) Build() authmodels.Event {
	return b.event
}

// AuditLogBuilder provides a fluent interface for building admin audit logs.
type AuditLogBuilder struct {
	log auditmodels.AuditLog
}

func NewAuditLogBuilder() *AuditLogBuilder {
	return &AuditLogBuilder{
		log: auditmodels.AuditLog{
			ID:          uuid.New(),
			AdminUserID: "admin-1",
			Action:      "SuspendStore",
			EntityType:  "Store",
			EntityID:    "store-1",
			Success:     true,
			CreatedAt:   time.Now().UTC(),
		},
	}
}

func (b *AuditLogBuilder) WithAdminUserID(id string) *AuditLogBuilder {
	b.log.AdminUserID = id
	return b
}

func (b *AuditLogBuilder) WithAction(action string) *AuditLogBuilder {
	b.log.Action = action
	return b
}

func (b *AuditLogBuilder) WithEntity(entityType, entityID string) *AuditLogBuilder {
	b.log.EntityType = entityType
	b.log.EntityID = entityID
	return b
}

func (b *AuditLogBuilder) WithCreatedAt(t time.Time) *AuditLogBuilder {
	b.log.CreatedAt = t
	return b
}

func (b *AuditLogBuilder) Build() auditmodels.AuditLog {
	return b.log
}
