package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is the immutable record of one privileged administrative action.
//
// Unlike authentication events, the source address is stored raw: this is an
// internal-actor trail and investigators need the real address. FailureReason
// is only ever populated on failed actions; the service enforces that.
type AuditLog struct {
	ID            uuid.UUID `json:"id"`
	AdminUserID   string    `json:"admin_user_id"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Success       bool      `json:"success"`
	Details       string    `json:"details,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty"`
	IPAddress     string    `json:"ip_address,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Filter narrows an audit-log query. Nil pointer fields mean "not filtered";
// an empty string behind a pointer is a real filter value.
type Filter struct {
	Start       *time.Time
	End         *time.Time
	AdminUserID *string
	EntityType  *string
	Action      *string
	EntityID    *string
	Success     *bool
	MaxResults  int
}

// DefaultMaxResults caps query results when the caller does not set a limit.
const DefaultMaxResults = 100

// Limit returns the effective result cap for the filter.
func (f Filter) Limit() int {
	if f.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return f.MaxResults
}

// Sensitive resource categories. Each category fixes the action and entity
// type recorded for every access, so compliance tooling can search on stable
// constants.
const (
	ActionViewCustomerProfile = "ViewCustomerProfile"
	ActionViewPayoutDetails   = "ViewPayoutDetails"
	ActionViewKYCDocument     = "ViewKYCDocument"
	ActionViewStoreDetails    = "ViewStoreDetails"

	EntityCustomerProfile = "CustomerProfile"
	EntityPayoutDetails   = "PayoutDetails"
	EntityKYCDocument     = "KYCDocument"
	EntityStoreDetails    = "StoreDetails"
)
