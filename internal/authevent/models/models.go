package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies an authentication-related occurrence.
type EventType string

const (
	EventLogin          EventType = "login"
	EventLogout         EventType = "logout"
	EventLockout        EventType = "lockout"
	EventPasswordReset  EventType = "password_reset"
	EventPasswordChange EventType = "password_change"
	EventMFAChallenge   EventType = "mfa_challenge"
)

// Event is the immutable record of one authentication occurrence. It is
// created once by the recorder and never mutated; stores must treat it as
// append-only.
//
// The source address is stored only as a one-way hash (IPHash). The raw
// address never reaches persistence for authentication events.
type Event struct {
	ID        uuid.UUID  `json:"id"`
	Type      EventType  `json:"event_type"`
	Email     string     `json:"email"`
	Success   bool       `json:"success"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	UserRole  string     `json:"user_role,omitempty"`
	IPHash    string     `json:"ip_hash,omitempty"`
	UserAgent string     `json:"user_agent,omitempty"`
	Device    string     `json:"device,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Statistics summarizes authentication activity over a window. Derived, never
// persisted; the window bounds are echoed from the request unchanged.
type Statistics struct {
	WindowStart      time.Time `json:"window_start"`
	WindowEnd        time.Time `json:"window_end"`
	SuccessfulLogins int       `json:"successful_logins"`
	FailedLogins     int       `json:"failed_logins"`
	Lockouts         int       `json:"lockouts"`
	PasswordResets   int       `json:"password_resets"`
}

// Filter narrows an authentication-event listing. Nil pointer fields mean
// "not filtered" - an explicit empty value is a real filter, so optional
// fields must be pointers rather than zero-value sentinels.
type Filter struct {
	Start      time.Time
	End        time.Time
	Type       *EventType
	UserRole   *string
	UserID     *uuid.UUID
	Success    *bool
	MaxResults int
}

// DefaultMaxResults caps event listings when the caller does not set a limit.
const DefaultMaxResults = 100

// Limit returns the effective result cap for the filter.
func (f Filter) Limit() int {
	if f.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return f.MaxResults
}
