package entity

import (
	"time"

	"github.com/google/uuid"
)

// WaitlistStatus lifecycle of a waitlist entry
type WaitlistStatus string

const (
	WaitlistStatusWaiting  WaitlistStatus = "waiting"
	WaitlistStatusPromoted WaitlistStatus = "promoted"
	WaitlistStatusExpired  WaitlistStatus = "expired"
)

// WaitlistEntry represents a user queued for a full event.
// Ordering is priority descending, then joined_at ascending.
type WaitlistEntry struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	EventID    uuid.UUID      `json:"event_id" db:"event_id"`
	UserID     uuid.UUID      `json:"user_id" db:"user_id"`
	Status     WaitlistStatus `json:"status" db:"status"`
	Priority   int            `json:"priority" db:"priority"`
	Notes      *string        `json:"notes,omitempty" db:"notes"`
	JoinedAt   time.Time      `json:"joined_at" db:"joined_at"`
	PromotedAt *time.Time     `json:"promoted_at,omitempty" db:"promoted_at"`
}
