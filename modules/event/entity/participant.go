package entity

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus represents a participant's response to an invitation
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
)

// Participant links a user to an event. (event_id, user_id) is unique.
type Participant struct {
	EventID          uuid.UUID        `db:"event_id" json:"event_id"`
	UserID           uuid.UUID        `db:"user_id" json:"user_id"`
	InvitationStatus InvitationStatus `db:"invitation_status" json:"invitation_status"`
	RespondedAt      *time.Time       `db:"responded_at" json:"responded_at,omitempty"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
}
