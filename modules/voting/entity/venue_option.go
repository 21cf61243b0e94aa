package entity

import (
	"time"

	"github.com/google/uuid"
)

// VerificationStatus is the moderation state of a system-catalog place.
// External suggestions carry no verification status.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// VenueOption is a candidate venue for an event
type VenueOption struct {
	ID                 uuid.UUID           `db:"id" json:"id"`
	EventID            uuid.UUID           `db:"event_id" json:"event_id"`
	PlaceID            *uuid.UUID          `db:"place_id" json:"place_id,omitempty"`
	Name               string              `db:"name" json:"name"`
	Address            *string             `db:"address" json:"address,omitempty"`
	AIScore            *float64            `db:"ai_score" json:"ai_score,omitempty"`
	VerificationStatus *VerificationStatus `db:"verification_status" json:"verification_status,omitempty"`
	CreatedAt          time.Time           `db:"created_at" json:"created_at"`
}
