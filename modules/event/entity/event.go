package entity

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus represents the lifecycle phase of an event
type EventStatus string

const (
	StatusDraft                EventStatus = "draft"
	StatusPlanning             EventStatus = "planning"
	StatusInviting             EventStatus = "inviting"
	StatusGatheringPreferences EventStatus = "gathering_preferences"
	StatusAIRecommending       EventStatus = "ai_recommending"
	StatusVoting               EventStatus = "voting"
	StatusConfirmed            EventStatus = "confirmed"
	StatusCompleted            EventStatus = "completed"
	StatusCancelled            EventStatus = "cancelled"
)

// IsTerminal reports whether the status admits no further transitions
func (s EventStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// EventPrivacy controls who can see an event
type EventPrivacy string

const (
	PrivacyPublic  EventPrivacy = "public"
	PrivacyPrivate EventPrivacy = "private"
)

// Event represents a planned group outing
type Event struct {
	ID                  uuid.UUID    `db:"id" json:"id"`
	OrganizerID         uuid.UUID    `db:"organizer_id" json:"organizer_id"`
	Title               string       `db:"title" json:"title"`
	Description         *string      `db:"description" json:"description,omitempty"`
	Slug                string       `db:"slug" json:"slug"`
	InviteCode          string       `db:"invite_code" json:"invite_code"`
	Status              EventStatus  `db:"status" json:"status"`
	ScheduledAt         *time.Time   `db:"scheduled_at" json:"scheduled_at,omitempty"`
	DurationMinutes     int          `db:"duration_minutes" json:"duration_minutes"`
	ExpectedAttendees   int          `db:"expected_attendees" json:"expected_attendees"`
	MaxAttendees        int          `db:"max_attendees" json:"max_attendees"`
	AcceptanceThreshold float64      `db:"acceptance_threshold" json:"acceptance_threshold"`
	RSVPDeadline        *time.Time   `db:"rsvp_deadline" json:"rsvp_deadline,omitempty"`
	VotingDeadline      *time.Time   `db:"voting_deadline" json:"voting_deadline,omitempty"`
	FinalPlaceID        *uuid.UUID   `db:"final_place_id" json:"final_place_id,omitempty"`
	Privacy             EventPrivacy `db:"privacy" json:"privacy"`
	AIAnalysisStartedAt *time.Time   `db:"ai_analysis_started_at" json:"ai_analysis_started_at,omitempty"`
	CancelReason        *string      `db:"cancel_reason" json:"cancel_reason,omitempty"`
	Version             int          `db:"version" json:"version"`
	ClaimedAt           *time.Time   `db:"claimed_at" json:"-"`
	CreatedAt           time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time    `db:"updated_at" json:"updated_at"`
}
