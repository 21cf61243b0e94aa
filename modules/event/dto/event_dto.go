package dto

import (
	"time"

	"venueplanner/modules/event/entity"
)

// ===================== Request DTOs =====================

// CreateEventRequest for creating a new event
type CreateEventRequest struct {
	Title               string     `json:"title" validate:"required"`
	Description         string     `json:"description"`
	ScheduledAt         *time.Time `json:"scheduled_at"`
	DurationMinutes     int        `json:"duration_minutes" validate:"omitempty,min=15,max=1440"`
	ExpectedAttendees   int        `json:"expected_attendees" validate:"required,min=1"`
	MaxAttendees        int        `json:"max_attendees" validate:"omitempty,min=1"`
	AcceptanceThreshold float64    `json:"acceptance_threshold" validate:"omitempty,gt=0,lte=1"`
	RSVPDeadline        *time.Time `json:"rsvp_deadline"`
	VotingDeadline      *time.Time `json:"voting_deadline"`
	FinalPlaceID        *string    `json:"final_place_id"` // direct-confirm shortcut, skips recommendation and voting
	Privacy             string     `json:"privacy" validate:"omitempty,oneof=public private"`
	Draft               bool       `json:"draft"` // keep the event unpublished until invitations go out
}

// InviteParticipantsRequest for sending invitations
type InviteParticipantsRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1"`
}

// RespondInvitationRequest for accepting or declining an invitation
type RespondInvitationRequest struct {
	Accept bool `json:"accept"`
}

// CancelEventRequest for cancelling an event
type CancelEventRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// ===================== Response DTOs =====================

// ParticipantResponse for participant status
type ParticipantResponse struct {
	UserID           string     `json:"user_id"`
	InvitationStatus string     `json:"invitation_status"`
	RespondedAt      *time.Time `json:"responded_at,omitempty"`
}

// EventResponse for event details
type EventResponse struct {
	ID                  string                `json:"id"`
	OrganizerID         string                `json:"organizer_id"`
	Title               string                `json:"title"`
	Description         string                `json:"description,omitempty"`
	Slug                string                `json:"slug"`
	InviteCode          string                `json:"invite_code"`
	Status              string                `json:"status"`
	ScheduledAt         *time.Time            `json:"scheduled_at,omitempty"`
	DurationMinutes     int                   `json:"duration_minutes"`
	ExpectedAttendees   int                   `json:"expected_attendees"`
	MaxAttendees        int                   `json:"max_attendees"`
	AcceptanceThreshold float64               `json:"acceptance_threshold"`
	RSVPDeadline        *time.Time            `json:"rsvp_deadline,omitempty"`
	VotingDeadline      *time.Time            `json:"voting_deadline,omitempty"`
	FinalPlaceID        string                `json:"final_place_id,omitempty"`
	Privacy             string                `json:"privacy"`
	AcceptedCount       int                   `json:"accepted_count"`
	Quorum              int                   `json:"quorum"`
	CancelReason        string                `json:"cancel_reason,omitempty"`
	Participants        []ParticipantResponse `json:"participants,omitempty"`
	CreatedAt           time.Time             `json:"created_at"`
}

// ===================== Mapper Functions =====================

// ToEventResponse maps entity to DTO
func ToEventResponse(e *entity.Event, participants []entity.Participant, acceptedCount, quorum int) *EventResponse {
	resp := &EventResponse{
		ID:                  e.ID.String(),
		OrganizerID:         e.OrganizerID.String(),
		Title:               e.Title,
		Slug:                e.Slug,
		InviteCode:          e.InviteCode,
		Status:              string(e.Status),
		ScheduledAt:         e.ScheduledAt,
		DurationMinutes:     e.DurationMinutes,
		ExpectedAttendees:   e.ExpectedAttendees,
		MaxAttendees:        e.MaxAttendees,
		AcceptanceThreshold: e.AcceptanceThreshold,
		RSVPDeadline:        e.RSVPDeadline,
		VotingDeadline:      e.VotingDeadline,
		Privacy:             string(e.Privacy),
		AcceptedCount:       acceptedCount,
		Quorum:              quorum,
		CreatedAt:           e.CreatedAt,
	}

	if e.Description != nil {
		resp.Description = *e.Description
	}
	if e.FinalPlaceID != nil {
		resp.FinalPlaceID = e.FinalPlaceID.String()
	}
	if e.CancelReason != nil {
		resp.CancelReason = *e.CancelReason
	}

	for _, p := range participants {
		resp.Participants = append(resp.Participants, ParticipantResponse{
			UserID:           p.UserID.String(),
			InvitationStatus: string(p.InvitationStatus),
			RespondedAt:      p.RespondedAt,
		})
	}

	return resp
}
