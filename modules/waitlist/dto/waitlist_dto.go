package dto

import (
	"time"

	"venueplanner/modules/waitlist/entity"
)

// ===================== Request DTOs =====================

// JoinWaitlistRequest for joining a full event's queue
type JoinWaitlistRequest struct {
	Priority int    `json:"priority" validate:"min=0,max=100"`
	Notes    string `json:"notes" validate:"max=500"`
}

// ===================== Response DTOs =====================

// WaitlistEntryResponse for a single entry
type WaitlistEntryResponse struct {
	ID         string     `json:"id"`
	EventID    string     `json:"event_id"`
	UserID     string     `json:"user_id"`
	Status     string     `json:"status"`
	Priority   int        `json:"priority"`
	Position   int        `json:"position,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	JoinedAt   time.Time  `json:"joined_at"`
	PromotedAt *time.Time `json:"promoted_at,omitempty"`
}

// ===================== Mapper Functions =====================

// ToWaitlistEntryResponse maps entity to DTO. Position is 1-based within the
// waiting queue; zero means not applicable.
func ToWaitlistEntryResponse(e *entity.WaitlistEntry, position int) *WaitlistEntryResponse {
	resp := &WaitlistEntryResponse{
		ID:         e.ID.String(),
		EventID:    e.EventID.String(),
		UserID:     e.UserID.String(),
		Status:     string(e.Status),
		Priority:   e.Priority,
		Position:   position,
		JoinedAt:   e.JoinedAt,
		PromotedAt: e.PromotedAt,
	}
	if e.Notes != nil {
		resp.Notes = *e.Notes
	}
	return resp
}
