package dto

import (
	"time"

	"venueplanner/modules/voting/entity"
)

// ===================== Request DTOs =====================

// CastVoteRequest for rating a venue option
type CastVoteRequest struct {
	OptionID string `json:"option_id" validate:"required,uuid"`
	Value    int    `json:"value" validate:"required,min=1,max=5"`
	Comment  string `json:"comment"`
}

// FinalizeRequest for fixing the venue
type FinalizeRequest struct {
	OptionID string `json:"option_id" validate:"required,uuid"`
}

// ===================== Response DTOs =====================

// VenueOptionResponse for a single candidate venue
type VenueOptionResponse struct {
	ID                 string    `json:"id"`
	PlaceID            string    `json:"place_id,omitempty"`
	Name               string    `json:"name"`
	Address            string    `json:"address,omitempty"`
	AIScore            *float64  `json:"ai_score,omitempty"`
	VerificationStatus string    `json:"verification_status,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// OptionStatistics aggregates votes for one option
type OptionStatistics struct {
	OptionID   string   `json:"option_id"`
	Name       string   `json:"name"`
	AIScore    *float64 `json:"ai_score,omitempty"`
	TotalScore int      `json:"total_score"`
	VoteCount  int      `json:"vote_count"`
}

// VoteStatisticsResponse for GET statistics
type VoteStatisticsResponse struct {
	EventID           string             `json:"event_id"`
	TotalParticipants int                `json:"total_participants"`
	VotedCount        int                `json:"voted_count"`
	VoteProgress      float64            `json:"vote_progress"`
	Options           []OptionStatistics `json:"options"`
}

// ===================== Mapper Functions =====================

// ToVenueOptionResponse maps entity to DTO
func ToVenueOptionResponse(o *entity.VenueOption) *VenueOptionResponse {
	resp := &VenueOptionResponse{
		ID:        o.ID.String(),
		Name:      o.Name,
		AIScore:   o.AIScore,
		CreatedAt: o.CreatedAt,
	}
	if o.PlaceID != nil {
		resp.PlaceID = o.PlaceID.String()
	}
	if o.Address != nil {
		resp.Address = *o.Address
	}
	if o.VerificationStatus != nil {
		resp.VerificationStatus = string(*o.VerificationStatus)
	}
	return resp
}
