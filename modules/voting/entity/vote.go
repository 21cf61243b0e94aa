package entity

import (
	"time"

	"github.com/google/uuid"
)

// Vote is a voter's rating of one venue option. (event_id, option_id, voter_id)
// is unique; a voter rates multiple options independently.
type Vote struct {
	EventID   uuid.UUID `db:"event_id" json:"event_id"`
	OptionID  uuid.UUID `db:"option_id" json:"option_id"`
	VoterID   uuid.UUID `db:"voter_id" json:"voter_id"`
	Value     int       `db:"value" json:"value"`
	Comment   *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// OptionTally is the aggregate result for one option
type OptionTally struct {
	OptionID        uuid.UUID `db:"option_id"`
	TotalScore      int       `db:"total_score"`
	VoteCount       int       `db:"vote_count"`
	OptionCreatedAt time.Time `db:"option_created_at"`
}
