package repository

import (
	"context"
	"database/sql"

	"venueplanner/core/database"
	"venueplanner/core/logger"
	"venueplanner/modules/voting/entity"

	"github.com/google/uuid"
)

// VotingRepository handles venue option and vote database operations
type VotingRepository struct {
	DB database.IDatabase
}

// NewVotingRepository creates a new repository instance
func NewVotingRepository(db database.IDatabase) *VotingRepository {
	return &VotingRepository{DB: db}
}

// VotingRepositoryInterface defines the repository contract
type VotingRepositoryInterface interface {
	CreateOptions(ctx context.Context, options []entity.VenueOption) error
	GetOptionByID(ctx context.Context, optionID uuid.UUID) (*entity.VenueOption, error)
	GetOptionsByEventID(ctx context.Context, eventID uuid.UUID) ([]entity.VenueOption, error)

	UpsertVote(ctx context.Context, vote *entity.Vote) error
	GetOptionTallies(ctx context.Context, eventID uuid.UUID) ([]entity.OptionTally, error)
	CountDistinctVoters(ctx context.Context, eventID uuid.UUID) (int, error)
}

// ===================== Venue options =====================

func (r *VotingRepository) CreateOptions(ctx context.Context, options []entity.VenueOption) error {
	query := `
		INSERT INTO venue_options (event_id, place_id, name, address, ai_score, verification_status)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, opt := range options {
		if err := r.DB.ExecContext(ctx, query,
			opt.EventID, opt.PlaceID, opt.Name, opt.Address, opt.AIScore, opt.VerificationStatus); err != nil {
			logger.Error("VotingRepository:CreateOptions", err)
			return err
		}
	}
	return nil
}

func (r *VotingRepository) GetOptionByID(ctx context.Context, optionID uuid.UUID) (*entity.VenueOption, error) {
	query := `
		SELECT id, event_id, place_id, name, address, ai_score, verification_status, created_at
		FROM venue_options WHERE id = $1`

	var option entity.VenueOption
	err := r.DB.GetContext(ctx, &option, query, optionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("VotingRepository:GetOptionByID", err)
		return nil, err
	}
	return &option, nil
}

func (r *VotingRepository) GetOptionsByEventID(ctx context.Context, eventID uuid.UUID) ([]entity.VenueOption, error) {
	query := `
		SELECT id, event_id, place_id, name, address, ai_score, verification_status, created_at
		FROM venue_options
		WHERE event_id = $1
		ORDER BY ai_score DESC NULLS LAST, created_at`

	var options []entity.VenueOption
	err := r.DB.SelectContext(ctx, &options, query, eventID)
	if err != nil {
		logger.Error("VotingRepository:GetOptionsByEventID", err)
		return nil, err
	}
	return options, nil
}

// ===================== Votes =====================

// UpsertVote inserts or updates the voter's rating for an option. The unique
// key makes concurrent casts from different voters safe without coordination.
func (r *VotingRepository) UpsertVote(ctx context.Context, vote *entity.Vote) error {
	query := `
		INSERT INTO votes (event_id, option_id, voter_id, value, comment)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id, option_id, voter_id)
		DO UPDATE SET value = $4, comment = $5, updated_at = NOW()`

	if err := r.DB.ExecContext(ctx, query,
		vote.EventID, vote.OptionID, vote.VoterID, vote.Value, vote.Comment); err != nil {
		logger.Error("VotingRepository:UpsertVote", err)
		return err
	}
	return nil
}

func (r *VotingRepository) GetOptionTallies(ctx context.Context, eventID uuid.UUID) ([]entity.OptionTally, error) {
	query := `
		SELECT v.option_id,
		       COALESCE(SUM(v.value), 0) AS total_score,
		       COUNT(*) AS vote_count,
		       o.created_at AS option_created_at
		FROM votes v
		JOIN venue_options o ON o.id = v.option_id
		WHERE v.event_id = $1
		GROUP BY v.option_id, o.created_at
		ORDER BY total_score DESC, option_created_at ASC`

	var tallies []entity.OptionTally
	err := r.DB.SelectContext(ctx, &tallies, query, eventID)
	if err != nil {
		logger.Error("VotingRepository:GetOptionTallies", err)
		return nil, err
	}
	return tallies, nil
}

func (r *VotingRepository) CountDistinctVoters(ctx context.Context, eventID uuid.UUID) (int, error) {
	query := `SELECT COUNT(DISTINCT voter_id) FROM votes WHERE event_id = $1`

	var count int
	err := r.DB.GetContext(ctx, &count, query, eventID)
	if err != nil {
		logger.Error("VotingRepository:CountDistinctVoters", err)
		return 0, err
	}
	return count, nil
}
