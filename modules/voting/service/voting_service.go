package service

import (
	"context"

	apperrors "venueplanner/core/errors"
	"venueplanner/core/logger"
	eventEntity "venueplanner/modules/event/entity"
	eventRepository "venueplanner/modules/event/repository"
	eventService "venueplanner/modules/event/service"
	"venueplanner/modules/voting/dto"
	"venueplanner/modules/voting/entity"
	"venueplanner/modules/voting/repository"

	"github.com/google/uuid"
)

// VotingService aggregates votes and finalizes the winning venue
type VotingService struct {
	repo      repository.VotingRepositoryInterface
	eventRepo eventRepository.EventRepositoryInterface
	events    eventService.EventServiceInterface
}

// VotingServiceInterface defines the service contract
type VotingServiceInterface interface {
	ListOptions(ctx context.Context, eventID uuid.UUID) ([]dto.VenueOptionResponse, *apperrors.AppError)
	CastVote(ctx context.Context, eventID, voterID uuid.UUID, req *dto.CastVoteRequest) *apperrors.AppError
	GetStatistics(ctx context.Context, eventID uuid.UUID) (*dto.VoteStatisticsResponse, *apperrors.AppError)
	Finalize(ctx context.Context, eventID, organizerID, optionID uuid.UUID) *apperrors.AppError
	ForceFinalize(ctx context.Context, event *eventEntity.Event) (*uuid.UUID, *apperrors.AppError)
}

// NewVotingService creates a new voting service
func NewVotingService(repo repository.VotingRepositoryInterface, eventRepo eventRepository.EventRepositoryInterface, events eventService.EventServiceInterface) *VotingService {
	return &VotingService{
		repo:      repo,
		eventRepo: eventRepo,
		events:    events,
	}
}

func (s *VotingService) loadEvent(ctx context.Context, eventID uuid.UUID) (*eventEntity.Event, *apperrors.AppError) {
	ev, err := s.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to get event", err)
	}
	if ev == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "Event not found", nil)
	}
	return ev, nil
}

// ListOptions returns the candidate venues for an event
func (s *VotingService) ListOptions(ctx context.Context, eventID uuid.UUID) ([]dto.VenueOptionResponse, *apperrors.AppError) {
	if _, appErr := s.loadEvent(ctx, eventID); appErr != nil {
		return nil, appErr
	}

	options, err := s.repo.GetOptionsByEventID(ctx, eventID)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to get venue options", err)
	}

	result := make([]dto.VenueOptionResponse, 0, len(options))
	for i := range options {
		result = append(result, *dto.ToVenueOptionResponse(&options[i]))
	}
	return result, nil
}

// CastVote upserts the voter's rating of one option. Rejected once the event
// has left the voting phase.
func (s *VotingService) CastVote(ctx context.Context, eventID, voterID uuid.UUID, req *dto.CastVoteRequest) *apperrors.AppError {
	ev, appErr := s.loadEvent(ctx, eventID)
	if appErr != nil {
		return appErr
	}
	if ev.Status != eventEntity.StatusVoting {
		return apperrors.NewAppError(apperrors.ErrInvalidState, "Voting is not open for this event", nil)
	}

	participant, err := s.eventRepo.GetParticipant(ctx, eventID, voterID)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to check participant", err)
	}
	if participant == nil || participant.InvitationStatus != eventEntity.InvitationStatusAccepted {
		return apperrors.NewAppError(apperrors.ErrForbidden, "Only accepted participants can vote", nil)
	}

	optionID, parseErr := uuid.Parse(req.OptionID)
	if parseErr != nil {
		return apperrors.NewAppError(apperrors.ErrInvalidInput, "Invalid option ID", parseErr)
	}
	option, err := s.repo.GetOptionByID(ctx, optionID)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to get option", err)
	}
	if option == nil || option.EventID != eventID {
		return apperrors.NewAppError(apperrors.ErrNotFound, "Option does not belong to this event", nil)
	}

	vote := &entity.Vote{
		EventID:  eventID,
		OptionID: optionID,
		VoterID:  voterID,
		Value:    req.Value,
	}
	if req.Comment != "" {
		vote.Comment = &req.Comment
	}

	if err := s.repo.UpsertVote(ctx, vote); err != nil {
		return apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to record vote", err)
	}
	return nil
}

// GetStatistics returns per-option aggregates and overall voting progress
func (s *VotingService) GetStatistics(ctx context.Context, eventID uuid.UUID) (*dto.VoteStatisticsResponse, *apperrors.AppError) {
	if _, appErr := s.loadEvent(ctx, eventID); appErr != nil {
		return nil, appErr
	}

	options, err := s.repo.GetOptionsByEventID(ctx, eventID)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to get options", err)
	}

	tallies, err := s.repo.GetOptionTallies(ctx, eventID)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to get tallies", err)
	}
	byOption := make(map[uuid.UUID]entity.OptionTally, len(tallies))
	for _, t := range tallies {
		byOption[t.OptionID] = t
	}

	votedCount, err := s.repo.CountDistinctVoters(ctx, eventID)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to count voters", err)
	}

	totalParticipants, err := s.eventRepo.CountAcceptedParticipants(ctx, eventID)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to count participants", err)
	}

	resp := &dto.VoteStatisticsResponse{
		EventID:           eventID.String(),
		TotalParticipants: totalParticipants,
		VotedCount:        votedCount,
	}
	if totalParticipants > 0 {
		resp.VoteProgress = float64(votedCount) / float64(totalParticipants) * 100
	}

	for i := range options {
		opt := &options[i]
		stat := dto.OptionStatistics{
			OptionID: opt.ID.String(),
			Name:     opt.Name,
			AIScore:  opt.AIScore,
		}
		if tally, ok := byOption[opt.ID]; ok {
			stat.TotalScore = tally.TotalScore
			stat.VoteCount = tally.VoteCount
		}
		resp.Options = append(resp.Options, stat)
	}

	return resp, nil
}

// resolvePlaceID returns the place to store as the event's final venue.
// External suggestions have no catalog place, so the option id stands in.
func resolvePlaceID(option *entity.VenueOption) uuid.UUID {
	if option.PlaceID != nil {
		return *option.PlaceID
	}
	return option.ID
}

// Finalize is the explicit organizer action fixing the venue
func (s *VotingService) Finalize(ctx context.Context, eventID, organizerID, optionID uuid.UUID) *apperrors.AppError {
	ev, appErr := s.loadEvent(ctx, eventID)
	if appErr != nil {
		return appErr
	}
	if ev.OrganizerID != organizerID {
		return apperrors.NewAppError(apperrors.ErrForbidden, "Only the organizer can finalize the event", nil)
	}

	option, err := s.repo.GetOptionByID(ctx, optionID)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to get option", err)
	}
	if option == nil || option.EventID != eventID {
		return apperrors.NewAppError(apperrors.ErrNotFound, "Option does not belong to this event", nil)
	}
	if option.VerificationStatus != nil && *option.VerificationStatus == entity.VerificationRejected {
		return apperrors.NewAppError(apperrors.ErrInvalidInput, "This place failed verification and cannot be selected", nil)
	}

	return s.events.FinalizeVenue(ctx, ev, resolvePlaceID(option))
}

// ForceFinalize picks the highest-aggregate-score option and confirms it.
// Ties break by earliest option creation. Returns a nil option id when no
// votes exist, leaving the decision (cancel) to the caller.
func (s *VotingService) ForceFinalize(ctx context.Context, event *eventEntity.Event) (*uuid.UUID, *apperrors.AppError) {
	tallies, err := s.repo.GetOptionTallies(ctx, event.ID)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to get tallies", err)
	}
	if len(tallies) == 0 {
		return nil, nil
	}

	// Tallies come back ordered: total desc, option creation asc
	winner := tallies[0]

	option, err := s.repo.GetOptionByID(ctx, winner.OptionID)
	if err != nil || option == nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to resolve winning option", err)
	}

	if appErr := s.events.FinalizeVenue(ctx, event, resolvePlaceID(option)); appErr != nil {
		return nil, appErr
	}

	logger.Info("VotingService:ForceFinalize",
		"event_id", event.ID.String(),
		"option_id", winner.OptionID.String(),
		"total_score", winner.TotalScore)
	return &winner.OptionID, nil
}
