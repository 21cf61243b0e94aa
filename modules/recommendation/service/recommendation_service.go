package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"venueplanner/core/cache"
	apperrors "venueplanner/core/errors"
	"venueplanner/core/logger"
	"venueplanner/core/queue"
	eventEntity "venueplanner/modules/event/entity"
	eventRepository "venueplanner/modules/event/repository"
	eventService "venueplanner/modules/event/service"
	"venueplanner/modules/recommendation/client"
	"venueplanner/modules/recommendation/dto"
	votingEntity "venueplanner/modules/voting/entity"
	votingRepository "venueplanner/modules/voting/repository"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const progressTTL = 24 * time.Hour

// RecommendationService coordinates the external venue analysis: it moves the
// event into the analysis phase, hands the work to a background task, and
// stores the resulting options before opening voting.
type RecommendationService struct {
	ai         client.AIClientInterface
	cache      cache.Cache
	queue      queue.IQueue
	eventRepo  eventRepository.EventRepositoryInterface
	events     eventService.EventServiceInterface
	votingRepo votingRepository.VotingRepositoryInterface
}

// RecommendationServiceInterface defines the service contract
type RecommendationServiceInterface interface {
	Trigger(ctx context.Context, eventID, organizerID uuid.UUID) (*dto.TriggerResponse, *apperrors.AppError)
	GetProgress(ctx context.Context, eventID uuid.UUID) (*dto.ProgressRecord, *apperrors.AppError)
	HandleGenerateTask(ctx context.Context, task *asynq.Task) error
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(
	ai client.AIClientInterface,
	c cache.Cache,
	q queue.IQueue,
	eventRepo eventRepository.EventRepositoryInterface,
	events eventService.EventServiceInterface,
	votingRepo votingRepository.VotingRepositoryInterface,
) *RecommendationService {
	return &RecommendationService{
		ai:         ai,
		cache:      c,
		queue:      q,
		eventRepo:  eventRepo,
		events:     events,
		votingRepo: votingRepo,
	}
}

func progressKey(eventID string) string {
	return "recommendation:progress:" + eventID
}

func (s *RecommendationService) writeProgress(ctx context.Context, record *dto.ProgressRecord) {
	if err := s.cache.Set(ctx, progressKey(record.EventID), record, progressTTL); err != nil {
		logger.Warn("RecommendationService:writeProgress", "error", err)
	}
}

// Trigger starts the analysis. The lifecycle guard (state, organizer, quorum)
// lives in the event service; this only schedules the work once the
// transition commits.
func (s *RecommendationService) Trigger(ctx context.Context, eventID, organizerID uuid.UUID) (*dto.TriggerResponse, *apperrors.AppError) {
	ev, appErr := s.events.StartRecommendation(ctx, eventID, organizerID)
	if appErr != nil {
		return nil, appErr
	}

	startedAt := time.Now()
	if ev.AIAnalysisStartedAt != nil {
		startedAt = *ev.AIAnalysisStartedAt
	}

	s.writeProgress(ctx, &dto.ProgressRecord{
		EventID:   eventID.String(),
		Phase:     dto.PhaseQueued,
		StartedAt: startedAt,
	})

	if err := s.queue.EnqueueRecommendation(ctx, eventID.String()); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to schedule recommendation analysis", err)
	}

	return &dto.TriggerResponse{
		EventID:   eventID.String(),
		Status:    string(ev.Status),
		StartedAt: startedAt,
	}, nil
}

// GetProgress reads the progress record; when none exists the event's own
// status answers instead.
func (s *RecommendationService) GetProgress(ctx context.Context, eventID uuid.UUID) (*dto.ProgressRecord, *apperrors.AppError) {
	raw, err := s.cache.Get(ctx, progressKey(eventID.String()))
	if err == nil && raw != "" {
		var record dto.ProgressRecord
		if jsonErr := json.Unmarshal([]byte(raw), &record); jsonErr == nil {
			return &record, nil
		}
	}

	ev, err := s.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to get event", err)
	}
	if ev == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "Event not found", nil)
	}

	record := &dto.ProgressRecord{EventID: eventID.String()}
	switch ev.Status {
	case eventEntity.StatusAIRecommending:
		record.Phase = dto.PhaseAnalyzing
		if ev.AIAnalysisStartedAt != nil {
			record.StartedAt = *ev.AIAnalysisStartedAt
		}
	case eventEntity.StatusVoting, eventEntity.StatusConfirmed, eventEntity.StatusCompleted:
		record.Phase = dto.PhaseCompleted
	default:
		record.Phase = dto.PhaseQueued
	}
	return record, nil
}

// HandleGenerateTask is the asynq worker for recommendation:generate. Errors
// returned here make asynq retry; a nil return acknowledges the task. Results
// arriving after the event left the analysis phase are discarded.
func (s *RecommendationService) HandleGenerateTask(ctx context.Context, task *asynq.Task) error {
	var payload queue.RecommendationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("RecommendationService:HandleGenerateTask payload", err)
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}
	eventID, err := uuid.Parse(payload.EventID)
	if err != nil {
		return fmt.Errorf("parse event id: %w: %w", err, asynq.SkipRetry)
	}

	ev, err := s.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		return err
	}
	if ev == nil || ev.Status != eventEntity.StatusAIRecommending {
		// Cancelled or already advanced while queued. Nothing to do.
		logger.Info("RecommendationService:HandleGenerateTask stale task dropped",
			"event_id", payload.EventID)
		s.writeProgress(ctx, &dto.ProgressRecord{
			EventID: payload.EventID,
			Phase:   dto.PhaseDiscarded,
		})
		return nil
	}

	startedAt := time.Now()
	if ev.AIAnalysisStartedAt != nil {
		startedAt = *ev.AIAnalysisStartedAt
	}
	s.writeProgress(ctx, &dto.ProgressRecord{
		EventID:   payload.EventID,
		Phase:     dto.PhaseAnalyzing,
		StartedAt: startedAt,
	})

	result, err := s.analyze(ctx, ev)
	if err != nil {
		phase := dto.PhaseFailed
		if errors.Is(err, client.ErrAnalysisTimeout) {
			logger.Warn("RecommendationService:HandleGenerateTask timeout",
				"event_id", payload.EventID)
		}
		s.writeProgress(ctx, &dto.ProgressRecord{
			EventID:   payload.EventID,
			Phase:     phase,
			StartedAt: startedAt,
			LastError: err.Error(),
		})
		return err
	}
	if len(result.Suggestions) == 0 {
		s.writeProgress(ctx, &dto.ProgressRecord{
			EventID:   payload.EventID,
			Phase:     dto.PhaseFailed,
			StartedAt: startedAt,
			LastError: "no suggestions returned",
		})
		return fmt.Errorf("recommendation service returned no suggestions for event %s", payload.EventID)
	}

	// Re-check: the event may have been cancelled during the long analysis.
	ev, err = s.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		return err
	}
	if ev == nil || ev.Status != eventEntity.StatusAIRecommending {
		logger.Info("RecommendationService:HandleGenerateTask late result discarded",
			"event_id", payload.EventID)
		s.writeProgress(ctx, &dto.ProgressRecord{
			EventID: payload.EventID,
			Phase:   dto.PhaseDiscarded,
		})
		return nil
	}

	options := toVenueOptions(eventID, result.Suggestions)
	if err := s.votingRepo.CreateOptions(ctx, options); err != nil {
		return err
	}

	if appErr := s.events.OpenVoting(ctx, ev); appErr != nil {
		if appErr.Code == apperrors.ErrStaleVersion || appErr.Code == apperrors.ErrInvalidState {
			// Lost the race to a concurrent transition. Options stay for audit.
			logger.Warn("RecommendationService:HandleGenerateTask transition lost",
				"event_id", payload.EventID,
				"code", appErr.Code)
			return nil
		}
		return appErr
	}

	completedAt := time.Now()
	s.writeProgress(ctx, &dto.ProgressRecord{
		EventID:     payload.EventID,
		Phase:       dto.PhaseCompleted,
		StartedAt:   startedAt,
		CompletedAt: &completedAt,
		OptionCount: len(options),
	})

	logger.Info("RecommendationService:HandleGenerateTask completed",
		"event_id", payload.EventID,
		"options", len(options))
	return nil
}

func (s *RecommendationService) analyze(ctx context.Context, ev *eventEntity.Event) (*client.AnalyzeResponse, error) {
	participants, err := s.eventRepo.GetParticipantsByEventID(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	participantIDs := make([]string, 0, len(participants))
	for _, p := range participants {
		if p.InvitationStatus == eventEntity.InvitationStatusAccepted {
			participantIDs = append(participantIDs, p.UserID.String())
		}
	}

	req := &client.AnalyzeRequest{
		EventID:           ev.ID.String(),
		Title:             ev.Title,
		ExpectedAttendees: ev.ExpectedAttendees,
		ParticipantIDs:    participantIDs,
	}
	if ev.Description != nil {
		req.Description = *ev.Description
	}
	if ev.ScheduledAt != nil {
		req.ScheduledAt = ev.ScheduledAt.Format(time.RFC3339)
	}

	return s.ai.Analyze(ctx, req)
}

func toVenueOptions(eventID uuid.UUID, suggestions []client.VenueSuggestion) []votingEntity.VenueOption {
	options := make([]votingEntity.VenueOption, 0, len(suggestions))
	for _, sg := range suggestions {
		opt := votingEntity.VenueOption{
			ID:        uuid.New(),
			EventID:   eventID,
			Name:      sg.Name,
			CreatedAt: time.Now(),
		}
		score := sg.Score
		opt.AIScore = &score
		if sg.PlaceID != "" {
			if placeID, err := uuid.Parse(sg.PlaceID); err == nil {
				opt.PlaceID = &placeID
			}
		}
		if sg.Address != "" {
			address := sg.Address
			opt.Address = &address
		}
		if sg.VerificationStatus != "" {
			status := votingEntity.VerificationStatus(sg.VerificationStatus)
			opt.VerificationStatus = &status
		}
		options = append(options, opt)
	}
	return options
}
