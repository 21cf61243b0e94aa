package service

import (
	"context"
	"fmt"
	"time"

	"venueplanner/core/config"
	"venueplanner/core/constants"
	apperrors "venueplanner/core/errors"
	"venueplanner/core/logger"
	eventEntity "venueplanner/modules/event/entity"
	eventRepository "venueplanner/modules/event/repository"
	eventService "venueplanner/modules/event/service"
	votingService "venueplanner/modules/voting/service"

	"github.com/hibiken/asynq"
)

// DeadlineScheduler enforces event deadlines in the background. Each sweep
// claims the rows it touches so overlapping sweeps from multiple instances
// never process the same event twice.
type DeadlineScheduler struct {
	cfg       *config.Config
	eventRepo eventRepository.EventRepositoryInterface
	events    eventService.EventServiceInterface
	voting    votingService.VotingServiceInterface
}

// DeadlineSchedulerInterface defines the scheduler contract
type DeadlineSchedulerInterface interface {
	Sweep(ctx context.Context) error
	HandleSweepTask(ctx context.Context, task *asynq.Task) error
}

// NewDeadlineScheduler creates a new scheduler
func NewDeadlineScheduler(
	cfg *config.Config,
	eventRepo eventRepository.EventRepositoryInterface,
	events eventService.EventServiceInterface,
	voting votingService.VotingServiceInterface,
) *DeadlineScheduler {
	return &DeadlineScheduler{
		cfg:       cfg,
		eventRepo: eventRepo,
		events:    events,
		voting:    voting,
	}
}

// HandleSweepTask is the asynq handler for the periodic deadline:sweep task
func (s *DeadlineScheduler) HandleSweepTask(ctx context.Context, task *asynq.Task) error {
	return s.Sweep(ctx)
}

// Sweep runs all three deadline passes. Per-event failures are logged and
// skipped so one bad row never stalls the rest of the sweep.
func (s *DeadlineScheduler) Sweep(ctx context.Context) error {
	now := time.Now()

	if err := s.sweepRSVPDeadlines(ctx, now); err != nil {
		return fmt.Errorf("rsvp sweep: %w", err)
	}
	if err := s.sweepVotingDeadlines(ctx, now); err != nil {
		return fmt.Errorf("voting sweep: %w", err)
	}
	if err := s.sweepCompletions(ctx, now); err != nil {
		return fmt.Errorf("completion sweep: %w", err)
	}
	return nil
}

// withClaim runs fn only if this instance wins the row claim. The claim is
// released afterwards; an expired lease can be taken over by a later sweep.
func (s *DeadlineScheduler) withClaim(ctx context.Context, ev *eventEntity.Event, fn func() *apperrors.AppError) {
	claimed, err := s.eventRepo.ClaimForProcessing(ctx, ev.ID, constants.ClaimLeaseSeconds)
	if err != nil {
		logger.Error("DeadlineScheduler:withClaim", err)
		return
	}
	if !claimed {
		return
	}
	defer func() {
		if err := s.eventRepo.ReleaseClaim(ctx, ev.ID); err != nil {
			logger.Error("DeadlineScheduler:ReleaseClaim", err)
		}
	}()

	if appErr := fn(); appErr != nil {
		// Stale version means another writer got there first, which is fine.
		if appErr.Code == apperrors.ErrStaleVersion {
			logger.Info("DeadlineScheduler:withClaim lost race",
				"event_id", ev.ID.String())
			return
		}
		logger.Error("DeadlineScheduler:withClaim",
			"event_id", ev.ID.String(),
			"code", appErr.Code,
			"error", appErr)
	}
}

// sweepRSVPDeadlines cancels events whose RSVP deadline passed with too few
// accepted participants to ever be viable.
func (s *DeadlineScheduler) sweepRSVPDeadlines(ctx context.Context, now time.Time) error {
	expired, err := s.eventRepo.GetRSVPExpiredEvents(ctx, now)
	if err != nil {
		return err
	}

	for i := range expired {
		ev := &expired[i]
		s.withClaim(ctx, ev, func() *apperrors.AppError {
			accepted, err := s.eventRepo.CountAcceptedParticipants(ctx, ev.ID)
			if err != nil {
				return apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to count participants", err)
			}
			if accepted >= constants.MinAcceptedFloor {
				// Enough interest to keep going; the organizer decides the pace.
				return nil
			}
			logger.Info("DeadlineScheduler:sweepRSVPDeadlines cancelling",
				"event_id", ev.ID.String(),
				"accepted", accepted)
			return s.events.SystemCancel(ctx, ev, "RSVP deadline passed without enough accepted participants")
		})
	}
	return nil
}

// sweepVotingDeadlines finalizes or cancels events whose voting window closed
func (s *DeadlineScheduler) sweepVotingDeadlines(ctx context.Context, now time.Time) error {
	expired, err := s.eventRepo.GetVotingExpiredEvents(ctx, now)
	if err != nil {
		return err
	}

	for i := range expired {
		ev := &expired[i]
		s.withClaim(ctx, ev, func() *apperrors.AppError {
			if !s.cfg.ForceFinalizeOnDeadline {
				logger.Warn("DeadlineScheduler:sweepVotingDeadlines deadline passed, forced finalize disabled",
					"event_id", ev.ID.String())
				return nil
			}

			winner, appErr := s.voting.ForceFinalize(ctx, ev)
			if appErr != nil {
				return appErr
			}
			if winner == nil {
				logger.Info("DeadlineScheduler:sweepVotingDeadlines no votes, cancelling",
					"event_id", ev.ID.String())
				return s.events.SystemCancel(ctx, ev, "Voting deadline passed without any votes")
			}
			logger.Info("DeadlineScheduler:sweepVotingDeadlines finalized",
				"event_id", ev.ID.String(),
				"option_id", winner.String())
			return nil
		})
	}
	return nil
}

// sweepCompletions completes confirmed events well past their scheduled time
func (s *DeadlineScheduler) sweepCompletions(ctx context.Context, now time.Time) error {
	cutoff := now.Add(-time.Duration(constants.CompletionBufferHours) * time.Hour)
	completable, err := s.eventRepo.GetCompletableEvents(ctx, cutoff)
	if err != nil {
		return err
	}

	for i := range completable {
		ev := &completable[i]
		s.withClaim(ctx, ev, func() *apperrors.AppError {
			logger.Info("DeadlineScheduler:sweepCompletions completing",
				"event_id", ev.ID.String())
			return s.events.CompleteEvent(ctx, ev)
		})
	}
	return nil
}
