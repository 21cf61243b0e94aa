package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "venueplanner/core/errors"
	"venueplanner/core/logger"
	eventEntity "venueplanner/modules/event/entity"
	eventRepository "venueplanner/modules/event/repository"
	"venueplanner/modules/waitlist/dto"
	"venueplanner/modules/waitlist/entity"
	"venueplanner/modules/waitlist/repository"

	"github.com/google/uuid"
)

// WaitlistService manages the overflow queue for full events
type WaitlistService struct {
	repo      repository.WaitlistRepositoryInterface
	eventRepo eventRepository.EventRepositoryInterface
}

// WaitlistServiceInterface defines the service contract
type WaitlistServiceInterface interface {
	Join(ctx context.Context, eventID, userID uuid.UUID, req *dto.JoinWaitlistRequest) (*dto.WaitlistEntryResponse, *apperrors.AppError)
	List(ctx context.Context, eventID, requesterID uuid.UUID) ([]dto.WaitlistEntryResponse, *apperrors.AppError)
	Promote(ctx context.Context, eventID, organizerID, entryID uuid.UUID) (*dto.WaitlistEntryResponse, *apperrors.AppError)
	ExpireEntry(ctx context.Context, eventID, organizerID, entryID uuid.UUID) *apperrors.AppError
	ExpireForEvent(ctx context.Context, eventID uuid.UUID) *apperrors.AppError
}

// NewWaitlistService creates a new waitlist service
func NewWaitlistService(repo repository.WaitlistRepositoryInterface, eventRepo eventRepository.EventRepositoryInterface) *WaitlistService {
	return &WaitlistService{
		repo:      repo,
		eventRepo: eventRepo,
	}
}

func (s *WaitlistService) loadEvent(ctx context.Context, eventID uuid.UUID) (*eventEntity.Event, *apperrors.AppError) {
	ev, err := s.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to get event", err)
	}
	if ev == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "Event not found", nil)
	}
	return ev, nil
}

// Join puts a user on the event's waitlist. Anyone on the participant list
// (whatever their invitation status) and users already waiting are rejected;
// a promoted or expired entry does not block rejoining.
func (s *WaitlistService) Join(ctx context.Context, eventID, userID uuid.UUID, req *dto.JoinWaitlistRequest) (*dto.WaitlistEntryResponse, *apperrors.AppError) {
	ev, appErr := s.loadEvent(ctx, eventID)
	if appErr != nil {
		return nil, appErr
	}
	if ev.Status.IsTerminal() {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidState, "Event is no longer active", nil)
	}

	participant, err := s.eventRepo.GetParticipant(ctx, eventID, userID)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to check participant", err)
	}
	if participant != nil {
		return nil, apperrors.NewAppError(apperrors.ErrAlreadyExists, "User is already a participant", nil)
	}

	waiting, err := s.repo.GetWaitingEntry(ctx, eventID, userID)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to check waitlist", err)
	}
	if waiting != nil {
		return nil, apperrors.NewAppError(apperrors.ErrConflict, "User is already on the waitlist", nil)
	}

	entry := &entity.WaitlistEntry{
		ID:       uuid.New(),
		EventID:  eventID,
		UserID:   userID,
		Status:   entity.WaitlistStatusWaiting,
		Priority: req.Priority,
		JoinedAt: time.Now(),
	}
	if req.Notes != "" {
		entry.Notes = &req.Notes
	}

	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		// Concurrent join slipped past the pre-check
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, apperrors.NewAppError(apperrors.ErrConflict, "User is already on the waitlist", err)
		}
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to join waitlist", err)
	}

	logger.Info("WaitlistService:Join",
		"event_id", eventID.String(),
		"user_id", userID.String(),
		"priority", entry.Priority)
	return dto.ToWaitlistEntryResponse(entry, 0), nil
}

// List returns the waiting queue in promotion order, organizer only
func (s *WaitlistService) List(ctx context.Context, eventID, requesterID uuid.UUID) ([]dto.WaitlistEntryResponse, *apperrors.AppError) {
	ev, appErr := s.loadEvent(ctx, eventID)
	if appErr != nil {
		return nil, appErr
	}
	if ev.OrganizerID != requesterID {
		return nil, apperrors.NewAppError(apperrors.ErrForbidden, "Only the organizer can view the waitlist", nil)
	}

	entries, err := s.repo.GetWaitingByEventID(ctx, eventID)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to list waitlist", err)
	}

	result := make([]dto.WaitlistEntryResponse, 0, len(entries))
	for i := range entries {
		result = append(result, *dto.ToWaitlistEntryResponse(&entries[i], i+1))
	}
	return result, nil
}

// Promote moves one waiting entry into the participant list. The capacity
// check runs inside the repository transaction, so promoting into the last
// free slot is safe under concurrency.
func (s *WaitlistService) Promote(ctx context.Context, eventID, organizerID, entryID uuid.UUID) (*dto.WaitlistEntryResponse, *apperrors.AppError) {
	ev, appErr := s.loadEvent(ctx, eventID)
	if appErr != nil {
		return nil, appErr
	}
	if ev.OrganizerID != organizerID {
		return nil, apperrors.NewAppError(apperrors.ErrForbidden, "Only the organizer can promote from the waitlist", nil)
	}

	entry, err := s.repo.GetEntryByID(ctx, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to get waitlist entry", err)
	}
	if entry == nil || entry.EventID != eventID {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "Waitlist entry not found", nil)
	}

	err = s.repo.PromoteWithCapacityCheck(ctx, entryID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNoCapacity):
		return nil, apperrors.NewAppError(apperrors.ErrConflict, "Event has no free capacity", err)
	case errors.Is(err, repository.ErrNotWaiting):
		return nil, apperrors.NewAppError(apperrors.ErrConflict, "Entry has already been processed", err)
	case errors.Is(err, repository.ErrEventClosed):
		return nil, apperrors.NewAppError(apperrors.ErrInvalidState, "Event is no longer active", err)
	case errors.Is(err, sql.ErrNoRows):
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "Waitlist entry not found", err)
	default:
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to promote waitlist entry", err)
	}

	promoted, err := s.repo.GetEntryByID(ctx, entryID)
	if err != nil || promoted == nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to reload waitlist entry", err)
	}

	logger.Info("WaitlistService:Promote",
		"event_id", eventID.String(),
		"entry_id", entryID.String(),
		"user_id", promoted.UserID.String())
	return dto.ToWaitlistEntryResponse(promoted, 0), nil
}

// ExpireEntry removes a single waiting entry from the queue, organizer only
func (s *WaitlistService) ExpireEntry(ctx context.Context, eventID, organizerID, entryID uuid.UUID) *apperrors.AppError {
	ev, appErr := s.loadEvent(ctx, eventID)
	if appErr != nil {
		return appErr
	}
	if ev.OrganizerID != organizerID {
		return apperrors.NewAppError(apperrors.ErrForbidden, "Only the organizer can expire waitlist entries", nil)
	}

	entry, err := s.repo.GetEntryByID(ctx, entryID)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to get waitlist entry", err)
	}
	if entry == nil || entry.EventID != eventID {
		return apperrors.NewAppError(apperrors.ErrNotFound, "Waitlist entry not found", nil)
	}
	if entry.Status != entity.WaitlistStatusWaiting {
		return apperrors.NewAppError(apperrors.ErrConflict, "Entry has already been processed", nil)
	}

	if err := s.repo.UpdateEntryStatus(ctx, entryID, entity.WaitlistStatusExpired); err != nil {
		return apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to expire waitlist entry", err)
	}

	logger.Info("WaitlistService:ExpireEntry",
		"event_id", eventID.String(),
		"entry_id", entryID.String())
	return nil
}

// ExpireForEvent marks all waiting entries expired, called when an event
// is cancelled or completed
func (s *WaitlistService) ExpireForEvent(ctx context.Context, eventID uuid.UUID) *apperrors.AppError {
	expired, err := s.repo.ExpireByEventID(ctx, eventID)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to expire waitlist", err)
	}
	if expired > 0 {
		logger.Info("WaitlistService:ExpireForEvent",
			"event_id", eventID.String(),
			"expired", expired)
	}
	return nil
}

// OnEventStatusChanged lets the waitlist react to lifecycle transitions:
// once an event reaches a terminal state its queue has no purpose.
func (s *WaitlistService) OnEventStatusChanged(ctx context.Context, eventID uuid.UUID, oldStatus, newStatus eventEntity.EventStatus) {
	if !newStatus.IsTerminal() {
		return
	}
	if appErr := s.ExpireForEvent(ctx, eventID); appErr != nil {
		logger.Error("WaitlistService:OnEventStatusChanged", appErr)
	}
}
