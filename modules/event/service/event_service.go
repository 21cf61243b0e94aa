package service

import (
	"context"
	"fmt"
	"time"

	"venueplanner/core/constants"
	apperrors "venueplanner/core/errors"
	"venueplanner/core/logger"
	"venueplanner/core/utils"
	"venueplanner/modules/event/dto"
	"venueplanner/modules/event/entity"
	"venueplanner/modules/event/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// StatusListener is notified after every committed status transition
type StatusListener interface {
	OnEventStatusChanged(ctx context.Context, eventID uuid.UUID, oldStatus, newStatus entity.EventStatus)
}

// EventService is the single mutation gateway for event lifecycle changes
type EventService struct {
	repo      repository.EventRepositoryInterface
	conflicts *ConflictDetector
	listeners []StatusListener
}

// EventServiceInterface defines the service contract
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, organizerID uuid.UUID, req *dto.CreateEventRequest) (*dto.EventResponse, *apperrors.AppError)
	GetEventByID(ctx context.Context, id uuid.UUID) (*dto.EventResponse, *apperrors.AppError)
	GetMyEvents(ctx context.Context, organizerID uuid.UUID) ([]dto.EventResponse, *apperrors.AppError)
	SendInvitations(ctx context.Context, eventID, organizerID uuid.UUID, req *dto.InviteParticipantsRequest) (*dto.EventResponse, *apperrors.AppError)
	RespondInvitation(ctx context.Context, eventID, userID uuid.UUID, accept bool) *apperrors.AppError
	CancelEvent(ctx context.Context, eventID, organizerID uuid.UUID, reason string) *apperrors.AppError

	// System-driven transitions, funneled through the same guarded surface
	StartRecommendation(ctx context.Context, eventID, organizerID uuid.UUID) (*entity.Event, *apperrors.AppError)
	OpenVoting(ctx context.Context, event *entity.Event) *apperrors.AppError
	FinalizeVenue(ctx context.Context, event *entity.Event, finalPlaceID uuid.UUID) *apperrors.AppError
	SystemCancel(ctx context.Context, event *entity.Event, reason string) *apperrors.AppError
	CompleteEvent(ctx context.Context, event *entity.Event) *apperrors.AppError

	AddStatusListener(l StatusListener)
}

// NewEventService creates a new event service
func NewEventService(repo repository.EventRepositoryInterface) *EventService {
	return &EventService{
		repo:      repo,
		conflicts: NewConflictDetector(repo),
	}
}

// AddStatusListener registers a listener for committed transitions
func (s *EventService) AddStatusListener(l StatusListener) {
	s.listeners = append(s.listeners, l)
}

func (s *EventService) notifyStatusChanged(ctx context.Context, eventID uuid.UUID, from, to entity.EventStatus) {
	for _, l := range s.listeners {
		l.OnEventStatusChanged(ctx, eventID, from, to)
	}
}

// commitTransition validates the edge, performs the CAS write, and fires the
// status-changed hook exactly once on success. Extra fields to persist with
// the transition (final place, deadlines, cancel reason) are set on the event
// before calling.
func (s *EventService) commitTransition(ctx context.Context, ev *entity.Event, to entity.EventStatus) *apperrors.AppError {
	from := ev.Status

	switch CheckTransition(from, to) {
	case TransitionTerminalState:
		return apperrors.NewAppError(apperrors.ErrInvalidState,
			fmt.Sprintf("event is %s and can no longer change", from), nil)
	case TransitionInvalidEdge:
		return apperrors.NewAppError(apperrors.ErrInvalidState,
			fmt.Sprintf("cannot transition from %s to %s", from, to), nil)
	}

	ok, err := s.repo.CompareAndSwapStatus(ctx, ev, to)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to update event status", err)
	}
	if !ok {
		return apperrors.NewAppError(apperrors.ErrStaleVersion,
			"event was modified concurrently, please retry", nil)
	}

	logger.Info("EventService:Transition", "event_id", ev.ID.String(), "from", from, "to", to)
	s.notifyStatusChanged(ctx, ev.ID, from, to)
	return nil
}

// loadEvent fetches an event or returns a not-found error
func (s *EventService) loadEvent(ctx context.Context, eventID uuid.UUID) (*entity.Event, *apperrors.AppError) {
	ev, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to get event", err)
	}
	if ev == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "Event not found", nil)
	}
	return ev, nil
}

func (s *EventService) toResponse(ctx context.Context, ev *entity.Event, withParticipants bool) *dto.EventResponse {
	accepted, err := s.repo.CountAcceptedParticipants(ctx, ev.ID)
	if err != nil {
		accepted = 0
	}

	var participants []entity.Participant
	if withParticipants {
		participants, _ = s.repo.GetParticipantsByEventID(ctx, ev.ID)
	}

	return dto.ToEventResponse(ev, participants, accepted, Quorum(ev.ExpectedAttendees, ev.AcceptanceThreshold))
}

// CreateEvent creates a new event in planning status, or in draft when the
// organizer asks to keep it unpublished. Supplying a final place id takes the
// direct shortcut to confirmed, bypassing recommendation and voting entirely.
func (s *EventService) CreateEvent(ctx context.Context, organizerID uuid.UUID, req *dto.CreateEventRequest) (*dto.EventResponse, *apperrors.AppError) {
	if req.DurationMinutes < 0 {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidInput, "Duration must be positive", nil)
	}
	if req.MaxAttendees > 0 && req.MaxAttendees < req.ExpectedAttendees {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidInput, "Max attendees cannot be below expected attendees", nil)
	}

	if req.ScheduledAt != nil {
		overlap, err := s.conflicts.Overlaps(ctx, organizerID, *req.ScheduledAt, req.DurationMinutes, nil)
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to check schedule", err)
		}
		if overlap {
			return nil, apperrors.NewAppError(apperrors.ErrConflict,
				"You already have an event overlapping that time", nil)
		}
	}

	event := &entity.Event{
		OrganizerID:         organizerID,
		Title:               req.Title,
		Slug:                slug.Make(req.Title),
		InviteCode:          utils.GenerateInviteCode(),
		Status:              entity.StatusPlanning,
		ScheduledAt:         req.ScheduledAt,
		DurationMinutes:     req.DurationMinutes,
		ExpectedAttendees:   req.ExpectedAttendees,
		MaxAttendees:        req.MaxAttendees,
		AcceptanceThreshold: req.AcceptanceThreshold,
		RSVPDeadline:        req.RSVPDeadline,
		VotingDeadline:      req.VotingDeadline,
		Privacy:             entity.PrivacyPrivate,
	}

	if req.Description != "" {
		event.Description = &req.Description
	}
	if req.DurationMinutes == 0 {
		event.DurationMinutes = constants.DefaultEventDurationMinutes
	}
	if req.AcceptanceThreshold == 0 {
		event.AcceptanceThreshold = 0.5
	}
	if req.MaxAttendees == 0 {
		event.MaxAttendees = req.ExpectedAttendees
	}
	if req.Privacy != "" {
		event.Privacy = entity.EventPrivacy(req.Privacy)
	}
	if req.Draft {
		event.Status = entity.StatusDraft
	}

	// Direct shortcut: organizer already knows the venue
	if req.FinalPlaceID != nil {
		placeID, err := uuid.Parse(*req.FinalPlaceID)
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrInvalidInput, "Invalid final place ID", err)
		}
		event.Status = entity.StatusConfirmed
		event.FinalPlaceID = &placeID
	}

	created, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to create event", err)
	}

	// The organizer always participates
	_ = s.repo.AddParticipant(ctx, &entity.Participant{
		EventID:          created.ID,
		UserID:           organizerID,
		InvitationStatus: entity.InvitationStatusAccepted,
	})

	logger.Info("EventService:CreateEvent", "event_id", created.ID.String(), "status", created.Status)
	return s.toResponse(ctx, created, true), nil
}

// GetEventByID retrieves an event by ID
func (s *EventService) GetEventByID(ctx context.Context, id uuid.UUID) (*dto.EventResponse, *apperrors.AppError) {
	ev, appErr := s.loadEvent(ctx, id)
	if appErr != nil {
		return nil, appErr
	}
	return s.toResponse(ctx, ev, true), nil
}

// GetMyEvents retrieves all events organized by a user
func (s *EventService) GetMyEvents(ctx context.Context, organizerID uuid.UUID) ([]dto.EventResponse, *apperrors.AppError) {
	events, err := s.repo.GetEventsByOrganizerID(ctx, organizerID)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to get events", err)
	}

	result := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		result = append(result, *s.toResponse(ctx, &events[i], false))
	}
	return result, nil
}

// SendInvitations invites users and moves the event to inviting. Inviting from
// a draft publishes it first.
func (s *EventService) SendInvitations(ctx context.Context, eventID, organizerID uuid.UUID, req *dto.InviteParticipantsRequest) (*dto.EventResponse, *apperrors.AppError) {
	ev, appErr := s.loadEvent(ctx, eventID)
	if appErr != nil {
		return nil, appErr
	}
	if ev.OrganizerID != organizerID {
		return nil, apperrors.NewAppError(apperrors.ErrForbidden, "Only the organizer can send invitations", nil)
	}
	if ev.Status != entity.StatusDraft && ev.Status != entity.StatusPlanning && ev.Status != entity.StatusInviting {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidState,
			fmt.Sprintf("cannot send invitations while event is %s", ev.Status), nil)
	}

	for _, raw := range req.UserIDs {
		userID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			continue
		}
		if userID == organizerID {
			continue
		}
		if err := s.repo.AddParticipant(ctx, &entity.Participant{
			EventID:          eventID,
			UserID:           userID,
			InvitationStatus: entity.InvitationStatusPending,
		}); err != nil {
			logger.Error("EventService:SendInvitations:AddParticipant", err)
		}
	}

	// First batch of invitations advances the lifecycle
	if ev.Status == entity.StatusDraft {
		if appErr := s.commitTransition(ctx, ev, entity.StatusPlanning); appErr != nil {
			return nil, appErr
		}
	}
	if ev.Status == entity.StatusPlanning {
		if appErr := s.commitTransition(ctx, ev, entity.StatusInviting); appErr != nil {
			return nil, appErr
		}
	}

	return s.toResponse(ctx, ev, true), nil
}

// RespondInvitation records an accept/decline. An accept that satisfies the
// quorum advances the event to gathering_preferences.
func (s *EventService) RespondInvitation(ctx context.Context, eventID, userID uuid.UUID, accept bool) *apperrors.AppError {
	ev, appErr := s.loadEvent(ctx, eventID)
	if appErr != nil {
		return appErr
	}
	if ev.Status.IsTerminal() {
		return apperrors.NewAppError(apperrors.ErrInvalidState, "Event is no longer active", nil)
	}
	if ev.RSVPDeadline != nil && time.Now().After(*ev.RSVPDeadline) {
		return apperrors.NewAppError(apperrors.ErrDeadlinePassed, "RSVP deadline has passed", nil)
	}

	participant, err := s.repo.GetParticipant(ctx, eventID, userID)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to get invitation", err)
	}
	if participant == nil {
		return apperrors.NewAppError(apperrors.ErrNotFound, "You are not invited to this event", nil)
	}

	status := entity.InvitationStatusDeclined
	if accept {
		status = entity.InvitationStatusAccepted
	}
	if err := s.repo.UpdateParticipantStatus(ctx, eventID, userID, status); err != nil {
		return apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to update invitation", err)
	}

	if accept && ev.Status == entity.StatusInviting {
		if appErr := s.advanceOnQuorum(ctx, ev); appErr != nil {
			// A lost CAS race means another accept already advanced the event
			if appErr.Code != apperrors.ErrStaleVersion {
				return appErr
			}
		}
	}

	return nil
}

// advanceOnQuorum moves inviting -> gathering_preferences once the accepted
// count reaches quorum
func (s *EventService) advanceOnQuorum(ctx context.Context, ev *entity.Event) *apperrors.AppError {
	accepted, err := s.repo.CountAcceptedParticipants(ctx, ev.ID)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to count participants", err)
	}
	if accepted < Quorum(ev.ExpectedAttendees, ev.AcceptanceThreshold) {
		return nil
	}
	return s.commitTransition(ctx, ev, entity.StatusGatheringPreferences)
}

// StartRecommendation guards and performs gathering_preferences -> ai_recommending
func (s *EventService) StartRecommendation(ctx context.Context, eventID, organizerID uuid.UUID) (*entity.Event, *apperrors.AppError) {
	ev, appErr := s.loadEvent(ctx, eventID)
	if appErr != nil {
		return nil, appErr
	}
	if ev.OrganizerID != organizerID {
		return nil, apperrors.NewAppError(apperrors.ErrForbidden, "Only the organizer can start recommendations", nil)
	}

	// A timed-out or empty analysis leaves the event in ai_recommending, so
	// re-triggering is an idempotent retry: no transition, just re-enqueue.
	if ev.Status == entity.StatusAIRecommending {
		logger.Info("EventService:StartRecommendation retry", "event_id", ev.ID.String())
		return ev, nil
	}

	accepted, err := s.repo.CountAcceptedParticipants(ctx, eventID)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to count participants", err)
	}
	if quorum := Quorum(ev.ExpectedAttendees, ev.AcceptanceThreshold); accepted < quorum {
		return nil, apperrors.NewAppError(apperrors.ErrQuorumNotMet,
			fmt.Sprintf("need %d accepted participants, have %d", quorum, accepted), nil)
	}

	now := time.Now()
	ev.AIAnalysisStartedAt = &now
	if appErr := s.commitTransition(ctx, ev, entity.StatusAIRecommending); appErr != nil {
		return nil, appErr
	}
	return ev, nil
}

// OpenVoting performs ai_recommending -> voting once recommendations exist
func (s *EventService) OpenVoting(ctx context.Context, event *entity.Event) *apperrors.AppError {
	if event.VotingDeadline == nil || event.VotingDeadline.Before(time.Now()) {
		deadline := time.Now().Add(constants.DefaultVotingWindowHours * time.Hour)
		event.VotingDeadline = &deadline
	}
	return s.commitTransition(ctx, event, entity.StatusVoting)
}

// FinalizeVenue fixes the venue and performs voting -> confirmed
func (s *EventService) FinalizeVenue(ctx context.Context, event *entity.Event, finalPlaceID uuid.UUID) *apperrors.AppError {
	event.FinalPlaceID = &finalPlaceID
	return s.commitTransition(ctx, event, entity.StatusConfirmed)
}

// CancelEvent is the explicit organizer cancel
func (s *EventService) CancelEvent(ctx context.Context, eventID, organizerID uuid.UUID, reason string) *apperrors.AppError {
	ev, appErr := s.loadEvent(ctx, eventID)
	if appErr != nil {
		return appErr
	}
	if ev.OrganizerID != organizerID {
		return apperrors.NewAppError(apperrors.ErrForbidden, "Only the organizer can cancel the event", nil)
	}
	return s.SystemCancel(ctx, ev, reason)
}

// SystemCancel cancels from any non-terminal state with a reason
func (s *EventService) SystemCancel(ctx context.Context, event *entity.Event, reason string) *apperrors.AppError {
	event.CancelReason = &reason
	return s.commitTransition(ctx, event, entity.StatusCancelled)
}

// CompleteEvent performs confirmed -> completed
func (s *EventService) CompleteEvent(ctx context.Context, event *entity.Event) *apperrors.AppError {
	return s.commitTransition(ctx, event, entity.StatusCompleted)
}
