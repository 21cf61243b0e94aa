package service

import (
	"context"
	"testing"
	"time"

	apperrors "venueplanner/core/errors"
	"venueplanner/modules/event/dto"
	"venueplanner/modules/event/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*EventService, *fakeEventRepo) {
	repo := newFakeEventRepo()
	return NewEventService(repo), repo
}

func createPlanningEvent(t *testing.T, svc *EventService, organizerID uuid.UUID, expected int, threshold float64) uuid.UUID {
	t.Helper()
	resp, appErr := svc.CreateEvent(context.Background(), organizerID, &dto.CreateEventRequest{
		Title:               "Team offsite",
		ExpectedAttendees:   expected,
		AcceptanceThreshold: threshold,
	})
	require.Nil(t, appErr)
	return uuid.MustParse(resp.ID)
}

func TestCreateEventDefaults(t *testing.T) {
	svc, repo := newTestService()
	organizerID := uuid.New()

	resp, appErr := svc.CreateEvent(context.Background(), organizerID, &dto.CreateEventRequest{
		Title:             "Quarterly Planning!",
		ExpectedAttendees: 8,
	})
	require.Nil(t, appErr)

	assert.Equal(t, string(entity.StatusPlanning), resp.Status)
	assert.Equal(t, 120, resp.DurationMinutes)
	assert.Equal(t, 0.5, resp.AcceptanceThreshold)
	assert.Equal(t, 8, resp.MaxAttendees)
	assert.Equal(t, "quarterly-planning", resp.Slug)
	assert.NotEmpty(t, resp.InviteCode)

	// Organizer is automatically an accepted participant
	accepted, err := repo.CountAcceptedParticipants(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, resp.AcceptedCount)
}

func TestCreateEventDirectConfirmShortcut(t *testing.T) {
	svc, _ := newTestService()
	placeID := uuid.New().String()

	resp, appErr := svc.CreateEvent(context.Background(), uuid.New(), &dto.CreateEventRequest{
		Title:             "Board dinner",
		ExpectedAttendees: 4,
		FinalPlaceID:      &placeID,
	})
	require.Nil(t, appErr)

	assert.Equal(t, string(entity.StatusConfirmed), resp.Status)
	assert.Equal(t, placeID, resp.FinalPlaceID)
}

func TestCreateEventAsDraft(t *testing.T) {
	svc, _ := newTestService()

	resp, appErr := svc.CreateEvent(context.Background(), uuid.New(), &dto.CreateEventRequest{
		Title:             "Holiday party",
		ExpectedAttendees: 12,
		Draft:             true,
	})
	require.Nil(t, appErr)
	assert.Equal(t, string(entity.StatusDraft), resp.Status)
}

func TestSendInvitationsPublishesDraft(t *testing.T) {
	svc, repo := newTestService()
	organizerID := uuid.New()

	resp, appErr := svc.CreateEvent(context.Background(), organizerID, &dto.CreateEventRequest{
		Title:             "Holiday party",
		ExpectedAttendees: 12,
		Draft:             true,
	})
	require.Nil(t, appErr)
	eventID := uuid.MustParse(resp.ID)

	// Inviting from a draft walks draft -> planning -> inviting
	invited, appErr := svc.SendInvitations(context.Background(), eventID, organizerID, &dto.InviteParticipantsRequest{
		UserIDs: []string{uuid.New().String()},
	})
	require.Nil(t, appErr)
	assert.Equal(t, string(entity.StatusInviting), invited.Status)

	reloaded, err := repo.GetEventByID(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInviting, reloaded.Status)
	assert.Equal(t, 2, reloaded.Version)
}

func TestCreateEventRejectsMaxBelowExpected(t *testing.T) {
	svc, _ := newTestService()

	_, appErr := svc.CreateEvent(context.Background(), uuid.New(), &dto.CreateEventRequest{
		Title:             "Too small",
		ExpectedAttendees: 10,
		MaxAttendees:      5,
	})
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrInvalidInput, appErr.Code)
}

func TestCreateEventScheduleConflict(t *testing.T) {
	svc, _ := newTestService()
	organizerID := uuid.New()
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	_, appErr := svc.CreateEvent(context.Background(), organizerID, &dto.CreateEventRequest{
		Title:             "First",
		ExpectedAttendees: 5,
		ScheduledAt:       &start,
	})
	require.Nil(t, appErr)

	overlapping := start.Add(time.Hour)
	_, appErr = svc.CreateEvent(context.Background(), organizerID, &dto.CreateEventRequest{
		Title:             "Second",
		ExpectedAttendees: 5,
		ScheduledAt:       &overlapping,
	})
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestSendInvitationsAdvancesToInviting(t *testing.T) {
	svc, repo := newTestService()
	organizerID := uuid.New()
	eventID := createPlanningEvent(t, svc, organizerID, 4, 0.5)

	invitee := uuid.New()
	resp, appErr := svc.SendInvitations(context.Background(), eventID, organizerID, &dto.InviteParticipantsRequest{
		UserIDs: []string{invitee.String()},
	})
	require.Nil(t, appErr)
	assert.Equal(t, string(entity.StatusInviting), resp.Status)

	p, err := repo.GetParticipant(context.Background(), eventID, invitee)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, entity.InvitationStatusPending, p.InvitationStatus)
}

func TestSendInvitationsOrganizerOnly(t *testing.T) {
	svc, _ := newTestService()
	eventID := createPlanningEvent(t, svc, uuid.New(), 4, 0.5)

	_, appErr := svc.SendInvitations(context.Background(), eventID, uuid.New(), &dto.InviteParticipantsRequest{
		UserIDs: []string{uuid.New().String()},
	})
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)
}

func TestRespondInvitationAdvancesOnQuorum(t *testing.T) {
	svc, repo := newTestService()
	organizerID := uuid.New()
	// expected 4 at 0.5 -> quorum 2; the organizer already counts as one
	eventID := createPlanningEvent(t, svc, organizerID, 4, 0.5)

	a, b := uuid.New(), uuid.New()
	_, appErr := svc.SendInvitations(context.Background(), eventID, organizerID, &dto.InviteParticipantsRequest{
		UserIDs: []string{a.String(), b.String()},
	})
	require.Nil(t, appErr)

	require.Nil(t, svc.RespondInvitation(context.Background(), eventID, a, true))

	ev, err := repo.GetEventByID(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusGatheringPreferences, ev.Status)
}

func TestRespondInvitationDeclineDoesNotAdvance(t *testing.T) {
	svc, repo := newTestService()
	organizerID := uuid.New()
	eventID := createPlanningEvent(t, svc, organizerID, 4, 0.5)

	a := uuid.New()
	_, appErr := svc.SendInvitations(context.Background(), eventID, organizerID, &dto.InviteParticipantsRequest{
		UserIDs: []string{a.String()},
	})
	require.Nil(t, appErr)

	require.Nil(t, svc.RespondInvitation(context.Background(), eventID, a, false))

	ev, err := repo.GetEventByID(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInviting, ev.Status)
}

func TestRespondInvitationAfterDeadline(t *testing.T) {
	svc, repo := newTestService()
	organizerID := uuid.New()
	eventID := createPlanningEvent(t, svc, organizerID, 4, 0.5)

	a := uuid.New()
	_, appErr := svc.SendInvitations(context.Background(), eventID, organizerID, &dto.InviteParticipantsRequest{
		UserIDs: []string{a.String()},
	})
	require.Nil(t, appErr)

	past := time.Now().Add(-time.Hour)
	repo.mu.Lock()
	repo.events[eventID].RSVPDeadline = &past
	repo.mu.Unlock()

	appErr = svc.RespondInvitation(context.Background(), eventID, a, true)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrDeadlinePassed, appErr.Code)
}

func TestRespondInvitationNotInvited(t *testing.T) {
	svc, _ := newTestService()
	organizerID := uuid.New()
	eventID := createPlanningEvent(t, svc, organizerID, 4, 0.5)

	appErr := svc.RespondInvitation(context.Background(), eventID, uuid.New(), true)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestInvalidTransitionLeavesEventUntouched(t *testing.T) {
	svc, repo := newTestService()
	organizerID := uuid.New()
	eventID := createPlanningEvent(t, svc, organizerID, 4, 0.5)

	ev, err := repo.GetEventByID(context.Background(), eventID)
	require.NoError(t, err)

	// planning -> completed skips the whole lifecycle
	appErr := svc.CompleteEvent(context.Background(), ev)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrInvalidState, appErr.Code)

	reloaded, err := repo.GetEventByID(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPlanning, reloaded.Status)
	assert.Equal(t, 0, reloaded.Version)
}

func TestConcurrentTransitionReturnsStaleVersion(t *testing.T) {
	svc, repo := newTestService()
	organizerID := uuid.New()
	eventID := createPlanningEvent(t, svc, organizerID, 4, 0.5)

	// Two actors load the same version
	first, err := repo.GetEventByID(context.Background(), eventID)
	require.NoError(t, err)
	second, err := repo.GetEventByID(context.Background(), eventID)
	require.NoError(t, err)

	require.Nil(t, svc.SystemCancel(context.Background(), first, "organizer changed plans"))

	appErr := svc.SystemCancel(context.Background(), second, "duplicate cancel")
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrStaleVersion, appErr.Code)
}

func TestCancelFromTerminalState(t *testing.T) {
	svc, repo := newTestService()
	organizerID := uuid.New()
	eventID := createPlanningEvent(t, svc, organizerID, 4, 0.5)

	require.Nil(t, svc.CancelEvent(context.Background(), eventID, organizerID, "no longer needed"))

	ev, err := repo.GetEventByID(context.Background(), eventID)
	require.NoError(t, err)

	appErr := svc.SystemCancel(context.Background(), ev, "again")
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrInvalidState, appErr.Code)
}

func TestStartRecommendationRequiresQuorum(t *testing.T) {
	svc, repo := newTestService()
	organizerID := uuid.New()
	// expected 5 at 0.7 -> quorum 4, only the organizer has accepted
	eventID := createPlanningEvent(t, svc, organizerID, 5, 0.7)

	repo.mu.Lock()
	repo.events[eventID].Status = entity.StatusGatheringPreferences
	repo.mu.Unlock()

	_, appErr := svc.StartRecommendation(context.Background(), eventID, organizerID)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrQuorumNotMet, appErr.Code)
}

func TestStartRecommendationStampsAnalysisStart(t *testing.T) {
	svc, repo := newTestService()
	organizerID := uuid.New()
	// expected 2 at 0.5 -> quorum 1, organizer alone satisfies it
	eventID := createPlanningEvent(t, svc, organizerID, 2, 0.5)

	repo.mu.Lock()
	repo.events[eventID].Status = entity.StatusGatheringPreferences
	repo.mu.Unlock()

	ev, appErr := svc.StartRecommendation(context.Background(), eventID, organizerID)
	require.Nil(t, appErr)
	assert.Equal(t, entity.StatusAIRecommending, ev.Status)
	assert.NotNil(t, ev.AIAnalysisStartedAt)
}

func TestStartRecommendationRetryWhileAnalyzing(t *testing.T) {
	svc, repo := newTestService()
	organizerID := uuid.New()
	eventID := createPlanningEvent(t, svc, organizerID, 2, 0.5)

	repo.mu.Lock()
	repo.events[eventID].Status = entity.StatusGatheringPreferences
	repo.mu.Unlock()

	first, appErr := svc.StartRecommendation(context.Background(), eventID, organizerID)
	require.Nil(t, appErr)

	// A second trigger while the analysis is pending is a retry, not a
	// transition: same status, version untouched
	retried, appErr := svc.StartRecommendation(context.Background(), eventID, organizerID)
	require.Nil(t, appErr)
	assert.Equal(t, entity.StatusAIRecommending, retried.Status)
	assert.Equal(t, first.Version, retried.Version)

	reloaded, err := repo.GetEventByID(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAIRecommending, reloaded.Status)
	assert.Equal(t, first.Version, reloaded.Version)
}

func TestOpenVotingDefaultsDeadline(t *testing.T) {
	svc, repo := newTestService()
	organizerID := uuid.New()
	eventID := createPlanningEvent(t, svc, organizerID, 2, 0.5)

	repo.mu.Lock()
	repo.events[eventID].Status = entity.StatusAIRecommending
	repo.mu.Unlock()

	ev, err := repo.GetEventByID(context.Background(), eventID)
	require.NoError(t, err)

	require.Nil(t, svc.OpenVoting(context.Background(), ev))
	require.NotNil(t, ev.VotingDeadline)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), *ev.VotingDeadline, time.Minute)
}

func TestStatusListenerFiresOncePerTransition(t *testing.T) {
	svc, repo := newTestService()
	organizerID := uuid.New()

	var calls []entity.EventStatus
	svc.AddStatusListener(listenerFunc(func(ctx context.Context, eventID uuid.UUID, oldStatus, newStatus entity.EventStatus) {
		calls = append(calls, newStatus)
	}))

	eventID := createPlanningEvent(t, svc, organizerID, 4, 0.5)
	ev, err := repo.GetEventByID(context.Background(), eventID)
	require.NoError(t, err)

	require.Nil(t, svc.SystemCancel(context.Background(), ev, "cancelled"))
	assert.Equal(t, []entity.EventStatus{entity.StatusCancelled}, calls)
}

type listenerFunc func(ctx context.Context, eventID uuid.UUID, oldStatus, newStatus entity.EventStatus)

func (f listenerFunc) OnEventStatusChanged(ctx context.Context, eventID uuid.UUID, oldStatus, newStatus entity.EventStatus) {
	f(ctx, eventID, oldStatus, newStatus)
}
