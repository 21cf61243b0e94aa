package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	apperrors "venueplanner/core/errors"
	eventEntity "venueplanner/modules/event/entity"
	"venueplanner/modules/waitlist/dto"
	"venueplanner/modules/waitlist/entity"
	"venueplanner/modules/waitlist/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===================== fakes =====================

type fakeEventRepo struct {
	mu           sync.Mutex
	events       map[uuid.UUID]*eventEntity.Event
	participants map[string]*eventEntity.Participant
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		events:       make(map[uuid.UUID]*eventEntity.Event),
		participants: make(map[string]*eventEntity.Participant),
	}
}

func pkey(eventID, userID uuid.UUID) string {
	return eventID.String() + ":" + userID.String()
}

func (f *fakeEventRepo) CreateEvent(ctx context.Context, ev *eventEntity.Event) (*eventEntity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *ev
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	f.events[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeEventRepo) GetEventByID(ctx context.Context, id uuid.UUID) (*eventEntity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.events[id]
	if !ok {
		return nil, nil
	}
	out := *stored
	return &out, nil
}

func (f *fakeEventRepo) GetEventsByOrganizerID(ctx context.Context, organizerID uuid.UUID) ([]eventEntity.Event, error) {
	return nil, nil
}

func (f *fakeEventRepo) GetActiveEventsOnDate(ctx context.Context, organizerID uuid.UUID, date time.Time, excludeEventID *uuid.UUID) ([]eventEntity.Event, error) {
	return nil, nil
}

func (f *fakeEventRepo) CompareAndSwapStatus(ctx context.Context, ev *eventEntity.Event, to eventEntity.EventStatus) (bool, error) {
	return true, nil
}

func (f *fakeEventRepo) ClaimForProcessing(ctx context.Context, eventID uuid.UUID, leaseSeconds int) (bool, error) {
	return true, nil
}

func (f *fakeEventRepo) ReleaseClaim(ctx context.Context, eventID uuid.UUID) error { return nil }

func (f *fakeEventRepo) GetRSVPExpiredEvents(ctx context.Context, now time.Time) ([]eventEntity.Event, error) {
	return nil, nil
}

func (f *fakeEventRepo) GetVotingExpiredEvents(ctx context.Context, now time.Time) ([]eventEntity.Event, error) {
	return nil, nil
}

func (f *fakeEventRepo) GetCompletableEvents(ctx context.Context, cutoff time.Time) ([]eventEntity.Event, error) {
	return nil, nil
}

func (f *fakeEventRepo) AddParticipant(ctx context.Context, p *eventEntity.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pkey(p.EventID, p.UserID)
	if _, exists := f.participants[key]; !exists {
		stored := *p
		f.participants[key] = &stored
	}
	return nil
}

func (f *fakeEventRepo) GetParticipant(ctx context.Context, eventID, userID uuid.UUID) (*eventEntity.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.participants[pkey(eventID, userID)]
	if !ok {
		return nil, nil
	}
	out := *stored
	return &out, nil
}

func (f *fakeEventRepo) GetParticipantsByEventID(ctx context.Context, eventID uuid.UUID) ([]eventEntity.Participant, error) {
	return nil, nil
}

func (f *fakeEventRepo) UpdateParticipantStatus(ctx context.Context, eventID, userID uuid.UUID, status eventEntity.InvitationStatus) error {
	return nil
}

func (f *fakeEventRepo) CountAcceptedParticipants(ctx context.Context, eventID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, p := range f.participants {
		if p.EventID == eventID && p.InvitationStatus == eventEntity.InvitationStatusAccepted {
			count++
		}
	}
	return count, nil
}

// fakeWaitlistRepo mirrors the transactional promote semantics: entry lock,
// capacity check, and participant upsert happen under one mutex. It also
// mirrors the partial unique index on waiting entries.
type fakeWaitlistRepo struct {
	mu        sync.Mutex
	entries   map[uuid.UUID]*entity.WaitlistEntry
	eventRepo *fakeEventRepo
	createErr error
}

func newFakeWaitlistRepo(eventRepo *fakeEventRepo) *fakeWaitlistRepo {
	return &fakeWaitlistRepo{
		entries:   make(map[uuid.UUID]*entity.WaitlistEntry),
		eventRepo: eventRepo,
	}
}

func (f *fakeWaitlistRepo) CreateEntry(ctx context.Context, entry *entity.WaitlistEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, e := range f.entries {
		if e.EventID == entry.EventID && e.UserID == entry.UserID && e.Status == entity.WaitlistStatusWaiting {
			return repository.ErrDuplicateEntry
		}
	}
	stored := *entry
	f.entries[stored.ID] = &stored
	return nil
}

func (f *fakeWaitlistRepo) GetEntryByID(ctx context.Context, id uuid.UUID) (*entity.WaitlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.entries[id]
	if !ok {
		return nil, nil
	}
	out := *stored
	return &out, nil
}

func (f *fakeWaitlistRepo) GetWaitingEntry(ctx context.Context, eventID, userID uuid.UUID) (*entity.WaitlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.EventID == eventID && e.UserID == userID && e.Status == entity.WaitlistStatusWaiting {
			out := *e
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeWaitlistRepo) GetWaitingByEventID(ctx context.Context, eventID uuid.UUID) ([]entity.WaitlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.WaitlistEntry
	for _, e := range f.entries {
		if e.EventID == eventID && e.Status == entity.WaitlistStatusWaiting {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}

func (f *fakeWaitlistRepo) UpdateEntryStatus(ctx context.Context, id uuid.UUID, status entity.WaitlistStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if stored, ok := f.entries[id]; ok {
		stored.Status = status
	}
	return nil
}

func (f *fakeWaitlistRepo) PromoteWithCapacityCheck(ctx context.Context, entryID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.entries[entryID]
	if !ok {
		return sql.ErrNoRows
	}
	if entry.Status != entity.WaitlistStatusWaiting {
		return repository.ErrNotWaiting
	}

	ev, err := f.eventRepo.GetEventByID(ctx, entry.EventID)
	if err != nil || ev == nil {
		return sql.ErrNoRows
	}
	if ev.Status.IsTerminal() {
		return repository.ErrEventClosed
	}

	accepted, err := f.eventRepo.CountAcceptedParticipants(ctx, entry.EventID)
	if err != nil {
		return err
	}
	if ev.MaxAttendees > 0 && accepted >= ev.MaxAttendees {
		return repository.ErrNoCapacity
	}

	now := time.Now()
	entry.Status = entity.WaitlistStatusPromoted
	entry.PromotedAt = &now
	return f.eventRepo.AddParticipant(ctx, &eventEntity.Participant{
		EventID:          entry.EventID,
		UserID:           entry.UserID,
		InvitationStatus: eventEntity.InvitationStatusAccepted,
		RespondedAt:      &now,
	})
}

func (f *fakeWaitlistRepo) ExpireByEventID(ctx context.Context, eventID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var expired int64
	for _, e := range f.entries {
		if e.EventID == eventID && e.Status == entity.WaitlistStatusWaiting {
			e.Status = entity.WaitlistStatusExpired
			expired++
		}
	}
	return expired, nil
}

// ===================== fixtures =====================

type waitlistFixture struct {
	svc          *WaitlistService
	eventRepo    *fakeEventRepo
	waitlistRepo *fakeWaitlistRepo
	event        *eventEntity.Event
	organizerID  uuid.UUID
}

func newWaitlistFixture(t *testing.T, maxAttendees int) *waitlistFixture {
	t.Helper()

	eventRepo := newFakeEventRepo()
	waitlistRepo := newFakeWaitlistRepo(eventRepo)
	svc := NewWaitlistService(waitlistRepo, eventRepo)

	organizerID := uuid.New()
	ev, err := eventRepo.CreateEvent(context.Background(), &eventEntity.Event{
		OrganizerID:       organizerID,
		Title:             "Team offsite",
		Status:            eventEntity.StatusInviting,
		ExpectedAttendees: maxAttendees,
		MaxAttendees:      maxAttendees,
	})
	require.NoError(t, err)

	require.NoError(t, eventRepo.AddParticipant(context.Background(), &eventEntity.Participant{
		EventID:          ev.ID,
		UserID:           organizerID,
		InvitationStatus: eventEntity.InvitationStatusAccepted,
	}))

	return &waitlistFixture{
		svc:          svc,
		eventRepo:    eventRepo,
		waitlistRepo: waitlistRepo,
		event:        ev,
		organizerID:  organizerID,
	}
}

func (fx *waitlistFixture) join(t *testing.T, priority int) (*dto.WaitlistEntryResponse, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	resp, appErr := fx.svc.Join(context.Background(), fx.event.ID, userID, &dto.JoinWaitlistRequest{Priority: priority})
	require.Nil(t, appErr)
	return resp, userID
}

// ===================== tests =====================

func TestJoinRejectsExistingParticipant(t *testing.T) {
	fx := newWaitlistFixture(t, 10)

	_, appErr := fx.svc.Join(context.Background(), fx.event.ID, fx.organizerID, &dto.JoinWaitlistRequest{})
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrAlreadyExists, appErr.Code)
}

func TestJoinRejectsDuplicateEntry(t *testing.T) {
	fx := newWaitlistFixture(t, 10)
	_, userID := fx.join(t, 0)

	_, appErr := fx.svc.Join(context.Background(), fx.event.ID, userID, &dto.JoinWaitlistRequest{})
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestJoinRejectsPendingInvitee(t *testing.T) {
	fx := newWaitlistFixture(t, 10)
	invitee := uuid.New()
	require.NoError(t, fx.eventRepo.AddParticipant(context.Background(), &eventEntity.Participant{
		EventID:          fx.event.ID,
		UserID:           invitee,
		InvitationStatus: eventEntity.InvitationStatusPending,
	}))

	_, appErr := fx.svc.Join(context.Background(), fx.event.ID, invitee, &dto.JoinWaitlistRequest{})
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrAlreadyExists, appErr.Code)
}

func TestJoinAllowsRejoinAfterExpiry(t *testing.T) {
	fx := newWaitlistFixture(t, 10)
	entry, userID := fx.join(t, 0)

	require.Nil(t, fx.svc.ExpireEntry(context.Background(), fx.event.ID, fx.organizerID, uuid.MustParse(entry.ID)))

	// The expired entry stays as history; a fresh waiting entry is created
	rejoined, appErr := fx.svc.Join(context.Background(), fx.event.ID, userID, &dto.JoinWaitlistRequest{})
	require.Nil(t, appErr)
	assert.NotEqual(t, entry.ID, rejoined.ID)
	assert.Equal(t, string(entity.WaitlistStatusWaiting), rejoined.Status)

	old, err := fx.waitlistRepo.GetEntryByID(context.Background(), uuid.MustParse(entry.ID))
	require.NoError(t, err)
	assert.Equal(t, entity.WaitlistStatusExpired, old.Status)
}

func TestJoinMapsDuplicateInsertToConflict(t *testing.T) {
	// Two concurrent joins can both pass the pre-check; the unique index on
	// waiting entries rejects the second insert
	fx := newWaitlistFixture(t, 10)
	fx.waitlistRepo.createErr = repository.ErrDuplicateEntry

	_, appErr := fx.svc.Join(context.Background(), fx.event.ID, uuid.New(), &dto.JoinWaitlistRequest{})
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestJoinRejectsTerminalEvent(t *testing.T) {
	fx := newWaitlistFixture(t, 10)

	fx.eventRepo.mu.Lock()
	fx.eventRepo.events[fx.event.ID].Status = eventEntity.StatusCancelled
	fx.eventRepo.mu.Unlock()

	_, appErr := fx.svc.Join(context.Background(), fx.event.ID, uuid.New(), &dto.JoinWaitlistRequest{})
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrInvalidState, appErr.Code)
}

func TestListOrdersByPriorityThenJoinTime(t *testing.T) {
	fx := newWaitlistFixture(t, 10)
	lowFirst, _ := fx.join(t, 0)
	time.Sleep(2 * time.Millisecond)
	high, _ := fx.join(t, 5)
	time.Sleep(2 * time.Millisecond)
	lowSecond, _ := fx.join(t, 0)

	list, appErr := fx.svc.List(context.Background(), fx.event.ID, fx.organizerID)
	require.Nil(t, appErr)
	require.Len(t, list, 3)

	assert.Equal(t, high.ID, list[0].ID)
	assert.Equal(t, lowFirst.ID, list[1].ID)
	assert.Equal(t, lowSecond.ID, list[2].ID)
	assert.Equal(t, 1, list[0].Position)
	assert.Equal(t, 3, list[2].Position)
}

func TestListOrganizerOnly(t *testing.T) {
	fx := newWaitlistFixture(t, 10)

	_, appErr := fx.svc.List(context.Background(), fx.event.ID, uuid.New())
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)
}

func TestPromoteAddsParticipant(t *testing.T) {
	fx := newWaitlistFixture(t, 10)
	entry, userID := fx.join(t, 0)

	resp, appErr := fx.svc.Promote(context.Background(), fx.event.ID, fx.organizerID, uuid.MustParse(entry.ID))
	require.Nil(t, appErr)
	assert.Equal(t, string(entity.WaitlistStatusPromoted), resp.Status)
	assert.NotNil(t, resp.PromotedAt)

	p, err := fx.eventRepo.GetParticipant(context.Background(), fx.event.ID, userID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, eventEntity.InvitationStatusAccepted, p.InvitationStatus)
}

func TestPromoteIntoFullEvent(t *testing.T) {
	// Capacity 1, already held by the organizer
	fx := newWaitlistFixture(t, 1)
	entry, _ := fx.join(t, 0)

	_, appErr := fx.svc.Promote(context.Background(), fx.event.ID, fx.organizerID, uuid.MustParse(entry.ID))
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestPromoteTwiceFails(t *testing.T) {
	fx := newWaitlistFixture(t, 10)
	entry, _ := fx.join(t, 0)
	entryID := uuid.MustParse(entry.ID)

	_, appErr := fx.svc.Promote(context.Background(), fx.event.ID, fx.organizerID, entryID)
	require.Nil(t, appErr)

	_, appErr = fx.svc.Promote(context.Background(), fx.event.ID, fx.organizerID, entryID)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestConcurrentPromotionsRespectCapacity(t *testing.T) {
	// Capacity 2: organizer holds one slot, one slot free, two candidates
	fx := newWaitlistFixture(t, 2)
	first, _ := fx.join(t, 0)
	second, _ := fx.join(t, 0)

	results := make(chan *apperrors.AppError, 2)
	var wg sync.WaitGroup
	for _, id := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(raw string) {
			defer wg.Done()
			_, appErr := fx.svc.Promote(context.Background(), fx.event.ID, fx.organizerID, uuid.MustParse(raw))
			results <- appErr
		}(id)
	}
	wg.Wait()
	close(results)

	var succeeded, conflicted int
	for appErr := range results {
		if appErr == nil {
			succeeded++
		} else if appErr.Code == apperrors.ErrConflict {
			conflicted++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)

	accepted, err := fx.eventRepo.CountAcceptedParticipants(context.Background(), fx.event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, accepted)
}

func TestExpireEntryRemovesFromQueue(t *testing.T) {
	fx := newWaitlistFixture(t, 10)
	entry, _ := fx.join(t, 0)
	entryID := uuid.MustParse(entry.ID)

	require.Nil(t, fx.svc.ExpireEntry(context.Background(), fx.event.ID, fx.organizerID, entryID))

	reloaded, err := fx.waitlistRepo.GetEntryByID(context.Background(), entryID)
	require.NoError(t, err)
	assert.Equal(t, entity.WaitlistStatusExpired, reloaded.Status)

	// An expired entry can no longer be promoted
	_, appErr := fx.svc.Promote(context.Background(), fx.event.ID, fx.organizerID, entryID)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestExpireEntryOrganizerOnly(t *testing.T) {
	fx := newWaitlistFixture(t, 10)
	entry, _ := fx.join(t, 0)

	appErr := fx.svc.ExpireEntry(context.Background(), fx.event.ID, uuid.New(), uuid.MustParse(entry.ID))
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)
}

func TestTerminalTransitionExpiresQueue(t *testing.T) {
	fx := newWaitlistFixture(t, 10)
	entry, _ := fx.join(t, 0)

	fx.svc.OnEventStatusChanged(context.Background(), fx.event.ID,
		eventEntity.StatusInviting, eventEntity.StatusCancelled)

	reloaded, err := fx.waitlistRepo.GetEntryByID(context.Background(), uuid.MustParse(entry.ID))
	require.NoError(t, err)
	assert.Equal(t, entity.WaitlistStatusExpired, reloaded.Status)
}

func TestNonTerminalTransitionKeepsQueue(t *testing.T) {
	fx := newWaitlistFixture(t, 10)
	entry, _ := fx.join(t, 0)

	fx.svc.OnEventStatusChanged(context.Background(), fx.event.ID,
		eventEntity.StatusInviting, eventEntity.StatusGatheringPreferences)

	reloaded, err := fx.waitlistRepo.GetEntryByID(context.Background(), uuid.MustParse(entry.ID))
	require.NoError(t, err)
	assert.Equal(t, entity.WaitlistStatusWaiting, reloaded.Status)
}
