package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"venueplanner/core/config"
	"venueplanner/core/constants"
	eventEntity "venueplanner/modules/event/entity"
	eventService "venueplanner/modules/event/service"
	votingEntity "venueplanner/modules/voting/entity"
	votingService "venueplanner/modules/voting/service"

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

func (f *fakeEventRepo) CompareAndSwapStatus(ctx context.Context, event *eventEntity.Event, to eventEntity.EventStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.events[event.ID]
	if !ok || stored.Status != event.Status || stored.Version != event.Version {
		return false, nil
	}
	stored.Status = to
	stored.Version++
	stored.FinalPlaceID = event.FinalPlaceID
	stored.VotingDeadline = event.VotingDeadline
	stored.CancelReason = event.CancelReason
	event.Status = to
	event.Version = stored.Version
	return true, nil
}

func (f *fakeEventRepo) ClaimForProcessing(ctx context.Context, eventID uuid.UUID, leaseSeconds int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.events[eventID]
	if !ok {
		return false, nil
	}
	now := time.Now()
	if stored.ClaimedAt != nil && now.Sub(*stored.ClaimedAt) < time.Duration(leaseSeconds)*time.Second {
		return false, nil
	}
	stored.ClaimedAt = &now
	return true, nil
}

func (f *fakeEventRepo) ReleaseClaim(ctx context.Context, eventID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if stored, ok := f.events[eventID]; ok {
		stored.ClaimedAt = nil
	}
	return nil
}

func (f *fakeEventRepo) GetRSVPExpiredEvents(ctx context.Context, now time.Time) ([]eventEntity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []eventEntity.Event
	for _, ev := range f.events {
		switch ev.Status {
		case eventEntity.StatusPlanning, eventEntity.StatusInviting, eventEntity.StatusGatheringPreferences:
		default:
			continue
		}
		if ev.RSVPDeadline != nil && ev.RSVPDeadline.Before(now) {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) GetVotingExpiredEvents(ctx context.Context, now time.Time) ([]eventEntity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []eventEntity.Event
	for _, ev := range f.events {
		if ev.Status == eventEntity.StatusVoting && ev.VotingDeadline != nil && ev.VotingDeadline.Before(now) {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) GetCompletableEvents(ctx context.Context, cutoff time.Time) ([]eventEntity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []eventEntity.Event
	for _, ev := range f.events {
		if ev.Status == eventEntity.StatusConfirmed && ev.ScheduledAt != nil && ev.ScheduledAt.Before(cutoff) {
			out = append(out, *ev)
		}
	}
	return out, nil
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

type fakeVotingRepo struct {
	mu      sync.Mutex
	options map[uuid.UUID]*votingEntity.VenueOption
	votes   []votingEntity.Vote
}

func newFakeVotingRepo() *fakeVotingRepo {
	return &fakeVotingRepo{options: make(map[uuid.UUID]*votingEntity.VenueOption)}
}

func (f *fakeVotingRepo) CreateOptions(ctx context.Context, options []votingEntity.VenueOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range options {
		stored := options[i]
		f.options[stored.ID] = &stored
	}
	return nil
}

func (f *fakeVotingRepo) GetOptionByID(ctx context.Context, optionID uuid.UUID) (*votingEntity.VenueOption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.options[optionID]
	if !ok {
		return nil, nil
	}
	out := *stored
	return &out, nil
}

func (f *fakeVotingRepo) GetOptionsByEventID(ctx context.Context, eventID uuid.UUID) ([]votingEntity.VenueOption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []votingEntity.VenueOption
	for _, o := range f.options {
		if o.EventID == eventID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeVotingRepo) UpsertVote(ctx context.Context, vote *votingEntity.Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.votes = append(f.votes, *vote)
	return nil
}

func (f *fakeVotingRepo) GetOptionTallies(ctx context.Context, eventID uuid.UUID) ([]votingEntity.OptionTally, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	byOption := make(map[uuid.UUID]*votingEntity.OptionTally)
	for _, v := range f.votes {
		if v.EventID != eventID {
			continue
		}
		tally, ok := byOption[v.OptionID]
		if !ok {
			tally = &votingEntity.OptionTally{
				OptionID:        v.OptionID,
				OptionCreatedAt: f.options[v.OptionID].CreatedAt,
			}
			byOption[v.OptionID] = tally
		}
		tally.TotalScore += v.Value
		tally.VoteCount++
	}

	out := make([]votingEntity.OptionTally, 0, len(byOption))
	for _, t := range byOption {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].OptionCreatedAt.Before(out[j].OptionCreatedAt)
	})
	return out, nil
}

func (f *fakeVotingRepo) CountDistinctVoters(ctx context.Context, eventID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	for _, v := range f.votes {
		if v.EventID == eventID {
			seen[v.VoterID] = true
		}
	}
	return len(seen), nil
}

// ===================== fixtures =====================

type schedulerFixture struct {
	scheduler  *DeadlineScheduler
	cfg        *config.Config
	eventRepo  *fakeEventRepo
	votingRepo *fakeVotingRepo
}

func newSchedulerFixture(t *testing.T) *schedulerFixture {
	t.Helper()

	cfg := &config.Config{ForceFinalizeOnDeadline: true}
	eventRepo := newFakeEventRepo()
	votingRepo := newFakeVotingRepo()
	events := eventService.NewEventService(eventRepo)
	voting := votingService.NewVotingService(votingRepo, eventRepo, events)

	return &schedulerFixture{
		scheduler:  NewDeadlineScheduler(cfg, eventRepo, events, voting),
		cfg:        cfg,
		eventRepo:  eventRepo,
		votingRepo: votingRepo,
	}
}

func (fx *schedulerFixture) seedEvent(t *testing.T, mutate func(*eventEntity.Event)) *eventEntity.Event {
	t.Helper()
	ev := &eventEntity.Event{
		OrganizerID:         uuid.New(),
		Title:               "Offsite",
		Status:              eventEntity.StatusInviting,
		ExpectedAttendees:   5,
		MaxAttendees:        10,
		AcceptanceThreshold: 0.7,
		DurationMinutes:     constants.DefaultEventDurationMinutes,
	}
	mutate(ev)
	created, err := fx.eventRepo.CreateEvent(context.Background(), ev)
	require.NoError(t, err)
	return created
}

func (fx *schedulerFixture) acceptParticipants(t *testing.T, eventID uuid.UUID, n int) {
	t.Helper()
	now := time.Now()
	for i := 0; i < n; i++ {
		require.NoError(t, fx.eventRepo.AddParticipant(context.Background(), &eventEntity.Participant{
			EventID:          eventID,
			UserID:           uuid.New(),
			InvitationStatus: eventEntity.InvitationStatusAccepted,
			RespondedAt:      &now,
		}))
	}
}

func (fx *schedulerFixture) reload(t *testing.T, id uuid.UUID) *eventEntity.Event {
	t.Helper()
	ev, err := fx.eventRepo.GetEventByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, ev)
	return ev
}

func pastDeadline() *time.Time {
	d := time.Now().Add(-time.Hour)
	return &d
}

// ===================== RSVP deadline pass =====================

func TestSweepCancelsUnderSubscribedEvent(t *testing.T) {
	fx := newSchedulerFixture(t)
	ev := fx.seedEvent(t, func(e *eventEntity.Event) {
		e.RSVPDeadline = pastDeadline()
	})
	fx.acceptParticipants(t, ev.ID, constants.MinAcceptedFloor-1)

	require.NoError(t, fx.scheduler.Sweep(context.Background()))

	reloaded := fx.reload(t, ev.ID)
	assert.Equal(t, eventEntity.StatusCancelled, reloaded.Status)
	require.NotNil(t, reloaded.CancelReason)
	assert.Contains(t, *reloaded.CancelReason, "RSVP deadline")
}

func TestSweepKeepsEventWithEnoughAccepted(t *testing.T) {
	fx := newSchedulerFixture(t)
	ev := fx.seedEvent(t, func(e *eventEntity.Event) {
		e.RSVPDeadline = pastDeadline()
	})
	fx.acceptParticipants(t, ev.ID, constants.MinAcceptedFloor)

	require.NoError(t, fx.scheduler.Sweep(context.Background()))

	assert.Equal(t, eventEntity.StatusInviting, fx.reload(t, ev.ID).Status)
}

func TestSweepIgnoresFutureRSVPDeadline(t *testing.T) {
	fx := newSchedulerFixture(t)
	future := time.Now().Add(time.Hour)
	ev := fx.seedEvent(t, func(e *eventEntity.Event) {
		e.RSVPDeadline = &future
	})

	require.NoError(t, fx.scheduler.Sweep(context.Background()))

	assert.Equal(t, eventEntity.StatusInviting, fx.reload(t, ev.ID).Status)
}

// ===================== voting deadline pass =====================

func (fx *schedulerFixture) seedVotingEvent(t *testing.T) (*eventEntity.Event, []uuid.UUID) {
	t.Helper()
	ev := fx.seedEvent(t, func(e *eventEntity.Event) {
		e.Status = eventEntity.StatusVoting
		e.VotingDeadline = pastDeadline()
	})

	base := time.Now().Add(-48 * time.Hour)
	optionIDs := make([]uuid.UUID, 0, 2)
	options := make([]votingEntity.VenueOption, 0, 2)
	for i := 0; i < 2; i++ {
		id := uuid.New()
		optionIDs = append(optionIDs, id)
		options = append(options, votingEntity.VenueOption{
			ID:        id,
			EventID:   ev.ID,
			Name:      "Option",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	require.NoError(t, fx.votingRepo.CreateOptions(context.Background(), options))
	return ev, optionIDs
}

func (fx *schedulerFixture) castVote(t *testing.T, eventID, optionID uuid.UUID, value int) {
	t.Helper()
	require.NoError(t, fx.votingRepo.UpsertVote(context.Background(), &votingEntity.Vote{
		EventID:  eventID,
		OptionID: optionID,
		VoterID:  uuid.New(),
		Value:    value,
	}))
}

func TestSweepForceFinalizesExpiredVoting(t *testing.T) {
	fx := newSchedulerFixture(t)
	ev, optionIDs := fx.seedVotingEvent(t)
	fx.castVote(t, ev.ID, optionIDs[0], 3)
	fx.castVote(t, ev.ID, optionIDs[1], 5)

	require.NoError(t, fx.scheduler.Sweep(context.Background()))

	reloaded := fx.reload(t, ev.ID)
	assert.Equal(t, eventEntity.StatusConfirmed, reloaded.Status)
	require.NotNil(t, reloaded.FinalPlaceID)
	assert.Equal(t, optionIDs[1], *reloaded.FinalPlaceID)
}

func TestSweepCancelsVotingWithoutVotes(t *testing.T) {
	fx := newSchedulerFixture(t)
	ev, _ := fx.seedVotingEvent(t)

	require.NoError(t, fx.scheduler.Sweep(context.Background()))

	reloaded := fx.reload(t, ev.ID)
	assert.Equal(t, eventEntity.StatusCancelled, reloaded.Status)
	require.NotNil(t, reloaded.CancelReason)
	assert.Contains(t, *reloaded.CancelReason, "without any votes")
}

func TestSweepSkipsVotingWhenForcedFinalizeDisabled(t *testing.T) {
	fx := newSchedulerFixture(t)
	fx.cfg.ForceFinalizeOnDeadline = false
	ev, optionIDs := fx.seedVotingEvent(t)
	fx.castVote(t, ev.ID, optionIDs[0], 5)

	require.NoError(t, fx.scheduler.Sweep(context.Background()))

	assert.Equal(t, eventEntity.StatusVoting, fx.reload(t, ev.ID).Status)
}

// ===================== completion pass =====================

func TestSweepCompletesEventPastBuffer(t *testing.T) {
	fx := newSchedulerFixture(t)
	old := time.Now().Add(-time.Duration(constants.CompletionBufferHours+1) * time.Hour)
	ev := fx.seedEvent(t, func(e *eventEntity.Event) {
		e.Status = eventEntity.StatusConfirmed
		e.ScheduledAt = &old
	})

	require.NoError(t, fx.scheduler.Sweep(context.Background()))

	assert.Equal(t, eventEntity.StatusCompleted, fx.reload(t, ev.ID).Status)
}

func TestSweepLeavesRecentlyHeldEventConfirmed(t *testing.T) {
	fx := newSchedulerFixture(t)
	recent := time.Now().Add(-time.Hour)
	ev := fx.seedEvent(t, func(e *eventEntity.Event) {
		e.Status = eventEntity.StatusConfirmed
		e.ScheduledAt = &recent
	})

	require.NoError(t, fx.scheduler.Sweep(context.Background()))

	assert.Equal(t, eventEntity.StatusConfirmed, fx.reload(t, ev.ID).Status)
}

// ===================== claims =====================

func TestSweepSkipsClaimedEvents(t *testing.T) {
	fx := newSchedulerFixture(t)
	ev := fx.seedEvent(t, func(e *eventEntity.Event) {
		e.RSVPDeadline = pastDeadline()
	})

	// Another instance holds a live claim on the row
	now := time.Now()
	fx.eventRepo.mu.Lock()
	fx.eventRepo.events[ev.ID].ClaimedAt = &now
	fx.eventRepo.mu.Unlock()

	require.NoError(t, fx.scheduler.Sweep(context.Background()))

	assert.Equal(t, eventEntity.StatusInviting, fx.reload(t, ev.ID).Status)
}

func TestSweepTakesOverExpiredClaim(t *testing.T) {
	fx := newSchedulerFixture(t)
	ev := fx.seedEvent(t, func(e *eventEntity.Event) {
		e.RSVPDeadline = pastDeadline()
	})

	stale := time.Now().Add(-time.Duration(constants.ClaimLeaseSeconds+10) * time.Second)
	fx.eventRepo.mu.Lock()
	fx.eventRepo.events[ev.ID].ClaimedAt = &stale
	fx.eventRepo.mu.Unlock()

	require.NoError(t, fx.scheduler.Sweep(context.Background()))

	assert.Equal(t, eventEntity.StatusCancelled, fx.reload(t, ev.ID).Status)
}

func TestSweepReleasesClaimAfterProcessing(t *testing.T) {
	fx := newSchedulerFixture(t)
	ev := fx.seedEvent(t, func(e *eventEntity.Event) {
		e.RSVPDeadline = pastDeadline()
	})

	require.NoError(t, fx.scheduler.Sweep(context.Background()))

	assert.Nil(t, fx.reload(t, ev.ID).ClaimedAt)
}
