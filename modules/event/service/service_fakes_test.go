package service

import (
	"context"
	"sync"
	"time"

	"venueplanner/modules/event/entity"

	"github.com/google/uuid"
)

// fakeEventRepo is an in-memory EventRepositoryInterface good enough to
// exercise the lifecycle logic, including CAS semantics and claims.
type fakeEventRepo struct {
	mu           sync.Mutex
	events       map[uuid.UUID]*entity.Event
	participants map[string]*entity.Participant
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		events:       make(map[uuid.UUID]*entity.Event),
		participants: make(map[string]*entity.Participant),
	}
}

func participantKey(eventID, userID uuid.UUID) string {
	return eventID.String() + ":" + userID.String()
}

func (f *fakeEventRepo) CreateEvent(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := *event
	stored.ID = uuid.New()
	stored.Version = 0
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.events[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (f *fakeEventRepo) GetEventByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.events[id]
	if !ok {
		return nil, nil
	}
	out := *stored
	return &out, nil
}

func (f *fakeEventRepo) GetEventsByOrganizerID(ctx context.Context, organizerID uuid.UUID) ([]entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []entity.Event
	for _, ev := range f.events {
		if ev.OrganizerID == organizerID {
			result = append(result, *ev)
		}
	}
	return result, nil
}

func (f *fakeEventRepo) GetActiveEventsOnDate(ctx context.Context, organizerID uuid.UUID, date time.Time, excludeEventID *uuid.UUID) ([]entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	y, m, d := date.Date()
	var result []entity.Event
	for _, ev := range f.events {
		if ev.OrganizerID != organizerID || ev.ScheduledAt == nil || ev.Status.IsTerminal() {
			continue
		}
		if excludeEventID != nil && ev.ID == *excludeEventID {
			continue
		}
		ey, em, ed := ev.ScheduledAt.Date()
		if ey == y && em == m && ed == d {
			result = append(result, *ev)
		}
	}
	return result, nil
}

func (f *fakeEventRepo) CompareAndSwapStatus(ctx context.Context, event *entity.Event, to entity.EventStatus) (bool, error) {
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
	stored.AIAnalysisStartedAt = event.AIAnalysisStartedAt
	stored.CancelReason = event.CancelReason
	stored.UpdatedAt = time.Now()

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

func (f *fakeEventRepo) GetRSVPExpiredEvents(ctx context.Context, now time.Time) ([]entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []entity.Event
	for _, ev := range f.events {
		switch ev.Status {
		case entity.StatusPlanning, entity.StatusInviting, entity.StatusGatheringPreferences:
		default:
			continue
		}
		if ev.RSVPDeadline != nil && ev.RSVPDeadline.Before(now) {
			result = append(result, *ev)
		}
	}
	return result, nil
}

func (f *fakeEventRepo) GetVotingExpiredEvents(ctx context.Context, now time.Time) ([]entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []entity.Event
	for _, ev := range f.events {
		if ev.Status == entity.StatusVoting && ev.VotingDeadline != nil && ev.VotingDeadline.Before(now) {
			result = append(result, *ev)
		}
	}
	return result, nil
}

func (f *fakeEventRepo) GetCompletableEvents(ctx context.Context, cutoff time.Time) ([]entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []entity.Event
	for _, ev := range f.events {
		if ev.Status == entity.StatusConfirmed && ev.ScheduledAt != nil && ev.ScheduledAt.Before(cutoff) {
			result = append(result, *ev)
		}
	}
	return result, nil
}

func (f *fakeEventRepo) AddParticipant(ctx context.Context, participant *entity.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := participantKey(participant.EventID, participant.UserID)
	if _, exists := f.participants[key]; exists {
		return nil
	}
	stored := *participant
	stored.CreatedAt = time.Now()
	f.participants[key] = &stored
	return nil
}

func (f *fakeEventRepo) GetParticipant(ctx context.Context, eventID, userID uuid.UUID) (*entity.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.participants[participantKey(eventID, userID)]
	if !ok {
		return nil, nil
	}
	out := *stored
	return &out, nil
}

func (f *fakeEventRepo) GetParticipantsByEventID(ctx context.Context, eventID uuid.UUID) ([]entity.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []entity.Participant
	for _, p := range f.participants {
		if p.EventID == eventID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (f *fakeEventRepo) UpdateParticipantStatus(ctx context.Context, eventID, userID uuid.UUID, status entity.InvitationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if stored, ok := f.participants[participantKey(eventID, userID)]; ok {
		now := time.Now()
		stored.InvitationStatus = status
		stored.RespondedAt = &now
	}
	return nil
}

func (f *fakeEventRepo) CountAcceptedParticipants(ctx context.Context, eventID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, p := range f.participants {
		if p.EventID == eventID && p.InvitationStatus == entity.InvitationStatusAccepted {
			count++
		}
	}
	return count, nil
}
