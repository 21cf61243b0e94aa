package repository

import (
	"context"
	"database/sql"
	"time"

	"venueplanner/core/database"
	"venueplanner/core/logger"
	"venueplanner/modules/event/entity"

	"github.com/google/uuid"
)

const eventColumns = `
	id, organizer_id, title, description, slug, invite_code, status, scheduled_at,
	duration_minutes, expected_attendees, max_attendees, acceptance_threshold,
	rsvp_deadline, voting_deadline, final_place_id, privacy, ai_analysis_started_at,
	cancel_reason, version, claimed_at, created_at, updated_at`

// EventRepository handles event and participant database operations
type EventRepository struct {
	DB database.IDatabase
}

// NewEventRepository creates a new repository instance
func NewEventRepository(db database.IDatabase) *EventRepository {
	return &EventRepository{DB: db}
}

// EventRepositoryInterface defines the repository contract
type EventRepositoryInterface interface {
	// Event CRUD
	CreateEvent(ctx context.Context, event *entity.Event) (*entity.Event, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	GetEventsByOrganizerID(ctx context.Context, organizerID uuid.UUID) ([]entity.Event, error)
	GetActiveEventsOnDate(ctx context.Context, organizerID uuid.UUID, date time.Time, excludeEventID *uuid.UUID) ([]entity.Event, error)

	// Guarded status transition: succeeds only when the row still carries the
	// expected status and version
	CompareAndSwapStatus(ctx context.Context, event *entity.Event, to entity.EventStatus) (bool, error)

	// Scheduler claims
	ClaimForProcessing(ctx context.Context, eventID uuid.UUID, leaseSeconds int) (bool, error)
	ReleaseClaim(ctx context.Context, eventID uuid.UUID) error

	// Deadline sweep candidates
	GetRSVPExpiredEvents(ctx context.Context, now time.Time) ([]entity.Event, error)
	GetVotingExpiredEvents(ctx context.Context, now time.Time) ([]entity.Event, error)
	GetCompletableEvents(ctx context.Context, cutoff time.Time) ([]entity.Event, error)

	// Participants
	AddParticipant(ctx context.Context, participant *entity.Participant) error
	GetParticipant(ctx context.Context, eventID, userID uuid.UUID) (*entity.Participant, error)
	GetParticipantsByEventID(ctx context.Context, eventID uuid.UUID) ([]entity.Participant, error)
	UpdateParticipantStatus(ctx context.Context, eventID, userID uuid.UUID, status entity.InvitationStatus) error
	CountAcceptedParticipants(ctx context.Context, eventID uuid.UUID) (int, error)
}

// ===================== Event CRUD =====================

func (r *EventRepository) CreateEvent(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	query := `
		INSERT INTO events (organizer_id, title, description, slug, invite_code, status,
		                    scheduled_at, duration_minutes, expected_attendees, max_attendees,
		                    acceptance_threshold, rsvp_deadline, voting_deadline, final_place_id, privacy)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + eventColumns

	var created entity.Event
	err := r.DB.GetContext(ctx, &created, query,
		event.OrganizerID, event.Title, event.Description, event.Slug, event.InviteCode,
		event.Status, event.ScheduledAt, event.DurationMinutes, event.ExpectedAttendees,
		event.MaxAttendees, event.AcceptanceThreshold, event.RSVPDeadline,
		event.VotingDeadline, event.FinalPlaceID, event.Privacy)
	if err != nil {
		logger.Error("EventRepository:CreateEvent", err)
		return nil, err
	}

	return &created, nil
}

func (r *EventRepository) GetEventByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var event entity.Event
	err := r.DB.GetContext(ctx, &event, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("EventRepository:GetEventByID", err)
		return nil, err
	}

	return &event, nil
}

func (r *EventRepository) GetEventsByOrganizerID(ctx context.Context, organizerID uuid.UUID) ([]entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE organizer_id = $1 ORDER BY created_at DESC`

	var events []entity.Event
	err := r.DB.SelectContext(ctx, &events, query, organizerID)
	if err != nil {
		logger.Error("EventRepository:GetEventsByOrganizerID", err)
		return nil, err
	}

	return events, nil
}

func (r *EventRepository) GetActiveEventsOnDate(ctx context.Context, organizerID uuid.UUID, date time.Time, excludeEventID *uuid.UUID) ([]entity.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE organizer_id = $1
		  AND scheduled_at::date = $2::date
		  AND status NOT IN ('cancelled', 'completed')
		  AND ($3::uuid IS NULL OR id <> $3)
		ORDER BY scheduled_at`

	var events []entity.Event
	err := r.DB.SelectContext(ctx, &events, query, organizerID, date, excludeEventID)
	if err != nil {
		logger.Error("EventRepository:GetActiveEventsOnDate", err)
		return nil, err
	}

	return events, nil
}

// ===================== Guarded transition =====================

// CompareAndSwapStatus writes the new status in one conditional update keyed on
// the current status and version. On success the passed event is updated in
// place; a false return means a concurrent writer got there first.
func (r *EventRepository) CompareAndSwapStatus(ctx context.Context, event *entity.Event, to entity.EventStatus) (bool, error) {
	query := `
		UPDATE events
		SET status = $1, version = version + 1,
		    final_place_id = $2, voting_deadline = $3, ai_analysis_started_at = $4,
		    cancel_reason = $5, updated_at = NOW()
		WHERE id = $6 AND status = $7 AND version = $8`

	rows, err := r.DB.ExecReturningRows(ctx, query,
		to, event.FinalPlaceID, event.VotingDeadline, event.AIAnalysisStartedAt,
		event.CancelReason, event.ID, event.Status, event.Version)
	if err != nil {
		logger.Error("EventRepository:CompareAndSwapStatus", err)
		return false, err
	}
	if rows == 0 {
		return false, nil
	}

	event.Status = to
	event.Version++
	return true, nil
}

// ===================== Scheduler claims =====================

// ClaimForProcessing marks the row as being handled by a sweep pass. The claim
// is honored for leaseSeconds; stale claims may be taken over.
func (r *EventRepository) ClaimForProcessing(ctx context.Context, eventID uuid.UUID, leaseSeconds int) (bool, error) {
	query := `
		UPDATE events
		SET claimed_at = NOW()
		WHERE id = $1
		  AND (claimed_at IS NULL OR claimed_at < NOW() - ($2 * interval '1 second'))`

	rows, err := r.DB.ExecReturningRows(ctx, query, eventID, leaseSeconds)
	if err != nil {
		logger.Error("EventRepository:ClaimForProcessing", err)
		return false, err
	}
	return rows > 0, nil
}

func (r *EventRepository) ReleaseClaim(ctx context.Context, eventID uuid.UUID) error {
	query := `UPDATE events SET claimed_at = NULL WHERE id = $1`
	if err := r.DB.ExecContext(ctx, query, eventID); err != nil {
		logger.Error("EventRepository:ReleaseClaim", err)
		return err
	}
	return nil
}

// ===================== Deadline sweep candidates =====================

func (r *EventRepository) GetRSVPExpiredEvents(ctx context.Context, now time.Time) ([]entity.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE status IN ('planning', 'inviting', 'gathering_preferences')
		  AND rsvp_deadline IS NOT NULL AND rsvp_deadline < $1
		ORDER BY rsvp_deadline`

	var events []entity.Event
	err := r.DB.SelectContext(ctx, &events, query, now)
	if err != nil {
		logger.Error("EventRepository:GetRSVPExpiredEvents", err)
		return nil, err
	}
	return events, nil
}

func (r *EventRepository) GetVotingExpiredEvents(ctx context.Context, now time.Time) ([]entity.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE status = 'voting'
		  AND voting_deadline IS NOT NULL AND voting_deadline < $1
		ORDER BY voting_deadline`

	var events []entity.Event
	err := r.DB.SelectContext(ctx, &events, query, now)
	if err != nil {
		logger.Error("EventRepository:GetVotingExpiredEvents", err)
		return nil, err
	}
	return events, nil
}

func (r *EventRepository) GetCompletableEvents(ctx context.Context, cutoff time.Time) ([]entity.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE status = 'confirmed'
		  AND scheduled_at IS NOT NULL AND scheduled_at < $1
		ORDER BY scheduled_at`

	var events []entity.Event
	err := r.DB.SelectContext(ctx, &events, query, cutoff)
	if err != nil {
		logger.Error("EventRepository:GetCompletableEvents", err)
		return nil, err
	}
	return events, nil
}

// ===================== Participants =====================

func (r *EventRepository) AddParticipant(ctx context.Context, participant *entity.Participant) error {
	query := `
		INSERT INTO event_participants (event_id, user_id, invitation_status)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, user_id) DO NOTHING`

	if err := r.DB.ExecContext(ctx, query,
		participant.EventID, participant.UserID, participant.InvitationStatus); err != nil {
		logger.Error("EventRepository:AddParticipant", err)
		return err
	}
	return nil
}

func (r *EventRepository) GetParticipant(ctx context.Context, eventID, userID uuid.UUID) (*entity.Participant, error) {
	query := `
		SELECT event_id, user_id, invitation_status, responded_at, created_at
		FROM event_participants
		WHERE event_id = $1 AND user_id = $2`

	var participant entity.Participant
	err := r.DB.GetContext(ctx, &participant, query, eventID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("EventRepository:GetParticipant", err)
		return nil, err
	}
	return &participant, nil
}

func (r *EventRepository) GetParticipantsByEventID(ctx context.Context, eventID uuid.UUID) ([]entity.Participant, error) {
	query := `
		SELECT event_id, user_id, invitation_status, responded_at, created_at
		FROM event_participants
		WHERE event_id = $1
		ORDER BY created_at`

	var participants []entity.Participant
	err := r.DB.SelectContext(ctx, &participants, query, eventID)
	if err != nil {
		logger.Error("EventRepository:GetParticipantsByEventID", err)
		return nil, err
	}
	return participants, nil
}

func (r *EventRepository) UpdateParticipantStatus(ctx context.Context, eventID, userID uuid.UUID, status entity.InvitationStatus) error {
	query := `
		UPDATE event_participants
		SET invitation_status = $3, responded_at = NOW()
		WHERE event_id = $1 AND user_id = $2`

	if err := r.DB.ExecContext(ctx, query, eventID, userID, status); err != nil {
		logger.Error("EventRepository:UpdateParticipantStatus", err)
		return err
	}
	return nil
}

// CountAcceptedParticipants derives the accepted count; it is never stored.
func (r *EventRepository) CountAcceptedParticipants(ctx context.Context, eventID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM event_participants WHERE event_id = $1 AND invitation_status = 'accepted'`

	var count int
	err := r.DB.GetContext(ctx, &count, query, eventID)
	if err != nil {
		logger.Error("EventRepository:CountAcceptedParticipants", err)
		return 0, err
	}
	return count, nil
}
