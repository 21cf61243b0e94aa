package repository

import (
	"context"
	"database/sql"
	"errors"

	"venueplanner/core/database"
	"venueplanner/core/logger"
	"venueplanner/modules/waitlist/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Sentinel errors for waitlist writes. The service layer maps these onto
// application error codes.
var (
	ErrNoCapacity     = errors.New("event has no free capacity")
	ErrNotWaiting     = errors.New("entry is not in waiting status")
	ErrEventClosed    = errors.New("event does not accept promotions")
	ErrDuplicateEntry = errors.New("user already has a waiting entry")
)

const waitlistColumns = `id, event_id, user_id, status, priority, notes, joined_at, promoted_at`

// WaitlistRepository handles waitlist database operations
type WaitlistRepository struct {
	db database.IDatabase
}

// WaitlistRepositoryInterface defines waitlist repository methods
type WaitlistRepositoryInterface interface {
	CreateEntry(ctx context.Context, entry *entity.WaitlistEntry) error
	GetEntryByID(ctx context.Context, id uuid.UUID) (*entity.WaitlistEntry, error)
	GetWaitingEntry(ctx context.Context, eventID, userID uuid.UUID) (*entity.WaitlistEntry, error)
	GetWaitingByEventID(ctx context.Context, eventID uuid.UUID) ([]entity.WaitlistEntry, error)
	UpdateEntryStatus(ctx context.Context, id uuid.UUID, status entity.WaitlistStatus) error
	PromoteWithCapacityCheck(ctx context.Context, entryID uuid.UUID) error
	ExpireByEventID(ctx context.Context, eventID uuid.UUID) (int64, error)
}

// NewWaitlistRepository creates a new repository
func NewWaitlistRepository(db database.IDatabase) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

// CreateEntry inserts a new waitlist entry. The partial unique index on
// waiting entries turns a concurrent double-join into ErrDuplicateEntry.
func (r *WaitlistRepository) CreateEntry(ctx context.Context, entry *entity.WaitlistEntry) error {
	query := `
		INSERT INTO event_waitlist (id, event_id, user_id, status, priority, notes, joined_at)
		VALUES (:id, :event_id, :user_id, :status, :priority, :notes, :joined_at)`

	_, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEntry
		}
		logger.Error("WaitlistRepository:CreateEntry", err)
		return err
	}
	return nil
}

// GetEntryByID fetches one entry, nil when absent
func (r *WaitlistRepository) GetEntryByID(ctx context.Context, id uuid.UUID) (*entity.WaitlistEntry, error) {
	query := `SELECT ` + waitlistColumns + ` FROM event_waitlist WHERE id = $1`

	var entry entity.WaitlistEntry
	err := r.db.GetContext(ctx, &entry, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("WaitlistRepository:GetEntryByID", err)
		return nil, err
	}
	return &entry, nil
}

// GetWaitingEntry fetches the user's waiting entry for an event, nil when
// absent. Promoted and expired entries are history and do not block a rejoin.
func (r *WaitlistRepository) GetWaitingEntry(ctx context.Context, eventID, userID uuid.UUID) (*entity.WaitlistEntry, error) {
	query := `SELECT ` + waitlistColumns + ` FROM event_waitlist WHERE event_id = $1 AND user_id = $2 AND status = $3`

	var entry entity.WaitlistEntry
	err := r.db.GetContext(ctx, &entry, query, eventID, userID, entity.WaitlistStatusWaiting)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("WaitlistRepository:GetWaitingEntry", err)
		return nil, err
	}
	return &entry, nil
}

// GetWaitingByEventID returns waiting entries in promotion order
func (r *WaitlistRepository) GetWaitingByEventID(ctx context.Context, eventID uuid.UUID) ([]entity.WaitlistEntry, error) {
	query := `
		SELECT ` + waitlistColumns + `
		FROM event_waitlist
		WHERE event_id = $1 AND status = $2
		ORDER BY priority DESC, joined_at ASC`

	var entries []entity.WaitlistEntry
	err := r.db.SelectContext(ctx, &entries, query, eventID, entity.WaitlistStatusWaiting)
	if err != nil {
		logger.Error("WaitlistRepository:GetWaitingByEventID", err)
		return nil, err
	}
	return entries, nil
}

// UpdateEntryStatus sets an entry's status unconditionally
func (r *WaitlistRepository) UpdateEntryStatus(ctx context.Context, id uuid.UUID, status entity.WaitlistStatus) error {
	query := `UPDATE event_waitlist SET status = $1 WHERE id = $2`
	if err := r.db.ExecContext(ctx, query, status, id); err != nil {
		logger.Error("WaitlistRepository:UpdateEntryStatus", err)
		return err
	}
	return nil
}

// PromoteWithCapacityCheck moves a waiting entry to promoted and registers the
// user as an accepted participant, all inside one transaction. The event row
// is locked first so two concurrent promotions cannot both pass the capacity
// check for the last free slot.
func (r *WaitlistRepository) PromoteWithCapacityCheck(ctx context.Context, entryID uuid.UUID) error {
	tx, err := r.db.SQLx().BeginTxx(ctx, nil)
	if err != nil {
		logger.Error("WaitlistRepository:PromoteWithCapacityCheck begin", err)
		return err
	}
	defer tx.Rollback()

	var entry entity.WaitlistEntry
	err = tx.GetContext(ctx, &entry,
		`SELECT `+waitlistColumns+` FROM event_waitlist WHERE id = $1 FOR UPDATE`, entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		logger.Error("WaitlistRepository:PromoteWithCapacityCheck lock entry", err)
		return err
	}
	if entry.Status != entity.WaitlistStatusWaiting {
		return ErrNotWaiting
	}

	var event struct {
		MaxAttendees int    `db:"max_attendees"`
		Status       string `db:"status"`
	}
	err = tx.GetContext(ctx, &event,
		`SELECT max_attendees, status FROM events WHERE id = $1 FOR UPDATE`, entry.EventID)
	if err != nil {
		logger.Error("WaitlistRepository:PromoteWithCapacityCheck lock event", err)
		return err
	}
	if event.Status == "cancelled" || event.Status == "completed" {
		return ErrEventClosed
	}

	var accepted int
	err = tx.GetContext(ctx, &accepted,
		`SELECT COUNT(*) FROM event_participants WHERE event_id = $1 AND invitation_status = 'accepted'`,
		entry.EventID)
	if err != nil {
		logger.Error("WaitlistRepository:PromoteWithCapacityCheck count", err)
		return err
	}
	if event.MaxAttendees > 0 && accepted >= event.MaxAttendees {
		return ErrNoCapacity
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE event_waitlist SET status = $1, promoted_at = NOW() WHERE id = $2`,
		entity.WaitlistStatusPromoted, entryID)
	if err != nil {
		logger.Error("WaitlistRepository:PromoteWithCapacityCheck update entry", err)
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO event_participants (event_id, user_id, invitation_status, responded_at, created_at)
		VALUES ($1, $2, 'accepted', NOW(), NOW())
		ON CONFLICT (event_id, user_id)
		DO UPDATE SET invitation_status = 'accepted', responded_at = NOW()`,
		entry.EventID, entry.UserID)
	if err != nil {
		logger.Error("WaitlistRepository:PromoteWithCapacityCheck add participant", err)
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("WaitlistRepository:PromoteWithCapacityCheck commit", err)
		return err
	}
	return nil
}

// ExpireByEventID marks every waiting entry expired, used when the event closes
func (r *WaitlistRepository) ExpireByEventID(ctx context.Context, eventID uuid.UUID) (int64, error) {
	query := `UPDATE event_waitlist SET status = $1 WHERE event_id = $2 AND status = $3`

	rows, err := r.db.ExecReturningRows(ctx, query,
		entity.WaitlistStatusExpired, eventID, entity.WaitlistStatusWaiting)
	if err != nil {
		logger.Error("WaitlistRepository:ExpireByEventID", err)
		return 0, err
	}
	return rows, nil
}
