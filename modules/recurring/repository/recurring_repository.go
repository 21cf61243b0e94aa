package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"venueplanner/core/database"
	"venueplanner/core/logger"
	"venueplanner/modules/recurring/entity"

	"github.com/google/uuid"
)

const templateColumns = `id, organizer_id, pattern, days_of_week, day_of_month,
	start_date, end_date, occurrence_count, occurrences_generated, last_generated_date,
	auto_create_events, days_in_advance, status,
	title, description, duration_minutes, expected_attendees, max_attendees,
	acceptance_threshold, privacy, created_at, updated_at`

// RecurringRepository handles recurring template database operations
type RecurringRepository struct {
	db database.IDatabase
}

// RecurringRepositoryInterface defines recurring repository methods
type RecurringRepositoryInterface interface {
	CreateTemplate(ctx context.Context, t *entity.RecurringEventTemplate) error
	GetTemplateByID(ctx context.Context, id uuid.UUID) (*entity.RecurringEventTemplate, error)
	GetTemplatesByOrganizerID(ctx context.Context, organizerID uuid.UUID) ([]entity.RecurringEventTemplate, error)
	GetDueTemplates(ctx context.Context, horizon time.Time) ([]entity.RecurringEventTemplate, error)
	UpdateTemplate(ctx context.Context, t *entity.RecurringEventTemplate) error
	MarkGenerated(ctx context.Context, id uuid.UUID, generatedDate time.Time) error
	UpdateTemplateStatus(ctx context.Context, id uuid.UUID, status entity.TemplateStatus) error
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
}

// NewRecurringRepository creates a new repository
func NewRecurringRepository(db database.IDatabase) *RecurringRepository {
	return &RecurringRepository{db: db}
}

// CreateTemplate inserts a new template
func (r *RecurringRepository) CreateTemplate(ctx context.Context, t *entity.RecurringEventTemplate) error {
	query := `
		INSERT INTO recurring_event_templates (
			id, organizer_id, pattern, days_of_week, day_of_month,
			start_date, end_date, occurrence_count, occurrences_generated,
			auto_create_events, days_in_advance, status,
			title, description, duration_minutes, expected_attendees, max_attendees,
			acceptance_threshold, privacy, created_at, updated_at
		) VALUES (
			:id, :organizer_id, :pattern, :days_of_week, :day_of_month,
			:start_date, :end_date, :occurrence_count, :occurrences_generated,
			:auto_create_events, :days_in_advance, :status,
			:title, :description, :duration_minutes, :expected_attendees, :max_attendees,
			:acceptance_threshold, :privacy, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		logger.Error("RecurringRepository:CreateTemplate", err)
		return err
	}
	return nil
}

// GetTemplateByID fetches one template, nil when absent
func (r *RecurringRepository) GetTemplateByID(ctx context.Context, id uuid.UUID) (*entity.RecurringEventTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM recurring_event_templates WHERE id = $1`

	var t entity.RecurringEventTemplate
	err := r.db.GetContext(ctx, &t, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("RecurringRepository:GetTemplateByID", err)
		return nil, err
	}
	return &t, nil
}

// GetTemplatesByOrganizerID lists an organizer's templates, newest first
func (r *RecurringRepository) GetTemplatesByOrganizerID(ctx context.Context, organizerID uuid.UUID) ([]entity.RecurringEventTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM recurring_event_templates
		WHERE organizer_id = $1
		ORDER BY created_at DESC`

	var templates []entity.RecurringEventTemplate
	err := r.db.SelectContext(ctx, &templates, query, organizerID)
	if err != nil {
		logger.Error("RecurringRepository:GetTemplatesByOrganizerID", err)
		return nil, err
	}
	return templates, nil
}

// GetDueTemplates returns active auto-creating templates whose next window
// falls inside the horizon. The precise occurrence math happens in the
// service; this only narrows the candidate set.
func (r *RecurringRepository) GetDueTemplates(ctx context.Context, horizon time.Time) ([]entity.RecurringEventTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM recurring_event_templates
		WHERE status = $1
		  AND auto_create_events = true
		  AND start_date <= $2
		  AND (end_date IS NULL OR end_date >= NOW())
		  AND (occurrence_count IS NULL OR occurrences_generated < occurrence_count)
		ORDER BY created_at ASC`

	var templates []entity.RecurringEventTemplate
	err := r.db.SelectContext(ctx, &templates, query, entity.TemplateStatusActive, horizon)
	if err != nil {
		logger.Error("RecurringRepository:GetDueTemplates", err)
		return nil, err
	}
	return templates, nil
}

// UpdateTemplate writes the mutable template fields
func (r *RecurringRepository) UpdateTemplate(ctx context.Context, t *entity.RecurringEventTemplate) error {
	query := `
		UPDATE recurring_event_templates SET
			pattern = :pattern,
			days_of_week = :days_of_week,
			day_of_month = :day_of_month,
			start_date = :start_date,
			end_date = :end_date,
			occurrence_count = :occurrence_count,
			auto_create_events = :auto_create_events,
			days_in_advance = :days_in_advance,
			title = :title,
			description = :description,
			duration_minutes = :duration_minutes,
			expected_attendees = :expected_attendees,
			max_attendees = :max_attendees,
			acceptance_threshold = :acceptance_threshold,
			privacy = :privacy,
			updated_at = NOW()
		WHERE id = :id`

	_, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		logger.Error("RecurringRepository:UpdateTemplate", err)
		return err
	}
	return nil
}

// MarkGenerated advances the generation bookkeeping after an event is created
func (r *RecurringRepository) MarkGenerated(ctx context.Context, id uuid.UUID, generatedDate time.Time) error {
	query := `
		UPDATE recurring_event_templates SET
			occurrences_generated = occurrences_generated + 1,
			last_generated_date = $1,
			updated_at = NOW()
		WHERE id = $2`

	if err := r.db.ExecContext(ctx, query, generatedDate, id); err != nil {
		logger.Error("RecurringRepository:MarkGenerated", err)
		return err
	}
	return nil
}

// UpdateTemplateStatus flips a template between active and paused
func (r *RecurringRepository) UpdateTemplateStatus(ctx context.Context, id uuid.UUID, status entity.TemplateStatus) error {
	query := `UPDATE recurring_event_templates SET status = $1, updated_at = NOW() WHERE id = $2`
	if err := r.db.ExecContext(ctx, query, status, id); err != nil {
		logger.Error("RecurringRepository:UpdateTemplateStatus", err)
		return err
	}
	return nil
}

// DeleteTemplate removes a template. Already generated events stay.
func (r *RecurringRepository) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM recurring_event_templates WHERE id = $1`
	if err := r.db.ExecContext(ctx, query, id); err != nil {
		logger.Error("RecurringRepository:DeleteTemplate", err)
		return err
	}
	return nil
}
