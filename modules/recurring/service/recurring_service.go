package service

import (
	"context"
	"time"

	"venueplanner/core/constants"
	apperrors "venueplanner/core/errors"
	"venueplanner/core/logger"
	eventDto "venueplanner/modules/event/dto"
	eventService "venueplanner/modules/event/service"
	"venueplanner/modules/recurring/dto"
	"venueplanner/modules/recurring/entity"
	"venueplanner/modules/recurring/repository"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/lib/pq"
)

const defaultDaysInAdvance = 14

// RecurringService manages templates and stamps out the events they describe
type RecurringService struct {
	repo   repository.RecurringRepositoryInterface
	events eventService.EventServiceInterface
}

// RecurringServiceInterface defines the service contract
type RecurringServiceInterface interface {
	CreateTemplate(ctx context.Context, organizerID uuid.UUID, req *dto.CreateTemplateRequest) (*dto.TemplateResponse, *apperrors.AppError)
	GetTemplate(ctx context.Context, templateID, organizerID uuid.UUID) (*dto.TemplateResponse, *apperrors.AppError)
	ListTemplates(ctx context.Context, organizerID uuid.UUID) ([]dto.TemplateResponse, *apperrors.AppError)
	UpdateTemplate(ctx context.Context, templateID, organizerID uuid.UUID, req *dto.UpdateTemplateRequest) (*dto.TemplateResponse, *apperrors.AppError)
	SetStatus(ctx context.Context, templateID, organizerID uuid.UUID, status entity.TemplateStatus) *apperrors.AppError
	DeleteTemplate(ctx context.Context, templateID, organizerID uuid.UUID) *apperrors.AppError
	Materialize(ctx context.Context) error
	HandleMaterializeTask(ctx context.Context, task *asynq.Task) error
}

// NewRecurringService creates a new recurring service
func NewRecurringService(repo repository.RecurringRepositoryInterface, events eventService.EventServiceInterface) *RecurringService {
	return &RecurringService{
		repo:   repo,
		events: events,
	}
}

func applyRequest(t *entity.RecurringEventTemplate, req *dto.CreateTemplateRequest) {
	t.Pattern = entity.RecurrencePattern(req.Pattern)
	t.DaysOfWeek = nil
	for _, d := range req.DaysOfWeek {
		t.DaysOfWeek = append(t.DaysOfWeek, int64(d))
	}
	t.DayOfMonth = req.DayOfMonth
	t.StartDate = req.StartDate
	t.EndDate = req.EndDate
	t.OccurrenceCount = req.OccurrenceCount
	t.AutoCreateEvents = req.AutoCreateEvents
	t.DaysInAdvance = req.DaysInAdvance
	if t.DaysInAdvance <= 0 {
		t.DaysInAdvance = defaultDaysInAdvance
	}
	t.Title = req.Title
	t.Description = nil
	if req.Description != "" {
		desc := req.Description
		t.Description = &desc
	}
	t.DurationMinutes = req.DurationMinutes
	if t.DurationMinutes <= 0 {
		t.DurationMinutes = constants.DefaultEventDurationMinutes
	}
	t.ExpectedAttendees = req.ExpectedAttendees
	t.MaxAttendees = req.MaxAttendees
	t.AcceptanceThreshold = req.AcceptanceThreshold
	t.Privacy = req.Privacy
	if t.Privacy == "" {
		t.Privacy = "private"
	}
}

// CreateTemplate registers a new recurring template
func (s *RecurringService) CreateTemplate(ctx context.Context, organizerID uuid.UUID, req *dto.CreateTemplateRequest) (*dto.TemplateResponse, *apperrors.AppError) {
	if entity.RecurrencePattern(req.Pattern) == entity.PatternWeekly && len(req.DaysOfWeek) == 0 {
		// Allowed: plain weekly fires on the start date's weekday.
		req.DaysOfWeek = []int{int(req.StartDate.Weekday())}
	}

	now := time.Now()
	t := &entity.RecurringEventTemplate{
		ID:          uuid.New(),
		OrganizerID: organizerID,
		Status:      entity.TemplateStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	applyRequest(t, req)

	if t.DaysOfWeek == nil {
		t.DaysOfWeek = pq.Int64Array{}
	}
	if err := s.repo.CreateTemplate(ctx, t); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to create template", err)
	}

	logger.Info("RecurringService:CreateTemplate",
		"template_id", t.ID.String(),
		"pattern", string(t.Pattern))
	return dto.ToTemplateResponse(t, NextOccurrence(t, nil)), nil
}

func (s *RecurringService) loadOwned(ctx context.Context, templateID, organizerID uuid.UUID) (*entity.RecurringEventTemplate, *apperrors.AppError) {
	t, err := s.repo.GetTemplateByID(ctx, templateID)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to get template", err)
	}
	if t == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "Template not found", nil)
	}
	if t.OrganizerID != organizerID {
		return nil, apperrors.NewAppError(apperrors.ErrForbidden, "Only the owner can manage this template", nil)
	}
	return t, nil
}

// GetTemplate returns one template with its next occurrence
func (s *RecurringService) GetTemplate(ctx context.Context, templateID, organizerID uuid.UUID) (*dto.TemplateResponse, *apperrors.AppError) {
	t, appErr := s.loadOwned(ctx, templateID, organizerID)
	if appErr != nil {
		return nil, appErr
	}
	return dto.ToTemplateResponse(t, NextOccurrence(t, t.LastGeneratedDate)), nil
}

// ListTemplates returns the organizer's templates
func (s *RecurringService) ListTemplates(ctx context.Context, organizerID uuid.UUID) ([]dto.TemplateResponse, *apperrors.AppError) {
	templates, err := s.repo.GetTemplatesByOrganizerID(ctx, organizerID)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to list templates", err)
	}

	result := make([]dto.TemplateResponse, 0, len(templates))
	for i := range templates {
		t := &templates[i]
		result = append(result, *dto.ToTemplateResponse(t, NextOccurrence(t, t.LastGeneratedDate)))
	}
	return result, nil
}

// UpdateTemplate rewrites the template's recurrence and inherited event fields
func (s *RecurringService) UpdateTemplate(ctx context.Context, templateID, organizerID uuid.UUID, req *dto.UpdateTemplateRequest) (*dto.TemplateResponse, *apperrors.AppError) {
	t, appErr := s.loadOwned(ctx, templateID, organizerID)
	if appErr != nil {
		return nil, appErr
	}

	applyRequest(t, req)
	if t.DaysOfWeek == nil {
		t.DaysOfWeek = pq.Int64Array{}
	}
	if err := s.repo.UpdateTemplate(ctx, t); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to update template", err)
	}
	return dto.ToTemplateResponse(t, NextOccurrence(t, t.LastGeneratedDate)), nil
}

// SetStatus pauses or resumes generation
func (s *RecurringService) SetStatus(ctx context.Context, templateID, organizerID uuid.UUID, status entity.TemplateStatus) *apperrors.AppError {
	if _, appErr := s.loadOwned(ctx, templateID, organizerID); appErr != nil {
		return appErr
	}
	if err := s.repo.UpdateTemplateStatus(ctx, templateID, status); err != nil {
		return apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to update template status", err)
	}
	logger.Info("RecurringService:SetStatus",
		"template_id", templateID.String(),
		"status", string(status))
	return nil
}

// DeleteTemplate removes the template. Events it already generated stay.
func (s *RecurringService) DeleteTemplate(ctx context.Context, templateID, organizerID uuid.UUID) *apperrors.AppError {
	if _, appErr := s.loadOwned(ctx, templateID, organizerID); appErr != nil {
		return appErr
	}
	if err := s.repo.DeleteTemplate(ctx, templateID); err != nil {
		return apperrors.NewAppError(apperrors.ErrInternalServer, "Failed to delete template", err)
	}
	return nil
}

// HandleMaterializeTask is the asynq handler for recurring:materialize
func (s *RecurringService) HandleMaterializeTask(ctx context.Context, task *asynq.Task) error {
	return s.Materialize(ctx)
}

// Materialize creates draft events for every due template. One occurrence per
// template per pass; the periodic task catches up across runs.
func (s *RecurringService) Materialize(ctx context.Context) error {
	now := time.Now()
	// Widest horizon any template can reach, the per-template check narrows it.
	horizon := now.AddDate(0, 0, 90)

	due, err := s.repo.GetDueTemplates(ctx, horizon)
	if err != nil {
		return err
	}

	for i := range due {
		t := &due[i]
		if err := s.materializeOne(ctx, t, now); err != nil {
			logger.Error("RecurringService:Materialize",
				"template_id", t.ID.String(),
				"error", err)
		}
	}
	return nil
}

func (s *RecurringService) materializeOne(ctx context.Context, t *entity.RecurringEventTemplate, now time.Time) error {
	if t.Exhausted(now) {
		return nil
	}

	next := NextOccurrence(t, t.LastGeneratedDate)
	if next == nil {
		return nil
	}
	// Not yet inside the template's generation window.
	if next.After(now.AddDate(0, 0, t.DaysInAdvance)) {
		return nil
	}

	req := &eventDto.CreateEventRequest{
		Title:               t.Title,
		ScheduledAt:         next,
		DurationMinutes:     t.DurationMinutes,
		ExpectedAttendees:   t.ExpectedAttendees,
		MaxAttendees:        t.MaxAttendees,
		AcceptanceThreshold: t.AcceptanceThreshold,
		Privacy:             t.Privacy,
	}
	if t.Description != nil {
		req.Description = *t.Description
	}

	created, appErr := s.events.CreateEvent(ctx, t.OrganizerID, req)
	if appErr != nil {
		// Schedule conflicts are expected when the organizer booked the slot
		// manually; record the occurrence as consumed and move on.
		if appErr.Code == apperrors.ErrConflict {
			logger.Warn("RecurringService:materializeOne occurrence skipped, slot taken",
				"template_id", t.ID.String(),
				"scheduled_at", next.Format(time.RFC3339))
			return s.repo.MarkGenerated(ctx, t.ID, *next)
		}
		return appErr
	}

	if err := s.repo.MarkGenerated(ctx, t.ID, *next); err != nil {
		return err
	}

	logger.Info("RecurringService:materializeOne",
		"template_id", t.ID.String(),
		"event_id", created.ID,
		"scheduled_at", next.Format(time.RFC3339))
	return nil
}
