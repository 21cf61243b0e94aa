package dto

import (
	"time"

	"venueplanner/modules/recurring/entity"
)

// ===================== Request DTOs =====================

// CreateTemplateRequest for creating a recurring template
type CreateTemplateRequest struct {
	Pattern    string `json:"pattern" validate:"required,oneof=daily weekly monthly yearly"`
	DaysOfWeek []int  `json:"days_of_week" validate:"omitempty,dive,min=0,max=6"`
	DayOfMonth *int   `json:"day_of_month" validate:"omitempty,min=1,max=31"`

	StartDate       time.Time  `json:"start_date" validate:"required"`
	EndDate         *time.Time `json:"end_date"`
	OccurrenceCount *int       `json:"occurrence_count" validate:"omitempty,min=1"`

	AutoCreateEvents bool `json:"auto_create_events"`
	DaysInAdvance    int  `json:"days_in_advance" validate:"omitempty,min=1,max=90"`

	Title               string  `json:"title" validate:"required"`
	Description         string  `json:"description"`
	DurationMinutes     int     `json:"duration_minutes" validate:"omitempty,min=15,max=1440"`
	ExpectedAttendees   int     `json:"expected_attendees" validate:"required,min=1"`
	MaxAttendees        int     `json:"max_attendees" validate:"omitempty,min=1"`
	AcceptanceThreshold float64 `json:"acceptance_threshold" validate:"omitempty,gt=0,lte=1"`
	Privacy             string  `json:"privacy" validate:"omitempty,oneof=public private"`
}

// UpdateTemplateRequest mirrors the creatable fields
type UpdateTemplateRequest = CreateTemplateRequest

// ===================== Response DTOs =====================

// TemplateResponse for a recurring template
type TemplateResponse struct {
	ID          string `json:"id"`
	OrganizerID string `json:"organizer_id"`
	Pattern     string `json:"pattern"`
	DaysOfWeek  []int  `json:"days_of_week,omitempty"`
	DayOfMonth  *int   `json:"day_of_month,omitempty"`

	StartDate       time.Time  `json:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	OccurrenceCount *int       `json:"occurrence_count,omitempty"`

	OccurrencesGenerated int        `json:"occurrences_generated"`
	LastGeneratedDate    *time.Time `json:"last_generated_date,omitempty"`
	NextOccurrence       *time.Time `json:"next_occurrence,omitempty"`

	AutoCreateEvents bool   `json:"auto_create_events"`
	DaysInAdvance    int    `json:"days_in_advance"`
	Status           string `json:"status"`

	Title               string  `json:"title"`
	Description         string  `json:"description,omitempty"`
	DurationMinutes     int     `json:"duration_minutes"`
	ExpectedAttendees   int     `json:"expected_attendees"`
	MaxAttendees        int     `json:"max_attendees"`
	AcceptanceThreshold float64 `json:"acceptance_threshold"`
	Privacy             string  `json:"privacy"`

	CreatedAt time.Time `json:"created_at"`
}

// ===================== Mapper Functions =====================

// ToTemplateResponse maps entity to DTO
func ToTemplateResponse(t *entity.RecurringEventTemplate, next *time.Time) *TemplateResponse {
	resp := &TemplateResponse{
		ID:                   t.ID.String(),
		OrganizerID:          t.OrganizerID.String(),
		Pattern:              string(t.Pattern),
		DayOfMonth:           t.DayOfMonth,
		StartDate:            t.StartDate,
		EndDate:              t.EndDate,
		OccurrenceCount:      t.OccurrenceCount,
		OccurrencesGenerated: t.OccurrencesGenerated,
		LastGeneratedDate:    t.LastGeneratedDate,
		NextOccurrence:       next,
		AutoCreateEvents:     t.AutoCreateEvents,
		DaysInAdvance:        t.DaysInAdvance,
		Status:               string(t.Status),
		Title:                t.Title,
		DurationMinutes:      t.DurationMinutes,
		ExpectedAttendees:    t.ExpectedAttendees,
		MaxAttendees:         t.MaxAttendees,
		AcceptanceThreshold:  t.AcceptanceThreshold,
		Privacy:              t.Privacy,
		CreatedAt:            t.CreatedAt,
	}
	for _, d := range t.DaysOfWeek {
		resp.DaysOfWeek = append(resp.DaysOfWeek, int(d))
	}
	if t.Description != nil {
		resp.Description = *t.Description
	}
	return resp
}
