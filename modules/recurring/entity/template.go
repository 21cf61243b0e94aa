package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// RecurrencePattern is how often the template fires
type RecurrencePattern string

const (
	PatternDaily   RecurrencePattern = "daily"
	PatternWeekly  RecurrencePattern = "weekly"
	PatternMonthly RecurrencePattern = "monthly"
	PatternYearly  RecurrencePattern = "yearly"
)

// TemplateStatus of a recurring template
type TemplateStatus string

const (
	TemplateStatusActive TemplateStatus = "active"
	TemplateStatusPaused TemplateStatus = "paused"
)

// RecurringEventTemplate stamps out draft events on a schedule. DaysOfWeek
// uses Go's time.Weekday numbering (Sunday = 0) and only applies to weekly
// patterns; DayOfMonth only to monthly ones.
type RecurringEventTemplate struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	OrganizerID uuid.UUID         `json:"organizer_id" db:"organizer_id"`
	Pattern     RecurrencePattern `json:"pattern" db:"pattern"`
	DaysOfWeek  pq.Int64Array     `json:"days_of_week,omitempty" db:"days_of_week"`
	DayOfMonth  *int              `json:"day_of_month,omitempty" db:"day_of_month"`

	StartDate       time.Time  `json:"start_date" db:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty" db:"end_date"`
	OccurrenceCount *int       `json:"occurrence_count,omitempty" db:"occurrence_count"`

	OccurrencesGenerated int        `json:"occurrences_generated" db:"occurrences_generated"`
	LastGeneratedDate    *time.Time `json:"last_generated_date,omitempty" db:"last_generated_date"`

	AutoCreateEvents bool           `json:"auto_create_events" db:"auto_create_events"`
	DaysInAdvance    int            `json:"days_in_advance" db:"days_in_advance"`
	Status           TemplateStatus `json:"status" db:"status"`

	// Fields inherited by generated events
	Title               string  `json:"title" db:"title"`
	Description         *string `json:"description,omitempty" db:"description"`
	DurationMinutes     int     `json:"duration_minutes" db:"duration_minutes"`
	ExpectedAttendees   int     `json:"expected_attendees" db:"expected_attendees"`
	MaxAttendees        int     `json:"max_attendees" db:"max_attendees"`
	AcceptanceThreshold float64 `json:"acceptance_threshold" db:"acceptance_threshold"`
	Privacy             string  `json:"privacy" db:"privacy"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Exhausted reports whether the template has produced all the occurrences it
// ever will, either by count or by end date.
func (t *RecurringEventTemplate) Exhausted(ref time.Time) bool {
	if t.OccurrenceCount != nil && t.OccurrencesGenerated >= *t.OccurrenceCount {
		return true
	}
	if t.EndDate != nil && ref.After(*t.EndDate) {
		return true
	}
	return false
}
