package dto

import "time"

// ===================== Response DTOs =====================

// TriggerResponse for POST trigger
type TriggerResponse struct {
	EventID   string    `json:"event_id"`
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ProgressRecord tracks an in-flight analysis. Stored in redis keyed by event.
type ProgressRecord struct {
	EventID     string     `json:"event_id"`
	Phase       string     `json:"phase"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	OptionCount int        `json:"option_count"`
	LastError   string     `json:"last_error,omitempty"`
}

// Analysis phases reported through the progress record
const (
	PhaseQueued    = "queued"
	PhaseAnalyzing = "analyzing"
	PhaseCompleted = "completed"
	PhaseFailed    = "failed"
	PhaseDiscarded = "discarded"
)
