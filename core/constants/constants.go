package constants

// Context keys
const (
	ContextTokenData = "token_data"
)

// Database settings
const (
	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
)

// Event lifecycle settings
const (
	// DefaultEventDurationMinutes is assumed when an event has no explicit duration
	DefaultEventDurationMinutes = 120

	// MinAcceptedFloor is the absolute minimum of accepted participants an event
	// needs to survive its RSVP deadline. Independent of the quorum formula.
	MinAcceptedFloor = 2

	// CompletionBufferHours is how long after the scheduled time a confirmed
	// event is swept to completed
	CompletionBufferHours = 24

	// Vote value bounds
	VoteValueMin = 1
	VoteValueMax = 5

	// DefaultVotingWindowHours is applied when voting opens without an
	// organizer-supplied deadline
	DefaultVotingWindowHours = 48

	// ClaimLeaseSeconds is how long a scheduler claim on an event row is honored
	// before another sweep may take it over
	ClaimLeaseSeconds = 120
)

// Asynq task type names
const (
	TaskRecommendationGenerate = "recommendation:generate"
	TaskDeadlineSweep          = "deadline:sweep"
	TaskRecurringMaterialize   = "recurring:materialize"
)

// Redis channels
const (
	ChannelEventStatusChanged = "events:status_changed"
)
